// Package chat is the scripted design-assistant conversation shown next to
// the annotation canvas. Replies are canned; no model is called.
package chat

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roomify-app/roomify/internal/timex"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ReplyDelay is how long the assistant "thinks" before answering.
const ReplyDelay = time.Second

const CannedReply = "Thanks for your question! This is a demo response. In the full application, I would provide detailed interior design advice based on your input and any annotations you've added."

var ErrEmptyMessage = errors.New("message is empty")

var opening = []struct {
	role    Role
	content string
}{
	{RoleAssistant, "Hello! I'm your HomeGPT assistant. I can help you with interior design questions and analyze any annotations you add to the image. What would you like to know?"},
	{RoleUser, "I love this living room layout! Can you suggest some color options for the walls?"},
	{RoleAssistant, "Great choice! For this modern living room, I'd recommend warm neutrals like soft beige or light gray as a base. You could add accent colors through furniture and decor. Consider a feature wall in deep navy or forest green behind the sofa for visual interest."},
}

type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Transcript is safe for concurrent use.
type Transcript struct {
	clock timex.Clock

	mu        sync.Mutex
	messages  []Message
	listeners []func(Message)
	pending   map[timex.Timer]struct{}
	closed    bool
}

// NewTranscript starts with the fixed three-message opening.
func NewTranscript(clock timex.Clock) *Transcript {
	t := &Transcript{clock: clock, pending: make(map[timex.Timer]struct{})}
	now := clock.Now()
	for i, m := range opening {
		t.messages = append(t.messages, Message{
			ID:        strconv.Itoa(i + 1),
			Role:      m.role,
			Content:   m.content,
			Timestamp: now,
		})
	}
	return t
}

// OnMessage registers fn for every message appended after the call.
func (t *Transcript) OnMessage(fn func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Send appends the user's text and schedules the canned reply.
func (t *Transcript) Send(text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	m := t.append(RoleUser, text)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return m, nil
	}
	var timer timex.Timer
	timer = t.clock.AfterFunc(ReplyDelay, func() {
		t.mu.Lock()
		_, live := t.pending[timer]
		delete(t.pending, timer)
		t.mu.Unlock()
		if live {
			t.append(RoleAssistant, CannedReply)
		}
	})
	t.pending[timer] = struct{}{}
	return m, nil
}

func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Close drops replies that have not been delivered yet.
func (t *Transcript) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for timer := range t.pending {
		timer.Stop()
	}
	clear(t.pending)
}

func (t *Transcript) append(role Role, content string) Message {
	m := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: t.clock.Now(),
	}

	t.mu.Lock()
	t.messages = append(t.messages, m)
	ls := make([]func(Message), len(t.listeners))
	copy(ls, t.listeners)
	t.mu.Unlock()

	for _, fn := range ls {
		fn(m)
	}
	return m
}
