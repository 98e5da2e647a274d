package ui

import (
	"fmt"
	"io"
	"sync"
)

// Notifier shows short user-facing messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Toaster prints notifications as single styled lines.
type Toaster struct {
	mu sync.Mutex
	w  io.Writer
}

func NewToaster(w io.Writer) *Toaster {
	return &Toaster{w: w}
}

func (t *Toaster) Success(msg string) {
	t.print(SuccessStyle.Render("✓ " + msg))
}

func (t *Toaster) Error(msg string) {
	t.print(ErrorStyle.Render("✗ " + msg))
}

func (t *Toaster) print(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, line)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}
