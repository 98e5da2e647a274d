// Package wizard drives the three-step stylize flow: upload photos, pick a
// style and notes, then generate and review the restyled image.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roomify-app/roomify/internal/client/imagegen"
	"github.com/roomify-app/roomify/internal/client/ui"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/timex"
)

type Step int

const (
	StepUpload Step = iota + 1
	StepStyleNotes
	StepResult
)

type UploadMode string

const (
	ModeSingle UploadMode = "single"
	ModeDual   UploadMode = "dual"
)

type GenerationState int

const (
	Idle GenerationState = iota
	Generating
	Done
)

const (
	// AdvanceDelay is the pause before moving to step 2 once the photos are in.
	AdvanceDelay = 300 * time.Millisecond

	// ProgressDuration is how long the cosmetic progress takes to reach 100.
	ProgressDuration = 60 * time.Second
	progressTick     = time.Second

	FeatureStylize = "stylize"
)

var (
	ErrBusy        = errors.New("generation already in progress")
	ErrNoAPIKey    = errors.New("no active OpenAI key")
	ErrNoBaseImage = errors.New("no base image")
	ErrIncomplete  = errors.New("style or notes required")
	ErrUnknownStep = errors.New("unknown step")
)

const (
	msgNoAPIKey    = "Please add an OpenAI API key in Settings to use this feature"
	msgNoBaseImage = "Please upload your room photo"
	msgNeedStyle   = "Please choose a style or add notes"
	msgNeedNotes   = "Please add notes describing what to copy from the style photo"
	msgGenerated   = "Image generated successfully!"
	msgFailed      = "Failed to generate image"
)

// KeySource yields the user's active provider key, "" when there is none.
type KeySource interface {
	ActiveKey(ctx context.Context, provider common.Provider) (string, error)
	LogUsage(ctx context.Context, feature string, tokens *int) error
}

type ImageEditor interface {
	Edit(ctx context.Context, apiKey string, req imagegen.EditRequest) (*imagegen.Result, error)
}

// HistoryItem is one finished generation.
type HistoryItem struct {
	ID         string
	Timestamp  time.Time
	BaseImage  imagegen.Image
	StyleImage *imagegen.Image
	Style      string
	Notes      string
	Result     []byte
}

// Wizard is safe for concurrent use.
type Wizard struct {
	keys     KeySource
	editor   ImageEditor
	notifier ui.Notifier
	clock    timex.Clock
	logger   logging.Logger

	mu        sync.Mutex
	mode      UploadMode
	base      *imagegen.Image
	reference *imagegen.Image
	style     string
	notes     string
	open      map[Step]bool
	state     GenerationState
	progress  float64
	result    []byte
	history   []HistoryItem
	advance   timex.Timer
	busy      bool
	epoch     int
}

func New(keys KeySource, editor ImageEditor, notifier ui.Notifier, clock timex.Clock, logger logging.Logger) *Wizard {
	w := &Wizard{
		keys:     keys,
		editor:   editor,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With("module", "wizard"),
	}
	w.reset()
	return w
}

// reset must be called with mu held.
func (w *Wizard) reset() {
	if w.advance != nil {
		w.advance.Stop()
		w.advance = nil
	}
	w.mode = ModeSingle
	w.base = nil
	w.reference = nil
	w.style = ""
	w.notes = ""
	w.open = map[Step]bool{StepUpload: true}
	w.state = Idle
	w.progress = 0
	w.result = nil
	w.epoch++
}

// StartOver returns to an empty step 1. History is kept.
func (w *Wizard) StartOver() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

// OpenSteps returns the open steps in ascending order.
func (w *Wizard) OpenSteps() []Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Step, 0, len(w.open))
	for _, s := range []Step{StepUpload, StepStyleNotes, StepResult} {
		if w.open[s] {
			out = append(out, s)
		}
	}
	return out
}

// CurrentStep is the highest open step.
func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentStep()
}

func (w *Wizard) currentStep() Step {
	switch {
	case w.open[StepResult]:
		return StepResult
	case w.open[StepStyleNotes]:
		return StepStyleNotes
	default:
		return StepUpload
	}
}

// GoTo opens step and closes the others.
func (w *Wizard) GoTo(step Step) error {
	if step < StepUpload || step > StepResult {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.goTo(step)
	return nil
}

func (w *Wizard) goTo(step Step) {
	w.open = map[Step]bool{step: true}
}

func (w *Wizard) SetUploadMode(mode UploadMode) error {
	if mode != ModeSingle && mode != ModeDual {
		return fmt.Errorf("unknown upload mode %q", mode)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = mode
	return nil
}

func (w *Wizard) SetBaseImage(img imagegen.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.base = &img
	w.scheduleAdvance()
}

func (w *Wizard) SetStyleReference(img imagegen.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reference = &img
	w.scheduleAdvance()
}

// scheduleAdvance must be called with mu held.
func (w *Wizard) scheduleAdvance() {
	if !w.canProceedToStep2() || w.currentStep() != StepUpload {
		return
	}
	if w.advance != nil {
		w.advance.Stop()
	}
	epoch := w.epoch
	w.advance = w.clock.AfterFunc(AdvanceDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.epoch != epoch || !w.canProceedToStep2() || w.currentStep() != StepUpload {
			return
		}
		w.advance = nil
		w.goTo(StepStyleNotes)
	})
}

func (w *Wizard) SelectStyle(style string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.style = style
}

func (w *Wizard) SetNotes(notes string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = notes
}

// ApplyTemplate puts a canned text into the notes and returns the new notes.
func (w *Wizard) ApplyTemplate(t Template) (string, error) {
	text, ok := TemplateText(t)
	if !ok {
		return "", fmt.Errorf("unknown template %q", t)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notes = withTemplate(w.notes, text)
	return w.notes, nil
}

func (w *Wizard) CanProceedToStep2() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canProceedToStep2()
}

func (w *Wizard) canProceedToStep2() bool {
	if w.mode == ModeDual {
		return w.base != nil && w.reference != nil
	}
	return w.base != nil
}

func (w *Wizard) CanProceedToStep3() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canProceedToStep3()
}

func (w *Wizard) canProceedToStep3() bool {
	hasNotes := strings.TrimSpace(w.notes) != ""
	if w.mode == ModeDual {
		return hasNotes
	}
	return w.style != "" || hasNotes
}

func (w *Wizard) Mode() UploadMode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

func (w *Wizard) Style() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.style
}

func (w *Wizard) Notes() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notes
}

func (w *Wizard) State() GenerationState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Progress is the cosmetic generation progress in 0..100.
func (w *Wizard) Progress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// Result returns the generated PNG, or nil.
func (w *Wizard) Result() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// History returns finished generations, newest first.
func (w *Wizard) History() []HistoryItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]HistoryItem, len(w.history))
	copy(out, w.history)
	return out
}

// ResultFileName is the download name for a result saved at t.
func ResultFileName(t time.Time) string {
	return fmt.Sprintf("roomify-styled-room-%d.png", t.UnixMilli())
}
