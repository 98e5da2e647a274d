package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/roomify-app/roomify/internal/client/imagegen"
	"github.com/roomify-app/roomify/internal/common"
)

type job struct {
	mode      UploadMode
	base      *imagegen.Image
	reference *imagegen.Image
	style     string
	notes     string
	ready     bool
}

// Generate runs one image request for the current photos, style and notes.
// It blocks until the request finishes. Precondition failures are notified
// and leave the wizard untouched. A request failure is notified and leaves
// the wizard idle on step 3 without a result.
func (w *Wizard) Generate(ctx context.Context) error {
	j, err := w.begin()
	if err != nil {
		return err
	}
	defer w.end()

	key, err := w.keys.ActiveKey(ctx, common.ProviderOpenAI)
	if err != nil {
		w.logger.Error(ctx, "failed to load api key", "error", err)
		w.notifier.Error(fmt.Sprintf("Failed to load API key: %v", err))
		return err
	}
	if key == "" {
		w.notifier.Error(msgNoAPIKey)
		return ErrNoAPIKey
	}
	if j.base == nil {
		w.notifier.Error(msgNoBaseImage)
		return ErrNoBaseImage
	}
	if !j.ready {
		if j.mode == ModeDual {
			w.notifier.Error(msgNeedNotes)
		} else {
			w.notifier.Error(msgNeedStyle)
		}
		return ErrIncomplete
	}

	// without a reference photo there is no second image to copy from
	promptMode := ModeSingle
	if j.mode == ModeDual && j.reference != nil {
		promptMode = ModeDual
	}
	req := imagegen.EditRequest{
		Model:   imagegen.DefaultModel,
		Prompt:  BuildPrompt(promptMode, j.style, j.notes),
		Images:  []imagegen.Image{*j.base},
		Size:    imagegen.DefaultSize,
		N:       1,
		Quality: imagegen.DefaultQuality,
	}
	if promptMode == ModeDual {
		req.Images = append(req.Images, *j.reference)
	}

	epoch := w.startGenerating()
	stop := w.runProgress(epoch)
	res, err := w.editor.Edit(ctx, key, req)
	stop()

	if err != nil {
		w.fail(epoch)
		w.logger.Error(ctx, "image generation failed", "error", err)
		msg := err.Error()
		if msg == "" {
			msg = msgFailed
		}
		w.notifier.Error(msg)
		return err
	}

	w.succeed(epoch, j, res.Image)
	w.notifier.Success(msgGenerated)

	if err := w.keys.LogUsage(ctx, FeatureStylize, nil); err != nil {
		w.logger.Warn(ctx, "failed to log usage", "feature", FeatureStylize, "error", err)
	}
	return nil
}

func (w *Wizard) begin() (job, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return job{}, ErrBusy
	}
	w.busy = true
	return job{
		mode:      w.mode,
		base:      w.base,
		reference: w.reference,
		style:     w.style,
		notes:     w.notes,
		ready:     w.canProceedToStep3(),
	}, nil
}

func (w *Wizard) end() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
}

func (w *Wizard) startGenerating() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Generating
	w.progress = 0
	w.result = nil
	w.goTo(StepResult)
	return w.epoch
}

// runProgress advances the cosmetic progress until the returned func is called.
func (w *Wizard) runProgress(epoch int) (stop func()) {
	start := w.clock.Now()
	ticker := w.clock.NewTicker(progressTick)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-ticker.C():
				p := float64(w.clock.Now().Sub(start)) / float64(ProgressDuration) * 100
				w.mu.Lock()
				if w.epoch == epoch && w.state == Generating {
					w.progress = min(p, 100)
				}
				w.mu.Unlock()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
		wg.Wait()
	}
}

func (w *Wizard) fail(epoch int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.epoch != epoch {
		return
	}
	w.state = Idle
	w.progress = 0
	w.result = nil
}

func (w *Wizard) succeed(epoch int, j job, img []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	item := HistoryItem{
		ID:        uuid.NewString(),
		Timestamp: w.clock.Now(),
		BaseImage: *j.base,
		Style:     j.style,
		Notes:     j.notes,
		Result:    img,
	}
	if j.mode == ModeDual && j.reference != nil {
		ref := *j.reference
		item.StyleImage = &ref
	}
	w.history = append([]HistoryItem{item}, w.history...)

	if w.epoch != epoch {
		return
	}
	w.result = img
	w.progress = 100
	w.state = Done
}
