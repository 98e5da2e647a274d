package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roomify-app/roomify/internal/client/imagegen"
	"github.com/roomify-app/roomify/internal/client/wizard"
	"github.com/roomify-app/roomify/internal/filex"
)

// progressEvery is how often the progress bar is redrawn.
const progressEvery = 500 * time.Millisecond

type StylizeOptions struct {
	BasePath      string
	ReferencePath string
	Style         string
	Notes         string
	Template      string
	OutDir        string
}

// Styles prints the style options matching query, top picks first.
func (a *App) Styles(query string) error {
	if query == "" {
		a.printf("%s %s\n", label("Top styles:"), strings.Join(a.catalog.Top, ", "))
	}
	matches := a.catalog.Filter(query)
	if len(matches) == 0 {
		a.printf("%s\n", muted("No styles match "+query))
		return nil
	}
	a.printf("%s\n", title("Styles"))
	for _, s := range matches {
		a.printf("  %s\n", s)
	}
	if query == "" {
		a.printf("%s\n", title("Presets"))
		for _, p := range a.catalog.Presets {
			a.printf("  %-14s %s\n", p.Name, muted(p.Description))
		}
	}
	return nil
}

// Stylize runs the wizard once with opts and saves the result in
// opts.OutDir. It returns the saved file path.
func (a *App) Stylize(ctx context.Context, opts StylizeOptions) (string, error) {
	w := a.wizard
	w.StartOver()

	if opts.ReferencePath != "" {
		if err := w.SetUploadMode(wizard.ModeDual); err != nil {
			return "", err
		}
	}
	base, err := readImage(opts.BasePath)
	if err != nil {
		return "", a.report(err)
	}
	w.SetBaseImage(base)
	if opts.ReferencePath != "" {
		ref, err := readImage(opts.ReferencePath)
		if err != nil {
			return "", a.report(err)
		}
		w.SetStyleReference(ref)
	}

	if opts.Style != "" {
		style, ok := a.catalog.Lookup(opts.Style)
		if !ok {
			return "", a.report(fmt.Errorf("unknown style %q, see `roomify styles`", opts.Style))
		}
		w.SelectStyle(style)
	}
	w.SetNotes(opts.Notes)
	if opts.Template != "" {
		if _, err := w.ApplyTemplate(wizard.Template(opts.Template)); err != nil {
			return "", a.report(err)
		}
	}
	if err := w.GoTo(wizard.StepStyleNotes); err != nil {
		return "", err
	}

	stop := a.showProgress()
	err = w.Generate(ctx)
	stop()
	if err != nil {
		// the wizard has already notified
		return "", &reported{err: err}
	}

	dir, err := filex.EnsureDir(opts.OutDir)
	if err != nil {
		return "", a.report(fmt.Errorf("failed to save result: %w", err))
	}
	path, err := filex.WriteNew(dir, wizard.ResultFileName(a.clock.Now()), w.Result())
	if err != nil {
		return "", a.report(fmt.Errorf("failed to save result: %w", err))
	}
	a.printf("%s %s\n", label("Saved"), path)
	return path, nil
}

// showProgress redraws the progress bar until the returned func is called.
func (a *App) showProgress() (stop func()) {
	ticker := a.clock.NewTicker(progressEvery)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			case <-ticker.C():
				a.printf("\r%s", a.progress.Render(a.wizard.Progress()))
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
		<-finished
		a.printf("\r%s\n", a.progress.Render(a.wizard.Progress()))
	}
}

func readImage(path string) (imagegen.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return imagegen.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return imagegen.Image{}, fmt.Errorf("%s is not an image (%s)", path, ct)
	}
	return imagegen.Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
