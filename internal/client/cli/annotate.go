package cli

import (
	"context"
)

// Annotations prints the pinned notes in the order they were added.
func (a *App) Annotations() error {
	items := a.notes.List()
	if len(items) == 0 {
		a.printf("%s\n", muted("No annotations"))
		return nil
	}
	a.printf("%s\n", title("Annotations"))
	for _, n := range items {
		a.printf("  %s  (%5.1f%%, %5.1f%%)  %s\n", n.ID, n.X, n.Y, n.Note)
	}
	return nil
}

// Annotate pins note at x%, y% of the photo.
func (a *App) Annotate(ctx context.Context, x, y float64, note string) error {
	n, err := a.notes.Add(ctx, x, y, note)
	if err != nil {
		return a.report(err)
	}
	a.notifier.Success("Annotation added " + n.ID)
	return nil
}

func (a *App) Unannotate(ctx context.Context, id string) error {
	if err := a.notes.Delete(ctx, id); err != nil {
		return a.report(err)
	}
	a.notifier.Success("Annotation removed")
	return nil
}

func (a *App) ClearAnnotations(ctx context.Context) error {
	if err := a.notes.Clear(ctx); err != nil {
		return a.report(err)
	}
	a.notifier.Success("Annotations cleared")
	return nil
}
