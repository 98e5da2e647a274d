package ui

import (
	"github.com/charmbracelet/bubbles/progress"
)

// ProgressBar renders a percentage as a static bar.
type ProgressBar struct {
	model progress.Model
}

func NewProgressBar(width int) *ProgressBar {
	m := progress.New(progress.WithDefaultGradient())
	if width > 0 {
		m.Width = width
	}
	return &ProgressBar{model: m}
}

// Render draws pct, given in 0..100 and clamped to it.
func (p *ProgressBar) Render(pct float64) string {
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return p.model.ViewAs(pct / 100)
}
