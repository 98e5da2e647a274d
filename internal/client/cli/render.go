package cli

import (
	"github.com/roomify-app/roomify/internal/client/ui"
)

func label(s string) string { return ui.LabelStyle.Render(s) }

func title(s string) string { return ui.TitleStyle.Render(s) }

func muted(s string) string { return ui.MutedStyle.Render(s) }
