package wizard

import (
	"strings"

	"github.com/roomify-app/roomify/internal/client/styles"
)

// Template is a canned notes text offered in step 2.
type Template string

const (
	TemplateSingle   Template = "single"
	TemplateMultiple Template = "multiple"
)

var templateText = map[Template]string{
	TemplateSingle:   "Change one item: Replace the [sofa / table / lighting] to match the style photo. Keep walls, windows, layout, and lighting the same.",
	TemplateMultiple: "Change a few items: Update [sofa, rug, curtains] to match the style photo. Keep the room architecture, camera angle, and proportions.",
}

// TemplateText returns the notes text of t.
func TemplateText(t Template) (string, bool) {
	s, ok := templateText[t]
	return s, ok
}

// withTemplate replaces notes that are empty or already a template and
// appends to anything the user typed.
func withTemplate(notes, text string) string {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return text
	}
	for _, t := range templateText {
		if trimmed == t {
			return text
		}
	}
	return trimmed + "\n" + text
}

const (
	dualPrompt = "Use the FIRST image as the base photo. Copy furniture/finishes from the SECOND image while keeping the room architecture, camera angle, walls, floor, windows, lighting, and proportions. "
	singleTail = ". Keep layout/geometry, preserve windows, doors, floor, and lighting. Avoid adding extra furniture unless necessary."
)

// BuildPrompt renders the instruction sent with the images.
func BuildPrompt(mode UploadMode, style, notes string) string {
	notes = strings.TrimSpace(notes)

	if mode == ModeDual {
		if notes == "" {
			return dualPrompt
		}
		return dualPrompt + "Notes: " + notes
	}

	parts := make([]string, 0, 2)
	if style != "" && style != styles.None {
		parts = append(parts, style+" style")
	}
	if notes != "" {
		parts = append(parts, notes)
	}
	target := strings.Join(parts, " with ")
	if target == "" {
		target = "the chosen style"
	}
	return "Restyle the base photo to " + target + singleTail
}
