package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders markdown for terminal display, wrapped to the
// given width. Falls back to the raw text on renderer errors so output
// is never lost.
func RenderMarkdown(content string, width int) string {
	if width <= 0 {
		width = GetWidth()
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// RenderKeyValues renders aligned key: value lines for vertical output
func RenderKeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	out := ""
	for _, p := range pairs {
		// Pad before styling so ANSI codes do not skew alignment.
		label := fmt.Sprintf("%-*s", width+1, p[0]+":")
		out += fmt.Sprintf("%s %s\n", RenderMuted(label), p[1])
	}
	return out
}
