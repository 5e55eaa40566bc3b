package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hipotures/todoit/internal/types"
)

// Shared palette. Adaptive pairs keep output readable on both light and
// dark terminals.
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "124", Dark: "196"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "245", Dark: "240"}
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(ColorPass)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle  = lipgloss.NewStyle().Foreground(ColorFail)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// RenderPass renders text in the success color
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders text in the warning color
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail renders text in the failure color
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderMuted renders text in the muted color
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// statusGlyphs maps each item status to its emoji and plain forms
var statusGlyphs = map[types.ItemStatus][2]string{
	types.StatusPending:    {"⏳", "pending"},
	types.StatusInProgress: {"🔄", "in_progress"},
	types.StatusCompleted:  {"✅", "completed"},
	types.StatusFailed:     {"❌", "failed"},
}

// StatusGlyph returns the display form of a status. With emoji enabled
// the glyph replaces the raw enum value; structured output formats
// should bypass this and emit the enum directly.
func StatusGlyph(status types.ItemStatus, emoji bool) string {
	glyphs, ok := statusGlyphs[status]
	if !ok {
		return string(status)
	}
	if emoji {
		return glyphs[0]
	}
	return glyphs[1]
}

// StatusStyle returns the lipgloss style for a status value
func StatusStyle(status types.ItemStatus) lipgloss.Style {
	switch status {
	case types.StatusCompleted:
		return passStyle
	case types.StatusInProgress:
		return warnStyle
	case types.StatusFailed:
		return failStyle
	default:
		return mutedStyle
	}
}

// tagColors maps the palette color names persisted on tags to ANSI 256
// codes for display
var tagColors = map[string]string{
	"red":     "196",
	"green":   "46",
	"blue":    "33",
	"yellow":  "226",
	"magenta": "201",
	"cyan":    "51",
	"orange":  "208",
	"purple":  "129",
	"pink":    "213",
	"teal":    "37",
	"lime":    "118",
	"gray":    "245",
}

// RenderTag renders a tag name in its palette color
func RenderTag(tag *types.Tag) string {
	code, ok := tagColors[tag.Color]
	if !ok {
		return tag.Name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(code)).Render(tag.Name)
}
