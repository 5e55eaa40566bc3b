package ui

import (
	"fmt"
	"strings"

	"github.com/hipotures/todoit/internal/types"
)

// RenderProgressBar renders completion as a fixed-width bar: completed
// cells, failed cells, then the remainder.
func RenderProgressBar(p *types.ListProgress, width int) string {
	if width < 10 {
		width = 10
	}
	if p.Total == 0 {
		return RenderMuted("[" + strings.Repeat("·", width) + "] empty")
	}

	doneCells := width * p.Completed / p.Total
	failCells := width * p.Failed / p.Total
	rest := width - doneCells - failCells

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(RenderPass(strings.Repeat("█", doneCells)))
	b.WriteString(RenderFail(strings.Repeat("█", failCells)))
	b.WriteString(RenderMuted(strings.Repeat("·", rest)))
	b.WriteString("]")
	b.WriteString(fmt.Sprintf(" %.0f%%", p.PercentDone))
	return b.String()
}

// RenderProgressSummary renders the per-status counts on one line
func RenderProgressSummary(p *types.ListProgress, emoji bool) string {
	parts := []string{
		fmt.Sprintf("%s %d", StatusGlyph(types.StatusPending, emoji), p.Pending),
		fmt.Sprintf("%s %d", StatusGlyph(types.StatusInProgress, emoji), p.InProgress),
		fmt.Sprintf("%s %d", StatusGlyph(types.StatusCompleted, emoji), p.Completed),
		fmt.Sprintf("%s %d", StatusGlyph(types.StatusFailed, emoji), p.Failed),
	}
	if p.Blocked > 0 {
		parts = append(parts, RenderWarn(fmt.Sprintf("blocked %d", p.Blocked)))
	}
	return strings.Join(parts, "  ")
}
