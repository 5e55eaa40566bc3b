package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
	"github.com/hipotures/todoit/internal/ui"
)

func fmtTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmtTime(*t)
}

func renderStatus(status types.ItemStatus) string {
	return ui.StatusStyle(status).Render(ui.StatusGlyph(status, ui.ShouldUseEmoji()))
}

func renderLists(lists []*types.List) string {
	rows := make([][]string, 0, len(lists))
	for _, l := range lists {
		rows = append(rows, []string{
			l.ListKey, l.Title, string(l.Status), fmtTime(l.UpdatedAt),
		})
	}
	return ui.RenderTable([]string{"Key", "Title", "Status", "Updated"}, rows)
}

func renderListsVertical(lists []*types.List) string {
	blocks := make([]string, 0, len(lists))
	for _, l := range lists {
		blocks = append(blocks, renderListVertical(l))
	}
	return strings.Join(blocks, "\n")
}

func renderListVertical(l *types.List) string {
	pairs := [][2]string{
		{"Key", l.ListKey},
		{"Title", l.Title},
	}
	if l.Description != "" {
		pairs = append(pairs, [2]string{"Description", l.Description})
	}
	pairs = append(pairs,
		[2]string{"Type", string(l.ListType)},
		[2]string{"Status", string(l.Status)},
		[2]string{"Created", fmtTime(l.CreatedAt)},
		[2]string{"Updated", fmtTime(l.UpdatedAt)},
	)
	return ui.RenderKeyValues(pairs)
}

func renderItems(items []*types.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		key := item.ItemKey
		if item.ParentItemID != nil {
			key = "  " + key
		}
		rows = append(rows, []string{
			key,
			renderStatus(item.Status),
			strconv.Itoa(item.Position),
			item.Content,
		})
	}
	return ui.RenderTable([]string{"Key", "Status", "Pos", "Content"}, rows)
}

func renderItemsVertical(items []*types.Item) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, renderItemVertical(item))
	}
	return strings.Join(blocks, "\n")
}

func renderItemVertical(item *types.Item) string {
	pairs := [][2]string{
		{"Key", item.ItemKey},
		{"Content", item.Content},
		{"Status", renderStatus(item.Status)},
		{"Position", strconv.Itoa(item.Position)},
	}
	if item.StartedAt != nil {
		pairs = append(pairs, [2]string{"Started", fmtTimePtr(item.StartedAt)})
	}
	if item.CompletedAt != nil {
		pairs = append(pairs, [2]string{"Completed", fmtTimePtr(item.CompletedAt)})
	}
	if len(item.CompletionStates) > 0 {
		pairs = append(pairs, [2]string{"States", fmtStates(item.CompletionStates)})
	}
	pairs = append(pairs,
		[2]string{"Created", fmtTime(item.CreatedAt)},
		[2]string{"Updated", fmtTime(item.UpdatedAt)},
	)
	return ui.RenderKeyValues(pairs)
}

// fmtStates renders completion states as sorted key=value pairs
func fmtStates(states map[string]any) string {
	keys := make([]string, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	types.SortNatural(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, states[k]))
	}
	return strings.Join(parts, " ")
}

func renderTags(tags []*types.Tag) string {
	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, []string{ui.RenderTag(tag), tag.Color, fmtTime(tag.CreatedAt)})
	}
	return ui.RenderTable([]string{"Name", "Color", "Created"}, rows)
}

func renderProperties(props []*types.Property) string {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{p.Key, p.Value})
	}
	return ui.RenderTable([]string{"Key", "Value"}, rows)
}

func renderHistory(entries []*types.HistoryEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			fmtTime(e.Timestamp),
			string(e.Action),
			historyDiff(e),
			e.UserContext,
		})
	}
	return ui.RenderTable([]string{"When", "Action", "Change", "Who"}, rows)
}

// historyDiff summarizes old/new values on one line
func historyDiff(e *types.HistoryEntry) string {
	before := fmtStates(e.OldValue)
	after := fmtStates(e.NewValue)
	switch {
	case before != "" && after != "":
		return before + " -> " + after
	case after != "":
		return after
	case before != "":
		return ui.RenderMuted(before)
	default:
		return ""
	}
}

func renderEdges(edges []manager.DependencyEdge) string {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{
			e.DependentRef.String(),
			string(e.Type),
			e.RequiredRef.String(),
			renderStatus(e.Required.Status),
		})
	}
	return ui.RenderTable([]string{"Dependent", "Type", "Required", "Required status"}, rows)
}

func renderProgressTable(rows []*types.ListProgress) string {
	emoji := ui.ShouldUseEmoji()
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		out = append(out, []string{
			p.ListKey,
			strconv.Itoa(p.Total),
			ui.RenderProgressSummary(p, emoji),
			ui.RenderProgressBar(p, 20),
		})
	}
	return ui.RenderTable([]string{"List", "Items", "By status", "Progress"}, out)
}
