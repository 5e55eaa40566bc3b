package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/hipotures/todoit/internal/manager"
)

// BuildItemTree constructs a lipgloss/tree for one item subtree
func BuildItemTree(node *manager.ItemTree, emoji bool) *tree.Tree {
	t := tree.New().Root(itemLabel(node, emoji))
	t.EnumeratorStyle(lipgloss.NewStyle().Foreground(ColorAccent))
	t.RootStyle(lipgloss.NewStyle().Bold(true))
	addChildren(t, node, emoji)
	return t
}

// RenderListTree renders a whole list forest under a titled root
func RenderListTree(title string, forest []*manager.ItemTree, emoji bool) string {
	t := tree.New().Root(title)
	t.EnumeratorStyle(lipgloss.NewStyle().Foreground(ColorAccent))
	t.RootStyle(lipgloss.NewStyle().Bold(true).Foreground(ColorAccent))
	for _, node := range forest {
		child := tree.New().Root(itemLabel(node, emoji))
		child.EnumeratorStyle(lipgloss.NewStyle().Foreground(ColorAccent))
		addChildren(child, node, emoji)
		t.Child(child)
	}
	return t.String()
}

func addChildren(t *tree.Tree, node *manager.ItemTree, emoji bool) {
	for _, child := range node.Children {
		sub := tree.New().Root(itemLabel(child, emoji))
		sub.EnumeratorStyle(lipgloss.NewStyle().Foreground(ColorAccent))
		addChildren(sub, child, emoji)
		t.Child(sub)
	}
}

func itemLabel(node *manager.ItemTree, emoji bool) string {
	item := node.Item
	status := StatusStyle(item.Status).Render(StatusGlyph(item.Status, emoji))
	return fmt.Sprintf("%s %s %s", status, item.ItemKey, RenderMuted(item.Content))
}
