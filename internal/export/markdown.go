// Package export reads and writes lists as markdown checklists and JSON
// documents. Markdown is the human-editable format: one line per item,
// two-space indent per nesting level, a status marker in the checkbox.
// Multi-line content is flattened to one line on export; JSON keeps full
// fidelity.
package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
)

// Document is a parsed list file, format-independent
type Document struct {
	Title       string
	Description string
	Items       []*Node
}

// Node is one parsed item with its subitems
type Node struct {
	Key      string
	Content  string
	Status   types.ItemStatus
	Children []*Node
}

// Checkbox markers. [ ] and [x] follow the usual checklist convention;
// [~] and [!] cover the two extra statuses.
const (
	markerPending    = ' '
	markerInProgress = '~'
	markerCompleted  = 'x'
	markerFailed     = '!'
)

func statusMarker(status types.ItemStatus) rune {
	switch status {
	case types.StatusInProgress:
		return markerInProgress
	case types.StatusCompleted:
		return markerCompleted
	case types.StatusFailed:
		return markerFailed
	default:
		return markerPending
	}
}

func markerStatus(marker rune) (types.ItemStatus, bool) {
	switch marker {
	case markerPending:
		return types.StatusPending, true
	case markerInProgress:
		return types.StatusInProgress, true
	case markerCompleted, 'X':
		return types.StatusCompleted, true
	case markerFailed:
		return types.StatusFailed, true
	default:
		return "", false
	}
}

// WriteMarkdown renders a list and its item forest as a markdown checklist
func WriteMarkdown(w io.Writer, list *types.List, forest []*manager.ItemTree) error {
	bw := bufio.NewWriter(w)

	title := list.Title
	if title == "" {
		title = list.ListKey
	}
	fmt.Fprintf(bw, "# %s\n", title)
	if list.Description != "" {
		fmt.Fprintf(bw, "\n%s\n", flatten(list.Description))
	}
	fmt.Fprintln(bw)
	for _, node := range forest {
		writeNode(bw, node, 0)
	}
	return bw.Flush()
}

func writeNode(w io.Writer, node *manager.ItemTree, depth int) {
	fmt.Fprintf(w, "%s- [%c] %s: %s\n",
		strings.Repeat("  ", depth),
		statusMarker(node.Item.Status),
		node.Item.ItemKey,
		flatten(node.Item.Content))
	for _, child := range node.Children {
		writeNode(w, child, depth+1)
	}
}

// flatten collapses line breaks so an item stays on one checklist line
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

var itemLineRe = regexp.MustCompile(`^( *)- \[(.)\] ([A-Za-z0-9_-]+): (.*)$`)

// ParseMarkdown parses a markdown checklist back into a Document. The
// first heading becomes the title; plain text before the first item
// becomes the description. Item lines are "- [m] key: content" with
// two spaces of indent per nesting level.
func ParseMarkdown(r io.Reader) (*Document, error) {
	doc := &Document{}
	var descLines []string

	// stack[d] is the most recent node at depth d
	var stack []*Node

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := itemLineRe.FindStringSubmatch(line); m != nil {
			indent, marker, key, content := m[1], m[2], m[3], strings.TrimSpace(m[4])
			if len(indent)%2 != 0 {
				return nil, fmt.Errorf("line %d: indent must be a multiple of two spaces", lineNo)
			}
			depth := len(indent) / 2
			if depth > len(stack) {
				return nil, fmt.Errorf("line %d: item %q skips a nesting level", lineNo, key)
			}
			status, ok := markerStatus(rune(marker[0]))
			if !ok {
				return nil, fmt.Errorf("line %d: unknown status marker %q (want space, ~, x or !)", lineNo, marker)
			}
			if content == "" {
				return nil, fmt.Errorf("line %d: item %q has no content", lineNo, key)
			}

			node := &Node{Key: key, Content: content, Status: status}
			if depth == 0 {
				doc.Items = append(doc.Items, node)
			} else {
				parent := stack[depth-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack[:depth], node)
			continue
		}

		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "- [") {
			return nil, fmt.Errorf("line %d: malformed item line %q", lineNo, strings.TrimSpace(line))
		}

		if after, ok := strings.CutPrefix(line, "# "); ok && doc.Title == "" {
			doc.Title = strings.TrimSpace(after)
			continue
		}
		if len(doc.Items) == 0 && !strings.HasPrefix(line, "#") {
			descLines = append(descLines, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checklist: %w", err)
	}

	doc.Description = strings.Join(descLines, "\n")
	return doc, nil
}
