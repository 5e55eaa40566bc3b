package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
)

// jsonDocument is the on-disk JSON shape: the list header plus the item
// forest with full status and completion-state fidelity.
type jsonDocument struct {
	List  *types.List         `json:"list"`
	Items []*manager.ItemTree `json:"items"`
}

// WriteJSON renders a list and its item forest as an indented JSON document
func WriteJSON(w io.Writer, list *types.List, forest []*manager.ItemTree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonDocument{List: list, Items: forest}); err != nil {
		return fmt.Errorf("failed to encode list %q: %w", list.ListKey, err)
	}
	return nil
}

// ParseJSON parses a JSON document into the same Document shape the
// markdown parser produces
func ParseJSON(r io.Reader) (*Document, error) {
	var jd jsonDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&jd); err != nil {
		return nil, fmt.Errorf("failed to decode JSON document: %w", err)
	}

	doc := &Document{}
	if jd.List != nil {
		doc.Title = jd.List.Title
		doc.Description = jd.List.Description
	}
	for _, tree := range jd.Items {
		node, err := jsonNode(tree)
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, node)
	}
	return doc, nil
}

func jsonNode(tree *manager.ItemTree) (*Node, error) {
	if tree == nil || tree.Item == nil {
		return nil, fmt.Errorf("JSON document contains an item entry without an item")
	}
	status := tree.Item.Status
	if status == "" {
		status = types.StatusPending
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("item %q has invalid status %q", tree.Item.ItemKey, status)
	}
	node := &Node{
		Key:     tree.Item.ItemKey,
		Content: tree.Item.Content,
		Status:  status,
	}
	for _, child := range tree.Children {
		cn, err := jsonNode(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, cn)
	}
	return node, nil
}
