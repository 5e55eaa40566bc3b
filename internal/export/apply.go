package export

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/manager"
	"github.com/hipotures/todoit/internal/types"
)

// ImportResult reports what an import changed
type ImportResult struct {
	ListKey     string
	CreatedList bool
	Created     int
	Updated     int
	Unchanged   int
}

func (r *ImportResult) String() string {
	verb := "updated"
	if r.CreatedList {
		verb = "created"
	}
	return fmt.Sprintf("%s list %q: %d created, %d updated, %d unchanged",
		verb, r.ListKey, r.Created, r.Updated, r.Unchanged)
}

// Apply upserts a parsed document into a list. Missing lists are created
// from the document's title and description. Items are matched by key
// within their parent; new items are added, existing ones get content
// and status updates. Items absent from the document are left alone.
// Status is only written to leaves, since parent status is derived.
func Apply(ctx context.Context, mgr *manager.Manager, listKey string, doc *Document) (*ImportResult, error) {
	result := &ImportResult{ListKey: listKey}

	_, err := mgr.GetList(ctx, listKey)
	if manager.IsNotFound(err) {
		title := doc.Title
		if title == "" {
			title = listKey
		}
		if _, err := mgr.CreateList(ctx, listKey, title, manager.CreateListOptions{
			Description: doc.Description,
		}); err != nil {
			return nil, fmt.Errorf("failed to create list %q: %w", listKey, err)
		}
		result.CreatedList = true
	} else if err != nil {
		return nil, err
	}

	existing, err := mgr.GetListItems(ctx, listKey, nil, 0)
	if err != nil {
		return nil, err
	}
	// byParent[pid][key] addresses items the way the document does;
	// pid 0 is the root level.
	byParent := map[int64]map[string]*types.Item{}
	childCount := map[int64]int{}
	for _, item := range existing {
		var pid int64
		if item.ParentItemID != nil {
			pid = *item.ParentItemID
			childCount[pid]++
		}
		if byParent[pid] == nil {
			byParent[pid] = map[string]*types.Item{}
		}
		byParent[pid][item.ItemKey] = item
	}

	for _, node := range doc.Items {
		if err := applyNode(ctx, mgr, listKey, node, "", 0, byParent, childCount, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func applyNode(ctx context.Context, mgr *manager.Manager, listKey string, node *Node, parentKey string, parentID int64, byParent map[int64]map[string]*types.Item, childCount map[int64]int, result *ImportResult) error {
	existing := byParent[parentID][node.Key]

	if existing == nil {
		created, err := mgr.AddItem(ctx, listKey, node.Key, node.Content, manager.AddItemOptions{Parent: parentKey})
		if err != nil {
			return fmt.Errorf("failed to add item %q: %w", node.Key, err)
		}
		result.Created++
		if len(node.Children) == 0 && node.Status != types.StatusPending {
			status := node.Status
			if _, err := mgr.UpdateItemStatus(ctx, listKey, node.Key, manager.StatusUpdate{
				Status: &status,
				Parent: parentKey,
			}); err != nil {
				return fmt.Errorf("failed to set status of new item %q: %w", node.Key, err)
			}
		}
		for _, child := range node.Children {
			if err := applyNode(ctx, mgr, listKey, child, node.Key, created.ID, byParent, childCount, result); err != nil {
				return err
			}
		}
		return nil
	}

	changed := false
	if existing.Content != node.Content {
		if _, err := mgr.UpdateItemContent(ctx, listKey, node.Key, node.Content, parentKey); err != nil {
			return fmt.Errorf("failed to update content of %q: %w", node.Key, err)
		}
		changed = true
	}
	// Both sides must be leaves before a status write; anything with
	// children derives its status instead.
	leafHere := len(node.Children) == 0
	leafThere := childCount[existing.ID] == 0
	if leafHere && leafThere && existing.Status != node.Status {
		status := node.Status
		if _, err := mgr.UpdateItemStatus(ctx, listKey, node.Key, manager.StatusUpdate{
			Status: &status,
			Parent: parentKey,
		}); err != nil {
			return fmt.Errorf("failed to update status of %q: %w", node.Key, err)
		}
		changed = true
	}
	if changed {
		result.Updated++
	} else {
		result.Unchanged++
	}

	for _, child := range node.Children {
		if err := applyNode(ctx, mgr, listKey, child, node.Key, existing.ID, byParent, childCount, result); err != nil {
			return err
		}
	}
	return nil
}
