package manager

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// maxNestingDepth caps the parent chain: a root sits at depth 0, so a
// chain holds at most this many items.
const maxNestingDepth = 10

// syncParentChain recomputes a parent's derived status from its direct
// children and walks upward while anything changes. Runs inside the
// initiating mutation's transaction. Derived changes touch only
// updated_at and emit no history; the initiating entry covers them.
// The visited set guards against parent-chain cycles.
func syncParentChain(ctx context.Context, tx storage.Transaction, parentID int64, visited map[int64]bool) error {
	if visited[parentID] {
		return nil
	}
	visited[parentID] = true

	summary, err := tx.GetChildrenStatusSummary(ctx, parentID)
	if err != nil {
		return mapStorageError(err)
	}
	if summary.Total == 0 {
		return nil
	}

	parent, err := tx.GetItemByID(ctx, parentID)
	if err != nil {
		return mapStorageError(err)
	}
	derived := summary.Derive()
	if derived == parent.Status {
		return nil
	}

	if err := tx.UpdateItem(ctx, parentID, map[string]interface{}{"status": string(derived)}); err != nil {
		return mapStorageError(err)
	}
	if parent.ParentItemID != nil {
		return syncParentChain(ctx, tx, *parent.ParentItemID, visited)
	}
	return nil
}

// subtreeHeight returns the number of levels below an item: 0 for a
// leaf, 1 for an item with only leaf children. The walk is bounded by
// the nesting cap so a corrupt over-deep tree cannot loop.
func subtreeHeight(ctx context.Context, tx storage.Transaction, id int64) (int, error) {
	height := 0
	level := []int64{id}
	for len(level) > 0 {
		var next []int64
		for _, cur := range level {
			children, err := tx.GetItemChildren(ctx, cur)
			if err != nil {
				return 0, mapStorageError(err)
			}
			for _, child := range children {
				next = append(next, child.ID)
			}
		}
		if len(next) == 0 {
			return height, nil
		}
		if height >= maxNestingDepth {
			return height, fmt.Errorf("item %d exceeds maximum hierarchy depth %d", id, maxNestingDepth)
		}
		level = next
		height++
	}
	return height, nil
}

// GetSubtasks returns an item's direct children in natural key order
func (m *Manager) GetSubtasks(ctx context.Context, listKey, itemKey string) ([]*types.Item, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	item, err := resolveItem(ctx, m.store, list.ID, itemKey, "")
	if err != nil {
		return nil, err
	}
	children, err := m.store.GetItemChildren(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return children, nil
}

// MoveToSubitem reparents an item under another item of the same list.
// The move appends the item at the new parent's next sibling position
// and re-derives both the old and the new parent chain.
func (m *Manager) MoveToSubitem(ctx context.Context, listKey, itemKey, newParentKey string) (*types.Item, error) {
	if itemKey == newParentKey {
		return nil, invalidf("item %q cannot become its own subitem", itemKey)
	}

	var moved *types.Item
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, "")
		if err != nil {
			return err
		}
		parent, err := tx.GetItemByKey(ctx, list.ID, newParentKey)
		if err != nil {
			return fmt.Errorf("parent item %q: %w", newParentKey, mapStorageError(err))
		}
		if item.ID == parent.ID {
			return invalidf("item %q cannot become its own subitem", itemKey)
		}
		if item.ParentItemID != nil && *item.ParentItemID == parent.ID {
			return invalidf("item %q is already a subitem of %q", itemKey, newParentKey)
		}

		// Walk the candidate parent's chain to the root; finding the moved
		// item on the way means the move would close a loop.
		cursor := parent
		for steps := 0; cursor.ParentItemID != nil; steps++ {
			if steps >= maxNestingDepth {
				return invalidf("parent chain of %q exceeds the maximum nesting depth of %d", newParentKey, maxNestingDepth)
			}
			if *cursor.ParentItemID == item.ID {
				return fmt.Errorf("moving %q under %q: %w", itemKey, newParentKey, ErrWouldCreateCycle)
			}
			cursor, err = tx.GetItemByID(ctx, *cursor.ParentItemID)
			if err != nil {
				return mapStorageError(err)
			}
		}

		// The whole subtree moves, so the deepest descendant must still
		// fit under the cap, not just the item itself.
		depth, err := tx.GetItemDepth(ctx, parent.ID)
		if err != nil {
			return mapStorageError(err)
		}
		height, err := subtreeHeight(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if depth+1+height >= maxNestingDepth {
			return invalidf("item %q would exceed the maximum nesting depth of %d", itemKey, maxNestingDepth)
		}

		// A sibling with the same key under the new parent would violate
		// the per-scope uniqueness of item keys.
		if _, err := tx.GetItemByKeyAndParent(ctx, list.ID, item.ItemKey, &parent.ID); err == nil {
			return fmt.Errorf("item %q already exists under %q: %w", itemKey, newParentKey, ErrDuplicateKey)
		} else if !IsNotFound(mapStorageError(err)) {
			return mapStorageError(err)
		}

		oldParentID := item.ParentItemID
		var oldParentKey string
		if oldParentID != nil {
			oldParent, err := tx.GetItemByID(ctx, *oldParentID)
			if err != nil {
				return mapStorageError(err)
			}
			oldParentKey = oldParent.ItemKey
		}

		pos, err := tx.GetNextPosition(ctx, list.ID, &parent.ID)
		if err != nil {
			return mapStorageError(err)
		}
		if err := tx.UpdateItem(ctx, item.ID, map[string]interface{}{
			"parent_item_id": parent.ID,
			"position":       pos,
		}); err != nil {
			return mapStorageError(err)
		}

		visited := map[int64]bool{}
		if err := syncParentChain(ctx, tx, parent.ID, visited); err != nil {
			return err
		}
		if oldParentID != nil {
			if err := syncParentChain(ctx, tx, *oldParentID, visited); err != nil {
				return err
			}
		}

		moved, err = tx.GetItemByID(ctx, item.ID)
		if err != nil {
			return mapStorageError(err)
		}
		oldValue := map[string]any{"position": item.Position}
		if oldParentKey != "" {
			oldValue["parent"] = oldParentKey
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID:   &item.ID,
			ListID:   &list.ID,
			Action:   types.ActionItemMoved,
			OldValue: oldValue,
			NewValue: map[string]any{"parent": parent.ItemKey, "position": pos},
		})
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// GetItemPath returns the chain root..item for display purposes
func (m *Manager) GetItemPath(ctx context.Context, listKey, itemKey string) ([]*types.Item, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	item, err := resolveItem(ctx, m.store, list.ID, itemKey, "")
	if err != nil {
		return nil, err
	}
	path, err := m.store.GetItemPath(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return path, nil
}
