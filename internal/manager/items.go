package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// itemResolver is the lookup subset shared by Storage and Transaction
type itemResolver interface {
	GetItemByKey(ctx context.Context, listID int64, key string) (*types.Item, error)
	GetItemByKeyAndParent(ctx context.Context, listID int64, key string, parentID *int64) (*types.Item, error)
}

// resolveItem finds an item by key. A non-empty parentKey makes the
// lookup precise when subitem keys repeat across parents; otherwise the
// root-most match wins.
func resolveItem(ctx context.Context, r itemResolver, listID int64, itemKey, parentKey string) (*types.Item, error) {
	if parentKey == "" {
		item, err := r.GetItemByKey(ctx, listID, itemKey)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", itemKey, mapStorageError(err))
		}
		return item, nil
	}
	parent, err := r.GetItemByKey(ctx, listID, parentKey)
	if err != nil {
		return nil, fmt.Errorf("parent item %q: %w", parentKey, mapStorageError(err))
	}
	item, err := r.GetItemByKeyAndParent(ctx, listID, itemKey, &parent.ID)
	if err != nil {
		return nil, fmt.Errorf("item %q under %q: %w", itemKey, parentKey, mapStorageError(err))
	}
	return item, nil
}

// AddItemOptions carries the optional fields of AddItem
type AddItemOptions struct {
	// Parent makes the new item a subitem of the named item
	Parent   string
	Metadata map[string]any
}

// AddItem appends a pending item to a list, or to a parent item when
// opts.Parent is set. Position is always the next free sibling slot.
func (m *Manager) AddItem(ctx context.Context, listKey, itemKey, content string, opts AddItemOptions) (*types.Item, error) {
	if err := types.ValidateItemKey(itemKey); err != nil {
		return nil, invalidf("%v", err)
	}
	if content == "" || len(content) > types.MaxContentLength {
		return nil, invalidf("content must be 1-%d characters", types.MaxContentLength)
	}

	item := &types.Item{
		ItemKey:  itemKey,
		Content:  content,
		Status:   types.StatusPending,
		Metadata: opts.Metadata,
	}
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item.ListID = list.ID

		newValue := map[string]any{"item_key": itemKey, "content": content}
		if opts.Parent != "" {
			parent, err := tx.GetItemByKey(ctx, list.ID, opts.Parent)
			if err != nil {
				return fmt.Errorf("parent item %q: %w", opts.Parent, mapStorageError(err))
			}
			depth, err := tx.GetItemDepth(ctx, parent.ID)
			if err != nil {
				return mapStorageError(err)
			}
			if depth+1 >= maxNestingDepth {
				return invalidf("item %q would exceed the maximum nesting depth of %d", itemKey, maxNestingDepth)
			}
			item.ParentItemID = &parent.ID
			newValue["parent"] = parent.ItemKey
		}

		if err := tx.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("item %q: %w", itemKey, mapStorageError(err))
		}
		if item.ParentItemID != nil {
			if err := syncParentChain(ctx, tx, *item.ParentItemID, map[int64]bool{}); err != nil {
				return err
			}
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID:   &item.ID,
			ListID:   &list.ID,
			Action:   types.ActionItemCreated,
			NewValue: newValue,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns an item by key. parentKey may be empty.
func (m *Manager) GetItem(ctx context.Context, listKey, itemKey, parentKey string) (*types.Item, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	return resolveItem(ctx, m.store, list.ID, itemKey, parentKey)
}

// GetListItems returns a list's items DFS-grouped in natural order,
// optionally filtered by status
func (m *Manager) GetListItems(ctx context.Context, listKey string, status *types.ItemStatus, limit int) ([]*types.Item, error) {
	if status != nil && !status.IsValid() {
		return nil, invalidf("invalid status %q", *status)
	}
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	items, err := m.store.GetListItems(ctx, list.ID, status, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return items, nil
}

// FindItemsByStatus returns a list's items with the given status in
// natural key order
func (m *Manager) FindItemsByStatus(ctx context.Context, listKey string, status types.ItemStatus, limit int) ([]*types.Item, error) {
	if !status.IsValid() {
		return nil, invalidf("invalid status %q", status)
	}
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	items, err := m.store.FindItemsByStatus(ctx, list.ID, status, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return items, nil
}

// StatusUpdate is a partial status mutation. Status and States may be
// combined; parent disambiguates repeated subitem keys.
type StatusUpdate struct {
	Status *types.ItemStatus
	// States merges into the item's completion states
	States map[string]any
	Parent string
}

// UpdateItemStatus mutates a leaf item's status and completion states.
// Items with subitems derive their status and reject direct mutation.
// started_at is set once on the first transition to in_progress;
// completed_at on every transition to completed. The parent chain is
// synchronized in the same transaction.
func (m *Manager) UpdateItemStatus(ctx context.Context, listKey, itemKey string, update StatusUpdate) (*types.Item, error) {
	if update.Status == nil && update.States == nil {
		return nil, invalidf("nothing to update")
	}
	if update.Status != nil && !update.Status.IsValid() {
		return nil, invalidf("invalid status %q", *update.Status)
	}
	if err := types.ValidateCompletionStates(update.States); err != nil {
		return nil, invalidf("%v", err)
	}

	var updated *types.Item
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, update.Parent)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		oldValue := map[string]any{}
		newValue := map[string]any{}
		action := types.ActionItemUpdated

		if update.Status != nil {
			summary, err := tx.GetChildrenStatusSummary(ctx, item.ID)
			if err != nil {
				return mapStorageError(err)
			}
			if summary.Total > 0 {
				return fmt.Errorf("item %q: status is derived from %d subitems: %w", itemKey, summary.Total, ErrHasChildren)
			}
			now := time.Now().UTC()
			updates["status"] = string(*update.Status)
			if *update.Status == types.StatusInProgress && item.StartedAt == nil {
				updates["started_at"] = now
			}
			if *update.Status == types.StatusCompleted {
				updates["completed_at"] = now
			}
			action = types.ActionStatusChanged
			oldValue["status"] = string(item.Status)
			newValue["status"] = string(*update.Status)
		}

		if update.States != nil {
			merged := copyMap(item.CompletionStates)
			if merged == nil {
				merged = map[string]any{}
			}
			for k, v := range update.States {
				merged[k] = v
			}
			updates["completion_states"] = merged
			newValue["completion_states"] = merged
		}

		if err := tx.UpdateItem(ctx, item.ID, updates); err != nil {
			return mapStorageError(err)
		}
		if item.ParentItemID != nil {
			if err := syncParentChain(ctx, tx, *item.ParentItemID, map[int64]bool{}); err != nil {
				return err
			}
		}
		updated, err = tx.GetItemByID(ctx, item.ID)
		if err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID:   &item.ID,
			ListID:   &list.ID,
			Action:   action,
			OldValue: oldValue,
			NewValue: newValue,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateItemContent rewrites an item's content
func (m *Manager) UpdateItemContent(ctx context.Context, listKey, itemKey, content, parentKey string) (*types.Item, error) {
	if content == "" || len(content) > types.MaxContentLength {
		return nil, invalidf("content must be 1-%d characters", types.MaxContentLength)
	}

	var updated *types.Item
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, parentKey)
		if err != nil {
			return err
		}
		if err := tx.UpdateItem(ctx, item.ID, map[string]interface{}{"content": content}); err != nil {
			return mapStorageError(err)
		}
		updated, err = tx.GetItemByID(ctx, item.ID)
		if err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID:   &item.ID,
			ListID:   &list.ID,
			Action:   types.ActionItemUpdated,
			OldValue: map[string]any{"content": item.Content},
			NewValue: map[string]any{"content": content},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes a leaf item together with its properties, history
// and dependency edges, then re-derives the old parent chain. Items
// with subitems are rejected; delete the subitems first.
func (m *Manager) DeleteItem(ctx context.Context, listKey, itemKey, parentKey string) error {
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, parentKey)
		if err != nil {
			return err
		}
		summary, err := tx.GetChildrenStatusSummary(ctx, item.ID)
		if err != nil {
			return mapStorageError(err)
		}
		if summary.Total > 0 {
			return fmt.Errorf("item %q has %d subitems: %w", itemKey, summary.Total, ErrHasChildren)
		}
		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return mapStorageError(err)
		}
		if item.ParentItemID != nil {
			if err := syncParentChain(ctx, tx, *item.ParentItemID, map[int64]bool{}); err != nil {
				return err
			}
		}
		// The item's own history is removed with it; the deletion entry
		// references only the list.
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID: &list.ID,
			Action: types.ActionItemDeleted,
			OldValue: map[string]any{
				"item_key": item.ItemKey,
				"content":  item.Content,
				"status":   string(item.Status),
			},
		})
	})
}

// ClearCompletionStates removes every completion state from an item
func (m *Manager) ClearCompletionStates(ctx context.Context, listKey, itemKey, parentKey string) (*types.Item, error) {
	return m.removeStates(ctx, listKey, itemKey, parentKey, nil)
}

// RemoveCompletionStates removes the named completion states from an
// item, leaving the rest intact
func (m *Manager) RemoveCompletionStates(ctx context.Context, listKey, itemKey string, keys []string, parentKey string) (*types.Item, error) {
	if len(keys) == 0 {
		return nil, invalidf("at least one state name is required")
	}
	return m.removeStates(ctx, listKey, itemKey, parentKey, keys)
}

// removeStates clears all states when keys is nil, otherwise only the
// named ones
func (m *Manager) removeStates(ctx context.Context, listKey, itemKey, parentKey string, keys []string) (*types.Item, error) {
	var updated *types.Item
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, parentKey)
		if err != nil {
			return err
		}

		remaining := map[string]any{}
		if keys != nil {
			remaining = copyMap(item.CompletionStates)
			if remaining == nil {
				remaining = map[string]any{}
			}
			for _, k := range keys {
				delete(remaining, k)
			}
		}
		if err := tx.UpdateItem(ctx, item.ID, map[string]interface{}{"completion_states": remaining}); err != nil {
			return mapStorageError(err)
		}
		updated, err = tx.GetItemByID(ctx, item.ID)
		if err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID:   &item.ID,
			ListID:   &list.ID,
			Action:   types.ActionStatesCleared,
			OldValue: map[string]any{"completion_states": item.CompletionStates},
			NewValue: map[string]any{"completion_states": remaining},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ItemTree is an item with its subtree, children in natural order
type ItemTree struct {
	Item     *types.Item `json:"item"`
	Children []*ItemTree `json:"children,omitempty"`
}

// GetListTree returns the whole forest of a list
func (m *Manager) GetListTree(ctx context.Context, listKey string) ([]*ItemTree, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	items, err := m.store.GetListItems(ctx, list.ID, nil, 0)
	if err != nil {
		return nil, mapStorageError(err)
	}
	roots, _ := buildForest(items)
	return roots, nil
}

// GetItemTree returns one item's subtree
func (m *Manager) GetItemTree(ctx context.Context, listKey, itemKey string) (*ItemTree, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	item, err := resolveItem(ctx, m.store, list.ID, itemKey, "")
	if err != nil {
		return nil, err
	}
	items, err := m.store.GetListItems(ctx, list.ID, nil, 0)
	if err != nil {
		return nil, mapStorageError(err)
	}
	_, byID := buildForest(items)
	return byID[item.ID], nil
}

// buildForest assembles tree nodes from a DFS-grouped item slice. The
// input order places parents before children, so a single pass links
// every node.
func buildForest(items []*types.Item) ([]*ItemTree, map[int64]*ItemTree) {
	byID := make(map[int64]*ItemTree, len(items))
	var roots []*ItemTree
	for _, item := range items {
		node := &ItemTree{Item: item}
		byID[item.ID] = node
		if item.ParentItemID != nil {
			if parent, ok := byID[*item.ParentItemID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, byID
}
