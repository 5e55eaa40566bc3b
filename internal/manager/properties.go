package manager

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

func validateProperty(key, value string) error {
	if err := types.ValidatePropertyKey(key); err != nil {
		return invalidf("%v", err)
	}
	if err := types.ValidatePropertyValue(value); err != nil {
		return invalidf("%v", err)
	}
	return nil
}

// SetListProperty upserts a key-value pair on a list
func (m *Manager) SetListProperty(ctx context.Context, listKey, key, value string) error {
	if err := validateProperty(key, value); err != nil {
		return err
	}
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		old := propertyValue(ctx, tx, list.ID, key, listPropertyOwner)
		if err := tx.SetListProperty(ctx, list.ID, key, value); err != nil {
			return mapStorageError(err)
		}
		entry := &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionPropertySet,
			NewValue: map[string]any{key: value},
		}
		if old != nil {
			entry.OldValue = map[string]any{key: *old}
		}
		return m.record(ctx, tx, entry)
	})
}

// GetListProperty returns one list property value
func (m *Manager) GetListProperty(ctx context.Context, listKey, key string) (string, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return "", err
	}
	value, err := m.store.GetListProperty(ctx, list.ID, key)
	if err != nil {
		return "", fmt.Errorf("property %q: %w", key, mapStorageError(err))
	}
	return value, nil
}

// GetListProperties returns all of a list's properties sorted by key
func (m *Manager) GetListProperties(ctx context.Context, listKey string) ([]*types.Property, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	props, err := m.store.GetListProperties(ctx, list.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return props, nil
}

// DeleteListProperty removes one list property
func (m *Manager) DeleteListProperty(ctx context.Context, listKey, key string) error {
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		old := propertyValue(ctx, tx, list.ID, key, listPropertyOwner)
		if err := tx.DeleteListProperty(ctx, list.ID, key); err != nil {
			return fmt.Errorf("property %q: %w", key, mapStorageError(err))
		}
		entry := &types.HistoryEntry{
			ListID: &list.ID,
			Action: types.ActionPropertyRemoved,
		}
		if old != nil {
			entry.OldValue = map[string]any{key: *old}
		}
		return m.record(ctx, tx, entry)
	})
}

// SetItemProperty upserts a key-value pair on an item
func (m *Manager) SetItemProperty(ctx context.Context, listKey, itemKey, key, value, parentKey string) error {
	if err := validateProperty(key, value); err != nil {
		return err
	}
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, parentKey)
		if err != nil {
			return err
		}
		old := propertyValue(ctx, tx, item.ID, key, itemPropertyOwner)
		if err := tx.SetItemProperty(ctx, item.ID, key, value); err != nil {
			return mapStorageError(err)
		}
		entry := &types.HistoryEntry{
			ItemID:   &item.ID,
			ListID:   &list.ID,
			Action:   types.ActionPropertySet,
			NewValue: map[string]any{key: value},
		}
		if old != nil {
			entry.OldValue = map[string]any{key: *old}
		}
		return m.record(ctx, tx, entry)
	})
}

// GetItemProperty returns one item property value
func (m *Manager) GetItemProperty(ctx context.Context, listKey, itemKey, key, parentKey string) (string, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return "", err
	}
	item, err := resolveItem(ctx, m.store, list.ID, itemKey, parentKey)
	if err != nil {
		return "", err
	}
	value, err := m.store.GetItemProperty(ctx, item.ID, key)
	if err != nil {
		return "", fmt.Errorf("property %q: %w", key, mapStorageError(err))
	}
	return value, nil
}

// GetItemProperties returns all of an item's properties sorted by key
func (m *Manager) GetItemProperties(ctx context.Context, listKey, itemKey, parentKey string) ([]*types.Property, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	item, err := resolveItem(ctx, m.store, list.ID, itemKey, parentKey)
	if err != nil {
		return nil, err
	}
	props, err := m.store.GetItemProperties(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return props, nil
}

// DeleteItemProperty removes one item property
func (m *Manager) DeleteItemProperty(ctx context.Context, listKey, itemKey, key, parentKey string) error {
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, tx, list.ID, itemKey, parentKey)
		if err != nil {
			return err
		}
		old := propertyValue(ctx, tx, item.ID, key, itemPropertyOwner)
		if err := tx.DeleteItemProperty(ctx, item.ID, key); err != nil {
			return fmt.Errorf("property %q: %w", key, mapStorageError(err))
		}
		entry := &types.HistoryEntry{
			ItemID: &item.ID,
			ListID: &list.ID,
			Action: types.ActionPropertyRemoved,
		}
		if old != nil {
			entry.OldValue = map[string]any{key: *old}
		}
		return m.record(ctx, tx, entry)
	})
}

type propertyOwner int

const (
	listPropertyOwner propertyOwner = iota
	itemPropertyOwner
)

// propertyValue reads the current value of a property inside tx for
// history diffs. A nil return means the property does not exist yet;
// read failures are treated the same since the subsequent write will
// surface them.
func propertyValue(ctx context.Context, tx storage.Transaction, ownerID int64, key string, owner propertyOwner) *string {
	var props []*types.Property
	var err error
	if owner == listPropertyOwner {
		props, err = tx.GetListProperties(ctx, ownerID)
	} else {
		props, err = tx.GetItemProperties(ctx, ownerID)
	}
	if err != nil {
		return nil
	}
	for _, p := range props {
		if p.Key == key {
			v := p.Value
			return &v
		}
	}
	return nil
}

// FindItemsByProperty returns items with an exact property match. An
// empty listKey searches every list visible under the access scope.
func (m *Manager) FindItemsByProperty(ctx context.Context, listKey, key, value string, limit int) ([]*types.Item, error) {
	if err := types.ValidatePropertyKey(key); err != nil {
		return nil, invalidf("%v", err)
	}

	if listKey != "" {
		list, err := m.requireListRead(ctx, listKey)
		if err != nil {
			return nil, err
		}
		items, err := m.store.FindItemsByProperty(ctx, &list.ID, key, value, limit)
		if err != nil {
			return nil, mapStorageError(err)
		}
		return items, nil
	}

	items, err := m.store.FindItemsByProperty(ctx, nil, key, value, 0)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if m.scope.Enforced() {
		allowed := map[int64]bool{}
		visible := items[:0]
		for _, item := range items {
			ok, cached := allowed[item.ListID]
			if !cached {
				ok, err = m.listAllowed(ctx, item.ListID)
				if err != nil {
					return nil, err
				}
				allowed[item.ListID] = ok
			}
			if ok {
				visible = append(visible, item)
			}
		}
		items = visible
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// FindSubitemsByStatus returns, per parent, the subitems matching the
// given key-to-status conditions. A parent qualifies only when ALL
// conditions hold among its direct children.
func (m *Manager) FindSubitemsByStatus(ctx context.Context, listKey string, conditions map[string]types.ItemStatus, limit int) ([]types.SubitemMatch, error) {
	if len(conditions) == 0 {
		return nil, invalidf("at least one subitem condition is required")
	}
	for key, status := range conditions {
		if !status.IsValid() {
			return nil, invalidf("invalid status %q for subitem %q", status, key)
		}
	}

	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	items, err := m.store.GetListItems(ctx, list.ID, nil, 0)
	if err != nil {
		return nil, mapStorageError(err)
	}

	childrenOf := make(map[int64][]*types.Item)
	for _, item := range items {
		if item.ParentItemID != nil {
			childrenOf[*item.ParentItemID] = append(childrenOf[*item.ParentItemID], item)
		}
	}

	var matches []types.SubitemMatch
	for _, parent := range items {
		children := childrenOf[parent.ID]
		if len(children) == 0 {
			continue
		}
		byKey := make(map[string]*types.Item, len(children))
		for _, c := range children {
			byKey[c.ItemKey] = c
		}
		satisfied := true
		var matched []*types.Item
		for key, want := range conditions {
			child, ok := byKey[key]
			if !ok || child.Status != want {
				satisfied = false
				break
			}
			matched = append(matched, child)
		}
		if !satisfied {
			continue
		}
		types.SortItemsNatural(matched)
		matches = append(matches, types.SubitemMatch{Parent: parent, Subitems: matched})
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}
