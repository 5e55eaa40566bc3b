package manager

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// CreateListOptions carries the optional fields of CreateList
type CreateListOptions struct {
	Description string
	Metadata    map[string]any
}

// CreateList creates a new active list. Under force-tags the list is
// assigned every forced tag; missing tags are created with the next
// palette color.
func (m *Manager) CreateList(ctx context.Context, key, title string, opts CreateListOptions) (*types.List, error) {
	list := &types.List{
		ListKey:     key,
		Title:       title,
		Description: opts.Description,
		ListType:    types.ListSequential,
		Status:      types.ListActive,
		Metadata:    opts.Metadata,
	}
	if err := list.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}

	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.CreateList(ctx, list); err != nil {
			return fmt.Errorf("list %q: %w", key, mapStorageError(err))
		}
		for _, name := range m.scope.ForceTags {
			tag, err := m.ensureTag(ctx, tx, name)
			if err != nil {
				return err
			}
			if err := tx.AssignTag(ctx, list.ID, tag.ID); err != nil {
				return mapStorageError(err)
			}
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionListCreated,
			NewValue: map[string]any{"list_key": list.ListKey, "title": list.Title},
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetList returns a list by key, subject to the access scope
func (m *Manager) GetList(ctx context.Context, key string) (*types.List, error) {
	return m.requireListRead(ctx, key)
}

// ListAll returns visible lists in natural key order. Force-tags narrow
// the result to lists carrying all forced tags; filter tags (when no
// force-tags are set) narrow it to lists carrying any filter tag.
func (m *Manager) ListAll(ctx context.Context, includeArchived bool, limit int) ([]*types.List, error) {
	switch {
	case m.scope.Enforced():
		lists, err := m.store.GetListsByTagsAll(ctx, m.scope.ForceTags)
		if err != nil {
			return nil, mapStorageError(err)
		}
		return trimLists(lists, includeArchived, limit), nil
	case m.scope.Filtered():
		lists, err := m.store.GetListsByTagsAny(ctx, m.scope.FilterTags)
		if err != nil {
			return nil, mapStorageError(err)
		}
		return trimLists(lists, includeArchived, limit), nil
	default:
		lists, err := m.store.ListAll(ctx, includeArchived, limit)
		if err != nil {
			return nil, mapStorageError(err)
		}
		return lists, nil
	}
}

// trimLists applies the archived filter and limit to an already
// natural-sorted result
func trimLists(lists []*types.List, includeArchived bool, limit int) []*types.List {
	out := lists[:0]
	for _, l := range lists {
		if !includeArchived && l.Status == types.ListArchived {
			continue
		}
		out = append(out, l)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UpdateListRequest is a partial update; nil fields are left unchanged
type UpdateListRequest struct {
	Title       *string
	Description *string
	Metadata    map[string]any
}

// UpdateList patches a list's title, description or metadata
func (m *Manager) UpdateList(ctx context.Context, key string, req UpdateListRequest) (*types.List, error) {
	updates := map[string]interface{}{}
	oldValue := map[string]any{}
	newValue := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > 500 {
			return nil, invalidf("title must be 1-500 characters")
		}
		updates["title"] = *req.Title
		newValue["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		newValue["description"] = *req.Description
	}
	if req.Metadata != nil {
		updates["metadata"] = req.Metadata
	}
	if len(updates) == 0 {
		return nil, invalidf("nothing to update")
	}

	var updated *types.List
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, key)
		if err != nil {
			return err
		}
		if req.Title != nil {
			oldValue["title"] = list.Title
		}
		if req.Description != nil {
			oldValue["description"] = list.Description
		}
		if err := tx.UpdateList(ctx, list.ID, updates); err != nil {
			return mapStorageError(err)
		}
		updated, err = tx.GetListByID(ctx, list.ID)
		if err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionListUpdated,
			OldValue: oldValue,
			NewValue: newValue,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteList removes a list together with its items, properties, tag
// assignments, history and any dependency touching its items. The final
// history entry survives with a nil list reference.
func (m *Manager) DeleteList(ctx context.Context, key string) error {
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := tx.DeleteList(ctx, list.ID); err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			Action:   types.ActionListDeleted,
			OldValue: map[string]any{"list_key": list.ListKey, "title": list.Title},
		})
	})
}

// ArchiveList sets a list's status to archived. Unless force is set the
// list must have no incomplete items.
func (m *Manager) ArchiveList(ctx context.Context, key string, force bool) (*types.List, error) {
	var updated *types.List
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, key)
		if err != nil {
			return err
		}
		if list.Status == types.ListArchived {
			return invalidf("list %q is already archived", key)
		}
		if !force {
			items, err := tx.GetListItems(ctx, list.ID, nil, 0)
			if err != nil {
				return mapStorageError(err)
			}
			incomplete := 0
			for _, item := range items {
				if item.Status != types.StatusCompleted {
					incomplete++
				}
			}
			if incomplete > 0 {
				return invalidf("list %q has %d incomplete items; archive with force to override", key, incomplete)
			}
		}
		if err := tx.UpdateList(ctx, list.ID, map[string]interface{}{"status": string(types.ListArchived)}); err != nil {
			return mapStorageError(err)
		}
		updated, err = tx.GetListByID(ctx, list.ID)
		if err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionListArchived,
			OldValue: map[string]any{"status": string(types.ListActive)},
			NewValue: map[string]any{"status": string(types.ListArchived)},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UnarchiveList restores an archived list to active
func (m *Manager) UnarchiveList(ctx context.Context, key string) (*types.List, error) {
	var updated *types.List
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, key)
		if err != nil {
			return err
		}
		if list.Status != types.ListArchived {
			return invalidf("list %q is not archived", key)
		}
		if err := tx.UpdateList(ctx, list.ID, map[string]interface{}{"status": string(types.ListActive)}); err != nil {
			return mapStorageError(err)
		}
		updated, err = tx.GetListByID(ctx, list.ID)
		if err != nil {
			return mapStorageError(err)
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionListUnarchived,
			OldValue: map[string]any{"status": string(types.ListArchived)},
			NewValue: map[string]any{"status": string(types.ListActive)},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LinkList creates a new list that mirrors the source: same item tree
// with statuses reset to pending, list and item properties copied, and
// a linked_list property recorded on both sides. Dependencies are not
// copied. One transaction; one history entry.
func (m *Manager) LinkList(ctx context.Context, sourceKey, targetKey, targetTitle string) (*types.List, error) {
	if err := types.ValidateListKey(targetKey); err != nil {
		return nil, invalidf("%v", err)
	}

	var target *types.List
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		source, err := m.requireListWrite(ctx, tx, sourceKey)
		if err != nil {
			return err
		}

		title := targetTitle
		if title == "" {
			title = source.Title
		}
		target = &types.List{
			ListKey:     targetKey,
			Title:       title,
			Description: source.Description,
			ListType:    source.ListType,
			Status:      types.ListActive,
			Metadata:    copyMap(source.Metadata),
		}
		if err := tx.CreateList(ctx, target); err != nil {
			return fmt.Errorf("list %q: %w", targetKey, mapStorageError(err))
		}
		for _, name := range m.scope.ForceTags {
			tag, err := m.ensureTag(ctx, tx, name)
			if err != nil {
				return err
			}
			if err := tx.AssignTag(ctx, target.ID, tag.ID); err != nil {
				return mapStorageError(err)
			}
		}

		props, err := tx.GetListProperties(ctx, source.ID)
		if err != nil {
			return mapStorageError(err)
		}
		for _, p := range props {
			if err := tx.SetListProperty(ctx, target.ID, p.Key, p.Value); err != nil {
				return mapStorageError(err)
			}
		}

		copied, err := copyListItems(ctx, tx, source.ID, target.ID)
		if err != nil {
			return err
		}

		if err := tx.SetListProperty(ctx, source.ID, "linked_list:"+targetKey, "target"); err != nil {
			return mapStorageError(err)
		}
		if err := tx.SetListProperty(ctx, target.ID, "linked_list:"+sourceKey, "source"); err != nil {
			return mapStorageError(err)
		}

		return m.record(ctx, tx, &types.HistoryEntry{
			ListID: &target.ID,
			Action: types.ActionListLinked,
			NewValue: map[string]any{
				"source_list": sourceKey,
				"target_list": targetKey,
				"items":       copied,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// copyListItems clones the source forest into the target list with every
// status reset to pending. The source order is DFS-grouped, so parents
// are created before their children.
func copyListItems(ctx context.Context, tx storage.Transaction, sourceID, targetID int64) (int, error) {
	items, err := tx.GetListItems(ctx, sourceID, nil, 0)
	if err != nil {
		return 0, mapStorageError(err)
	}

	idMap := make(map[int64]int64, len(items))
	for _, src := range items {
		clone := &types.Item{
			ListID:   targetID,
			ItemKey:  src.ItemKey,
			Content:  src.Content,
			Position: src.Position,
			Status:   types.StatusPending,
			Metadata: copyMap(src.Metadata),
		}
		if src.ParentItemID != nil {
			if newID, ok := idMap[*src.ParentItemID]; ok {
				clone.ParentItemID = &newID
			}
		}
		if err := tx.CreateItem(ctx, clone); err != nil {
			return 0, mapStorageError(err)
		}
		idMap[src.ID] = clone.ID

		props, err := tx.GetItemProperties(ctx, src.ID)
		if err != nil {
			return 0, mapStorageError(err)
		}
		for _, p := range props {
			if err := tx.SetItemProperty(ctx, clone.ID, p.Key, p.Value); err != nil {
				return 0, mapStorageError(err)
			}
		}
	}
	return len(items), nil
}

// AddListTag assigns a tag to a list, creating the tag if it does not
// exist yet. Assigning an already-assigned tag fails with
// ErrDuplicateKey.
func (m *Manager) AddListTag(ctx context.Context, listKey, tagName string) (*types.Tag, error) {
	tagName = normalizeTagName(tagName)
	if tagName == "" {
		return nil, invalidf("tag name is required")
	}

	var tag *types.Tag
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		tag, err = m.ensureTag(ctx, tx, tagName)
		if err != nil {
			return err
		}
		if err := tx.AssignTag(ctx, list.ID, tag.ID); err != nil {
			return fmt.Errorf("tag %q on list %q: %w", tagName, listKey, mapStorageError(err))
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionTagAdded,
			NewValue: map[string]any{"tag": tag.Name},
		})
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// RemoveListTag detaches a tag from a list. Forced tags cannot be
// removed while the scope is active.
func (m *Manager) RemoveListTag(ctx context.Context, listKey, tagName string) error {
	tagName = normalizeTagName(tagName)
	if m.scope.IsForceTag(tagName) {
		return fmt.Errorf("tag %q: %w", tagName, ErrCannotRemoveForceTag)
	}

	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		list, err := m.requireListWrite(ctx, tx, listKey)
		if err != nil {
			return err
		}
		tag, err := tx.GetTagByName(ctx, tagName)
		if err != nil {
			return fmt.Errorf("tag %q: %w", tagName, mapStorageError(err))
		}
		if err := tx.UnassignTag(ctx, list.ID, tag.ID); err != nil {
			return fmt.Errorf("tag %q on list %q: %w", tagName, listKey, mapStorageError(err))
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ListID:   &list.ID,
			Action:   types.ActionTagRemoved,
			OldValue: map[string]any{"tag": tag.Name},
		})
	})
}

// GetListTags returns a list's tags sorted by name
func (m *Manager) GetListTags(ctx context.Context, listKey string) ([]*types.Tag, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	tags, err := m.store.GetListTags(ctx, list.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return tags, nil
}

// GetListsByTag returns lists carrying at least one of the named tags,
// narrowed to the forced scope when active
func (m *Manager) GetListsByTag(ctx context.Context, names []string) ([]*types.List, error) {
	names = normalizeTagNames(names)
	if len(names) == 0 {
		return nil, invalidf("at least one tag name is required")
	}
	lists, err := m.store.GetListsByTagsAny(ctx, names)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if !m.scope.Enforced() {
		return lists, nil
	}
	visible := lists[:0]
	for _, l := range lists {
		ok, err := m.listAllowed(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, l)
		}
	}
	return visible, nil
}

// copyMap shallow-copies a metadata map
func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
