package manager

import (
	"context"
	"time"

	"github.com/hipotures/todoit/internal/types"
)

// GetProgress returns aggregate status counts for a list
func (m *Manager) GetProgress(ctx context.Context, listKey string) (*types.ListProgress, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	progress, err := m.store.GetListProgress(ctx, list.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	progress.ListKey = list.ListKey
	return progress, nil
}

// GetAllProgress returns progress for every list visible under the
// access scope, in natural key order.
func (m *Manager) GetAllProgress(ctx context.Context, includeArchived bool) ([]*types.ListProgress, error) {
	lists, err := m.ListAll(ctx, includeArchived, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*types.ListProgress, 0, len(lists))
	for _, list := range lists {
		progress, err := m.store.GetListProgress(ctx, list.ID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		progress.ListKey = list.ListKey
		out = append(out, progress)
	}
	return out, nil
}

// GetItemHistory returns an item's history entries, newest first
func (m *Manager) GetItemHistory(ctx context.Context, listKey, itemKey, parentKey string, limit int) ([]*types.HistoryEntry, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	item, err := resolveItem(ctx, m.store, list.ID, itemKey, parentKey)
	if err != nil {
		return nil, err
	}
	entries, err := m.store.GetItemHistory(ctx, item.ID, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return entries, nil
}

// GetListHistory returns a list's history, including entries for its
// items, newest first.
func (m *Manager) GetListHistory(ctx context.Context, listKey string, limit int) ([]*types.HistoryEntry, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	entries, err := m.store.GetListHistory(ctx, list.ID, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return entries, nil
}

// GetRecentHistory returns the newest entries across all lists. Under a
// force-tags scope, entries for out-of-scope lists are dropped; entries
// without a list reference (tag changes, deletions) are always kept.
func (m *Manager) GetRecentHistory(ctx context.Context, limit int) ([]*types.HistoryEntry, error) {
	fetch := limit
	if m.scope.Enforced() {
		// Over-fetch so that filtered-out entries do not starve the page.
		if fetch <= 0 {
			fetch = 50
		}
		fetch *= 5
	}
	entries, err := m.store.GetRecentHistory(ctx, fetch)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if !m.scope.Enforced() {
		return entries, nil
	}

	allowed := map[int64]bool{}
	visible := entries[:0]
	for _, entry := range entries {
		if entry.ListID == nil {
			visible = append(visible, entry)
			continue
		}
		ok, cached := allowed[*entry.ListID]
		if !cached {
			ok, err = m.listAllowed(ctx, *entry.ListID)
			if err != nil {
				return nil, err
			}
			allowed[*entry.ListID] = ok
		}
		if ok {
			visible = append(visible, entry)
		}
	}
	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}

// FailedItem pairs a failed item with its list for cross-list reports
type FailedItem struct {
	List *types.List `json:"list"`
	Item *types.Item `json:"item"`
}

// GetFailedItems returns failed items, optionally restricted to one
// list and to items updated at or after since.
func (m *Manager) GetFailedItems(ctx context.Context, listKey string, since *time.Time) ([]FailedItem, error) {
	var lists []*types.List
	if listKey != "" {
		list, err := m.requireListRead(ctx, listKey)
		if err != nil {
			return nil, err
		}
		lists = []*types.List{list}
	} else {
		var err error
		lists, err = m.ListAll(ctx, true, 0)
		if err != nil {
			return nil, err
		}
	}

	var failed []FailedItem
	for _, list := range lists {
		items, err := m.store.FindItemsByStatus(ctx, list.ID, types.StatusFailed, 0)
		if err != nil {
			return nil, mapStorageError(err)
		}
		for _, item := range items {
			if since != nil && item.UpdatedAt.Before(*since) {
				continue
			}
			failed = append(failed, FailedItem{List: list, Item: item})
		}
	}
	return failed, nil
}
