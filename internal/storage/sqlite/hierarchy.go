package sqlite

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/types"
)

// maxHierarchyDepth caps parent-chain walks. Hitting the cap indicates a
// storage invariant violation, not a legitimate tree.
const maxHierarchyDepth = 10

func getItemChildren(ctx context.Context, q querier, id int64) ([]*types.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM todo_items WHERE parent_item_id = ?
	`, id)
	if err != nil {
		return nil, wrapDBError("get item children", err)
	}

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	types.SortItemsNatural(items)
	return items, nil
}

// getChildrenStatusSummary aggregates direct child statuses in one query
func getChildrenStatusSummary(ctx context.Context, q querier, id int64) (types.ChildStatusSummary, error) {
	var s types.ChildStatusSummary
	err := q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM todo_items
		WHERE parent_item_id = ?
	`, id).Scan(&s.Total, &s.Pending, &s.InProgress, &s.Completed, &s.Failed)
	if err != nil {
		return types.ChildStatusSummary{}, wrapDBError("get children status summary", err)
	}
	return s, nil
}

func getItemDepth(ctx context.Context, q querier, id int64) (int, error) {
	depth := 0
	current := id
	for depth < maxHierarchyDepth {
		var parent *int64
		err := q.QueryRowContext(ctx, `SELECT parent_item_id FROM todo_items WHERE id = ?`, current).Scan(&parent)
		if err != nil {
			return 0, wrapDBErrorf(err, "get depth of item %d", id)
		}
		if parent == nil {
			return depth, nil
		}
		current = *parent
		depth++
	}
	return depth, fmt.Errorf("item %d exceeds maximum hierarchy depth %d", id, maxHierarchyDepth)
}

// GetItemChildren returns an item's direct children in natural key order
func (s *Store) GetItemChildren(ctx context.Context, id int64) ([]*types.Item, error) {
	return getItemChildren(ctx, s.db, id)
}

// GetChildrenStatusSummary returns the status multiset of an item's
// direct children
func (s *Store) GetChildrenStatusSummary(ctx context.Context, id int64) (types.ChildStatusSummary, error) {
	return getChildrenStatusSummary(ctx, s.db, id)
}

// HasPendingChildren reports whether any direct child is not completed
func (s *Store) HasPendingChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM todo_items
			WHERE parent_item_id = ? AND status != 'completed'
		)
	`, id).Scan(&exists)
	if err != nil {
		return false, wrapDBError("check pending children", err)
	}
	return exists, nil
}

// GetRootItems returns a list's parentless items in natural key order
func (s *Store) GetRootItems(ctx context.Context, listID int64) ([]*types.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM todo_items
		WHERE list_id = ? AND parent_item_id IS NULL
	`, listID)
	if err != nil {
		return nil, wrapDBError("get root items", err)
	}

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	types.SortItemsNatural(items)
	return items, nil
}

// GetItemDepth returns the number of ancestors above an item, capped at
// the maximum hierarchy depth
func (s *Store) GetItemDepth(ctx context.Context, id int64) (int, error) {
	return getItemDepth(ctx, s.db, id)
}

// GetItemPath returns the chain root..item inclusive
func (s *Store) GetItemPath(ctx context.Context, id int64) ([]*types.Item, error) {
	var path []*types.Item
	current := id
	for i := 0; i <= maxHierarchyDepth; i++ {
		item, err := getItemByID(ctx, s.db, current)
		if err != nil {
			return nil, err
		}
		path = append([]*types.Item{item}, path...)
		if item.ParentItemID == nil {
			return path, nil
		}
		current = *item.ParentItemID
	}
	return nil, fmt.Errorf("item %d exceeds maximum hierarchy depth %d", id, maxHierarchyDepth)
}

// GetListItems returns a list's items DFS-grouped: roots in natural order,
// each immediately followed by its descendants depth-first. Items whose
// parent chain cannot be reached (orphans) are appended at the end.
// A status filter applies to which items appear but not to grouping.
func (s *Store) GetListItems(ctx context.Context, listID int64, status *types.ItemStatus, limit int) ([]*types.Item, error) {
	return getListItems(ctx, s.db, listID, status, limit)
}

func getListItems(ctx context.Context, q querier, listID int64, status *types.ItemStatus, limit int) ([]*types.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM todo_items WHERE list_id = ?
	`, listID)
	if err != nil {
		return nil, wrapDBError("get list items", err)
	}

	all, err := scanItems(rows)
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[int64][]*types.Item)
	var roots []*types.Item
	for _, item := range all {
		if item.ParentItemID == nil {
			roots = append(roots, item)
		} else {
			childrenOf[*item.ParentItemID] = append(childrenOf[*item.ParentItemID], item)
		}
	}
	types.SortItemsNatural(roots)
	for _, siblings := range childrenOf {
		types.SortItemsNatural(siblings)
	}

	visited := make(map[int64]bool)
	var ordered []*types.Item
	var walk func(item *types.Item, depth int)
	walk = func(item *types.Item, depth int) {
		if visited[item.ID] || depth > maxHierarchyDepth {
			return
		}
		visited[item.ID] = true
		ordered = append(ordered, item)
		for _, child := range childrenOf[item.ID] {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}

	// Orphans: children whose parent was never visited (missing root or
	// over-deep chain). Appended after the well-formed forest.
	var orphans []*types.Item
	for _, item := range all {
		if !visited[item.ID] {
			orphans = append(orphans, item)
		}
	}
	types.SortItemsNatural(orphans)
	ordered = append(ordered, orphans...)

	if status != nil {
		filtered := ordered[:0]
		for _, item := range ordered {
			if item.Status == *status {
				filtered = append(filtered, item)
			}
		}
		ordered = filtered
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}
