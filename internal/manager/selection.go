package manager

import (
	"context"
	"sort"

	"github.com/hipotures/todoit/internal/types"
)

// Candidate priorities for smart next-item selection. Continuing
// already-started work dominates; newly startable work follows; leaf
// roots come before subdividing later roots; orphaned subtasks last.
const (
	priorityStartedSubtask = 1
	priorityNewSubtask     = 2
	priorityLeafRoot       = 3
	priorityOrphan         = 4
)

type candidate struct {
	item      *types.Item
	priority  int
	parentPos int
	itemPos   int
}

// GetNextPending returns the next actionable item of a list, honoring
// the subtask hierarchy and cross-list blocking. When nothing is
// actionable it returns (nil, nil); a fully blocked list is not an
// error. Smart mode applies the priority rules; simple mode returns the
// first unblocked pending item whose parent, if any, is completed.
func (m *Manager) GetNextPending(ctx context.Context, listKey string, smart bool) (*types.Item, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	if smart {
		return m.nextPendingSmart(ctx, list.ID)
	}
	return m.nextPendingSimple(ctx, list.ID)
}

func (m *Manager) nextPendingSmart(ctx context.Context, listID int64) (*types.Item, error) {
	roots, err := m.store.GetRootItems(ctx, listID)
	if err != nil {
		return nil, mapStorageError(err)
	}

	var candidates []candidate
	for _, root := range roots {
		switch root.Status {
		case types.StatusInProgress:
			children, err := m.store.GetItemChildren(ctx, root.ID)
			if err != nil {
				return nil, mapStorageError(err)
			}
			for _, child := range children {
				if child.Status != types.StatusPending {
					continue
				}
				blocked, err := m.store.IsItemBlocked(ctx, child.ID)
				if err != nil {
					return nil, mapStorageError(err)
				}
				if !blocked {
					candidates = append(candidates, candidate{child, priorityStartedSubtask, root.Position, child.Position})
				}
			}
		case types.StatusPending:
			blocked, err := m.store.IsItemBlocked(ctx, root.ID)
			if err != nil {
				return nil, mapStorageError(err)
			}
			if blocked {
				continue
			}
			children, err := m.store.GetItemChildren(ctx, root.ID)
			if err != nil {
				return nil, mapStorageError(err)
			}
			if len(children) == 0 {
				candidates = append(candidates, candidate{root, priorityLeafRoot, root.Position, root.Position})
				continue
			}
			for _, child := range children {
				if child.Status != types.StatusPending {
					continue
				}
				childBlocked, err := m.store.IsItemBlocked(ctx, child.ID)
				if err != nil {
					return nil, mapStorageError(err)
				}
				if !childBlocked {
					candidates = append(candidates, candidate{child, priorityNewSubtask, root.Position, child.Position})
					break
				}
			}
		}
	}

	orphans, err := m.orphanCandidates(ctx, listID)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, orphans...)

	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.parentPos != b.parentPos {
			return a.parentPos < b.parentPos
		}
		return a.itemPos < b.itemPos
	})
	return candidates[0].item, nil
}

// orphanCandidates finds pending subtasks whose parent already finished
// (completed or failed); they are still workable but rank last.
func (m *Manager) orphanCandidates(ctx context.Context, listID int64) ([]candidate, error) {
	items, err := m.store.GetListItems(ctx, listID, nil, 0)
	if err != nil {
		return nil, mapStorageError(err)
	}
	byID := make(map[int64]*types.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var out []candidate
	for _, item := range items {
		if item.ParentItemID == nil || item.Status != types.StatusPending {
			continue
		}
		parent := byID[*item.ParentItemID]
		if parent == nil || !parent.Status.IsTerminal() {
			continue
		}
		blocked, err := m.store.IsItemBlocked(ctx, item.ID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		if !blocked {
			out = append(out, candidate{item, priorityOrphan, parent.Position, item.Position})
		}
	}
	return out, nil
}

func (m *Manager) nextPendingSimple(ctx context.Context, listID int64) (*types.Item, error) {
	items, err := m.store.GetListItems(ctx, listID, nil, 0)
	if err != nil {
		return nil, mapStorageError(err)
	}
	byID := make(map[int64]*types.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for _, item := range items {
		if item.Status != types.StatusPending {
			continue
		}
		if item.ParentItemID != nil {
			parent := byID[*item.ParentItemID]
			if parent == nil || parent.Status != types.StatusCompleted {
				continue
			}
		}
		blocked, err := m.store.IsItemBlocked(ctx, item.ID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		if !blocked {
			return item, nil
		}
	}
	return nil, nil
}
