package manager

import (
	"context"
	"fmt"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// ItemRef addresses an item across lists
type ItemRef struct {
	ListKey string `json:"list_key"`
	ItemKey string `json:"item_key"`
}

func (r ItemRef) String() string {
	return r.ListKey + ":" + r.ItemKey
}

// AddItemDependency records that dependent needs required before it can
// start or complete (for blocks/requires edges; related edges are
// informational). Both endpoints' lists must be writable under the
// access scope. An edge closing a blocking cycle is rejected.
func (m *Manager) AddItemDependency(ctx context.Context, dependent, required ItemRef, depType types.DependencyType, metadata map[string]any) (*types.ItemDependency, error) {
	if depType == "" {
		depType = types.DepRequires
	}
	if !depType.IsValid() {
		return nil, invalidf("invalid dependency type %q", depType)
	}

	dep := &types.ItemDependency{Type: depType, Metadata: metadata}
	err := m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		depItem, err := m.resolveRefWrite(ctx, tx, dependent)
		if err != nil {
			return err
		}
		reqItem, err := m.resolveRefWrite(ctx, tx, required)
		if err != nil {
			return err
		}
		if depItem.ID == reqItem.ID {
			return invalidf("item %s cannot depend on itself", dependent)
		}

		dep.DependentItemID = depItem.ID
		dep.RequiredItemID = reqItem.ID
		if err := tx.CreateItemDependency(ctx, dep); err != nil {
			return fmt.Errorf("dependency %s -> %s: %w", dependent, required, mapStorageError(err))
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID: &depItem.ID,
			ListID: &depItem.ListID,
			Action: types.ActionDepAdded,
			NewValue: map[string]any{
				"required_list":   required.ListKey,
				"required_item":   required.ItemKey,
				"dependency_type": string(depType),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return dep, nil
}

// RemoveItemDependency deletes the edge between two items
func (m *Manager) RemoveItemDependency(ctx context.Context, dependent, required ItemRef) error {
	return m.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		depItem, err := m.resolveRefWrite(ctx, tx, dependent)
		if err != nil {
			return err
		}
		reqItem, err := m.resolveRefWrite(ctx, tx, required)
		if err != nil {
			return err
		}
		if err := tx.DeleteItemDependency(ctx, depItem.ID, reqItem.ID); err != nil {
			return fmt.Errorf("dependency %s -> %s: %w", dependent, required, mapStorageError(err))
		}
		return m.record(ctx, tx, &types.HistoryEntry{
			ItemID: &depItem.ID,
			ListID: &depItem.ListID,
			Action: types.ActionDepRemoved,
			OldValue: map[string]any{
				"required_list": required.ListKey,
				"required_item": required.ItemKey,
			},
		})
	})
}

// resolveRefWrite resolves a cross-list item reference for a mutation
func (m *Manager) resolveRefWrite(ctx context.Context, tx storage.Transaction, ref ItemRef) (*types.Item, error) {
	list, err := m.requireListWrite(ctx, tx, ref.ListKey)
	if err != nil {
		return nil, err
	}
	return resolveItem(ctx, tx, list.ID, ref.ItemKey, "")
}

// resolveRefRead resolves a cross-list item reference for a read
func (m *Manager) resolveRefRead(ctx context.Context, ref ItemRef) (*types.Item, error) {
	list, err := m.requireListRead(ctx, ref.ListKey)
	if err != nil {
		return nil, err
	}
	return resolveItem(ctx, m.store, list.ID, ref.ItemKey, "")
}

// GetItemDependencies returns every edge touching an item
func (m *Manager) GetItemDependencies(ctx context.Context, listKey, itemKey string) ([]*types.ItemDependency, error) {
	item, err := m.resolveRefRead(ctx, ItemRef{listKey, itemKey})
	if err != nil {
		return nil, err
	}
	deps, err := m.store.GetItemDependencies(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return deps, nil
}

// GetItemBlockers returns the required items that are not yet completed
func (m *Manager) GetItemBlockers(ctx context.Context, listKey, itemKey string) ([]*types.Item, error) {
	item, err := m.resolveRefRead(ctx, ItemRef{listKey, itemKey})
	if err != nil {
		return nil, err
	}
	blockers, err := m.store.GetItemBlockers(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return blockers, nil
}

// IsItemBlocked reports whether the item has at least one blocker
func (m *Manager) IsItemBlocked(ctx context.Context, listKey, itemKey string) (bool, error) {
	item, err := m.resolveRefRead(ctx, ItemRef{listKey, itemKey})
	if err != nil {
		return false, err
	}
	blocked, err := m.store.IsItemBlocked(ctx, item.ID)
	if err != nil {
		return false, mapStorageError(err)
	}
	return blocked, nil
}

// Readiness explains whether an item can start or complete
type Readiness struct {
	Ready    bool          `json:"ready"`
	Reason   string        `json:"reason,omitempty"`
	Blockers []*types.Item `json:"blockers,omitempty"`
}

// CanStartItem reports whether an item is startable: no incomplete
// blockers and no pending subitems of its own
func (m *Manager) CanStartItem(ctx context.Context, listKey, itemKey string) (*Readiness, error) {
	item, err := m.resolveRefRead(ctx, ItemRef{listKey, itemKey})
	if err != nil {
		return nil, err
	}
	blockers, err := m.store.GetItemBlockers(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if len(blockers) > 0 {
		return &Readiness{
			Reason:   fmt.Sprintf("blocked by %d incomplete items", len(blockers)),
			Blockers: blockers,
		}, nil
	}
	pending, err := m.store.HasPendingChildren(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if pending {
		return &Readiness{Reason: "has unfinished subitems"}, nil
	}
	return &Readiness{Ready: true}, nil
}

// CanCompleteItem reports whether an item may be completed. This is
// purely a function of subitem completion; blockers are a start-time
// concern.
func (m *Manager) CanCompleteItem(ctx context.Context, listKey, itemKey string) (*Readiness, error) {
	item, err := m.resolveRefRead(ctx, ItemRef{listKey, itemKey})
	if err != nil {
		return nil, err
	}
	summary, err := m.store.GetChildrenStatusSummary(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if summary.Total > 0 && summary.Completed < summary.Total {
		return &Readiness{
			Reason: fmt.Sprintf("%d of %d subitems incomplete", summary.Total-summary.Completed, summary.Total),
		}, nil
	}
	return &Readiness{Ready: true}, nil
}

// DependencyEdge pairs a dependency with its resolved endpoints.
// Endpoints may live in different lists, so each carries a full
// list:item ref alongside the item.
type DependencyEdge struct {
	Dependent    *types.Item          `json:"dependent"`
	DependentRef ItemRef              `json:"dependent_ref"`
	Required     *types.Item          `json:"required"`
	RequiredRef  ItemRef              `json:"required_ref"`
	Type         types.DependencyType `json:"dependency_type"`
}

// GetListDependencyEdges returns the resolved dependency edges whose
// dependent side lives in the given list
func (m *Manager) GetListDependencyEdges(ctx context.Context, listKey string) ([]DependencyEdge, error) {
	list, err := m.requireListRead(ctx, listKey)
	if err != nil {
		return nil, err
	}
	deps, err := m.store.ListDependenciesForList(ctx, list.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return m.resolveEdges(ctx, deps)
}

// GetItemEdges returns the resolved edges touching one item, in both
// directions
func (m *Manager) GetItemEdges(ctx context.Context, listKey, itemKey string) ([]DependencyEdge, error) {
	item, err := m.resolveRefRead(ctx, ItemRef{listKey, itemKey})
	if err != nil {
		return nil, err
	}
	deps, err := m.store.GetItemDependencies(ctx, item.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return m.resolveEdges(ctx, deps)
}

func (m *Manager) resolveEdges(ctx context.Context, deps []*types.ItemDependency) ([]DependencyEdge, error) {
	edges := make([]DependencyEdge, 0, len(deps))
	listKeys := map[int64]string{}
	refOf := func(item *types.Item) (ItemRef, error) {
		key, ok := listKeys[item.ListID]
		if !ok {
			list, err := m.store.GetListByID(ctx, item.ListID)
			if err != nil {
				return ItemRef{}, mapStorageError(err)
			}
			key = list.ListKey
			listKeys[item.ListID] = key
		}
		return ItemRef{ListKey: key, ItemKey: item.ItemKey}, nil
	}
	for _, d := range deps {
		dependent, err := m.store.GetItemByID(ctx, d.DependentItemID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		required, err := m.store.GetItemByID(ctx, d.RequiredItemID)
		if err != nil {
			return nil, mapStorageError(err)
		}
		dependentRef, err := refOf(dependent)
		if err != nil {
			return nil, err
		}
		requiredRef, err := refOf(required)
		if err != nil {
			return nil, err
		}
		edges = append(edges, DependencyEdge{
			Dependent:    dependent,
			DependentRef: dependentRef,
			Required:     required,
			RequiredRef:  requiredRef,
			Type:         d.Type,
		})
	}
	return edges, nil
}
