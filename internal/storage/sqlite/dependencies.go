package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// insertItemDependency adds a typed edge after a cycle check over the
// blocking (requires/blocks) subgraph. The check runs on the same
// connection as the insert so concurrent writers serialize through the
// transaction's write lock.
func insertItemDependency(ctx context.Context, q querier, dep *types.ItemDependency) error {
	if !dep.Type.IsValid() {
		return fmt.Errorf("invalid dependency type: %s (must be blocks, requires, or related)", dep.Type)
	}
	if dep.DependentItemID == dep.RequiredItemID {
		return fmt.Errorf("item cannot depend on itself")
	}
	if dep.CreatedAt.IsZero() {
		dep.CreatedAt = time.Now().UTC()
	}

	// related edges are informational and cannot create blocking cycles
	if dep.Type.IsBlocking() {
		var cycleExists bool
		err := q.QueryRowContext(ctx, `
			WITH RECURSIVE paths AS (
				SELECT
					dependent_item_id,
					required_item_id,
					1 as depth
				FROM item_dependencies
				WHERE dependent_item_id = ? AND dependency_type IN ('blocks', 'requires')

				UNION ALL

				SELECT
					d.dependent_item_id,
					d.required_item_id,
					p.depth + 1
				FROM item_dependencies d
				JOIN paths p ON d.dependent_item_id = p.required_item_id
				WHERE p.depth < 100 AND d.dependency_type IN ('blocks', 'requires')
			)
			SELECT EXISTS(
				SELECT 1 FROM paths
				WHERE required_item_id = ?
			)
		`, dep.RequiredItemID, dep.DependentItemID).Scan(&cycleExists)
		if err != nil {
			return fmt.Errorf("failed to check for cycles: %w", err)
		}
		if cycleExists {
			return fmt.Errorf("dependency %d -> %d: %w", dep.DependentItemID, dep.RequiredItemID, ErrCycle)
		}
	}

	metadata, err := marshalJSONMap(dep.Metadata)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO item_dependencies (dependent_item_id, required_item_id, dependency_type, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, dep.DependentItemID, dep.RequiredItemID, dep.Type, metadata, dep.CreatedAt)
	if err != nil {
		return wrapDBError("insert dependency", err)
	}

	dep.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted dependency id: %w", err)
	}
	return nil
}

func deleteItemDependency(ctx context.Context, q querier, dependentID, requiredID int64) error {
	result, err := q.ExecContext(ctx, `
		DELETE FROM item_dependencies WHERE dependent_item_id = ? AND required_item_id = ?
	`, dependentID, requiredID)
	if err != nil {
		return wrapDBError("delete dependency", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("dependency %d -> %d: %w", dependentID, requiredID, ErrNotFound)
	}
	return nil
}

func scanDependencies(ctx context.Context, q querier, query string, args ...any) ([]*types.ItemDependency, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("query dependencies", err)
	}
	defer func() { _ = rows.Close() }()

	var deps []*types.ItemDependency
	for rows.Next() {
		var dep types.ItemDependency
		var metadata string
		if err := rows.Scan(&dep.ID, &dep.DependentItemID, &dep.RequiredItemID, &dep.Type, &metadata, &dep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		dep.Metadata, err = unmarshalJSONMap(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to parse dependency metadata: %w", err)
		}
		deps = append(deps, &dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependencies: %w", err)
	}
	return deps, nil
}

// CreateItemDependency inserts an edge, rejecting blocking cycles
func (s *Store) CreateItemDependency(ctx context.Context, dep *types.ItemDependency) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.CreateItemDependency(ctx, dep)
	})
}

// DeleteItemDependency removes the edge between two items
func (s *Store) DeleteItemDependency(ctx context.Context, dependentID, requiredID int64) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteItemDependency(ctx, dependentID, requiredID)
	})
}

// GetItemDependencies returns every edge touching an item, outgoing and
// incoming
func (s *Store) GetItemDependencies(ctx context.Context, itemID int64) ([]*types.ItemDependency, error) {
	return scanDependencies(ctx, s.db, `
		SELECT id, dependent_item_id, required_item_id, dependency_type, metadata, created_at
		FROM item_dependencies
		WHERE dependent_item_id = ? OR required_item_id = ?
		ORDER BY id
	`, itemID, itemID)
}

// GetItemBlockers returns required items that are not yet completed.
// Only blocking edge types count; related edges never block.
func (s *Store) GetItemBlockers(ctx context.Context, itemID int64) ([]*types.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedItemColumns("i")+`
		FROM todo_items i
		JOIN item_dependencies d ON d.required_item_id = i.id
		WHERE d.dependent_item_id = ?
		  AND d.dependency_type IN ('blocks', 'requires')
		  AND i.status != 'completed'
	`, itemID)
	if err != nil {
		return nil, wrapDBError("get item blockers", err)
	}

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	types.SortItemsNatural(items)
	return items, nil
}

// IsItemBlocked reports whether at least one blocker exists
func (s *Store) IsItemBlocked(ctx context.Context, itemID int64) (bool, error) {
	var blocked bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM item_dependencies d
			JOIN todo_items i ON i.id = d.required_item_id
			WHERE d.dependent_item_id = ?
			  AND d.dependency_type IN ('blocks', 'requires')
			  AND i.status != 'completed'
		)
	`, itemID).Scan(&blocked)
	if err != nil {
		return false, wrapDBError("check item blocked", err)
	}
	return blocked, nil
}

// ListDependenciesForList returns every edge whose dependent side lives in
// the given list
func (s *Store) ListDependenciesForList(ctx context.Context, listID int64) ([]*types.ItemDependency, error) {
	return scanDependencies(ctx, s.db, `
		SELECT d.id, d.dependent_item_id, d.required_item_id, d.dependency_type, d.metadata, d.created_at
		FROM item_dependencies d
		JOIN todo_items i ON i.id = d.dependent_item_id
		WHERE i.list_id = ?
		ORDER BY d.id
	`, listID)
}
