package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

const listColumns = `id, list_key, title, description, list_type, status, metadata, created_at, updated_at`

// scanList reads one list row. The caller supplies the row from a query
// selecting listColumns in order.
func scanList(row interface{ Scan(...any) error }) (*types.List, error) {
	var list types.List
	var metadata string

	err := row.Scan(
		&list.ID, &list.ListKey, &list.Title, &list.Description,
		&list.ListType, &list.Status, &metadata,
		&list.CreatedAt, &list.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	list.Metadata, err = unmarshalJSONMap(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to parse list metadata: %w", err)
	}
	return &list, nil
}

func insertList(ctx context.Context, q querier, list *types.List) error {
	now := time.Now().UTC()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = now
	}
	list.UpdatedAt = now
	if list.ListType == "" {
		list.ListType = types.ListSequential
	}
	if list.Status == "" {
		list.Status = types.ListActive
	}

	if err := list.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	metadata, err := marshalJSONMap(list.Metadata)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO todo_lists (list_key, title, description, list_type, status, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, list.ListKey, list.Title, list.Description, list.ListType, list.Status, metadata, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		return wrapDBError("insert list", err)
	}

	list.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted list id: %w", err)
	}
	return nil
}

func getListByID(ctx context.Context, q querier, id int64) (*types.List, error) {
	row := q.QueryRowContext(ctx, `SELECT `+listColumns+` FROM todo_lists WHERE id = ?`, id)
	list, err := scanList(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get list %d", id)
	}
	return list, nil
}

func getListByKey(ctx context.Context, q querier, key string) (*types.List, error) {
	row := q.QueryRowContext(ctx, `SELECT `+listColumns+` FROM todo_lists WHERE list_key = ?`, key)
	list, err := scanList(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get list %q", key)
	}
	return list, nil
}

func listAll(ctx context.Context, q querier, includeArchived bool, limit int) ([]*types.List, error) {
	query := `SELECT ` + listColumns + ` FROM todo_lists`
	if !includeArchived {
		query += ` WHERE status != 'archived'`
	}
	query += ` ORDER BY list_key`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError("list all", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []*types.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}

	// Natural ordering of human keys is applied in Go; SQL collation can't
	// compare embedded digit runs as integers.
	types.SortListsNatural(lists)
	if limit > 0 && len(lists) > limit {
		lists = lists[:limit]
	}
	return lists, nil
}

func updateList(ctx context.Context, q querier, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	for key, value := range updates {
		// Prevent SQL injection by validating field names
		if !allowedListUpdateFields[key] {
			return fmt.Errorf("invalid field for update: %s", key)
		}
		if err := validateListFieldUpdate(key, value); err != nil {
			return wrapDBError("validate field update", err)
		}
		if key == "metadata" {
			if m, ok := value.(map[string]any); ok {
				marshaled, err := marshalJSONMap(m)
				if err != nil {
					return err
				}
				value = marshaled
			}
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
		args = append(args, value)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE todo_lists SET %s WHERE id = ?", strings.Join(setClauses, ", ")) // #nosec G201 - safe SQL with controlled column names
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBError("update list", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update list %d: %w", id, ErrNotFound)
	}
	return nil
}

// deleteList removes a list, its items, properties, tag assignments and
// history. Foreign keys cascade the owned rows; history and dependencies
// are cleaned explicitly because they have no FK to the list.
func deleteList(ctx context.Context, q querier, id int64) error {
	// Dependencies referencing the list's items are not covered by the
	// list cascade when the other endpoint lives in another list.
	_, err := q.ExecContext(ctx, `
		DELETE FROM item_dependencies
		WHERE dependent_item_id IN (SELECT id FROM todo_items WHERE list_id = ?)
		   OR required_item_id IN (SELECT id FROM todo_items WHERE list_id = ?)
	`, id, id)
	if err != nil {
		return wrapDBError("delete list dependencies", err)
	}

	_, err = q.ExecContext(ctx, `DELETE FROM todo_history WHERE list_id = ? OR item_id IN (SELECT id FROM todo_items WHERE list_id = ?)`, id, id)
	if err != nil {
		return wrapDBError("delete list history", err)
	}

	// Children reference parents with ON DELETE RESTRICT, so clear the
	// parent pointers before the cascade removes the rows.
	_, err = q.ExecContext(ctx, `UPDATE todo_items SET parent_item_id = NULL WHERE list_id = ?`, id)
	if err != nil {
		return wrapDBError("detach list items", err)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM todo_lists WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete list", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete list %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateList creates a new list
func (s *Store) CreateList(ctx context.Context, list *types.List) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.CreateList(ctx, list)
	})
}

// GetListByID retrieves a list by its surrogate id.
// Returns ErrNotFound if no such list exists.
func (s *Store) GetListByID(ctx context.Context, id int64) (*types.List, error) {
	return getListByID(ctx, s.db, id)
}

// GetListByKey retrieves a list by its external key
func (s *Store) GetListByKey(ctx context.Context, key string) (*types.List, error) {
	return getListByKey(ctx, s.db, key)
}

// ListAll returns lists in natural key order. Archived lists are included
// only when requested. A limit of 0 means no limit.
func (s *Store) ListAll(ctx context.Context, includeArchived bool, limit int) ([]*types.List, error) {
	return listAll(ctx, s.db, includeArchived, limit)
}

// UpdateList applies a whitelisted field patch to a list
func (s *Store) UpdateList(ctx context.Context, id int64, updates map[string]interface{}) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.UpdateList(ctx, id, updates)
	})
}

// DeleteList removes a list and everything it owns
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteList(ctx, id)
	})
}
