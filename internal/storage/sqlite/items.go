package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

const itemColumns = `id, list_id, item_key, content, position, status, completion_states, parent_item_id, metadata, started_at, completed_at, created_at, updated_at`

// scanItem reads one item row from a query selecting itemColumns in order
func scanItem(row interface{ Scan(...any) error }) (*types.Item, error) {
	var item types.Item
	var states, metadata string
	var parentID sql.NullInt64
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&item.ID, &item.ListID, &item.ItemKey, &item.Content,
		&item.Position, &item.Status, &states, &parentID, &metadata,
		&startedAt, &completedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		item.ParentItemID = &parentID.Int64
	}
	if startedAt.Valid {
		t := startedAt.Time
		item.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}

	item.CompletionStates, err = unmarshalJSONMap(states)
	if err != nil {
		return nil, fmt.Errorf("failed to parse completion states: %w", err)
	}
	item.Metadata, err = unmarshalJSONMap(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item metadata: %w", err)
	}
	return &item, nil
}

// scanItems collects all rows of an item query
func scanItems(rows *sql.Rows) ([]*types.Item, error) {
	defer func() { _ = rows.Close() }()

	var items []*types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

func insertItem(ctx context.Context, q querier, item *types.Item) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = types.StatusPending
	}
	if item.Position == 0 {
		pos, err := getNextPosition(ctx, q, item.ListID, item.ParentItemID)
		if err != nil {
			return err
		}
		item.Position = pos
	}

	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	states, err := marshalJSONMap(item.CompletionStates)
	if err != nil {
		return err
	}
	metadata, err := marshalJSONMap(item.Metadata)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO todo_items (list_id, item_key, content, position, status, completion_states, parent_item_id, metadata, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ListID, item.ItemKey, item.Content, item.Position, item.Status,
		states, item.ParentItemID, metadata, item.StartedAt, item.CompletedAt,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return wrapDBError("insert item", err)
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted item id: %w", err)
	}
	return nil
}

func getItemByID(ctx context.Context, q querier, id int64) (*types.Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM todo_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get item %d", id)
	}
	return item, nil
}

// getItemByKey finds an item by key anywhere in the list. When subitem keys
// repeat across parents this returns the root-most, lowest-positioned match;
// use getItemByKeyAndParent for a precise lookup.
func getItemByKey(ctx context.Context, q querier, listID int64, key string) (*types.Item, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM todo_items
		WHERE list_id = ? AND item_key = ?
		ORDER BY parent_item_id IS NOT NULL, position
		LIMIT 1
	`, listID, key)
	item, err := scanItem(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get item %q", key)
	}
	return item, nil
}

func getItemByKeyAndParent(ctx context.Context, q querier, listID int64, key string, parentID *int64) (*types.Item, error) {
	var row *sql.Row
	if parentID == nil {
		row = q.QueryRowContext(ctx, `
			SELECT `+itemColumns+` FROM todo_items
			WHERE list_id = ? AND item_key = ? AND parent_item_id IS NULL
		`, listID, key)
	} else {
		row = q.QueryRowContext(ctx, `
			SELECT `+itemColumns+` FROM todo_items
			WHERE list_id = ? AND item_key = ? AND parent_item_id = ?
		`, listID, key, *parentID)
	}
	item, err := scanItem(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get item %q", key)
	}
	return item, nil
}

func updateItem(ctx context.Context, q querier, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	for key, value := range updates {
		// Prevent SQL injection by validating field names
		if !allowedItemUpdateFields[key] {
			return fmt.Errorf("invalid field for update: %s", key)
		}
		if err := validateItemFieldUpdate(key, value); err != nil {
			return wrapDBError("validate field update", err)
		}
		if key == "completion_states" || key == "metadata" {
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

	query := fmt.Sprintf("UPDATE todo_items SET %s WHERE id = ?", strings.Join(setClauses, ", ")) // #nosec G201 - safe SQL with controlled column names
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBError("update item", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}
	return nil
}

// deleteItem removes an item together with its properties, its history and
// any dependency edge touching it. Properties cascade via FK; the rest have
// no FK to the item and are cleaned explicitly.
func deleteItem(ctx context.Context, q querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM item_dependencies WHERE dependent_item_id = ? OR required_item_id = ?`, id, id)
	if err != nil {
		return wrapDBError("delete item dependencies", err)
	}

	_, err = q.ExecContext(ctx, `DELETE FROM todo_history WHERE item_id = ?`, id)
	if err != nil {
		return wrapDBError("delete item history", err)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM todo_items WHERE id = ?`, id)
	if err != nil {
		return wrapDBError("delete item", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	return nil
}

func getNextPosition(ctx context.Context, q querier, listID int64, parentID *int64) (int, error) {
	var max sql.NullInt64
	var err error
	if parentID == nil {
		err = q.QueryRowContext(ctx, `
			SELECT MAX(position) FROM todo_items WHERE list_id = ? AND parent_item_id IS NULL
		`, listID).Scan(&max)
	} else {
		err = q.QueryRowContext(ctx, `
			SELECT MAX(position) FROM todo_items WHERE list_id = ? AND parent_item_id = ?
		`, listID, *parentID).Scan(&max)
	}
	if err != nil {
		return 0, wrapDBError("get next position", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func findItemsByStatus(ctx context.Context, q querier, listID int64, status types.ItemStatus, limit int) ([]*types.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM todo_items
		WHERE list_id = ? AND status = ?
	`, listID, status)
	if err != nil {
		return nil, wrapDBError("find items by status", err)
	}

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	types.SortItemsNatural(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// CreateItem creates a new item. Position defaults to the next free slot
// in the item's sibling scope.
func (s *Store) CreateItem(ctx context.Context, item *types.Item) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.CreateItem(ctx, item)
	})
}

// GetItemByID retrieves an item by its surrogate id
func (s *Store) GetItemByID(ctx context.Context, id int64) (*types.Item, error) {
	return getItemByID(ctx, s.db, id)
}

// GetItemByKey retrieves an item by key anywhere in the list
func (s *Store) GetItemByKey(ctx context.Context, listID int64, key string) (*types.Item, error) {
	return getItemByKey(ctx, s.db, listID, key)
}

// GetItemByKeyAndParent retrieves an item by key within a parent scope.
// This is the only precise lookup when subitem keys repeat across parents.
func (s *Store) GetItemByKeyAndParent(ctx context.Context, listID int64, key string, parentID *int64) (*types.Item, error) {
	return getItemByKeyAndParent(ctx, s.db, listID, key, parentID)
}

// UpdateItem applies a whitelisted field patch to an item
func (s *Store) UpdateItem(ctx context.Context, id int64, updates map[string]interface{}) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.UpdateItem(ctx, id, updates)
	})
}

// DeleteItem removes an item and everything referencing it
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteItem(ctx, id)
	})
}

// GetNextPosition returns max sibling position + 1
func (s *Store) GetNextPosition(ctx context.Context, listID int64, parentID *int64) (int, error) {
	return getNextPosition(ctx, s.db, listID, parentID)
}

// FindItemsByStatus returns a list's items with the given status in
// natural key order
func (s *Store) FindItemsByStatus(ctx context.Context, listID int64, status types.ItemStatus, limit int) ([]*types.Item, error) {
	return findItemsByStatus(ctx, s.db, listID, status, limit)
}
