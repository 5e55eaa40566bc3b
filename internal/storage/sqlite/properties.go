package sqlite

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hipotures/todoit/internal/storage"
	"github.com/hipotures/todoit/internal/types"
)

// setProperty upserts one (owner, key) row in the given property table.
// The table name comes from a fixed caller-side pair, never user input.
func setProperty(ctx context.Context, q querier, table, ownerCol string, ownerID int64, key, value string) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, property_key, property_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(%s, property_key) DO UPDATE SET property_value = excluded.property_value, updated_at = excluded.updated_at
	`, table, ownerCol, ownerCol) // #nosec G201 - table and column are compile-time constants
	_, err := q.ExecContext(ctx, query, ownerID, key, value, now, now)
	if err != nil {
		return wrapDBError("set property", err)
	}
	return nil
}

func getProperty(ctx context.Context, q querier, table, ownerCol string, ownerID int64, key string) (string, error) {
	var value string
	query := fmt.Sprintf(`SELECT property_value FROM %s WHERE %s = ? AND property_key = ?`, table, ownerCol) // #nosec G201
	err := q.QueryRowContext(ctx, query, ownerID, key).Scan(&value)
	if err != nil {
		return "", wrapDBErrorf(err, "get property %q", key)
	}
	return value, nil
}

func getProperties(ctx context.Context, q querier, table, ownerCol string, ownerID int64) ([]*types.Property, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, property_key, property_value, created_at, updated_at
		FROM %s WHERE %s = ?
	`, ownerCol, table, ownerCol) // #nosec G201
	rows, err := q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, wrapDBError("get properties", err)
	}
	defer func() { _ = rows.Close() }()

	var props []*types.Property
	for rows.Next() {
		var p types.Property
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Key, &p.Value, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props = append(props, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return props, nil
}

func deleteProperty(ctx context.Context, q querier, table, ownerCol string, ownerID int64, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND property_key = ?`, table, ownerCol) // #nosec G201
	result, err := q.ExecContext(ctx, query, ownerID, key)
	if err != nil {
		return wrapDBError("delete property", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete property %q: %w", key, ErrNotFound)
	}
	return nil
}

// SetListProperty upserts a property on a list
func (s *Store) SetListProperty(ctx context.Context, listID int64, key, value string) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.SetListProperty(ctx, listID, key, value)
	})
}

// GetListProperty returns one list property value
func (s *Store) GetListProperty(ctx context.Context, listID int64, key string) (string, error) {
	return getProperty(ctx, s.db, "list_properties", "list_id", listID, key)
}

// GetListProperties returns all of a list's properties sorted by key
func (s *Store) GetListProperties(ctx context.Context, listID int64) ([]*types.Property, error) {
	return getProperties(ctx, s.db, "list_properties", "list_id", listID)
}

// DeleteListProperty removes one list property
func (s *Store) DeleteListProperty(ctx context.Context, listID int64, key string) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteListProperty(ctx, listID, key)
	})
}

// SetItemProperty upserts a property on an item
func (s *Store) SetItemProperty(ctx context.Context, itemID int64, key, value string) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.SetItemProperty(ctx, itemID, key, value)
	})
}

// GetItemProperty returns one item property value
func (s *Store) GetItemProperty(ctx context.Context, itemID int64, key string) (string, error) {
	return getProperty(ctx, s.db, "item_properties", "item_id", itemID, key)
}

// GetItemProperties returns all of an item's properties sorted by key
func (s *Store) GetItemProperties(ctx context.Context, itemID int64) ([]*types.Property, error) {
	return getProperties(ctx, s.db, "item_properties", "item_id", itemID)
}

// DeleteItemProperty removes one item property
func (s *Store) DeleteItemProperty(ctx context.Context, itemID int64, key string) error {
	return s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		return tx.DeleteItemProperty(ctx, itemID, key)
	})
}

// FindItemsByProperty returns items with an exact property match in
// natural key order. A nil listID searches every list.
func (s *Store) FindItemsByProperty(ctx context.Context, listID *int64, key, value string, limit int) ([]*types.Item, error) {
	var args []any
	query := `
		SELECT ` + prefixedItemColumns("i") + `
		FROM todo_items i
		JOIN item_properties p ON p.item_id = i.id
		WHERE p.property_key = ? AND p.property_value = ?
	`
	args = append(args, key, value)
	if listID != nil {
		query += ` AND i.list_id = ?`
		args = append(args, *listID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("find items by property", err)
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

// prefixedItemColumns qualifies itemColumns with a table alias for joins
func prefixedItemColumns(alias string) string {
	cols := ""
	for i, c := range []string{"id", "list_id", "item_key", "content", "position", "status", "completion_states", "parent_item_id", "metadata", "started_at", "completed_at", "created_at", "updated_at"} {
		if i > 0 {
			cols += ", "
		}
		cols += alias + "." + c
	}
	return cols
}
