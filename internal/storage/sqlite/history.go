package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hipotures/todoit/internal/types"
)

// insertHistory appends one entry. History is append-only; there is no
// update or single-row delete path anywhere in this package.
func insertHistory(ctx context.Context, q querier, entry *types.HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var oldValue, newValue *string
	if entry.OldValue != nil {
		data, err := json.Marshal(entry.OldValue)
		if err != nil {
			return fmt.Errorf("failed to marshal old value: %w", err)
		}
		s := string(data)
		oldValue = &s
	}
	if entry.NewValue != nil {
		data, err := json.Marshal(entry.NewValue)
		if err != nil {
			return fmt.Errorf("failed to marshal new value: %w", err)
		}
		s := string(data)
		newValue = &s
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO todo_history (item_id, list_id, action, old_value, new_value, user_context, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ItemID, entry.ListID, entry.Action, oldValue, newValue, entry.UserContext, entry.Timestamp)
	if err != nil {
		return wrapDBError("insert history", err)
	}

	entry.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted history id: %w", err)
	}
	return nil
}

func scanHistory(rows *sql.Rows) ([]*types.HistoryEntry, error) {
	defer func() { _ = rows.Close() }()

	var entries []*types.HistoryEntry
	for rows.Next() {
		var entry types.HistoryEntry
		var itemID, listID sql.NullInt64
		var oldValue, newValue sql.NullString

		err := rows.Scan(&entry.ID, &itemID, &listID, &entry.Action, &oldValue, &newValue, &entry.UserContext, &entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if itemID.Valid {
			entry.ItemID = &itemID.Int64
		}
		if listID.Valid {
			entry.ListID = &listID.Int64
		}
		if oldValue.Valid && oldValue.String != "" {
			if err := json.Unmarshal([]byte(oldValue.String), &entry.OldValue); err != nil {
				return nil, fmt.Errorf("failed to parse old value: %w", err)
			}
		}
		if newValue.Valid && newValue.String != "" {
			if err := json.Unmarshal([]byte(newValue.String), &entry.NewValue); err != nil {
				return nil, fmt.Errorf("failed to parse new value: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return entries, nil
}

const historyColumns = `id, item_id, list_id, action, old_value, new_value, user_context, timestamp`

// RecordHistory appends a history entry outside any caller transaction
func (s *Store) RecordHistory(ctx context.Context, entry *types.HistoryEntry) error {
	return insertHistory(ctx, s.db, entry)
}

// GetItemHistory returns an item's entries, newest first
func (s *Store) GetItemHistory(ctx context.Context, itemID int64, limit int) ([]*types.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM todo_history WHERE item_id = ? ORDER BY timestamp DESC, id DESC`
	args := []any{itemID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("get item history", err)
	}
	return scanHistory(rows)
}

// GetListHistory returns entries recorded against a list or any of its
// items, newest first
func (s *Store) GetListHistory(ctx context.Context, listID int64, limit int) ([]*types.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM todo_history WHERE list_id = ? ORDER BY timestamp DESC, id DESC`
	args := []any{listID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("get list history", err)
	}
	return scanHistory(rows)
}

// GetRecentHistory returns the newest entries across all lists
func (s *Store) GetRecentHistory(ctx context.Context, limit int) ([]*types.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+historyColumns+` FROM todo_history ORDER BY timestamp DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapDBError("get recent history", err)
	}
	return scanHistory(rows)
}
