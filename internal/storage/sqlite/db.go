package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Conn so operation helpers
// can run directly on the pool or inside a transaction's dedicated
// connection without duplicating SQL.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Conn)(nil)
)

// marshalJSONMap serializes a metadata-style map for storage.
// Nil maps store as the empty object so scans never see NULL.
func marshalJSONMap(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON map: %w", err)
	}
	return string(data), nil
}

// unmarshalJSONMap parses a stored JSON object column.
// Empty objects come back as nil so value models stay compact.
func unmarshalJSONMap(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON map: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
