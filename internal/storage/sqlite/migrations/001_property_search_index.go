// Package migrations contains forward-only, idempotent schema migrations.
package migrations

import (
	"database/sql"
	"fmt"
)

// MigratePropertySearchIndex adds the composite (property_key, property_value)
// index that backs find-by-property queries. Early databases only had the
// UNIQUE (item_id, property_key) index.
func MigratePropertySearchIndex(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_item_properties_kv
		ON item_properties(property_key, property_value)
	`)
	if err != nil {
		return fmt.Errorf("failed to create property search index: %w", err)
	}
	return nil
}
