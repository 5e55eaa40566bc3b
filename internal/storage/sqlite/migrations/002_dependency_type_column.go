package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateDependencyTypeColumn adds the dependency_type column for databases
// created before edges were typed. Existing rows default to 'requires',
// which preserves their original blocking behavior.
func MigrateDependencyTypeColumn(db *sql.DB) error {
	var colName string
	err := db.QueryRow(`
		SELECT name FROM pragma_table_info('item_dependencies')
		WHERE name = 'dependency_type'
	`).Scan(&colName)

	if err == sql.ErrNoRows {
		_, err := db.Exec(`ALTER TABLE item_dependencies ADD COLUMN dependency_type TEXT NOT NULL DEFAULT 'requires'`)
		if err != nil {
			return fmt.Errorf("failed to add dependency_type column: %w", err)
		}
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check dependency_type column: %w", err)
	}

	return nil
}
