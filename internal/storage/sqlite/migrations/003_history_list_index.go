package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateHistoryListIndex adds the list_id index used by list-scoped
// history queries and the reports surface.
func MigrateHistoryListIndex(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_todo_history_list
		ON todo_history(list_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to create history list index: %w", err)
	}
	return nil
}
