package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateItemTimestampColumns adds started_at and completed_at for
// databases created before timestamp tracking. Historical rows keep NULL;
// only transitions after the upgrade are stamped.
func MigrateItemTimestampColumns(db *sql.DB) error {
	for _, col := range []string{"started_at", "completed_at"} {
		var colName string
		err := db.QueryRow(`
			SELECT name FROM pragma_table_info('todo_items')
			WHERE name = ?
		`, col).Scan(&colName)

		if err == sql.ErrNoRows {
			if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE todo_items ADD COLUMN %s DATETIME`, col)); err != nil {
				return fmt.Errorf("failed to add %s column: %w", col, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check %s column: %w", col, err)
		}
	}
	return nil
}
