// Package sqlite - database migrations
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/hipotures/todoit/internal/storage/sqlite/migrations"
)

// Migration represents a single database migration
type Migration struct {
	Name string
	Func func(*sql.DB) error
}

// migrationsList is the ordered list of all migrations to run
// Migrations are run in order during database initialization
var migrationsList = []Migration{
	{"property_search_index", migrations.MigratePropertySearchIndex},
	{"dependency_type_column", migrations.MigrateDependencyTypeColumn},
	{"history_list_index", migrations.MigrateHistoryListIndex},
	{"item_timestamp_columns", migrations.MigrateItemTimestampColumns},
}

// MigrationInfo contains metadata about a migration for inspection
type MigrationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListMigrations returns list of all registered migrations with descriptions
// Note: This returns ALL registered migrations, not just pending ones (all are idempotent)
func ListMigrations() []MigrationInfo {
	result := make([]MigrationInfo, len(migrationsList))
	for i, m := range migrationsList {
		result[i] = MigrationInfo{
			Name:        m.Name,
			Description: getMigrationDescription(m.Name),
		}
	}
	return result
}

// getMigrationDescription returns a human-readable description for a migration
func getMigrationDescription(name string) string {
	descriptions := map[string]string{
		"property_search_index":  "Adds (property_key, property_value) index on item_properties for find-by-property",
		"dependency_type_column": "Adds dependency_type column to item_dependencies for databases created before typed edges",
		"history_list_index":     "Adds list_id index on todo_history for list-scoped history queries",
		"item_timestamp_columns": "Adds started_at and completed_at columns to todo_items for databases created before timestamp tracking",
	}

	if desc, ok := descriptions[name]; ok {
		return desc
	}
	return "Unknown migration"
}

// RunMigrations executes all registered migrations in order.
// Uses EXCLUSIVE transaction to prevent race conditions when multiple processes
// open the database simultaneously.
func RunMigrations(db *sql.DB) error {
	// Acquire EXCLUSIVE lock to serialize migrations across processes.
	// Without this, parallel processes can race on check-then-modify operations
	// (e.g., checking if a column exists then adding it), causing "duplicate column" errors.
	_, err := db.Exec("BEGIN EXCLUSIVE")
	if err != nil {
		return fmt.Errorf("failed to acquire exclusive lock for migrations: %w", err)
	}

	// Ensure we release the lock on any exit path
	committed := false
	defer func() {
		if !committed {
			_, _ = db.Exec("ROLLBACK")
		}
	}()

	for _, migration := range migrationsList {
		if err := migration.Func(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
	}

	if _, err := db.Exec("COMMIT"); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	committed = true

	return nil
}
