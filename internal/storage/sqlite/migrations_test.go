package sqlite

import (
	"testing"
)

func TestListMigrations(t *testing.T) {
	infos := ListMigrations()
	if len(infos) == 0 {
		t.Fatal("expected at least one registered migration")
	}
	seen := make(map[string]bool)
	for _, info := range infos {
		if info.Name == "" {
			t.Error("migration with empty name")
		}
		if info.Description == "" {
			t.Errorf("migration %s has no description", info.Name)
		}
		if seen[info.Name] {
			t.Errorf("duplicate migration name: %s", info.Name)
		}
		seen[info.Name] = true
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	store := newTestStore(t, "")

	// New already ran them once; a second pass must not fail.
	if err := RunMigrations(store.UnderlyingDB()); err != nil {
		t.Fatalf("re-running migrations failed: %v", err)
	}
}

func TestMigrationColumnsPresent(t *testing.T) {
	store := newTestStore(t, "")

	// dependency_type (002) and the item timestamps (004) must exist
	// whether they came from the base schema or a migration.
	rows, err := store.UnderlyingDB().Query(`SELECT name FROM pragma_table_info('todo_items')`)
	if err != nil {
		t.Fatalf("pragma_table_info failed: %v", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}

	for _, want := range []string{"started_at", "completed_at", "status", "position"} {
		if !cols[want] {
			t.Errorf("todo_items missing column %s", want)
		}
	}
}
