package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hipotures/todoit/internal/types"
)

func TestNewStoreCreatesSchema(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "todo.db")
	ctx := context.Background()

	store, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	var count int
	err = store.UnderlyingDB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN
		('todo_lists', 'todo_items', 'list_properties', 'item_properties',
		 'list_tags', 'list_tag_assignments', 'item_dependencies', 'todo_history', 'metadata')
	`).Scan(&count)
	if err != nil {
		t.Fatalf("querying sqlite_master failed: %v", err)
	}
	if count != 9 {
		t.Errorf("expected 9 tables, found %d", count)
	}

	if store.Path() == "" {
		t.Error("Path should return the database location")
	}
}

func TestStoreCloseIdempotent(t *testing.T) {
	store := newTestStore(t, t.TempDir()+"/close.db")
	if err := store.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got: %v", err)
	}
}

func TestCreateList(t *testing.T) {
	env := newTestEnv(t)

	list := &types.List{
		ListKey:     "backlog",
		Title:       "Product backlog",
		Description: "Everything we might do",
	}
	if err := env.Store.CreateList(env.Ctx, list); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	if list.ID == 0 {
		t.Error("list ID should be set")
	}
	if list.Status != types.ListActive {
		t.Errorf("default status = %s, want active", list.Status)
	}
	if list.ListType != types.ListSequential {
		t.Errorf("default list type = %s, want sequential", list.ListType)
	}
	if !list.CreatedAt.After(time.Time{}) {
		t.Error("CreatedAt should be set")
	}
}

func TestCreateListDuplicateKey(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")

	err := env.Store.CreateList(env.Ctx, &types.List{ListKey: "work", Title: "Other"})
	if err == nil {
		t.Fatal("expected error for duplicate list key")
	}
	if !IsConflict(err) {
		t.Errorf("expected conflict error, got: %v", err)
	}
}

func TestGetListByKey(t *testing.T) {
	env := newTestEnv(t)
	created := env.CreateList("project-x", "Project X")

	got, err := env.Store.GetListByKey(env.Ctx, "project-x")
	if err != nil {
		t.Fatalf("GetListByKey failed: %v", err)
	}
	if got.ID != created.ID || got.Title != "Project X" {
		t.Errorf("got %+v, want id=%d title=%q", got, created.ID, "Project X")
	}

	_, err = env.Store.GetListByKey(env.Ctx, "missing")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got: %v", err)
	}
}

func TestUpdateList(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("notes", "Notes")

	updates := map[string]interface{}{
		"title":  "Renamed notes",
		"status": types.ListArchived,
	}
	if err := env.Store.UpdateList(env.Ctx, list.ID, updates); err != nil {
		t.Fatalf("UpdateList failed: %v", err)
	}

	got, err := env.Store.GetListByID(env.Ctx, list.ID)
	if err != nil {
		t.Fatalf("GetListByID failed: %v", err)
	}
	if got.Title != "Renamed notes" {
		t.Errorf("title = %q, want %q", got.Title, "Renamed notes")
	}
	if got.Status != types.ListArchived {
		t.Errorf("status = %s, want archived", got.Status)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("UpdatedAt should advance past CreatedAt")
	}
}

func TestUpdateListRejectsUnknownField(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("guard", "Guard")

	err := env.Store.UpdateList(env.Ctx, list.ID, map[string]interface{}{
		"list_key": "sneaky",
	})
	if err == nil {
		t.Fatal("expected error for non-updatable field")
	}
}

func TestListAllNaturalOrder(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("list10", "Ten")
	env.CreateList("list2", "Two")
	env.CreateList("list1", "One")

	lists, err := env.Store.ListAll(env.Ctx, false, 0)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	var keys []string
	for _, l := range lists {
		keys = append(keys, l.ListKey)
	}
	want := []string{"list1", "list2", "list10"}
	if len(keys) != len(want) {
		t.Fatalf("got %d lists, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestListAllExcludesArchived(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("alive", "Alive")
	archived := env.CreateList("done", "Done")
	if err := env.Store.UpdateList(env.Ctx, archived.ID, map[string]interface{}{
		"status": types.ListArchived,
	}); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	active, err := env.Store.ListAll(env.Ctx, false, 0)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(active) != 1 || active[0].ListKey != "alive" {
		t.Errorf("active-only ListAll returned %d lists", len(active))
	}

	all, err := env.Store.ListAll(env.Ctx, true, 0)
	if err != nil {
		t.Fatalf("ListAll(includeArchived) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("full ListAll returned %d lists, want 2", len(all))
	}
}

func TestDeleteListCleansUp(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("doomed", "Doomed")
	parent := env.CreateItem(list, "root", "Root task")
	env.CreateSubitem(list, parent, "child", "Child task")

	other := env.CreateList("other", "Other")
	otherItem := env.CreateItem(other, "watcher", "Waits on doomed work")
	env.AddDep(otherItem, parent)

	if err := env.Store.DeleteList(env.Ctx, list.ID); err != nil {
		t.Fatalf("DeleteList failed: %v", err)
	}

	if _, err := env.Store.GetListByID(env.Ctx, list.ID); !IsNotFound(err) {
		t.Errorf("list should be gone, got: %v", err)
	}
	if _, err := env.Store.GetItemByID(env.Ctx, parent.ID); !IsNotFound(err) {
		t.Errorf("items should cascade, got: %v", err)
	}

	deps, err := env.Store.GetItemDependencies(env.Ctx, otherItem.ID)
	if err != nil {
		t.Fatalf("GetItemDependencies failed: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("cross-list dependencies should be cleaned up, found %d", len(deps))
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	if err := env.Store.SetMetadata(env.Ctx, "version", "1.0.0"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := env.Store.SetMetadata(env.Ctx, "version", "1.1.0"); err != nil {
		t.Fatalf("SetMetadata upsert failed: %v", err)
	}

	got, err := env.Store.GetMetadata(env.Ctx, "version")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if got != "1.1.0" {
		t.Errorf("version = %q, want %q", got, "1.1.0")
	}

	missing, err := env.Store.GetMetadata(env.Ctx, "absent")
	if err != nil {
		t.Fatalf("GetMetadata(absent) failed: %v", err)
	}
	if missing != "" {
		t.Errorf("missing key should return empty string, got %q", missing)
	}
}
