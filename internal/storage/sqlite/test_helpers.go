package sqlite

import (
	"context"
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

// testEnv provides a test environment with common setup and helpers.
// Use newTestEnv(t) to create a test environment with automatic cleanup.
type testEnv struct {
	t     *testing.T
	Store *Store
	Ctx   context.Context
}

// newTestEnv creates a new test environment with a configured store.
// The store is automatically cleaned up when the test completes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newTestStore(t, "")
	return &testEnv{
		t:     t,
		Store: store,
		Ctx:   context.Background(),
	}
}

// CreateList creates a test list with the given key and title.
// Returns the created list with ID populated.
func (e *testEnv) CreateList(key, title string) *types.List {
	e.t.Helper()
	list := &types.List{
		ListKey: key,
		Title:   title,
	}
	if err := e.Store.CreateList(e.Ctx, list); err != nil {
		e.t.Fatalf("CreateList(%q) failed: %v", key, err)
	}
	return list
}

// CreateItem creates a root item on the list with defaults.
func (e *testEnv) CreateItem(list *types.List, key, content string) *types.Item {
	e.t.Helper()
	return e.CreateItemWith(list, key, content, nil)
}

// CreateSubitem creates an item under the given parent.
func (e *testEnv) CreateSubitem(list *types.List, parent *types.Item, key, content string) *types.Item {
	e.t.Helper()
	return e.CreateItemWith(list, key, content, &parent.ID)
}

// CreateItemWith creates a test item with an explicit parent.
func (e *testEnv) CreateItemWith(list *types.List, key, content string, parentID *int64) *types.Item {
	e.t.Helper()
	item := &types.Item{
		ListID:       list.ID,
		ItemKey:      key,
		Content:      content,
		ParentItemID: parentID,
	}
	if err := e.Store.CreateItem(e.Ctx, item); err != nil {
		e.t.Fatalf("CreateItem(%q) failed: %v", key, err)
	}
	return item
}

// SetStatus updates an item's status directly through the store.
func (e *testEnv) SetStatus(item *types.Item, status types.ItemStatus) {
	e.t.Helper()
	updates := map[string]interface{}{"status": status}
	if err := e.Store.UpdateItem(e.Ctx, item.ID, updates); err != nil {
		e.t.Fatalf("UpdateItem(%d, status=%s) failed: %v", item.ID, status, err)
	}
	item.Status = status
}

// AddDep adds a blocking dependency (dependent waits on required).
func (e *testEnv) AddDep(dependent, required *types.Item) {
	e.t.Helper()
	e.AddDepType(dependent, required, types.DepRequires)
}

// AddDepType adds a dependency with the specified type.
func (e *testEnv) AddDepType(dependent, required *types.Item, depType types.DependencyType) {
	e.t.Helper()
	dep := &types.ItemDependency{
		DependentItemID: dependent.ID,
		RequiredItemID:  required.ID,
		Type:            depType,
	}
	if err := e.Store.CreateItemDependency(e.Ctx, dep); err != nil {
		e.t.Fatalf("CreateItemDependency(%d -> %d) failed: %v", dependent.ID, required.ID, err)
	}
}

// MustGetItem reloads an item by ID.
func (e *testEnv) MustGetItem(id int64) *types.Item {
	e.t.Helper()
	item, err := e.Store.GetItemByID(e.Ctx, id)
	if err != nil {
		e.t.Fatalf("GetItemByID(%d) failed: %v", id, err)
	}
	return item
}

// newTestStore creates a Store backed by a temp file database.
//
// File-based databases are more reliable than in-memory for connection
// pool scenarios, and t.TempDir gives each test its own isolated file.
// To override, pass a custom dbPath (":memory:" works but shares one
// connection).
func newTestStore(t *testing.T, dbPath string) *Store {
	t.Helper()

	if dbPath == "" {
		dbPath = t.TempDir() + "/test.db"
	}

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	return store
}
