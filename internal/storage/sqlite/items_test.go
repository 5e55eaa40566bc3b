package sqlite

import (
	"strings"
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

func TestCreateItemDefaults(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")

	item := env.CreateItem(list, "first", "First task")

	if item.ID == 0 {
		t.Error("item ID should be set")
	}
	if item.Status != types.StatusPending {
		t.Errorf("default status = %s, want pending", item.Status)
	}
	if item.Position != 1 {
		t.Errorf("first item position = %d, want 1", item.Position)
	}

	second := env.CreateItem(list, "second", "Second task")
	if second.Position != 2 {
		t.Errorf("second item position = %d, want 2", second.Position)
	}
}

func TestCreateItemValidation(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")

	tests := []struct {
		name string
		item *types.Item
	}{
		{"missing content", &types.Item{ListID: list.ID, ItemKey: "a"}},
		{"missing key", &types.Item{ListID: list.ID, Content: "task"}},
		{"bad key chars", &types.Item{ListID: list.ID, ItemKey: "has space", Content: "task"}},
		{"content too long", &types.Item{ListID: list.ID, ItemKey: "big", Content: strings.Repeat("x", 1001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := env.Store.CreateItem(env.Ctx, tt.item); err == nil {
				t.Errorf("CreateItem should reject %s", tt.name)
			}
		})
	}
}

func TestSiblingKeysUnique(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	env.CreateItem(list, "task", "Original")

	err := env.Store.CreateItem(env.Ctx, &types.Item{
		ListID: list.ID, ItemKey: "task", Content: "Duplicate",
	})
	if !IsConflict(err) {
		t.Errorf("duplicate root key should conflict, got: %v", err)
	}
}

func TestSubitemKeysScopedToParent(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	parentA := env.CreateItem(list, "feature-a", "Feature A")
	parentB := env.CreateItem(list, "feature-b", "Feature B")

	// The same subitem key may repeat under different parents
	env.CreateSubitem(list, parentA, "design", "Design A")
	env.CreateSubitem(list, parentB, "design", "Design B")

	// But not twice under the same parent
	err := env.Store.CreateItem(env.Ctx, &types.Item{
		ListID: list.ID, ItemKey: "design", Content: "Again", ParentItemID: &parentA.ID,
	})
	if !IsConflict(err) {
		t.Errorf("duplicate sibling key should conflict, got: %v", err)
	}
}

func TestGetItemByKeyPrefersRootMatch(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	parent := env.CreateItem(list, "parent", "Parent")
	env.CreateSubitem(list, parent, "shared", "Nested shared")
	root := env.CreateItem(list, "shared", "Root shared")

	got, err := env.Store.GetItemByKey(env.Ctx, list.ID, "shared")
	if err != nil {
		t.Fatalf("GetItemByKey failed: %v", err)
	}
	if got.ID != root.ID {
		t.Errorf("ambiguous key should resolve to the root item, got id=%d", got.ID)
	}
}

func TestGetItemByKeyAndParent(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	parent := env.CreateItem(list, "parent", "Parent")
	sub := env.CreateSubitem(list, parent, "step1", "Step one")

	got, err := env.Store.GetItemByKeyAndParent(env.Ctx, list.ID, "step1", &parent.ID)
	if err != nil {
		t.Fatalf("GetItemByKeyAndParent failed: %v", err)
	}
	if got.ID != sub.ID {
		t.Errorf("got id=%d, want %d", got.ID, sub.ID)
	}

	_, err = env.Store.GetItemByKeyAndParent(env.Ctx, list.ID, "step1", nil)
	if !IsNotFound(err) {
		t.Errorf("root lookup of a subitem key should be not-found, got: %v", err)
	}
}

func TestUpdateItemStatus(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	item := env.CreateItem(list, "task", "The task")

	env.SetStatus(item, types.StatusCompleted)

	got := env.MustGetItem(item.ID)
	if got.Status != types.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestUpdateItemRejectsUnknownField(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	item := env.CreateItem(list, "task", "The task")

	err := env.Store.UpdateItem(env.Ctx, item.ID, map[string]interface{}{
		"item_key": "renamed",
	})
	if err == nil {
		t.Fatal("expected error for non-updatable field")
	}

	err = env.Store.UpdateItem(env.Ctx, item.ID, map[string]interface{}{
		"status": "bogus",
	})
	if err == nil {
		t.Fatal("expected error for invalid status value")
	}
}

func TestUpdateItemCompletionStates(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	item := env.CreateItem(list, "deploy", "Deploy service")

	states := map[string]any{"tested": true, "reviewed": false}
	err := env.Store.UpdateItem(env.Ctx, item.ID, map[string]interface{}{
		"completion_states": states,
	})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	got := env.MustGetItem(item.ID)
	if v, ok := got.CompletionStates["tested"].(bool); !ok || !v {
		t.Errorf("completion_states[tested] = %v, want true", got.CompletionStates["tested"])
	}
	if v, ok := got.CompletionStates["reviewed"].(bool); !ok || v {
		t.Errorf("completion_states[reviewed] = %v, want false", got.CompletionStates["reviewed"])
	}
}

func TestDeleteItemCleansUpEdges(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	a := env.CreateItem(list, "a", "Task A")
	b := env.CreateItem(list, "b", "Task B")
	env.AddDep(b, a)

	if err := env.Store.DeleteItem(env.Ctx, a.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	if _, err := env.Store.GetItemByID(env.Ctx, a.ID); !IsNotFound(err) {
		t.Errorf("item should be gone, got: %v", err)
	}
	deps, err := env.Store.GetItemDependencies(env.Ctx, b.ID)
	if err != nil {
		t.Fatalf("GetItemDependencies failed: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("edges touching the deleted item should be removed, found %d", len(deps))
	}
}

func TestGetNextPositionPerScope(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("inbox", "Inbox")
	parent := env.CreateItem(list, "parent", "Parent")
	env.CreateItem(list, "rootmate", "Root sibling")
	env.CreateSubitem(list, parent, "sub1", "Sub one")

	rootPos, err := env.Store.GetNextPosition(env.Ctx, list.ID, nil)
	if err != nil {
		t.Fatalf("GetNextPosition(root) failed: %v", err)
	}
	if rootPos != 3 {
		t.Errorf("next root position = %d, want 3", rootPos)
	}

	subPos, err := env.Store.GetNextPosition(env.Ctx, list.ID, &parent.ID)
	if err != nil {
		t.Fatalf("GetNextPosition(sub) failed: %v", err)
	}
	if subPos != 2 {
		t.Errorf("next subitem position = %d, want 2", subPos)
	}
}

func TestFindItemsByStatusNaturalOrder(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("scenes", "Scenes")
	env.CreateItem(list, "scene_10", "Scene ten")
	env.CreateItem(list, "scene_2", "Scene two")
	env.CreateItem(list, "scene_1", "Scene one")
	done := env.CreateItem(list, "scene_3", "Scene three")
	env.SetStatus(done, types.StatusCompleted)

	pending, err := env.Store.FindItemsByStatus(env.Ctx, list.ID, types.StatusPending, 0)
	if err != nil {
		t.Fatalf("FindItemsByStatus failed: %v", err)
	}

	var keys []string
	for _, it := range pending {
		keys = append(keys, it.ItemKey)
	}
	want := []string{"scene_1", "scene_2", "scene_10"}
	if len(keys) != len(want) {
		t.Fatalf("got %d pending items %v, want %d", len(keys), keys, len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, keys[i], want[i])
		}
	}
}
