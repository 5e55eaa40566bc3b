package manager

import (
	"errors"
	"strings"
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")

	if _, err := env.Mgr.AddItem(env.Ctx, "work", "bad key!", "Content", AddItemOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad key = %v, want ErrInvalidArgument", err)
	}
	if _, err := env.Mgr.AddItem(env.Ctx, "work", "task1", "", AddItemOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty content = %v, want ErrInvalidArgument", err)
	}
	long := strings.Repeat("x", 1001)
	if _, err := env.Mgr.AddItem(env.Ctx, "work", "task1", long, AddItemOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("oversized content = %v, want ErrInvalidArgument", err)
	}
	if _, err := env.Mgr.AddItem(env.Ctx, "missing", "task1", "Content", AddItemOptions{}); !IsNotFound(err) {
		t.Errorf("unknown list = %v, want ErrNotFound", err)
	}
}

func TestAddItemDuplicateSibling(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "First")

	if _, err := env.Mgr.AddItem(env.Ctx, "work", "task1", "Again", AddItemOptions{}); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate root key = %v, want ErrDuplicateKey", err)
	}

	// The same key is fine in a different sibling scope.
	env.AddItem("work", "parent", "Parent")
	if _, err := env.Mgr.AddItem(env.Ctx, "work", "task1", "Nested", AddItemOptions{Parent: "parent"}); err != nil {
		t.Errorf("same key under another parent = %v, want success", err)
	}
}

func TestAddItemPositions(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	a := env.AddItem("work", "task-a", "A")
	b := env.AddItem("work", "task-b", "B")
	parent := env.AddItem("work", "parent", "P")
	sub := env.AddSubitem("work", "parent", "sub1", "S")

	if a.Position != 1 || b.Position != 2 || parent.Position != 3 {
		t.Errorf("root positions = %d,%d,%d, want 1,2,3", a.Position, b.Position, parent.Position)
	}
	// Sibling scopes number independently.
	if sub.Position != 1 {
		t.Errorf("subitem position = %d, want 1", sub.Position)
	}
}

// A parent's status follows its children: starting one child starts the
// parent, completing every child completes it, all within the child's
// own transaction and with no extra history entries.
func TestHierarchyStatusPropagation(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "deploy", "Deploy the release")
	env.AddSubitem("work", "deploy", "build", "Build artifacts")
	env.AddSubitem("work", "deploy", "test", "Run the suite")

	env.SetStatusUnder("work", "build", "deploy", types.StatusCompleted)
	parent := env.MustGetItem("work", "deploy")
	if parent.Status != types.StatusInProgress {
		t.Errorf("parent after one completed child = %s, want in_progress", parent.Status)
	}

	env.SetStatusUnder("work", "test", "deploy", types.StatusCompleted)
	parent = env.MustGetItem("work", "deploy")
	if parent.Status != types.StatusCompleted {
		t.Errorf("parent after all children completed = %s, want completed", parent.Status)
	}

	// list_created + 3 item_created + 2 status_changed; derived parent
	// updates emit nothing.
	counts := actionCounts(env.ListHistory("work"))
	if counts[types.ActionListCreated] != 1 {
		t.Errorf("list_created = %d, want 1", counts[types.ActionListCreated])
	}
	if counts[types.ActionItemCreated] != 3 {
		t.Errorf("item_created = %d, want 3", counts[types.ActionItemCreated])
	}
	if counts[types.ActionStatusChanged] != 2 {
		t.Errorf("status_changed = %d, want 2", counts[types.ActionStatusChanged])
	}
}

func TestHierarchyFailurePropagation(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "deploy", "Deploy")
	env.AddSubitem("work", "deploy", "build", "Build")
	env.AddSubitem("work", "deploy", "test", "Test")

	env.SetStatusUnder("work", "build", "deploy", types.StatusCompleted)
	env.SetStatusUnder("work", "test", "deploy", types.StatusFailed)

	parent := env.MustGetItem("work", "deploy")
	if parent.Status != types.StatusFailed {
		t.Errorf("parent with a failed child = %s, want failed", parent.Status)
	}

	// Recovering the failed child recovers the parent.
	env.SetStatusUnder("work", "test", "deploy", types.StatusCompleted)
	parent = env.MustGetItem("work", "deploy")
	if parent.Status != types.StatusCompleted {
		t.Errorf("parent after recovery = %s, want completed", parent.Status)
	}
}

func TestHierarchyGrandparentPropagation(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "epic", "Epic")
	env.AddSubitem("work", "epic", "story", "Story")
	env.AddSubitem("work", "story", "task", "Task")

	env.SetStatusUnder("work", "task", "story", types.StatusCompleted)

	if got := env.MustGetItem("work", "story").Status; got != types.StatusCompleted {
		t.Errorf("story = %s, want completed", got)
	}
	if got := env.MustGetItem("work", "epic").Status; got != types.StatusCompleted {
		t.Errorf("epic = %s, want completed", got)
	}
}

func TestDirectStatusOnParentRejected(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "deploy", "Deploy")
	env.AddSubitem("work", "deploy", "build", "Build")

	_, err := env.Mgr.UpdateItemStatus(env.Ctx, "work", "deploy", StatusUpdate{
		Status: statusOf(types.StatusCompleted),
	})
	if !errors.Is(err, ErrHasChildren) {
		t.Fatalf("direct parent mutation = %v, want ErrHasChildren", err)
	}

	// Nothing changed.
	if got := env.MustGetItem("work", "deploy").Status; got != types.StatusPending {
		t.Errorf("parent status after rejected update = %s, want pending", got)
	}
}

func TestStatusTimestamps(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "Task")

	started := env.SetStatus("work", "task1", types.StatusInProgress)
	if started.StartedAt == nil {
		t.Fatal("started_at not set on first in_progress")
	}
	firstStart := *started.StartedAt

	done := env.SetStatus("work", "task1", types.StatusCompleted)
	if done.CompletedAt == nil {
		t.Fatal("completed_at not set on completion")
	}

	// Restarting keeps the original started_at.
	again := env.SetStatus("work", "task1", types.StatusInProgress)
	if again.StartedAt == nil || !again.StartedAt.Equal(firstStart) {
		t.Errorf("started_at changed on restart: %v -> %v", firstStart, again.StartedAt)
	}
}

func TestCompletionStates(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "Task")

	item, err := env.Mgr.UpdateItemStatus(env.Ctx, "work", "task1", StatusUpdate{
		Status: statusOf(types.StatusCompleted),
		States: map[string]any{"tested": true, "reviewer": "sam"},
	})
	if err != nil {
		t.Fatalf("UpdateItemStatus failed: %v", err)
	}
	if item.CompletionStates["tested"] != true || item.CompletionStates["reviewer"] != "sam" {
		t.Errorf("states = %v", item.CompletionStates)
	}

	// Later state writes merge instead of replacing.
	item, err = env.Mgr.UpdateItemStatus(env.Ctx, "work", "task1", StatusUpdate{
		States: map[string]any{"deployed": true},
	})
	if err != nil {
		t.Fatalf("state merge failed: %v", err)
	}
	if item.CompletionStates["tested"] != true || item.CompletionStates["deployed"] != true {
		t.Errorf("merged states = %v", item.CompletionStates)
	}

	// Remove one named state.
	item, err = env.Mgr.RemoveCompletionStates(env.Ctx, "work", "task1", []string{"tested"}, "")
	if err != nil {
		t.Fatalf("RemoveCompletionStates failed: %v", err)
	}
	if _, ok := item.CompletionStates["tested"]; ok {
		t.Error("tested state should be removed")
	}
	if item.CompletionStates["deployed"] != true {
		t.Error("deployed state should survive")
	}

	// Clear the rest.
	item, err = env.Mgr.ClearCompletionStates(env.Ctx, "work", "task1", "")
	if err != nil {
		t.Fatalf("ClearCompletionStates failed: %v", err)
	}
	if len(item.CompletionStates) != 0 {
		t.Errorf("states after clear = %v, want empty", item.CompletionStates)
	}
}

func TestCompletionStateValidation(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "Task")

	_, err := env.Mgr.UpdateItemStatus(env.Ctx, "work", "task1", StatusUpdate{
		States: map[string]any{"count": 42},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("numeric state value = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateItemContent(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "Old content")

	updated, err := env.Mgr.UpdateItemContent(env.Ctx, "work", "task1", "New content", "")
	if err != nil {
		t.Fatalf("UpdateItemContent failed: %v", err)
	}
	if updated.Content != "New content" {
		t.Errorf("content = %q", updated.Content)
	}
}

// Deleting a parent with subitems is rejected and leaves everything in
// place.
func TestDeleteItemWithSubitems(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "deploy", "Deploy")
	env.AddSubitem("work", "deploy", "build", "Build")

	err := env.Mgr.DeleteItem(env.Ctx, "work", "deploy", "")
	if !errors.Is(err, ErrHasChildren) {
		t.Fatalf("DeleteItem(parent) = %v, want ErrHasChildren", err)
	}

	items, err := env.Mgr.GetListItems(env.Ctx, "work", nil, 0)
	if err != nil {
		t.Fatalf("GetListItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items after rejected delete = %d, want 2", len(items))
	}
}

func TestDeleteItemResyncsParent(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "deploy", "Deploy")
	env.AddSubitem("work", "deploy", "build", "Build")
	env.AddSubitem("work", "deploy", "test", "Test")
	env.SetStatusUnder("work", "build", "deploy", types.StatusCompleted)

	if got := env.MustGetItem("work", "deploy").Status; got != types.StatusInProgress {
		t.Fatalf("parent = %s, want in_progress", got)
	}

	// Removing the only pending child leaves an all-completed set.
	if err := env.Mgr.DeleteItem(env.Ctx, "work", "test", "deploy"); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if got := env.MustGetItem("work", "deploy").Status; got != types.StatusCompleted {
		t.Errorf("parent after delete = %s, want completed", got)
	}
}

func TestNaturalItemOrdering(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	for _, key := range []string{"scene_10", "scene_2", "scene_1", "intro"} {
		env.AddItem("work", key, "Item "+key)
	}

	items, err := env.Mgr.GetListItems(env.Ctx, "work", nil, 0)
	if err != nil {
		t.Fatalf("GetListItems failed: %v", err)
	}
	got := joined(itemKeys(items))
	if got != "intro,scene_1,scene_2,scene_10" {
		t.Errorf("order = %s, want intro,scene_1,scene_2,scene_10", got)
	}
}

func TestGetListItemsStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "One")
	env.AddItem("work", "task2", "Two")
	env.SetStatus("work", "task1", types.StatusCompleted)

	pending := types.StatusPending
	items, err := env.Mgr.GetListItems(env.Ctx, "work", &pending, 0)
	if err != nil {
		t.Fatalf("GetListItems failed: %v", err)
	}
	if got := joined(itemKeys(items)); got != "task2" {
		t.Errorf("pending items = %s, want task2", got)
	}

	bogus := types.ItemStatus("bogus")
	if _, err := env.Mgr.GetListItems(env.Ctx, "work", &bogus, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bogus status = %v, want ErrInvalidArgument", err)
	}
}

func TestGetListTree(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "deploy", "Deploy")
	env.AddSubitem("work", "deploy", "build", "Build")
	env.AddSubitem("work", "deploy", "verify", "Verify")
	env.AddItem("work", "docs", "Docs")

	roots, err := env.Mgr.GetListTree(env.Ctx, "work")
	if err != nil {
		t.Fatalf("GetListTree failed: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if roots[0].Item.ItemKey != "deploy" || roots[1].Item.ItemKey != "docs" {
		t.Errorf("root order = %s,%s", roots[0].Item.ItemKey, roots[1].Item.ItemKey)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("deploy children = %d, want 2", len(roots[0].Children))
	}
	if roots[0].Children[0].Item.ItemKey != "build" {
		t.Errorf("first child = %s, want build", roots[0].Children[0].Item.ItemKey)
	}

	sub, err := env.Mgr.GetItemTree(env.Ctx, "work", "deploy")
	if err != nil {
		t.Fatalf("GetItemTree failed: %v", err)
	}
	if sub.Item.ItemKey != "deploy" || len(sub.Children) != 2 {
		t.Errorf("subtree = %s with %d children", sub.Item.ItemKey, len(sub.Children))
	}
}

func TestFindItemsByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "One")
	env.AddItem("work", "task2", "Two")
	env.SetStatus("work", "task2", types.StatusFailed)

	failed, err := env.Mgr.FindItemsByStatus(env.Ctx, "work", types.StatusFailed, 0)
	if err != nil {
		t.Fatalf("FindItemsByStatus failed: %v", err)
	}
	if got := joined(itemKeys(failed)); got != "task2" {
		t.Errorf("failed items = %s, want task2", got)
	}
}
