package sqlite

import (
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

func TestGetItemChildren(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("plan", "Plan")
	parent := env.CreateItem(list, "release", "Ship release")
	env.CreateSubitem(list, parent, "build", "Build artifacts")
	env.CreateSubitem(list, parent, "announce", "Announce it")

	children, err := env.Store.GetItemChildren(env.Ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetItemChildren failed: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
}

func TestChildrenStatusSummary(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("plan", "Plan")
	parent := env.CreateItem(list, "epic", "Epic")
	a := env.CreateSubitem(list, parent, "a", "A")
	b := env.CreateSubitem(list, parent, "b", "B")
	env.CreateSubitem(list, parent, "c", "C")
	env.SetStatus(a, types.StatusCompleted)
	env.SetStatus(b, types.StatusInProgress)

	summary, err := env.Store.GetChildrenStatusSummary(env.Ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetChildrenStatusSummary failed: %v", err)
	}

	if summary.Total != 3 || summary.Completed != 1 || summary.InProgress != 1 || summary.Pending != 1 {
		t.Errorf("summary = %+v, want total=3 completed=1 in_progress=1 pending=1", summary)
	}
	if got := summary.Derive(); got != types.StatusInProgress {
		t.Errorf("derived status = %s, want in_progress", got)
	}
}

func TestHasPendingChildren(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("plan", "Plan")
	parent := env.CreateItem(list, "epic", "Epic")
	child := env.CreateSubitem(list, parent, "only", "Only child")

	pending, err := env.Store.HasPendingChildren(env.Ctx, parent.ID)
	if err != nil {
		t.Fatalf("HasPendingChildren failed: %v", err)
	}
	if !pending {
		t.Error("parent with a pending child should report pending children")
	}

	env.SetStatus(child, types.StatusCompleted)
	pending, err = env.Store.HasPendingChildren(env.Ctx, parent.ID)
	if err != nil {
		t.Fatalf("HasPendingChildren failed: %v", err)
	}
	if pending {
		t.Error("all children completed, should report no pending children")
	}
}

func TestGetItemDepthAndPath(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("deep", "Deep")
	root := env.CreateItem(list, "l0", "Level 0")
	mid := env.CreateSubitem(list, root, "l1", "Level 1")
	leaf := env.CreateSubitem(list, mid, "l2", "Level 2")

	depth, err := env.Store.GetItemDepth(env.Ctx, leaf.ID)
	if err != nil {
		t.Fatalf("GetItemDepth failed: %v", err)
	}
	if depth != 2 {
		t.Errorf("depth = %d, want 2", depth)
	}

	path, err := env.Store.GetItemPath(env.Ctx, leaf.ID)
	if err != nil {
		t.Fatalf("GetItemPath failed: %v", err)
	}
	var keys []string
	for _, it := range path {
		keys = append(keys, it.ItemKey)
	}
	want := []string{"l0", "l1", "l2"}
	if len(keys) != len(want) {
		t.Fatalf("path = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("path[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestGetRootItems(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("plan", "Plan")
	root1 := env.CreateItem(list, "r1", "Root 1")
	env.CreateItem(list, "r2", "Root 2")
	env.CreateSubitem(list, root1, "nested", "Nested")

	roots, err := env.Store.GetRootItems(env.Ctx, list.ID)
	if err != nil {
		t.Fatalf("GetRootItems failed: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	for _, r := range roots {
		if r.ParentItemID != nil {
			t.Errorf("root item %s has a parent", r.ItemKey)
		}
	}
}

// Items must come back depth-first: each parent immediately followed by
// its subtree, roots and siblings in natural key order.
func TestGetListItemsDepthFirstOrder(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("book", "Book")

	chapter2 := env.CreateItem(list, "chapter_2", "Chapter 2")
	chapter10 := env.CreateItem(list, "chapter_10", "Chapter 10")
	chapter1 := env.CreateItem(list, "chapter_1", "Chapter 1")

	env.CreateSubitem(list, chapter1, "sec_2", "Section 1.2")
	sec1 := env.CreateSubitem(list, chapter1, "sec_1", "Section 1.1")
	env.CreateSubitem(list, sec1, "para_1", "Paragraph")
	env.CreateSubitem(list, chapter2, "sec_1", "Section 2.1")
	_ = chapter10

	items, err := env.Store.GetListItems(env.Ctx, list.ID, nil, 0)
	if err != nil {
		t.Fatalf("GetListItems failed: %v", err)
	}

	var keys []string
	for _, it := range items {
		keys = append(keys, it.ItemKey)
	}
	want := []string{"chapter_1", "sec_1", "para_1", "sec_2", "chapter_2", "sec_1", "chapter_10"}
	if len(keys) != len(want) {
		t.Fatalf("got order %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestGetListItemsStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	env.CreateItem(list, "b", "B")
	env.SetStatus(a, types.StatusCompleted)

	status := types.StatusPending
	items, err := env.Store.GetListItems(env.Ctx, list.ID, &status, 0)
	if err != nil {
		t.Fatalf("GetListItems failed: %v", err)
	}
	if len(items) != 1 || items[0].ItemKey != "b" {
		t.Errorf("filtered items = %d, want just b", len(items))
	}
}
