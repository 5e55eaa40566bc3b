package manager

import (
	"strings"
	"testing"
	"time"

	"github.com/hipotures/todoit/internal/types"
)

func TestGetProgress(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "done", "Done")
	env.AddItem("work", "running", "Running")
	env.AddItem("work", "broken", "Broken")
	env.AddItem("work", "waiting", "Waiting")
	env.AddItem("work", "gated", "Gated")
	env.SetStatus("work", "done", types.StatusCompleted)
	env.SetStatus("work", "running", types.StatusInProgress)
	env.SetStatus("work", "broken", types.StatusFailed)

	if _, err := env.Mgr.AddItemDependency(env.Ctx,
		ItemRef{"work", "gated"}, ItemRef{"work", "waiting"},
		types.DepRequires, nil); err != nil {
		t.Fatalf("AddItemDependency failed: %v", err)
	}

	p, err := env.Mgr.GetProgress(env.Ctx, "work")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if p.ListKey != "work" {
		t.Errorf("ListKey = %q, want work", p.ListKey)
	}
	if p.Total != 5 || p.Pending != 2 || p.InProgress != 1 || p.Completed != 1 || p.Failed != 1 {
		t.Errorf("counts = %+v, want total=5 pending=2 in_progress=1 completed=1 failed=1", p)
	}
	if p.Blocked != 1 {
		t.Errorf("Blocked = %d, want 1 (gated waits on waiting)", p.Blocked)
	}
	if p.PercentDone != 20 || p.PercentFailed != 20 {
		t.Errorf("percentages = %.1f/%.1f, want 20/20", p.PercentDone, p.PercentFailed)
	}
}

func TestGetProgressEmptyList(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("empty", "Empty")

	p, err := env.Mgr.GetProgress(env.Ctx, "empty")
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if p.Total != 0 || p.PercentDone != 0 || p.PercentFailed != 0 {
		t.Errorf("empty progress = %+v, want zeros", p)
	}
}

func TestGetAllProgress(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("a-list", "A")
	env.CreateList("b-list", "B")
	env.AddItem("a-list", "task1", "Task")
	env.SetStatus("a-list", "task1", types.StatusCompleted)

	all, err := env.Mgr.GetAllProgress(env.Ctx, false)
	if err != nil {
		t.Fatalf("GetAllProgress failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d reports, want 2", len(all))
	}
	if all[0].ListKey != "a-list" || all[0].Completed != 1 {
		t.Errorf("first = %+v, want a-list with 1 completed", all[0])
	}
	if all[1].ListKey != "b-list" || all[1].Total != 0 {
		t.Errorf("second = %+v, want empty b-list", all[1])
	}
}

func TestGetFailedItems(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.CreateList("other", "Other")
	env.AddItem("work", "old-fail", "Old failure")
	env.AddItem("work", "new-fail", "New failure")
	env.AddItem("other", "elsewhere", "Elsewhere")
	env.SetStatus("work", "old-fail", types.StatusFailed)
	env.SetStatus("work", "new-fail", types.StatusFailed)
	env.SetStatus("other", "elsewhere", types.StatusFailed)

	failed, err := env.Mgr.GetFailedItems(env.Ctx, "work", nil)
	if err != nil {
		t.Fatalf("GetFailedItems failed: %v", err)
	}
	if len(failed) != 2 {
		t.Fatalf("got %d failed in work, want 2", len(failed))
	}
	for _, f := range failed {
		if f.List.ListKey != "work" {
			t.Errorf("failed item %s from list %s, want work", f.Item.ItemKey, f.List.ListKey)
		}
	}

	failed, err = env.Mgr.GetFailedItems(env.Ctx, "", nil)
	if err != nil {
		t.Fatalf("global GetFailedItems failed: %v", err)
	}
	if len(failed) != 3 {
		t.Errorf("got %d failed globally, want 3", len(failed))
	}

	// A future cutoff excludes everything.
	future := time.Now().Add(time.Hour)
	failed, err = env.Mgr.GetFailedItems(env.Ctx, "work", &future)
	if err != nil {
		t.Fatalf("GetFailedItems with since failed: %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("got %d failed after future cutoff, want 0", len(failed))
	}

	past := time.Now().Add(-time.Hour)
	failed, err = env.Mgr.GetFailedItems(env.Ctx, "work", &past)
	if err != nil {
		t.Fatalf("GetFailedItems with past since failed: %v", err)
	}
	if len(failed) != 2 {
		t.Errorf("got %d failed since an hour ago, want 2", len(failed))
	}
}

func TestHistoryUserContext(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")

	entries := env.ListHistory("work")
	if len(entries) == 0 {
		t.Fatal("no history entries")
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.UserContext, "tester:") {
			t.Errorf("UserContext = %q, want tester: prefix", e.UserContext)
		}
	}
}

func TestHistoryLimitAndOrder(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	for _, key := range []string{"one", "two", "three"} {
		env.AddItem("work", key, "Item "+key)
	}

	entries, err := env.Mgr.GetListHistory(env.Ctx, "work", 2)
	if err != nil {
		t.Fatalf("GetListHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Action != types.ActionItemCreated {
		t.Errorf("entries[0].Action = %s, want item_created", entries[0].Action)
	}
	if entries[0].ID < entries[1].ID {
		t.Errorf("entries not newest-first: %d before %d", entries[0].ID, entries[1].ID)
	}
}

func TestRecentHistoryScoped(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("public", "Public")
	env.AddItem("public", "task1", "Task")

	scoped := env.Scoped([]string{"work"}, nil)
	if _, err := scoped.CreateList(env.Ctx, "mine", "Mine", CreateListOptions{}); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	public, err := env.Mgr.GetList(env.Ctx, "public")
	if err != nil {
		t.Fatalf("GetList failed: %v", err)
	}

	entries, err := scoped.GetRecentHistory(env.Ctx, 0)
	if err != nil {
		t.Fatalf("scoped GetRecentHistory failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no history entries in scope")
	}
	for _, e := range entries {
		if e.ListID != nil && *e.ListID == public.ID {
			t.Errorf("scoped history leaked entry for public list: %+v", e)
		}
	}
}
