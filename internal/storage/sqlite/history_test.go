package sqlite

import (
	"testing"
	"time"

	"github.com/hipotures/todoit/internal/types"
)

func recordEntry(t *testing.T, env *testEnv, entry *types.HistoryEntry) {
	t.Helper()
	if err := env.Store.RecordHistory(env.Ctx, entry); err != nil {
		t.Fatalf("RecordHistory failed: %v", err)
	}
}

func TestRecordHistoryRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	item := env.CreateItem(list, "task", "Task")

	recordEntry(t, env, &types.HistoryEntry{
		ItemID:      &item.ID,
		ListID:      &list.ID,
		Action:      types.ActionStatusChanged,
		OldValue:    map[string]any{"status": "pending"},
		NewValue:    map[string]any{"status": "in_progress"},
		UserContext: "alice",
	})

	entries, err := env.Store.GetItemHistory(env.Ctx, item.ID, 0)
	if err != nil {
		t.Fatalf("GetItemHistory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.Action != types.ActionStatusChanged {
		t.Errorf("action = %s, want status_changed", e.Action)
	}
	if e.OldValue["status"] != "pending" || e.NewValue["status"] != "in_progress" {
		t.Errorf("values = %v -> %v", e.OldValue, e.NewValue)
	}
	if e.UserContext != "alice" {
		t.Errorf("user context = %q, want alice", e.UserContext)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp should be set automatically")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	item := env.CreateItem(list, "task", "Task")

	base := time.Now().UTC().Add(-time.Hour)
	for i, action := range []types.HistoryAction{
		types.ActionItemCreated,
		types.ActionStatusChanged,
		types.ActionItemUpdated,
	} {
		recordEntry(t, env, &types.HistoryEntry{
			ItemID:    &item.ID,
			ListID:    &list.ID,
			Action:    action,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	entries, err := env.Store.GetItemHistory(env.Ctx, item.ID, 0)
	if err != nil {
		t.Fatalf("GetItemHistory failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Action != types.ActionItemUpdated || entries[2].Action != types.ActionItemCreated {
		t.Errorf("entries not newest-first: %s, %s, %s",
			entries[0].Action, entries[1].Action, entries[2].Action)
	}
}

func TestHistoryLimit(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	item := env.CreateItem(list, "task", "Task")

	for i := 0; i < 5; i++ {
		recordEntry(t, env, &types.HistoryEntry{
			ItemID: &item.ID,
			ListID: &list.ID,
			Action: types.ActionItemUpdated,
		})
	}

	entries, err := env.Store.GetItemHistory(env.Ctx, item.ID, 2)
	if err != nil {
		t.Fatalf("GetItemHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("limit 2 returned %d entries", len(entries))
	}
}

func TestListHistoryIncludesItemEntries(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	item := env.CreateItem(list, "task", "Task")

	recordEntry(t, env, &types.HistoryEntry{
		ListID: &list.ID,
		Action: types.ActionListCreated,
	})
	recordEntry(t, env, &types.HistoryEntry{
		ItemID: &item.ID,
		ListID: &list.ID,
		Action: types.ActionItemCreated,
	})

	entries, err := env.Store.GetListHistory(env.Ctx, list.ID, 0)
	if err != nil {
		t.Fatalf("GetListHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("list history should cover list and item entries, got %d", len(entries))
	}
}

func TestRecentHistoryAcrossLists(t *testing.T) {
	env := newTestEnv(t)
	a := env.CreateList("a", "A")
	b := env.CreateList("b", "B")

	recordEntry(t, env, &types.HistoryEntry{ListID: &a.ID, Action: types.ActionListCreated})
	recordEntry(t, env, &types.HistoryEntry{ListID: &b.ID, Action: types.ActionListCreated})

	entries, err := env.Store.GetRecentHistory(env.Ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestGetListProgress(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	b := env.CreateItem(list, "b", "B")
	c := env.CreateItem(list, "c", "C")
	d := env.CreateItem(list, "d", "D")
	env.SetStatus(a, types.StatusCompleted)
	env.SetStatus(b, types.StatusFailed)
	env.AddDep(d, c)

	progress, err := env.Store.GetListProgress(env.Ctx, list.ID)
	if err != nil {
		t.Fatalf("GetListProgress failed: %v", err)
	}

	if progress.Total != 4 || progress.Completed != 1 || progress.Failed != 1 || progress.Pending != 2 {
		t.Errorf("progress = %+v", progress)
	}
	if progress.Blocked != 1 {
		t.Errorf("blocked = %d, want 1 (d waits on c)", progress.Blocked)
	}
	if progress.PercentDone != 25 {
		t.Errorf("percent done = %f, want 25", progress.PercentDone)
	}
}
