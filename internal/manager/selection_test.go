package manager

import (
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

func TestNextPendingEmptyList(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")

	for _, smart := range []bool{true, false} {
		item, err := env.Mgr.GetNextPending(env.Ctx, "work", smart)
		if err != nil {
			t.Fatalf("GetNextPending(smart=%v) failed: %v", smart, err)
		}
		if item != nil {
			t.Errorf("GetNextPending(smart=%v) = %v, want nil", smart, item)
		}
	}
}

// Subtasks of already-started parents come before anything else, even
// when an earlier pending root exists.
func TestNextPendingPrefersStartedParents(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "auth", "Auth work")
	env.AddItem("work", "deploy", "Deploy")
	env.AddSubitem("work", "deploy", "build", "Build")
	env.AddSubitem("work", "deploy", "verify", "Verify")
	env.SetStatusUnder("work", "build", "deploy", types.StatusCompleted)

	// deploy is now in_progress with a pending subtask.
	next, err := env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "verify" {
		t.Errorf("next = %v, want verify (subtask of started parent)", next)
	}
}

// A pending root with subtasks yields its first subtask; a later leaf
// root waits.
func TestNextPendingSubdividesBeforeLeaves(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "leaf", "Standalone")
	env.AddItem("work", "epic", "Epic")
	env.AddSubitem("work", "epic", "step1", "First step")

	next, err := env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "step1" {
		t.Errorf("next = %v, want step1", next)
	}
}

func TestNextPendingLeafRootOrder(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "first", "First by position")
	env.AddItem("work", "second", "Second by position")

	next, err := env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "first" {
		t.Errorf("next = %v, want first", next)
	}
}

func TestNextPendingSkipsBlocked(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "blocked", "Waits on other work")
	env.AddItem("work", "free", "Ready now")
	env.AddItem("work", "gate", "The blocker")

	if _, err := env.Mgr.AddItemDependency(env.Ctx,
		ItemRef{"work", "blocked"}, ItemRef{"work", "gate"},
		types.DepRequires, nil); err != nil {
		t.Fatalf("AddItemDependency failed: %v", err)
	}

	next, err := env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "free" {
		t.Errorf("next = %v, want free (blocked is skipped)", next)
	}
}

// Pending subtasks under a finished parent still surface, after
// everything else.
func TestNextPendingOrphanedSubtasks(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "parent", "P")
	env.AddSubitem("work", "parent", "crashed", "Crashed step")
	env.AddSubitem("work", "parent", "leftover", "Never ran")
	env.SetStatusUnder("work", "crashed", "parent", types.StatusFailed)

	// parent derives failed; its pending child is an orphan.
	if got := env.MustGetItem("work", "parent").Status; got != types.StatusFailed {
		t.Fatalf("parent = %s, want failed", got)
	}

	next, err := env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "leftover" {
		t.Errorf("next = %v, want leftover (orphan)", next)
	}

	// A startable root beats the orphan.
	env.AddItem("work", "fresh", "New work")
	next, err = env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "fresh" {
		t.Errorf("next = %v, want fresh", next)
	}
}

func TestNextPendingAllDone(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "task1", "One")
	env.SetStatus("work", "task1", types.StatusCompleted)

	next, err := env.Mgr.GetNextPending(env.Ctx, "work", true)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next != nil {
		t.Errorf("next on completed list = %v, want nil", next)
	}
}

// Simple mode walks the DFS order and ignores the priority rules; a
// subtask is eligible only once its parent is completed.
func TestNextPendingSimpleMode(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("work", "Work")
	env.AddItem("work", "a-epic", "Epic")
	env.AddSubitem("work", "a-epic", "step1", "Step")
	env.AddItem("work", "b-leaf", "Leaf")

	// a-epic is pending (all children pending): the epic itself is the
	// first DFS item with no parent.
	next, err := env.Mgr.GetNextPending(env.Ctx, "work", false)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "a-epic" {
		t.Errorf("simple next = %v, want a-epic", next)
	}

	// Starting the subtask turns the epic in_progress; neither the epic
	// (not pending) nor step1's parent (not completed) qualifies, so the
	// leaf root is next.
	env.SetStatusUnder("work", "step1", "a-epic", types.StatusInProgress)
	next, err = env.Mgr.GetNextPending(env.Ctx, "work", false)
	if err != nil {
		t.Fatalf("GetNextPending failed: %v", err)
	}
	if next == nil || next.ItemKey != "b-leaf" {
		t.Errorf("simple next = %v, want b-leaf", next)
	}
}
