package sqlite

import (
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

func TestCreateDependencyAndBlockers(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	first := env.CreateItem(list, "first", "Do this first")
	second := env.CreateItem(list, "second", "Then this")
	env.AddDep(second, first)

	blocked, err := env.Store.IsItemBlocked(env.Ctx, second.ID)
	if err != nil {
		t.Fatalf("IsItemBlocked failed: %v", err)
	}
	if !blocked {
		t.Error("second should be blocked while first is incomplete")
	}

	blockers, err := env.Store.GetItemBlockers(env.Ctx, second.ID)
	if err != nil {
		t.Fatalf("GetItemBlockers failed: %v", err)
	}
	if len(blockers) != 1 || blockers[0].ID != first.ID {
		t.Errorf("blockers = %v, want just the first item", blockers)
	}

	env.SetStatus(first, types.StatusCompleted)

	blocked, err = env.Store.IsItemBlocked(env.Ctx, second.ID)
	if err != nil {
		t.Fatalf("IsItemBlocked failed: %v", err)
	}
	if blocked {
		t.Error("second should unblock once first completes")
	}
}

func TestRelatedDependencyDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	b := env.CreateItem(list, "b", "B")
	env.AddDepType(b, a, types.DepRelated)

	blocked, err := env.Store.IsItemBlocked(env.Ctx, b.ID)
	if err != nil {
		t.Fatalf("IsItemBlocked failed: %v", err)
	}
	if blocked {
		t.Error("related edges must never block")
	}
}

func TestSelfDependencyRejected(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	item := env.CreateItem(list, "solo", "Solo")

	err := env.Store.CreateItemDependency(env.Ctx, &types.ItemDependency{
		DependentItemID: item.ID,
		RequiredItemID:  item.ID,
		Type:            types.DepRequires,
	})
	if err == nil {
		t.Fatal("self-dependency should be rejected")
	}
}

func TestDependencyCycleRejected(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	b := env.CreateItem(list, "b", "B")
	c := env.CreateItem(list, "c", "C")

	env.AddDep(b, a) // b waits on a
	env.AddDep(c, b) // c waits on b

	// a waiting on c closes the loop
	err := env.Store.CreateItemDependency(env.Ctx, &types.ItemDependency{
		DependentItemID: a.ID,
		RequiredItemID:  c.ID,
		Type:            types.DepRequires,
	})
	if !IsCycle(err) {
		t.Errorf("expected cycle error, got: %v", err)
	}
}

func TestRelatedEdgesIgnoredForCycles(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	b := env.CreateItem(list, "b", "B")

	env.AddDep(b, a)
	// The reverse direction is fine as a related link
	env.AddDepType(a, b, types.DepRelated)
}

func TestCrossListDependency(t *testing.T) {
	env := newTestEnv(t)
	backend := env.CreateList("backend", "Backend")
	frontend := env.CreateList("frontend", "Frontend")
	api := env.CreateItem(backend, "api", "Build API")
	ui := env.CreateItem(frontend, "ui", "Build UI")

	env.AddDep(ui, api)

	blocked, err := env.Store.IsItemBlocked(env.Ctx, ui.ID)
	if err != nil {
		t.Fatalf("IsItemBlocked failed: %v", err)
	}
	if !blocked {
		t.Error("dependencies must work across lists")
	}
}

func TestDuplicateDependencyRejected(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	b := env.CreateItem(list, "b", "B")
	env.AddDep(b, a)

	err := env.Store.CreateItemDependency(env.Ctx, &types.ItemDependency{
		DependentItemID: b.ID,
		RequiredItemID:  a.ID,
		Type:            types.DepRequires,
	})
	if !IsConflict(err) {
		t.Errorf("duplicate edge should conflict, got: %v", err)
	}
}

func TestDeleteDependency(t *testing.T) {
	env := newTestEnv(t)
	list := env.CreateList("work", "Work")
	a := env.CreateItem(list, "a", "A")
	b := env.CreateItem(list, "b", "B")
	env.AddDep(b, a)

	if err := env.Store.DeleteItemDependency(env.Ctx, b.ID, a.ID); err != nil {
		t.Fatalf("DeleteItemDependency failed: %v", err)
	}

	blocked, err := env.Store.IsItemBlocked(env.Ctx, b.ID)
	if err != nil {
		t.Fatalf("IsItemBlocked failed: %v", err)
	}
	if blocked {
		t.Error("b should be free after removing the edge")
	}

	err = env.Store.DeleteItemDependency(env.Ctx, b.ID, a.ID)
	if !IsNotFound(err) {
		t.Errorf("removing a missing edge should be not-found, got: %v", err)
	}
}

func TestListDependenciesForList(t *testing.T) {
	env := newTestEnv(t)
	backend := env.CreateList("backend", "Backend")
	frontend := env.CreateList("frontend", "Frontend")
	api := env.CreateItem(backend, "api", "API")
	ui := env.CreateItem(frontend, "ui", "UI")
	docs := env.CreateItem(frontend, "docs", "Docs")
	env.AddDep(ui, api)
	env.AddDep(docs, ui)

	deps, err := env.Store.ListDependenciesForList(env.Ctx, frontend.ID)
	if err != nil {
		t.Fatalf("ListDependenciesForList failed: %v", err)
	}
	if len(deps) != 2 {
		t.Errorf("got %d edges, want 2 (both frontend items depend on something)", len(deps))
	}
}
