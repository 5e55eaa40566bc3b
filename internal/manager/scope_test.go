package manager

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hipotures/todoit/internal/types"
)

func TestNewAccessScope(t *testing.T) {
	s := NewAccessScope([]string{" Work ", "WORK", "team"}, []string{"client-a"})
	if !reflect.DeepEqual(s.ForceTags, []string{"work", "team"}) {
		t.Errorf("ForceTags = %v, want [work team]", s.ForceTags)
	}
	if s.FilterTags != nil {
		t.Errorf("FilterTags = %v, want nil when force tags are set", s.FilterTags)
	}
	if !s.Enforced() || s.Filtered() {
		t.Errorf("Enforced=%v Filtered=%v, want true/false", s.Enforced(), s.Filtered())
	}
	if !s.IsForceTag("Work") || s.IsForceTag("client-a") {
		t.Error("IsForceTag should match normalized force tags only")
	}

	s = NewAccessScope(nil, []string{" A ", "a", ""})
	if !reflect.DeepEqual(s.FilterTags, []string{"a"}) {
		t.Errorf("FilterTags = %v, want [a]", s.FilterTags)
	}
	if s.Enforced() || !s.Filtered() {
		t.Errorf("Enforced=%v Filtered=%v, want false/true", s.Enforced(), s.Filtered())
	}

	s = NewAccessScope(nil, nil)
	if s.Enforced() || s.Filtered() {
		t.Error("empty scope should be unrestricted")
	}
}

func TestForceTagsAutoTagNewLists(t *testing.T) {
	env := newTestEnv(t)
	scoped := env.Scoped([]string{"work"}, nil)

	if _, err := scoped.CreateList(env.Ctx, "proj", "Project", CreateListOptions{}); err != nil {
		t.Fatalf("scoped CreateList failed: %v", err)
	}

	tags, err := env.Mgr.GetListTags(env.Ctx, "proj")
	if err != nil {
		t.Fatalf("GetListTags failed: %v", err)
	}
	if got := joined(tagNames(tags)); got != "work" {
		t.Errorf("tags = %q, want work", got)
	}
}

func TestForceTagsHideOtherLists(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("public", "Public")
	scoped := env.Scoped([]string{"work"}, nil)
	if _, err := scoped.CreateList(env.Ctx, "mine", "Mine", CreateListOptions{}); err != nil {
		t.Fatalf("scoped CreateList failed: %v", err)
	}

	lists, err := scoped.ListAll(env.Ctx, true, 0)
	if err != nil {
		t.Fatalf("scoped ListAll failed: %v", err)
	}
	if got := joined(listKeys(lists)); got != "mine" {
		t.Errorf("scoped ListAll = %q, want mine", got)
	}

	// Out-of-scope lists read as missing, not as denied.
	if _, err := scoped.GetList(env.Ctx, "public"); !IsNotFound(err) {
		t.Errorf("scoped GetList(public) err = %v, want not found", err)
	}
	if _, err := scoped.GetListItems(env.Ctx, "public", nil, 0); !IsNotFound(err) {
		t.Errorf("scoped GetListItems(public) err = %v, want not found", err)
	}

	// The unscoped manager still sees everything.
	lists, err = env.Mgr.ListAll(env.Ctx, true, 0)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if got := joined(listKeys(lists)); got != "mine,public" {
		t.Errorf("ListAll = %q, want mine,public", got)
	}
}

func TestForceTagsDenyWrites(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("public", "Public")
	scoped := env.Scoped([]string{"work"}, nil)

	_, err := scoped.AddItem(env.Ctx, "public", "task1", "Task", AddItemOptions{})
	if !IsAccessDenied(err) {
		t.Errorf("scoped AddItem err = %v, want access denied", err)
	}
	if err := scoped.DeleteList(env.Ctx, "public"); !IsAccessDenied(err) {
		t.Errorf("scoped DeleteList err = %v, want access denied", err)
	}
}

func TestForceTagsInScopeWrites(t *testing.T) {
	env := newTestEnv(t)
	scoped := env.Scoped([]string{"work"}, nil)

	if _, err := scoped.CreateList(env.Ctx, "mine", "Mine", CreateListOptions{}); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if _, err := scoped.AddItem(env.Ctx, "mine", "task1", "Task", AddItemOptions{}); err != nil {
		t.Fatalf("AddItem in scope failed: %v", err)
	}
	item, err := scoped.GetItem(env.Ctx, "mine", "task1", "")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.ItemKey != "task1" {
		t.Errorf("item = %v, want task1", item)
	}
}

func TestForceTagRemovalGuard(t *testing.T) {
	env := newTestEnv(t)
	scoped := env.Scoped([]string{"work"}, nil)
	if _, err := scoped.CreateList(env.Ctx, "mine", "Mine", CreateListOptions{}); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	err := scoped.RemoveListTag(env.Ctx, "mine", "work")
	if !errors.Is(err, ErrCannotRemoveForceTag) {
		t.Errorf("RemoveListTag err = %v, want ErrCannotRemoveForceTag", err)
	}
	if err := scoped.DeleteTag(env.Ctx, "work"); !errors.Is(err, ErrCannotRemoveForceTag) {
		t.Errorf("DeleteTag err = %v, want ErrCannotRemoveForceTag", err)
	}

	// Other tags stay removable.
	if _, err := scoped.AddListTag(env.Ctx, "mine", "extra"); err != nil {
		t.Fatalf("AddListTag failed: %v", err)
	}
	if err := scoped.RemoveListTag(env.Ctx, "mine", "extra"); err != nil {
		t.Fatalf("RemoveListTag(extra) failed: %v", err)
	}
}

// Filter tags narrow listings without restricting reads or writes.
func TestFilterTagsNarrowListingsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("alpha", "Alpha")
	env.CreateList("beta", "Beta")
	env.CreateList("gamma", "Gamma")
	if _, err := env.Mgr.AddListTag(env.Ctx, "alpha", "client-a"); err != nil {
		t.Fatalf("AddListTag failed: %v", err)
	}
	if _, err := env.Mgr.AddListTag(env.Ctx, "beta", "client-b"); err != nil {
		t.Fatalf("AddListTag failed: %v", err)
	}

	filtered := env.Scoped(nil, []string{"client-a", "client-b"})
	lists, err := filtered.ListAll(env.Ctx, true, 0)
	if err != nil {
		t.Fatalf("filtered ListAll failed: %v", err)
	}
	if got := joined(listKeys(lists)); got != "alpha,beta" {
		t.Errorf("filtered ListAll = %q, want alpha,beta", got)
	}

	// Direct access and writes to unlisted lists still work.
	if _, err := filtered.GetList(env.Ctx, "gamma"); err != nil {
		t.Errorf("filtered GetList(gamma) err = %v, want nil", err)
	}
	if _, err := filtered.AddItem(env.Ctx, "gamma", "task1", "Task", AddItemOptions{}); err != nil {
		t.Errorf("filtered AddItem(gamma) err = %v, want nil", err)
	}

	// New lists are not auto-tagged in filter mode.
	if _, err := filtered.CreateList(env.Ctx, "delta", "Delta", CreateListOptions{}); err != nil {
		t.Fatalf("filtered CreateList failed: %v", err)
	}
	tags, err := env.Mgr.GetListTags(env.Ctx, "delta")
	if err != nil {
		t.Fatalf("GetListTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("delta tags = %v, want none", tags)
	}
}

// Force-tags use ALL semantics: a list must carry every forced tag.
func TestForceTagsAllSemantics(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("both", "Both")
	env.CreateList("partial", "Partial")
	for _, tag := range []string{"work", "team"} {
		if _, err := env.Mgr.AddListTag(env.Ctx, "both", tag); err != nil {
			t.Fatalf("AddListTag failed: %v", err)
		}
	}
	if _, err := env.Mgr.AddListTag(env.Ctx, "partial", "work"); err != nil {
		t.Fatalf("AddListTag failed: %v", err)
	}

	scoped := env.Scoped([]string{"work", "team"}, nil)
	lists, err := scoped.ListAll(env.Ctx, true, 0)
	if err != nil {
		t.Fatalf("scoped ListAll failed: %v", err)
	}
	if got := joined(listKeys(lists)); got != "both" {
		t.Errorf("scoped ListAll = %q, want both", got)
	}
	if _, err := scoped.GetList(env.Ctx, "partial"); !IsNotFound(err) {
		t.Errorf("GetList(partial) err = %v, want not found", err)
	}
}

func TestScopedSelectionAndDependencies(t *testing.T) {
	env := newTestEnv(t)
	env.CreateList("public", "Public")
	env.AddItem("public", "task1", "Task")
	scoped := env.Scoped([]string{"work"}, nil)
	if _, err := scoped.CreateList(env.Ctx, "mine", "Mine", CreateListOptions{}); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if _, err := scoped.AddItem(env.Ctx, "mine", "local", "Local", AddItemOptions{}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if _, err := scoped.GetNextPending(env.Ctx, "public", true); !IsNotFound(err) {
		t.Errorf("scoped GetNextPending(public) err = %v, want not found", err)
	}

	// Dependencies may not reach out of scope either.
	_, err := scoped.AddItemDependency(env.Ctx,
		ItemRef{"mine", "local"}, ItemRef{"public", "task1"},
		types.DepRequires, nil)
	if !IsAccessDenied(err) {
		t.Errorf("cross-scope dependency err = %v, want access denied", err)
	}
}

func tagNames(tags []*types.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}
