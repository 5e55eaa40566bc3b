package types

import (
	"reflect"
	"testing"
)

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"digit runs compare as integers", "scene_2", "scene_10", true},
		{"reverse of integer comparison", "scene_10", "scene_2", false},
		{"equal keys", "scene_2", "scene_2", false},
		{"plain alpha", "alpha", "beta", true},
		{"case insensitive", "Alpha", "alpha", false},
		{"case insensitive ordering", "Beta", "alpha", false},
		{"digits before longer digits", "9", "10", true},
		{"leading zeros do not change magnitude", "item_02", "item_10", true},
		{"prefix sorts first", "scene", "scene_1", true},
		{"multiple runs", "a1b2", "a1b10", true},
		{"numeric vs alpha run", "1", "a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NaturalLess(tt.a, tt.b); got != tt.want {
				t.Errorf("NaturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortNatural(t *testing.T) {
	keys := []string{"scene_10", "scene_2", "scene_1"}
	SortNatural(keys)

	want := []string{"scene_1", "scene_2", "scene_10"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("SortNatural = %v, want %v", keys, want)
	}
}

func TestSortItemsNatural(t *testing.T) {
	items := []*Item{
		{ItemKey: "task_11"},
		{ItemKey: "task_2"},
		{ItemKey: "task_1"},
		{ItemKey: "intro"},
	}
	SortItemsNatural(items)

	want := []string{"intro", "task_1", "task_2", "task_11"}
	for i, item := range items {
		if item.ItemKey != want[i] {
			t.Errorf("position %d: got %q, want %q", i, item.ItemKey, want[i])
		}
	}
}

func TestSortListsNatural(t *testing.T) {
	lists := []*List{
		{ListKey: "proj10"},
		{ListKey: "proj2"},
		{ListKey: "proj1"},
	}
	SortListsNatural(lists)

	want := []string{"proj1", "proj2", "proj10"}
	for i, l := range lists {
		if l.ListKey != want[i] {
			t.Errorf("position %d: got %q, want %q", i, l.ListKey, want[i])
		}
	}
}
