package types

import (
	"sort"
	"strings"
	"unicode"
)

// NaturalLess reports whether a sorts before b in natural order.
// The keys are lowered and split into alternating digit and non-digit runs;
// digit runs compare as integers, other runs as plain strings. This puts
// "scene_2" before "scene_10".
func NaturalLess(a, b string) bool {
	return naturalCompare(a, b) < 0
}

func naturalCompare(a, b string) int {
	ra := splitRuns(strings.ToLower(a))
	rb := splitRuns(strings.ToLower(b))

	for i := 0; i < len(ra) && i < len(rb); i++ {
		x, y := ra[i], rb[i]
		if x.numeric && y.numeric {
			if c := compareNumeric(x.text, y.text); c != 0 {
				return c
			}
			continue
		}
		// Mixed runs fall back to string comparison, so a digit run sorts
		// against a letter run by its raw text.
		if c := strings.Compare(x.text, y.text); c != 0 {
			return c
		}
	}
	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	}
	return 0
}

type run struct {
	text    string
	numeric bool
}

// splitRuns breaks a string into maximal runs of digits and non-digits
func splitRuns(s string) []run {
	var runs []run
	var sb strings.Builder
	var numeric bool

	flush := func() {
		if sb.Len() > 0 {
			runs = append(runs, run{text: sb.String(), numeric: numeric})
			sb.Reset()
		}
	}

	for _, r := range s {
		isDigit := unicode.IsDigit(r)
		if sb.Len() > 0 && isDigit != numeric {
			flush()
		}
		numeric = isDigit
		sb.WriteRune(r)
	}
	flush()
	return runs
}

// compareNumeric compares two digit runs as integers without parsing,
// so arbitrarily long runs can't overflow. Leading zeros are ignored
// for magnitude but break ties to keep the ordering total.
func compareNumeric(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortNatural sorts string keys in natural order in place
func SortNatural(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return NaturalLess(keys[i], keys[j])
	})
}

// SortItemsNatural sorts items by the natural order of their keys in place
func SortItemsNatural(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return NaturalLess(items[i].ItemKey, items[j].ItemKey)
	})
}

// SortListsNatural sorts lists by the natural order of their keys in place
func SortListsNatural(lists []*List) {
	sort.SliceStable(lists, func(i, j int) bool {
		return NaturalLess(lists[i].ListKey, lists[j].ListKey)
	})
}
