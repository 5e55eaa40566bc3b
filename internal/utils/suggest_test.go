package utils

import "testing"

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"backend", "backend", 0},
		{"backend", "Backend", 0},
		{"backend", "backned", 2},
		{"sprint-1", "sprint-2", 1},
		{"", "api", 3},
		{"api", "", 3},
	}
	for _, tc := range cases {
		if got := EditDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestClosestMatch(t *testing.T) {
	lists := []string{"backend", "frontend", "sprint-1", "sprint-2"}

	got, ok := ClosestMatch("backned", lists, 2)
	if !ok || got != "backend" {
		t.Errorf("ClosestMatch(backned) = %q, %v; want backend, true", got, ok)
	}

	// sprint-1 wins the tie by list order
	got, ok = ClosestMatch("sprint-3", lists, 2)
	if !ok || got != "sprint-1" {
		t.Errorf("ClosestMatch(sprint-3) = %q, %v; want sprint-1, true", got, ok)
	}

	if _, ok := ClosestMatch("zzzzzzzz", lists, 2); ok {
		t.Error("ClosestMatch(zzzzzzzz) matched, want no match")
	}
	if _, ok := ClosestMatch("", lists, 2); ok {
		t.Error("ClosestMatch of empty query matched, want no match")
	}
}

func TestIsSubsequence(t *testing.T) {
	if !IsSubsequence("bknd", "backend") {
		t.Error("bknd should be a subsequence of backend")
	}
	if !IsSubsequence("SP1", "sprint-1") {
		t.Error("sp1 should match sprint-1 case-insensitively")
	}
	if IsSubsequence("dnk", "backend") {
		t.Error("dnk is not in-order in backend")
	}
	if !IsSubsequence("", "anything") {
		t.Error("empty needle always matches")
	}
}
