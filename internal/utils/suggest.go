// Package utils holds small string helpers shared by the CLI,
// mainly "did you mean" suggestions for mistyped list and item keys.
package utils

import "strings"

// EditDistance returns the case-insensitive Levenshtein distance
// between a and b.
func EditDistance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// ClosestMatch returns the candidate nearest to query within
// maxDistance edits. Ties keep the earlier candidate. Returns false
// when nothing is close enough.
func ClosestMatch(query string, candidates []string, maxDistance int) (string, bool) {
	if query == "" {
		return "", false
	}
	best := ""
	bestDist := maxDistance + 1
	for _, c := range candidates {
		if d := EditDistance(query, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= maxDistance
}

// IsSubsequence reports whether every rune of needle appears in
// haystack in order, case-insensitively. Used to rank loose key
// matches where edit distance is too strict.
func IsSubsequence(needle, haystack string) bool {
	needle = strings.ToLower(needle)
	haystack = strings.ToLower(haystack)
	n := []rune(needle)
	i := 0
	for _, r := range haystack {
		if i < len(n) && n[i] == r {
			i++
		}
	}
	return i == len(n)
}
