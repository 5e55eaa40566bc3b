package manager

import (
	"strings"

	"github.com/hipotures/todoit/internal/types"
)

// AccessScope is the process-wide tag predicate resolved once at Manager
// construction from the FORCE_TAGS / FILTER_TAGS configuration. It is
// immutable after construction; mid-process configuration changes do not
// take effect.
//
// When ForceTags is non-empty the scope is enforced: listings show only
// lists carrying ALL forced tags, list-addressed mutations on other
// lists are denied, new lists are auto-tagged, and forced tags cannot
// be removed. FilterTags applies only when ForceTags is empty and only
// narrows listings (ANY semantics); it never restricts writes.
type AccessScope struct {
	ForceTags  []string
	FilterTags []string
}

// NewAccessScope normalizes both tag sets (lower case, trimmed, deduped).
// Force tags take precedence: when present, filter tags are dropped.
func NewAccessScope(forceTags, filterTags []string) AccessScope {
	force := normalizeTagNames(forceTags)
	if len(force) > 0 {
		return AccessScope{ForceTags: force}
	}
	return AccessScope{FilterTags: normalizeTagNames(filterTags)}
}

// Enforced reports whether force-tags mode is active
func (s AccessScope) Enforced() bool {
	return len(s.ForceTags) > 0
}

// Filtered reports whether listings are narrowed by filter tags
func (s AccessScope) Filtered() bool {
	return len(s.FilterTags) > 0
}

// IsForceTag reports whether name (after normalization) is one of the
// forced tags
func (s AccessScope) IsForceTag(name string) bool {
	name = normalizeTagName(name)
	for _, t := range s.ForceTags {
		if t == name {
			return true
		}
	}
	return false
}

// allows reports whether a list carrying the given tags is inside the
// forced scope. Without force-tags every list is allowed.
func (s AccessScope) allows(tags []*types.Tag) bool {
	if !s.Enforced() {
		return true
	}
	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[t.Name] = true
	}
	for _, name := range s.ForceTags {
		if !have[name] {
			return false
		}
	}
	return true
}

func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = normalizeTagName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
