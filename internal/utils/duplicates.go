package utils

import (
	"strings"
)

// DuplicateFilter remembers keys it has seen, case-insensitively. It is not
// safe for concurrent use.
type DuplicateFilter struct {
	seen map[string]bool
}

// NewDuplicateFilter creates an empty filter.
func NewDuplicateFilter() *DuplicateFilter {
	return &DuplicateFilter{seen: make(map[string]bool)}
}

// ShouldInclude reports whether the key is new and records it.
// Returns false for a key that was seen before in any letter case.
func (f *DuplicateFilter) ShouldInclude(parts ...string) bool {
	key := strings.ToUpper(strings.Join(parts, "\x00"))
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}

// Len is the number of distinct keys seen.
func (f *DuplicateFilter) Len() int { return len(f.seen) }
