package collate

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// dedupeKey folds case and normalises to NFC so that values differing
// only by case or by Unicode composition (e.g. precomposed "é" vs. "e" +
// combining acute) are treated as the same logical value.
func dedupeKey(s string) string {
	return norm.NFC.String(foldCaser.String(s))
}

// CollatedTextSet is an insertion-ordered set of strings, deduplicated by
// case-folded, NFC-normalised equivalence: inserting "Café" after "café"
// (already present) is a no-op, but the set keeps the first spelling seen.
type CollatedTextSet struct {
	values []string
	seen   map[string]bool
}

// NewCollatedTextSet returns an empty CollatedTextSet.
func NewCollatedTextSet() *CollatedTextSet {
	return &CollatedTextSet{seen: make(map[string]bool)}
}

// Add inserts s if no case/canonical-equivalent value is already present.
// Returns true if s was newly added.
func (c *CollatedTextSet) Add(s string) bool {
	if s == "" {
		return false
	}
	k := dedupeKey(s)
	if c.seen[k] {
		return false
	}
	c.seen[k] = true
	c.values = append(c.values, s)
	return true
}

// Values returns the set's members in insertion order.
func (c *CollatedTextSet) Values() []string {
	return c.values
}

// Len returns the number of distinct values in the set.
func (c *CollatedTextSet) Len() int { return len(c.values) }
