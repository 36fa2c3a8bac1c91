// Package collate resolves the six tag-native wire formats audiometa
// parses into a single best-effort logical view: one title, one artist,
// one track number, and so on, chosen by a configurable per-kind
// priority order and cleaned up by a small amount of text amelioration
// (whitespace/NUL trimming, mis-decoded-Cyrillic recovery).
package collate

import "github.com/squeek502/audiometa-sub000"

// Priority marks whether a tag kind contributes values unconditionally
// (Normal) or only once every Normal-priority kind has contributed
// nothing (LastResort): ID3v1's historically unreliable, truncated
// fields are the usual LastResort candidate.
type Priority int

const (
	Normal Priority = iota
	LastResort
)

// KindPriority pairs a tag kind with its Priority within a Prioritization
// order.
type KindPriority struct {
	Kind     audiometa.Kind
	Priority Priority
}

// DuplicateTagStrategy decides how multiple tags of the same kind found
// in one stream (e.g. two ID3v2 tags, legal but unusual) are ordered
// relative to each other before cross-kind Prioritization is applied.
type DuplicateTagStrategy int

const (
	// PrioritizeBest sorts same-kind tags by field count, descending, so
	// the most complete tag of that kind comes first; tags with equal
	// counts keep file discovery order.
	PrioritizeBest DuplicateTagStrategy = iota
	// PrioritizeFirst keeps same-kind tags in file discovery order.
	PrioritizeFirst
	// IgnoreDuplicates keeps only the first tag of each kind.
	IgnoreDuplicates
)

// Config configures a Collator.
type Config struct {
	Prioritization       []KindPriority
	DuplicateTagStrategy DuplicateTagStrategy
}

// DefaultPrioritization is the order most real-world collections benefit
// from: formats with rich, unambiguous metadata first, ID3v1's fixed,
// truncated fields last and only as a last resort.
func DefaultPrioritization() []KindPriority {
	return []KindPriority{
		{Kind: audiometa.KindMP4, Priority: Normal},
		{Kind: audiometa.KindFLAC, Priority: Normal},
		{Kind: audiometa.KindVorbis, Priority: Normal},
		{Kind: audiometa.KindID3v2, Priority: Normal},
		{Kind: audiometa.KindAPE, Priority: Normal},
		{Kind: audiometa.KindID3v1, Priority: LastResort},
	}
}

// DefaultConfig returns the Config the package uses unless overridden:
// DefaultPrioritization and PrioritizeBest.
func DefaultConfig() Config {
	return Config{
		Prioritization:       DefaultPrioritization(),
		DuplicateTagStrategy: PrioritizeBest,
	}
}
