package collate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/squeek502/audiometa-sub000"
	"github.com/squeek502/audiometa-sub000/internal/textenc"
)

// Collator resolves an AllMetadata's tags into logical field values
// according to a Config's prioritisation and duplicate-tag handling.
type Collator struct {
	all audiometa.AllMetadata
	cfg Config
}

// New returns a Collator over all using cfg.
func New(all audiometa.AllMetadata, cfg Config) *Collator {
	return &Collator{all: all, cfg: cfg}
}

// orderedTags returns every tag in all, grouped by kind per
// DuplicateTagStrategy, then flattened in Prioritization order
// (LastResort kinds placed after every Normal kind, in the configured
// relative order within each tier).
func (c *Collator) orderedTags() []audiometa.TypedMetadata {
	byKind := make(map[audiometa.Kind][]audiometa.TypedMetadata)
	for _, t := range c.all.Tags {
		byKind[t.Kind] = append(byKind[t.Kind], t)
	}
	for k, tags := range byKind {
		byKind[k] = orderDuplicates(tags, c.cfg.DuplicateTagStrategy)
	}

	var normal, lastResort []audiometa.TypedMetadata
	for _, kp := range c.cfg.Prioritization {
		tags := byKind[kp.Kind]
		if kp.Priority == LastResort {
			lastResort = append(lastResort, tags...)
		} else {
			normal = append(normal, tags...)
		}
	}
	return append(normal, lastResort...)
}

func orderDuplicates(tags []audiometa.TypedMetadata, strategy DuplicateTagStrategy) []audiometa.TypedMetadata {
	switch strategy {
	case IgnoreDuplicates:
		if len(tags) == 0 {
			return nil
		}
		return tags[:1]
	case PrioritizeBest:
		sorted := make([]audiometa.TypedMetadata, len(tags))
		copy(sorted, tags)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Map.Len() > sorted[j].Map.Len()
		})
		return sorted
	default: // PrioritizeFirst
		return tags
	}
}

// ameliorateCanonical trims stray spaces/NUL padding and, when the result
// looks like Windows-1251 Cyrillic that was decoded as Latin-1 upstream,
// recovers the intended text.
func ameliorateCanonical(s string) string {
	s = strings.Trim(s, " \x00")
	if s == "" {
		return ""
	}
	if textenc.LooksLikeMisdecodedCyrillic(s) {
		if recovered, err := textenc.ReencodeAsWindows1251(s); err == nil {
			return recovered
		}
	}
	return s
}

// getPrioritizedValue walks orderedTags, and for each tries every
// tag-native key that field maps to (in order), returning the first
// ameliorated non-empty value found.
func (c *Collator) getPrioritizedValue(field string) (string, bool) {
	for _, t := range c.orderedTags() {
		for _, key := range keysFor(field, t.Kind) {
			if v, ok := t.Map.GetFirst(key); ok {
				if v := ameliorateCanonical(v); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

// getValuesFromKeys walks orderedTags and inserts every value found under
// any of field's keys (for each tag's kind) into a CollatedTextSet,
// honouring LastResort only when no Normal-priority tag contributed
// anything for this field.
func (c *Collator) getValuesFromKeys(field string) *CollatedTextSet {
	set := NewCollatedTextSet()
	contributedNormal := false

	normalKinds := make(map[audiometa.Kind]bool)
	for _, kp := range c.cfg.Prioritization {
		if kp.Priority == Normal {
			normalKinds[kp.Kind] = true
		}
	}

	var lastResortTags []audiometa.TypedMetadata
	for _, t := range c.orderedTags() {
		if !normalKinds[t.Kind] {
			lastResortTags = append(lastResortTags, t)
			continue
		}
		for _, key := range keysFor(field, t.Kind) {
			for _, v := range t.Map.GetAll(key) {
				if set.Add(ameliorateCanonical(v)) {
					contributedNormal = true
				}
			}
		}
	}
	if contributedNormal {
		return set
	}
	for _, t := range lastResortTags {
		for _, key := range keysFor(field, t.Kind) {
			for _, v := range t.Map.GetAll(key) {
				set.Add(ameliorateCanonical(v))
			}
		}
	}
	return set
}

// Title returns the prioritised title, if any.
func (c *Collator) Title() (string, bool) { return c.getPrioritizedValue("title") }

// Titles returns every distinct title value across all tags.
func (c *Collator) Titles() []string { return c.getValuesFromKeys("title").Values() }

// Artist returns the prioritised artist, if any.
func (c *Collator) Artist() (string, bool) { return c.getPrioritizedValue("artist") }

// Artists returns every distinct artist value across all tags.
func (c *Collator) Artists() []string { return c.getValuesFromKeys("artist").Values() }

// AlbumArtist returns the prioritised album artist, if any.
func (c *Collator) AlbumArtist() (string, bool) { return c.getPrioritizedValue("album_artist") }

// Album returns the prioritised album, if any.
func (c *Collator) Album() (string, bool) { return c.getPrioritizedValue("album") }

// Albums returns every distinct album value across all tags.
func (c *Collator) Albums() []string { return c.getValuesFromKeys("album").Values() }

// Genre returns the prioritised genre, if any.
func (c *Collator) Genre() (string, bool) { return c.getPrioritizedValue("genre") }

// Date returns the prioritised date/year, if any.
func (c *Collator) Date() (string, bool) { return c.getPrioritizedValue("date") }

// Composer returns the prioritised composer, if any.
func (c *Collator) Composer() (string, bool) { return c.getPrioritizedValue("composer") }

// Comment returns the prioritised comment, if any.
func (c *Collator) Comment() (string, bool) { return c.getPrioritizedValue("comment") }

// Copyright returns the prioritised copyright string, if any.
func (c *Collator) Copyright() (string, bool) { return c.getPrioritizedValue("copyright") }

// Encoder returns the prioritised encoder string, if any.
func (c *Collator) Encoder() (string, bool) { return c.getPrioritizedValue("encoder") }

// Grouping returns the prioritised grouping string, if any.
func (c *Collator) Grouping() (string, bool) { return c.getPrioritizedValue("grouping") }

// TrackNumber parses the prioritised track_number value as "N[/M]",
// falling back to the track_total field for M when absent or zero.
// ok is false when N is missing, zero or unparsable; a total that is
// still zero or unparsable after the fallback is returned as 0.
func (c *Collator) TrackNumber() (number, total int, ok bool) {
	return c.numberPair("track_number", "track_total")
}

// DiscNumber parses the prioritised disc_number value the same way as
// TrackNumber, falling back to disc_total.
func (c *Collator) DiscNumber() (number, total int, ok bool) {
	return c.numberPair("disc_number", "disc_total")
}

func (c *Collator) numberPair(numberField, totalField string) (number, total int, ok bool) {
	v, found := c.getPrioritizedValue(numberField)
	if !found {
		return 0, 0, false
	}
	n, t := parseNumberPair(v)
	if n == 0 {
		return 0, 0, false
	}
	if t == 0 {
		if tv, tok := c.getPrioritizedValue(totalField); tok {
			if parsed, err := strconv.Atoi(strings.TrimSpace(tv)); err == nil {
				t = parsed
			}
		}
	}
	return n, t, true
}

// parseNumberPair parses the "NUMBER [/ TOTAL]" grammar. A zero on either
// side means "absent".
func parseNumberPair(v string) (number, total int) {
	v = strings.TrimSpace(v)
	parts := strings.SplitN(v, "/", 2)
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0
	}
	if len(parts) == 2 {
		if t, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			total = t
		}
	}
	return n, total
}

// TrackNumbers collects every numerator and every denominator seen across
// every tag's track_number value into two deduplicated, insertion-ordered
// sets.
func (c *Collator) TrackNumbers() (numbers, totals []int) {
	return c.numberSets("track_number")
}

// DiscNumbers collects every numerator and denominator seen across every
// tag's disc_number value.
func (c *Collator) DiscNumbers() (numbers, totals []int) {
	return c.numberSets("disc_number")
}

func (c *Collator) numberSets(field string) (numbers, totals []int) {
	seenN := make(map[int]bool)
	seenT := make(map[int]bool)
	for _, t := range c.orderedTags() {
		for _, key := range keysFor(field, t.Kind) {
			for _, v := range t.Map.GetAll(key) {
				n, total := parseNumberPair(v)
				if n != 0 && !seenN[n] {
					seenN[n] = true
					numbers = append(numbers, n)
				}
				if total != 0 && !seenT[total] {
					seenT[total] = true
					totals = append(totals, total)
				}
			}
		}
	}
	return numbers, totals
}
