package audiometa

// FullTextEntry is one {language, description, value} triple, the shape
// shared by ID3v2's COMM (comment) and USLT (unsynchronised lyrics)
// frames.
type FullTextEntry struct {
	Language    [3]byte
	Description string
	Value       string
}

// FullTextMap stores FullTextEntry values with two secondary indexes, by
// language and by description, mirroring the ID3v2 spec's own lookup keys
// for these frame kinds.
type FullTextMap struct {
	Entries  []FullTextEntry
	byLang   map[string][]int
	byDesc   map[string][]int
}

// NewFullTextMap returns an empty FullTextMap.
func NewFullTextMap() *FullTextMap {
	return &FullTextMap{
		byLang: make(map[string][]int),
		byDesc: make(map[string][]int),
	}
}

// Append adds an entry.
func (f *FullTextMap) Append(e FullTextEntry) {
	idx := len(f.Entries)
	f.Entries = append(f.Entries, e)
	lang := string(e.Language[:])
	f.byLang[lang] = append(f.byLang[lang], idx)
	f.byDesc[e.Description] = append(f.byDesc[e.Description], idx)
}

// ByLanguage returns every entry with the given 3-byte language code.
func (f *FullTextMap) ByLanguage(lang [3]byte) []FullTextEntry {
	idxs := f.byLang[string(lang[:])]
	out := make([]FullTextEntry, len(idxs))
	for i, idx := range idxs {
		out[i] = f.Entries[idx]
	}
	return out
}

// ByDescription returns every entry with the given description.
func (f *FullTextMap) ByDescription(desc string) []FullTextEntry {
	idxs := f.byDesc[desc]
	out := make([]FullTextEntry, len(idxs))
	for i, idx := range idxs {
		out[i] = f.Entries[idx]
	}
	return out
}

// First returns the first entry, if any.
func (f *FullTextMap) First() (FullTextEntry, bool) {
	if len(f.Entries) == 0 {
		return FullTextEntry{}, false
	}
	return f.Entries[0], true
}

// Len returns the number of entries.
func (f *FullTextMap) Len() int { return len(f.Entries) }
