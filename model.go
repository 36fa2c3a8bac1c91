// Package audiometa reads audio-file metadata tags from a seekable byte
// stream. It discovers and decodes every tag a file contains across six
// wire formats (ID3v1, ID3v2.{2,3,4}, APEv1/v2, FLAC Vorbis comments,
// standalone Ogg-Vorbis comments, and MP4/iTunes ilst atoms) into a
// structured, UTF-8 view, preserving tag-native key names verbatim. It
// does not interpret field semantics or write tags; see the collate
// subpackage for cross-format field resolution.
package audiometa

// Kind identifies which of the six supported tag wire formats a
// TypedMetadata instance was parsed from.
type Kind int

const (
	KindID3v1 Kind = iota
	KindID3v2
	KindAPE
	KindFLAC
	KindVorbis
	KindMP4
)

// String renders the Kind for diagnostics and CLI output.
func (k Kind) String() string {
	switch k {
	case KindID3v1:
		return "id3v1"
	case KindID3v2:
		return "id3v2"
	case KindAPE:
		return "ape"
	case KindFLAC:
		return "flac"
	case KindVorbis:
		return "vorbis"
	case KindMP4:
		return "mp4"
	default:
		return "unknown"
	}
}

// Metadata is the per-tag store shared by every kind: the decoded
// key-value pairs and the absolute byte range the tag occupied in the
// original stream, header included.
type Metadata struct {
	Map         *MetadataMap
	StartOffset uint64
	EndOffset   uint64
}

// ID3v2TagHeader captures the fixed fields of an ID3v2 tag header that the
// rest of the system needs after parsing (the frame data itself lives in
// the embedded Metadata.Map, plus Comments/UnsynchronizedLyrics below).
type ID3v2TagHeader struct {
	MajorVersion int
	Revision     int
	Flags        byte
	// Size is the declared tag body size in bytes: excludes the 10-byte
	// header, includes any extended header, padding, and (for v2.4)
	// footer-adjacent data but not the footer block itself.
	Size int
}

// APEHeaderRecord is the 32-byte APE header/footer record.
type APEHeaderRecord struct {
	Version   uint32
	TagSize   uint32
	ItemCount uint32
	Flags     uint32
}

const (
	apeFlagHasHeader = 1 << 31
	apeFlagHasFooter = 1 << 30
	apeFlagIsHeader  = 1 << 29
)

// HasHeader reports the APE has-header flag bit.
func (h APEHeaderRecord) HasHeader() bool { return h.Flags&apeFlagHasHeader != 0 }

// HasFooter reports the APE has-footer flag bit.
func (h APEHeaderRecord) HasFooter() bool { return h.Flags&apeFlagHasFooter != 0 }

// IsHeader reports whether this record is itself a header (as opposed to
// a footer).
func (h APEHeaderRecord) IsHeader() bool { return h.Flags&apeFlagIsHeader != 0 }

// TypedMetadata is the tagged-union result of parsing one tag instance.
// Only the fields relevant to Kind are populated; the ID3v2 and APE
// variants carry extra format-specific data alongside the shared Metadata.
type TypedMetadata struct {
	Kind Kind
	Metadata

	// ID3v2-only.
	ID3v2Header           *ID3v2TagHeader
	Comments               *FullTextMap
	UnsynchronizedLyrics   *FullTextMap

	// APE-only.
	APEHeader *APEHeaderRecord
}

// AllMetadata is the ordered collection of every tag discovered in one
// stream, in file discovery order (not priority order; see the collate
// subpackage for that).
type AllMetadata struct {
	Tags []TypedMetadata
}

// FilterByKind returns every tag of the given kind, preserving discovery
// order.
func (a AllMetadata) FilterByKind(k Kind) []TypedMetadata {
	var out []TypedMetadata
	for _, t := range a.Tags {
		if t.Kind == k {
			out = append(out, t)
		}
	}
	return out
}

// FirstOfKind returns the first tag of kind k in discovery order.
func (a AllMetadata) FirstOfKind(k Kind) (TypedMetadata, bool) {
	for _, t := range a.Tags {
		if t.Kind == k {
			return t, true
		}
	}
	return TypedMetadata{}, false
}

// LastOfKind returns the last tag of kind k in discovery order.
func (a AllMetadata) LastOfKind(k Kind) (TypedMetadata, bool) {
	var found TypedMetadata
	ok := false
	for _, t := range a.Tags {
		if t.Kind == k {
			found = t
			ok = true
		}
	}
	return found, ok
}

// rangesOverlap reports whether [aStart,aEnd) and [bStart,bEnd) overlap,
// the check the discovery driver uses to refuse accepting a tag that
// overlaps bytes a previously accepted tag already claimed.
func rangesOverlap(aStart, aEnd, bStart, bEnd uint64) bool {
	return aStart < bEnd && bStart < aEnd
}
