package audiometa

import (
	"io"

	"github.com/squeek502/audiometa-sub000/internal/streamio"
)

// ReadAll discovers and decodes every tag present in s, in two passes: a
// prefixed pass starting at the current position (ID3v2, FLAC,
// Ogg-Vorbis, APE, MP4) and a suffixed pass working backward from
// end-of-file (ID3v1, APE, ID3v2-via-footer). Accepted tags are returned
// in file discovery order, never overlapping.
func ReadAll(s streamio.Source) (AllMetadata, error) {
	var all AllMetadata

	if err := readAllPrefixed(s, &all); err != nil {
		return AllMetadata{}, err
	}
	if err := readAllSuffixed(s, &all); err != nil {
		return AllMetadata{}, err
	}
	return all, nil
}

// prefixedParsers is the order Pass 1 tries parsers whose tags are
// written at the head of a stream (or, for APE, optionally at the head).
var prefixedParsers = []func(streamio.Source) (TypedMetadata, error){
	readID3v2,
	readFLAC,
	readOggVorbis,
	readAPEFromHeader,
}

// suffixedParsers is the order Pass 2 tries parsers whose tags are
// written at the tail of a stream, discovered by seeking backward from
// end-of-file.
var suffixedParsers = []func(streamio.Source) (TypedMetadata, error){
	readID3v1,
	readAPEFromFooter,
	readID3v2FromFooter,
}

func readAllPrefixed(s streamio.Source, all *AllMetadata) error {
	first := true
	for {
		pos, err := s.Pos()
		if err != nil {
			return err
		}

		md, ok, err := tryParsers(s, pos, prefixedParsers)
		if err != nil {
			return err
		}
		if !ok && first {
			// MP4's metadata lives inside a top-level atom tree rather than
			// a prefixed tag, and is only plausible at the very start of
			// the stream.
			if mmd, merr := tryOne(s, pos, readMP4); merr != nil {
				return merr
			} else if mmd != nil {
				appendAccepted(all, *mmd)
				return nil
			}
		}
		first = false
		if !ok {
			return nil
		}
		appendAccepted(all, md)

		// Resume at the tag's recorded end, not wherever its parser left
		// the cursor (an APE header-first parse stops before its footer).
		end := int64(md.EndOffset)
		if _, err := s.Seek(end, io.SeekStart); err != nil {
			return err
		}
	}
}

func readAllSuffixed(s streamio.Source, all *AllMetadata) error {
	end, err := s.EndPos()
	if err != nil {
		return err
	}
	for {
		if _, err := s.Seek(end, io.SeekStart); err != nil {
			return err
		}

		md, ok, err := tryParsers(s, end, suffixedParsers)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if overlapsAccepted(all, md.StartOffset, md.EndOffset) {
			return nil
		}
		appendAccepted(all, md)
		end = md.StartOffset
	}
}

// tryParsers attempts each parser in order at the stream's current
// position, restoring the cursor to pos after any non-fatal failure. The
// first success wins; any OOM error propagates immediately.
func tryParsers(s streamio.Source, pos int64, parsers []func(streamio.Source) (TypedMetadata, error)) (TypedMetadata, bool, error) {
	for _, parse := range parsers {
		if _, err := s.Seek(pos, io.SeekStart); err != nil {
			return TypedMetadata{}, false, err
		}
		md, err := parse(s)
		if err == nil {
			return md, true, nil
		}
		if isOOMError(err) {
			return TypedMetadata{}, false, err
		}
		// Any other error means "not this format here"; restore the
		// cursor and try the next parser.
		if _, serr := s.Seek(pos, io.SeekStart); serr != nil {
			return TypedMetadata{}, false, serr
		}
	}
	return TypedMetadata{}, false, nil
}

func tryOne(s streamio.Source, pos int64, parse func(streamio.Source) (TypedMetadata, error)) (*TypedMetadata, error) {
	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}
	md, err := parse(s)
	if err == nil {
		return &md, nil
	}
	if isOOMError(err) {
		return nil, err
	}
	if _, serr := s.Seek(pos, io.SeekStart); serr != nil {
		return nil, serr
	}
	return nil, nil
}

// isOOMError reports whether err represents a resource-exhaustion failure
// that must abort discovery outright rather than be treated as "format
// not found here". Go's runtime surfaces out-of-memory as a fatal error
// that can't be recovered via the normal error-return path, so in
// practice no parser error reaching here is ever OOM; this hook exists so
// a future allocator-aware Source implementation has somewhere to signal
// it.
func isOOMError(err error) bool {
	return false
}

func appendAccepted(all *AllMetadata, md TypedMetadata) {
	all.Tags = append(all.Tags, md)
}

// overlapsAccepted reports whether [start,end) overlaps any tag already
// accepted into all.
func overlapsAccepted(all *AllMetadata, start, end uint64) bool {
	for _, t := range all.Tags {
		if rangesOverlap(start, end, t.StartOffset, t.EndOffset) {
			return true
		}
	}
	return false
}
