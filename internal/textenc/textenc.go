// Package textenc converts the two single-byte encodings the tag formats
// use (Latin-1 and, heuristically, Windows-1251) to UTF-8, and carries the
// detector that tells whether an already-decoded Latin-1 string is more
// likely mis-decoded Cyrillic.
package textenc

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// ErrInvalidWindows1251Byte is returned by DecodeWindows1251 for the single
// Windows-1251 byte (0x98) that has no assigned codepoint.
var ErrInvalidWindows1251Byte = errors.New("textenc: invalid windows-1251 byte 0x98")

// DecodeLatin1 converts Latin-1 (ISO-8859-1) bytes to UTF-8. Every byte
// value 0-255 maps directly to the identical Unicode codepoint, so this
// conversion always succeeds; a charmap round-trip would do no more than
// this loop already does, just less directly.
func DecodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, x := range b {
		r[i] = rune(x)
	}
	return string(r)
}

// DecodeWindows1251 converts Windows-1251 bytes to UTF-8 using the fixed
// 256-entry table from golang.org/x/text. Byte 0x98 is unassigned in
// Windows-1251 and is the only input that fails.
func DecodeWindows1251(b []byte) (string, error) {
	out := make([]byte, 0, len(b))
	for _, x := range b {
		if x == 0x98 {
			return "", ErrInvalidWindows1251Byte
		}
		r := charmap.Windows1251.DecodeByte(x)
		out = append(out, []byte(string(r))...)
	}
	return string(out), nil
}

// isCyrillicByte reports whether b falls in the Windows-1251 Cyrillic
// block's 0xC0-0xFF run. The scattered Cyrillic letters below 0xC0 (Ё, ё,
// Ukrainian and Belarusian letters, and so on) are not counted.
func isCyrillicByte(b byte) bool {
	// Windows-1251 maps 0xC0-0xFF to U+0410-U+044F (А-я) contiguously;
	// that run covers the overwhelming majority of real-world Cyrillic
	// text and is what the detector keys on.
	return b >= 0xC0 && b <= 0xFF
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// LooksLikeMisdecodedCyrillic reports whether s (a string whose codepoints
// are all already known to be in 0x00-0xFF, i.e. a Latin-1 round-trip of
// raw bytes) is more likely to be Windows-1251-encoded Cyrillic text that
// got decoded as Latin-1.
//
// The heuristic: a run of >=4 consecutive bytes in the Windows-1251
// Cyrillic block is decisive; absent that, >=2 such bytes are enough only
// if the string contains no plain ASCII letter (mixed Cyrillic/Latin text
// in the wild almost always keeps at least one ASCII letter, e.g. in a
// featuring-artist credit, so requiring zero ASCII letters for the
// low-confidence path avoids false positives on e.g. French diacritics).
func LooksLikeMisdecodedCyrillic(s string) bool {
	hasASCIILetter := false
	cyrillicCount := 0
	maxRun := 0
	run := 0
	for _, r := range s {
		if r > 0xFF {
			return false
		}
		b := byte(r)
		if b == 0x98 {
			return false
		}
		if isASCIILetter(b) {
			hasASCIILetter = true
		}
		if isCyrillicByte(b) {
			cyrillicCount++
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	if maxRun >= 4 {
		return true
	}
	if !hasASCIILetter && cyrillicCount >= 2 {
		return true
	}
	return false
}

// ReencodeAsWindows1251 re-interprets each codepoint of s (which must be
// all within 0x00-0xFF) as a Windows-1251 byte and converts the result to
// UTF-8. Used by the Collator to recover text that was Windows-1251 but
// got decoded as Latin-1 upstream.
func ReencodeAsWindows1251(s string) (string, error) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return DecodeWindows1251(b)
}
