package audiometa

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/squeek502/audiometa-sub000/internal/textenc"
)

var (
	utf16BOMDecoder = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	utf16BEDecoder  = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
)

// decodeID3v2Frame dispatches a frame's decoded body to the right
// destination: TXXX/TXX become a key/value pair in m, COMM/USLT become
// FullTextEntry values, ordinary T*** frames store one or more values
// under the frame id, and everything else is silently dropped (its bytes
// were already consumed by the caller, so the stream stays in sync).
func decodeID3v2Frame(id string, body []byte, m *MetadataMap, comments, lyrics *FullTextMap) error {
	switch id {
	case "TXX", "TXXX":
		return decodeID3v2UserTextFrame(body, m)
	case "COM", "COMM":
		e, err := decodeID3v2FullTextFrame(body)
		if err != nil {
			return err
		}
		comments.Append(e)
		return nil
	case "ULT", "USLT":
		e, err := decodeID3v2FullTextFrame(body)
		if err != nil {
			return err
		}
		lyrics.Append(e)
		return nil
	}
	if len(id) > 0 && id[0] == 'T' {
		return decodeID3v2TextFrame(id, body, m)
	}
	return nil
}

func decodeID3v2TextFrame(id string, body []byte, m *MetadataMap) error {
	if len(body) == 0 {
		return ErrZeroSizeFrame
	}
	values, err := splitID3v2TextValues(body[0], body[1:])
	if err != nil {
		return err
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		m.Append(id, v)
	}
	return nil
}

func decodeID3v2UserTextFrame(body []byte, m *MetadataMap) error {
	if len(body) == 0 {
		return ErrZeroSizeFrame
	}
	encByte := body[0]
	delim, err := id3v2EncodingDelim(encByte)
	if err != nil {
		return err
	}
	keyRaw, valueRaw, ok := splitFirstID3v2Field(body[1:], delim)
	if !ok {
		return ErrInvalidUserDefinedText
	}
	key, err := decodeID3v2Text(encByte, keyRaw)
	if err != nil {
		return err
	}
	value, err := decodeID3v2Text(encByte, valueRaw)
	if err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidUserDefinedText
	}
	m.Append(key, value)
	return nil
}

func decodeID3v2FullTextFrame(body []byte) (FullTextEntry, error) {
	if len(body) < 4 {
		return FullTextEntry{}, ErrUnexpectedTextDataEnd
	}
	encByte := body[0]
	var lang [3]byte
	copy(lang[:], body[1:4])

	delim, err := id3v2EncodingDelim(encByte)
	if err != nil {
		return FullTextEntry{}, err
	}
	descRaw, valueRaw, ok := splitFirstID3v2Field(body[4:], delim)
	if !ok {
		return FullTextEntry{}, ErrUnexpectedTextDataEnd
	}
	desc, err := decodeID3v2Text(encByte, descRaw)
	if err != nil {
		return FullTextEntry{}, err
	}
	value, err := decodeID3v2Text(encByte, valueRaw)
	if err != nil {
		return FullTextEntry{}, err
	}
	return FullTextEntry{Language: lang, Description: desc, Value: value}, nil
}

// splitID3v2TextValues splits raw on the encoding's null delimiter into
// zero or more values (a v2.4 text frame may carry several null-separated
// strings; v2.2/v2.3 accept the same shape).
func splitID3v2TextValues(encByte byte, raw []byte) ([]string, error) {
	delim, err := id3v2EncodingDelim(encByte)
	if err != nil {
		return nil, err
	}
	var out []string
	for {
		idx := bytes.Index(raw, delim)
		if idx < 0 {
			s, err := decodeID3v2Text(encByte, raw)
			if err != nil {
				return nil, err
			}
			return append(out, s), nil
		}
		s, err := decodeID3v2Text(encByte, raw[:idx])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		raw = raw[idx+len(delim):]
		if len(raw) == 0 {
			return out, nil
		}
	}
}

// splitFirstID3v2Field splits b at the first occurrence of delim,
// returning ok == false if delim does not appear.
func splitFirstID3v2Field(b, delim []byte) (first, rest []byte, ok bool) {
	idx := bytes.Index(b, delim)
	if idx < 0 {
		return nil, nil, false
	}
	return b[:idx], b[idx+len(delim):], true
}

func id3v2EncodingDelim(encByte byte) ([]byte, error) {
	switch encByte {
	case 0, 3:
		return []byte{0x00}, nil
	case 1, 2:
		return []byte{0x00, 0x00}, nil
	default:
		return nil, ErrInvalidTextEncodingByte
	}
}

// decodeID3v2Text decodes a frame text field according to the ID3v2
// encoding byte: 0 Latin-1, 1 UTF-16 with a byte-order mark, 2 UTF-16
// big-endian without a BOM, 3 UTF-8.
func decodeID3v2Text(encByte byte, b []byte) (string, error) {
	switch encByte {
	case 0:
		return textenc.DecodeLatin1(b), nil
	case 1:
		return decodeID3v2UTF16BOM(b)
	case 2:
		return decodeID3v2UTF16BE(b)
	case 3:
		if !utf8.Valid(b) {
			return "", ErrInvalidUTF16Data
		}
		return string(b), nil
	default:
		return "", ErrInvalidTextEncodingByte
	}
}

func decodeID3v2UTF16BOM(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	if len(b) < 2 {
		return "", ErrInvalidUTF16BOM
	}
	out, err := utf16BOMDecoder.Bytes(b)
	if err != nil {
		return "", ErrInvalidUTF16BOM
	}
	return string(out), nil
}

func decodeID3v2UTF16BE(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16BEDecoder.Bytes(b)
	if err != nil {
		return "", ErrInvalidUTF16Data
	}
	return string(out), nil
}
