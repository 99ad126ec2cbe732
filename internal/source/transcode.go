package source

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// transcodeToUTF8 converts data (with any BOM already stripped) from enc to
// UTF-8. UTF-16 goes through golang.org/x/text, which ships a correct
// surrogate-pair-aware decoder; UTF-32 has no such decoder in the
// ecosystem's x/text package, so it is decoded by hand from fixed 4-byte
// code units, which is a direct unicode/utf8 encode with no meaningful
// library to delegate to.
func transcodeToUTF8(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8:
		return data, nil
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	case EncodingUTF32LE:
		return decodeUTF32(data, binary.LittleEndian)
	case EncodingUTF32BE:
		return decodeUTF32(data, binary.BigEndian)
	default:
		return data, nil
	}
}

func decodeUTF32(data []byte, order binary.ByteOrder) ([]byte, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("source: UTF-32 input length %d is not a multiple of 4", len(data))
	}
	out := make([]byte, 0, len(data))
	var buf [utf8.UTFMax]byte
	for i := 0; i < len(data); i += 4 {
		cp := rune(order.Uint32(data[i : i+4]))
		if cp < 0 || cp > utf8.MaxRune {
			cp = utf8.RuneError
		}
		n := utf8.EncodeRune(buf[:], cp)
		out = append(out, buf[:n]...)
	}
	return out, nil
}

// decodeNamed interprets raw bytes under an explicitly named encoding, used
// when the caller overrides BOM sniffing with --encoding=NAME.
func decodeNamed(raw []byte, name string) ([]byte, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return raw, nil
	case "utf-16le":
		return transcodeToUTF8(raw, EncodingUTF16LE)
	case "utf-16be":
		return transcodeToUTF8(raw, EncodingUTF16BE)
	case "utf-32le":
		return transcodeToUTF8(raw, EncodingUTF32LE)
	case "utf-32be":
		return transcodeToUTF8(raw, EncodingUTF32BE)
	case "ascii", "us-ascii":
		return asciiToUTF8(raw), nil
	case "latin1", "iso-8859-1":
		return latin1ToUTF8(raw), nil
	default:
		return nil, fmt.Errorf("source: unknown encoding %q", name)
	}
}

// asciiToUTF8 replaces any byte >= 0x80 with the Unicode replacement
// character; well-formed ASCII passes through unchanged.
func asciiToUTF8(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	var buf [utf8.UTFMax]byte
	for _, b := range raw {
		if b < 0x80 {
			out = append(out, b)
			continue
		}
		n := utf8.EncodeRune(buf[:], utf8.RuneError)
		out = append(out, buf[:n]...)
	}
	return out
}

// latin1ToUTF8 maps each byte directly to the identically numbered Unicode
// code point, which is exactly what ISO-8859-1 means.
func latin1ToUTF8(raw []byte) []byte {
	out := make([]byte, 0, len(raw)*2)
	var buf [utf8.UTFMax]byte
	for _, b := range raw {
		n := utf8.EncodeRune(buf[:], rune(b))
		out = append(out, buf[:n]...)
	}
	return out
}
