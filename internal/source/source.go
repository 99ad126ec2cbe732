// Package source abstracts a readable byte stream over a plain file, a
// memory-mapped region, or a decompression chain, and normalizes it to
// UTF-8 by sniffing a byte-order mark and transcoding when one is found.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Encoding identifies how a source's bytes were interpreted before being
// normalized to UTF-8 internally.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF32LE
	EncodingUTF32BE
	EncodingUserAsserted
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	case EncodingUTF32LE:
		return "UTF-32LE"
	case EncodingUTF32BE:
		return "UTF-32BE"
	case EncodingUserAsserted:
		return "user-asserted"
	default:
		return "UTF-8"
	}
}

// binarySniffWindow is how much of a file the binary heuristic inspects.
const binarySniffWindow = 32 * 1024

// Options controls how Open reads and normalizes a file.
type Options struct {
	// Mmap prefers a memory-mapped read over a buffered read when the
	// platform supports it.
	Mmap bool

	// Encoding overrides BOM sniffing when non-empty (--encoding=NAME).
	Encoding string
}

// Source is a fully materialized, UTF-8-normalized view of one input file.
// Decompression and archive expansion happen before a Source is built; a
// Source always wraps a flat byte stream.
type Source struct {
	Path     string
	Bytes    []byte
	Encoding Encoding
	closer   func() error
}

// Close releases any OS resource (an mmap'd region) backing Bytes. It is
// always safe to call, even for sources that hold no such resource.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Open reads path, memory-mapping it when requested and supported, detects
// a byte-order mark, and transcodes UTF-16/32 content to UTF-8.
//
// The returned Source owns its Bytes; callers must call Close when done.
func Open(path string, opts Options) (*Source, error) {
	raw, closer, err := readFile(path, opts.Mmap)
	if err != nil {
		return nil, err
	}

	decoded, enc, err := Normalize(raw, opts.Encoding)
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, fmt.Errorf("source: normalize %s: %w", path, err)
	}

	// A pure pass-through (no BOM, no override) shares raw's backing
	// array, so the mmap region (if any) must stay mapped. Everything
	// else is a fresh allocation and the mapping can be released now.
	if enc == EncodingUTF8 && opts.Encoding == "" {
		return &Source{Path: path, Bytes: decoded, Encoding: enc, closer: closer}, nil
	}
	if closer != nil {
		_ = closer()
	}
	return &Source{Path: path, Bytes: decoded, Encoding: enc}, nil
}

// Normalize detects a byte-order mark (or applies an explicit encoding
// override, e.g. from --encoding=NAME) and transcodes raw to UTF-8. It is
// the encoding half of Open, factored out so the decompression chain can
// normalize archive members that never go through a file read of their
// own.
func Normalize(raw []byte, encodingOverride string) ([]byte, Encoding, error) {
	if encodingOverride != "" {
		decoded, err := decodeNamed(raw, encodingOverride)
		if err != nil {
			return nil, EncodingUserAsserted, err
		}
		return decoded, EncodingUserAsserted, nil
	}

	enc, bomLen := DetectBOM(raw)
	if enc == EncodingUTF8 {
		return raw[bomLen:], EncodingUTF8, nil
	}

	decoded, err := transcodeToUTF8(raw[bomLen:], enc)
	if err != nil {
		return nil, enc, err
	}
	return decoded, enc, nil
}

// ReadRaw reads path's bytes without any BOM or encoding normalization,
// preferring a memory-mapped read when mmap is true and the platform
// supports it. A non-nil closer must be called once the caller is done
// with the returned bytes.
func ReadRaw(path string, mmap bool) ([]byte, func() error, error) {
	return readFile(path, mmap)
}

// DetectBOM inspects the first bytes of data for a UTF-16/32 byte-order
// mark and reports the encoding it implies plus the BOM's length in bytes
// (0 when no BOM is present, in which case the caller should assume UTF-8
// or plain ASCII).
func DetectBOM(data []byte) (Encoding, int) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8, 3
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return EncodingUTF32LE, 4
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return EncodingUTF32BE, 4
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE, 2
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE, 2
	default:
		return EncodingUTF8, 0
	}
}

// IsBinary applies the first-32KiB NUL-byte heuristic: a file is treated as
// binary if any of its first binarySniffWindow bytes is 0x00.
func IsBinary(data []byte) bool {
	window := data
	if len(window) > binarySniffWindow {
		window = window[:binarySniffWindow]
	}
	return bytes.IndexByte(window, 0) != -1
}

func readFile(path string, preferMmap bool) ([]byte, func() error, error) {
	if preferMmap {
		if data, closer, ok := mmapFile(path); ok {
			return data, closer, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

var _ io.Closer = (*Source)(nil)
