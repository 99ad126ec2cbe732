package vkey

import (
	"testing"
)

func TestCSIToKeyArrows(t *testing.T) {
	cases := map[byte]Name{'A': NameUp, 'B': NameDown, 'C': NameRight, 'D': NameLeft}
	for final, want := range cases {
		k := csiToKey(final, nil)
		if k.Name != want {
			t.Fatalf("final %q: want %v, got %v", final, want, k.Name)
		}
	}
}

func TestCSIToKeyTilde(t *testing.T) {
	cases := map[string]Name{"3": NameDelete, "5": NamePageUp, "6": NamePageDown, "1": NameHome, "4": NameEnd}
	for params, want := range cases {
		k := csiToKey('~', []byte(params))
		if k.Name != want {
			t.Fatalf("params %q: want %v, got %v", params, want, k.Name)
		}
	}
}

func TestDecodeUTF8Multibyte(t *testing.T) {
	// "é" = U+00E9, UTF-8: 0xC3 0xA9
	r := decodeUTF8([]byte{0xC3, 0xA9})
	if r != 0x00E9 {
		t.Fatalf("got %U", r)
	}
}

func TestUTF8ContinuationCount(t *testing.T) {
	if n := utf8ContinuationCount('a'); n != 0 {
		t.Fatalf("ascii: want 0, got %d", n)
	}
	if n := utf8ContinuationCount(0xC3); n != 1 {
		t.Fatalf("2-byte lead: want 1, got %d", n)
	}
	if n := utf8ContinuationCount(0xE2); n != 2 {
		t.Fatalf("3-byte lead: want 2, got %d", n)
	}
}
