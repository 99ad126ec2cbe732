package screen

import "testing"

func newTestState(w, h int) *State {
	s := &State{}
	s.resize(w, h)
	return s
}

func rowText(s *State, row int) string {
	out := make([]rune, 0, len(s.cells[row]))
	for _, c := range s.cells[row] {
		if c.Width == 0 && c.R == 0 {
			continue
		}
		if c.R == 0 {
			out = append(out, ' ')
		} else {
			out = append(out, c.R)
		}
	}
	return string(out)
}

func TestPutBasic(t *testing.T) {
	s := newTestState(10, 3)
	s.Put(0, 0, "hello", PutOptions{Wrap: -1})
	if got := rowText(s, 0); got != "hello     " {
		t.Fatalf("got %q", got)
	}
}

func TestPutStartColumn(t *testing.T) {
	s := newTestState(10, 1)
	s.Put(0, 3, "hi", PutOptions{Wrap: -1})
	if got := rowText(s, 0); got != "   hi     " {
		t.Fatalf("got %q", got)
	}
}

func TestPutSkipScrollsLeft(t *testing.T) {
	s := newTestState(5, 1)
	s.Put(0, 0, "0123456789", PutOptions{Skip: 3, Wrap: -1})
	if got := rowText(s, 0); got != "34567" {
		t.Fatalf("got %q", got)
	}
}

func TestPutClipsAtWidth(t *testing.T) {
	s := newTestState(5, 1)
	newRow := s.Put(0, 0, "abcdefgh", PutOptions{Wrap: -1})
	if got := rowText(s, 0); got != "abcde" {
		t.Fatalf("got %q", got)
	}
	if newRow != 0 {
		t.Fatalf("got newRow %d, want 0", newRow)
	}
}

func TestPutTabExpansion(t *testing.T) {
	s := newTestState(10, 1)
	s.Put(0, 0, "a\tb", PutOptions{Wrap: -1})
	if got := rowText(s, 0); got != "a       b " {
		t.Fatalf("got %q", got)
	}
}

func TestPutInvalidUTF8AsHex(t *testing.T) {
	s := newTestState(10, 1)
	s.Put(0, 0, "a\xffb", PutOptions{Wrap: -1})
	got := rowText(s, 0)
	if got[:6] != "a\\xFFb" {
		t.Fatalf("got %q", got)
	}
}

func TestPutEscapeIsZeroWidth(t *testing.T) {
	s := newTestState(5, 1)
	s.Put(0, 0, "\x1b[31mred", PutOptions{Color: true, Wrap: -1})
	if got := rowText(s, 0); got != "red  " {
		t.Fatalf("got %q", got)
	}
	if s.cells[0][0].Esc == "" {
		t.Fatal("expected escape attached to first visible cell")
	}
}

func TestPutDropsEscapeWhenMonochrome(t *testing.T) {
	s := newTestState(5, 1)
	s.Put(0, 0, "\x1b[31mred", PutOptions{Color: false, Wrap: -1})
	if s.cells[0][0].Esc != "" {
		t.Fatal("expected no escape in monochrome mode")
	}
}

func TestScanEscapeCSI(t *testing.T) {
	seq, n := scanEscape([]byte("\x1b[1;31mrest"))
	if seq != "\x1b[1;31m" || n != len(seq) {
		t.Fatalf("got %q, %d", seq, n)
	}
}

func TestPutCombiningMarkAdvancesTwoColumns(t *testing.T) {
	s := newTestState(5, 1)
	s.Put(0, 0, "ÁB", PutOptions{Wrap: -1})
	if got := rowText(s, 0); got != "AB   " {
		t.Fatalf("got %q, want combining mark folded onto A with B in column 1", got)
	}
}

func TestScanEscapeOSC(t *testing.T) {
	seq, n := scanEscape([]byte("\x1b]0;title\x07rest"))
	if seq != "\x1b]0;title\x07" || n != len(seq) {
		t.Fatalf("got %q, %d", seq, n)
	}
}

func TestPutWrapsToNextRowIndented(t *testing.T) {
	s := newTestState(5, 2)
	newRow := s.Put(0, 0, "abcdefgh", PutOptions{Wrap: 2})
	if got := rowText(s, 0); got != "abcde" {
		t.Fatalf("row 0: got %q", got)
	}
	if got := rowText(s, 1); got != "  fgh" {
		t.Fatalf("row 1: got %q", got)
	}
	if newRow != 1 {
		t.Fatalf("got newRow %d, want 1", newRow)
	}
}

func TestPutWrapStopsAtLastRow(t *testing.T) {
	s := newTestState(5, 1)
	newRow := s.Put(0, 0, "abcdefgh", PutOptions{Wrap: 0})
	if got := rowText(s, 0); got != "abcde" {
		t.Fatalf("got %q", got)
	}
	if newRow != 0 {
		t.Fatalf("got newRow %d, want 0 (no further row to wrap into)", newRow)
	}
}

func TestPutSkipOnlyAppliesBeforeFirstWrap(t *testing.T) {
	s := newTestState(5, 2)
	s.Put(0, 0, "0123456789", PutOptions{Skip: 2, Wrap: 0})
	if got := rowText(s, 0); got != "23456" {
		t.Fatalf("row 0: got %q", got)
	}
	if got := rowText(s, 1); got != "789  " {
		t.Fatalf("row 1: got %q, want unscrolled continuation", got)
	}
}

func TestPutNullsConsumedWithoutDisplay(t *testing.T) {
	s := newTestState(10, 1)
	s.Put(0, 0, "\x00\x00\x00hello", PutOptions{Nulls: 3, Wrap: -1})
	if got := rowText(s, 0); got != "hello     " {
		t.Fatalf("got %q", got)
	}
}

func TestPutNullsLargerThanTextYieldsEmptyRow(t *testing.T) {
	s := newTestState(5, 1)
	s.Put(0, 0, "abc", PutOptions{Nulls: 10, Wrap: -1})
	if got := rowText(s, 0); got != "     " {
		t.Fatalf("got %q, want blank row", got)
	}
}
