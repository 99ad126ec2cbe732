package screen

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// invertSGR is re-applied after an embedded passthrough escape when the
// caller is drawing a selected row, so a match's own color codes can't
// cancel the selection highlight partway through a line.
const invertSGR = "\x1b[7m"

// PutOptions controls how Put lays a logical line of text into a
// framebuffer row.
type PutOptions struct {
	// Skip is the number of leading display columns to discard, the
	// horizontal-scroll offset for a line wider than the screen. Only
	// applied before the first wrap, since a wrapped continuation row
	// has nothing left to scroll past.
	Skip int
	// Wrap controls what happens when text overflows the row. Wrap >= 0
	// continues on the next row, indented to column Wrap. Wrap < 0
	// truncates instead: the remainder of text is discarded and
	// nothing further is drawn.
	Wrap int
	// Nulls is a count of leading bytes in text to consume without
	// decoding or display, an invisible marker some callers use to tag
	// a row with metadata (e.g. which file it came from) that must
	// never reach the screen.
	Nulls int
	// Sel marks the row as selected: embedded escapes are followed by
	// a re-assertion of reverse video so color codes in matched text
	// can't cancel the selection bar.
	Sel bool
	// Color disables escape passthrough entirely when false, dropping
	// embedded SGR/OSC sequences instead of drawing them.
	Color bool
}

// Put renders text into row row starting at column col, discarding
// opts.Nulls leading bytes and then opts.Skip display columns before
// anything reaches the framebuffer. Embedded CSI and OSC escape
// sequences are zero-width: they attach to the cell that follows them
// rather than consuming a column. Invalid UTF-8 bytes render as a
// literal "\xHH" escape. Tabs expand to the next multiple of 8.
//
// When text overflows the row, opts.Wrap decides what happens next: a
// non-negative Wrap continues rendering on the following row, indented
// to column Wrap; a negative Wrap truncates instead, discarding the
// remainder of text. Put returns the row the cursor ended on, which is
// row itself unless wrapping advanced it.
func (s *State) Put(row, col int, text string, opts PutOptions) (newRow int) {
	if row < 0 || row >= len(s.cells) {
		return row
	}

	data := []byte(text)
	if opts.Nulls > 0 {
		if opts.Nulls >= len(data) {
			data = nil
		} else {
			data = data[opts.Nulls:]
		}
	}

	curRow := row
	line := s.cells[curRow]
	colBase := col
	skip := opts.Skip

	colCursor := 0 // logical column relative to colBase, before skip is subtracted
	var pending strings.Builder

	takePending := func() string {
		if pending.Len() == 0 {
			return ""
		}
		out := pending.String()
		pending.Reset()
		return out
	}

	// advanceRow clears and switches to the next framebuffer row for a
	// wrapped continuation, re-basing column accounting to opts.Wrap.
	// It reports whether a row was available to advance into.
	advanceRow := func() bool {
		if curRow+1 >= len(s.cells) {
			return false
		}
		curRow++
		line = s.cells[curRow]
		for j := range line {
			line[j] = Cell{R: ' ', Width: 1}
		}
		colBase = opts.Wrap
		skip = 0
		colCursor = 0
		return true
	}

	place := func(r rune, w int, esc string) bool {
		if w == 0 {
			// Combining mark: fold onto the previous placed cell
			// instead of occupying its own column.
			target := colBase + colCursor - skip - 1
			if target >= 0 && target < len(line) {
				line[target].Esc += esc
			}
			return true
		}
		target := colBase + colCursor - skip
		if target+w > len(line) {
			if opts.Wrap < 0 {
				return false // truncate: stop drawing for this row
			}
			if !advanceRow() {
				return false
			}
			target = colBase + colCursor - skip
		}
		if target >= 0 && target < len(line) {
			line[target] = Cell{R: r, Width: w, Esc: line[target].Esc + esc}
			for k := 1; k < w && target+k < len(line); k++ {
				line[target+k] = Cell{R: 0, Width: 0}
			}
		} else if target+w > 0 && target < len(line) {
			// Wide rune straddling the skip boundary: render a
			// blank rather than half a glyph.
			if target+1 >= 0 && target+1 < len(line) {
				line[target+1] = Cell{R: ' ', Width: 1, Esc: esc}
			}
		}
		colCursor += w
		return true
	}

	i := 0
	for i < len(data) {
		if colBase+colCursor-skip >= len(line) && opts.Wrap < 0 {
			break // rest of the line is clipped
		}

		if data[i] == 0x1b {
			seq, n := scanEscape(data[i:])
			i += n
			if !opts.Color {
				continue
			}
			esc := seq
			if opts.Sel {
				esc += invertSGR
			}
			target := colBase + colCursor - skip
			if target < 0 {
				if pending.Len()+len(esc) <= 256 {
					pending.WriteString(esc)
				}
				continue
			}
			if target < len(line) {
				line[target].Esc = takePending() + line[target].Esc + esc
			}
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			ok := true
			for _, hr := range "\\x" + strings.ToUpper(strconv.FormatUint(uint64(data[i]), 16)) {
				if !place(hr, 1, takePending()) {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
			i++
			continue
		}
		if r == '\t' {
			n := 8 - ((colBase + colCursor) % 8)
			ok := true
			for k := 0; k < n; k++ {
				if !place(' ', 1, takePending()) {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
			i += size
			continue
		}
		if (r > 0 && r < 0x20) || r == 0x7F {
			// C0 controls and DEL draw as a caret pair: ^A, ^?.
			if !place('^', 1, takePending()) || !place(r^0x40, 1, "") {
				break
			}
			i += size
			continue
		}

		if !place(r, RuneWidth(r, s.Caps), takePending()) {
			break
		}
		i += size
	}

	return curRow
}

// scanEscape recognizes a CSI sequence (ESC [ params... final) or an OSC
// sequence (ESC ] ... terminated by BEL or ST) starting at data[0]=='\x1b'
// and returns it along with its byte length. An escape it doesn't
// recognize as CSI/OSC is treated as a bare two-byte escape.
func scanEscape(data []byte) (string, int) {
	if len(data) < 2 {
		return string(data), len(data)
	}
	switch data[1] {
	case '[':
		for i := 2; i < len(data); i++ {
			if data[i] >= 0x40 && data[i] <= 0x7E {
				return string(data[:i+1]), i + 1
			}
		}
		return string(data), len(data)
	case ']':
		for i := 2; i < len(data); i++ {
			if data[i] == 0x07 {
				return string(data[:i+1]), i + 1
			}
			if data[i] == 0x1b && i+1 < len(data) && data[i+1] == '\\' {
				return string(data[:i+2]), i + 2
			}
		}
		return string(data), len(data)
	default:
		return string(data[:2]), 2
	}
}

// Clear blanks row to spaces with no attached escapes.
func (s *State) Clear(row int) {
	if row < 0 || row >= len(s.cells) {
		return
	}
	for j := range s.cells[row] {
		s.cells[row][j] = Cell{R: ' ', Width: 1}
	}
}

// Flush draws the framebuffer to the tty: home cursor, then each row's
// cells left to right, skipping the second half of a wide glyph and
// emitting any attached escape immediately before its cell's rune.
func (s *State) Flush() {
	var b strings.Builder
	b.WriteString("\x1b[H")
	for i, row := range s.cells {
		if i > 0 {
			b.WriteString("\r\n")
		}
		for _, c := range row {
			if c.Width == 0 && c.R == 0 {
				continue // trailing half of a wide glyph already drawn
			}
			if c.Esc != "" {
				b.WriteString(c.Esc)
			}
			if c.R == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteRune(c.R)
			}
		}
		b.WriteString(sgrReset)
	}
	s.write(b.String())
}
