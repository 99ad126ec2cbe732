// Package screen renders positioned, SGR-colored text into an alternate
// terminal screen buffer, keeping column accounting exact under
// ambiguous-width Unicode and embedded ANSI escapes. Terminal mode and
// geometry come from golang.org/x/term; when that can't report a size
// (e.g. output redirected) probeGeometry falls back to a cursor-park DSR query
// and finally to $LINES/$COLUMNS or a hardcoded 24x80.
package screen

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	altScreenEnter = "\x1b[?1049h"
	altScreenExit  = "\x1b[?1049l"
	altScrollOn    = "\x1b[?1007h"
	altScrollOff   = "\x1b[?1007l"
	cursorShow     = "\x1b[?25h"
	clearAndHome   = "\x1b[2J\x1b[H"
	sgrReset       = "\x1b[0m"
)

// Capabilities records which wide-rendering classes the terminal was
// observed (or assumed) to support, consulted by the column-width table.
type Capabilities struct {
	DoubleWidthEmoji bool
	DoubleWidthCJK   bool
}

// State is one live alternate-screen session.
type State struct {
	tty    *os.File
	raw    *term.State
	Width  int
	Height int
	Caps   Capabilities

	cells [][]Cell // logical framebuffer, not yet flushed to tty
}

// Cell is one column position: the rune to draw, its display width (2
// for a wide glyph, 0 with a zero rune for the column a wide glyph's
// second half covers), and any raw SGR/OSC escape that must be emitted
// immediately before it.
type Cell struct {
	R     rune
	Width int
	Esc   string
}

// Setup opens the controlling terminal, switches to the alternate screen,
// puts it into raw mode, and probes geometry. Callers must call
// Teardown when done; on error Setup closes the terminal itself and
// returns a nil State.
func Setup(title string) (*State, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("screen: open tty: %w", err)
	}

	raw, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		tty.Close()
		return nil, fmt.Errorf("screen: set raw mode: %w", err)
	}

	s := &State{tty: tty, raw: raw}
	s.write(altScreenEnter + altScrollOn + cursorShow + clearAndHome + sgrReset)
	if title != "" {
		s.write("\x1b]0;" + title + "\x07")
	}

	w, h, err := s.probeGeometry()
	if err != nil {
		w, h = 80, 24
	}
	s.Width, s.Height = w, h
	s.resize(w, h)
	s.probeWideRendering()

	return s, nil
}

// Teardown restores the terminal to its pre-Setup state. Safe to call
// more than once.
func (s *State) Teardown() error {
	if s.tty == nil {
		return nil
	}
	s.write(altScrollOff + sgrReset + altScreenExit)
	var err error
	if s.raw != nil {
		err = term.Restore(int(s.tty.Fd()), s.raw)
		s.raw = nil
	}
	closeErr := s.tty.Close()
	s.tty = nil
	if err != nil {
		return err
	}
	return closeErr
}

func (s *State) write(str string) {
	if s.tty != nil {
		_, _ = s.tty.WriteString(str)
	}
}

func (s *State) resize(w, h int) {
	s.Width, s.Height = w, h
	s.cells = make([][]Cell, h)
	for i := range s.cells {
		row := make([]Cell, w)
		for j := range row {
			row[j] = Cell{R: ' ', Width: 1}
		}
		s.cells[i] = row
	}
}

// Resize re-probes geometry and reallocates the framebuffer, for use
// from a window-resize signal handler (SIGWINCH on POSIX). No code in
// this module installs such a handler or calls Resize.
func (s *State) Resize() {
	w, h, err := s.probeGeometry()
	if err != nil {
		return
	}
	s.resize(w, h)
}

// probeGeometry tries TIOCGWINSZ via x/term first, then a DSR
// cursor-position query after parking the cursor at a far corner, then
// environment variables.
func (s *State) probeGeometry() (int, int, error) {
	if w, h, err := term.GetSize(int(s.tty.Fd())); err == nil && w > 0 && h > 0 {
		return w, h, nil
	}

	s.write("\x1b[9999;9999H")
	if w, h, err := s.probeDSR(); err == nil {
		return w, h, nil
	}

	w, h, ok := sizeFromEnv()
	if ok {
		return w, h, nil
	}
	return 0, 0, fmt.Errorf("screen: could not determine terminal size")
}

// probeDSR asks for the cursor position with Device Status Report
// (ESC [ 6 n), reads back "ESC [ row ; col R", and returns (col, row).
// It does not move the cursor first.
func (s *State) probeDSR() (int, int, error) {
	s.write("\x1b[6n")

	_ = s.tty.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	defer s.tty.SetReadDeadline(time.Time{})

	r := bufio.NewReader(s.tty)
	resp, err := r.ReadString('R')
	if err != nil {
		return 0, 0, err
	}
	resp = strings.TrimPrefix(resp, "\x1b[")
	resp = strings.TrimSuffix(resp, "R")
	parts := strings.SplitN(resp, ";", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("screen: malformed DSR response %q", resp)
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("screen: malformed DSR response %q", resp)
	}
	return col, row, nil
}

func sizeFromEnv() (int, int, bool) {
	cols, err1 := strconv.Atoi(os.Getenv("COLUMNS"))
	lines, err2 := strconv.Atoi(os.Getenv("LINES"))
	if err1 != nil || err2 != nil || cols <= 0 || lines <= 0 {
		return 0, 0, false
	}
	return cols, lines, true
}

// probeWideRendering writes two representative code points (an emoji
// and a supplementary-plane ideograph), queries the cursor column with
// DSR before and after each, and infers whether the terminal actually
// renders them at double width. The ideographic space U+3000 is not
// probed.
func (s *State) probeWideRendering() {
	s.write("\x1b[1;1H")
	before, _, err := s.probeDSR()
	if err != nil {
		return
	}
	s.write("\U0001F600") // emoji
	after, _, err := s.probeDSR()
	if err == nil {
		s.Caps.DoubleWidthEmoji = after-before >= 2
	}

	s.write("\x1b[1;1H")
	before, _, err = s.probeDSR()
	if err != nil {
		return
	}
	s.write("\U00020000") // SIP ideograph
	after, _, err = s.probeDSR()
	if err == nil {
		s.Caps.DoubleWidthCJK = after-before >= 2
	}

	s.write(clearAndHome)
}
