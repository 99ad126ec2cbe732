// Package queryui is the interactive query loop: an editable pattern
// string redrawn against a live, debounced search over a fixed root.
// Cancellation is cooperative, mirroring the stop-flag/atomic-stats idiom
// internal/pipeline already uses — edits never kill a worker mid-file,
// they just stop it from being fed more work and wait for it to notice.
package queryui

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scangrep/scangrep/internal/format"
	"github.com/scangrep/scangrep/internal/logx"
	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pattern"
	"github.com/scangrep/scangrep/internal/pipeline"
	"github.com/scangrep/scangrep/internal/screen"
	"github.com/scangrep/scangrep/internal/vkey"
)

// debounce is how long an edit waits for a follow-up keystroke before a
// new search is launched.
const debounce = 50 * time.Millisecond

// idlePoll is how often Run wakes up with no key pending, just to notice
// a background search has finished and redraw.
const idlePoll = 120 * time.Millisecond

// ScrollbackLimit bounds how many result lines Loop keeps in memory.
const ScrollbackLimit = 10000

// Loop owns one interactive session: the editable query, the viewport
// offsets, and the single in-flight search (if any).
type Loop struct {
	Root string
	Opts option.Options

	screen *screen.State
	keys   *vkey.Reader

	query      []rune
	cursor     int
	hOffset    int
	vOffset    int
	scrollback []string
	errMsg     string

	gen     atomic.Uint64
	cancel  context.CancelFunc
	running sync.WaitGroup

	resultMu sync.Mutex
	latest   *searchResult
}

type searchResult struct {
	gen    uint64
	lines  []string
	errMsg string
}

// New builds a Loop over root. scr must already be set up (Screen.Setup);
// keys reads from the same raw-mode terminal file.
func New(root string, opts option.Options, scr *screen.State, keys *vkey.Reader) *Loop {
	return &Loop{Root: root, Opts: opts, screen: scr, keys: keys}
}

// Run drives the loop until the user quits with Escape or Ctrl-C.
func (l *Loop) Run() error {
	defer l.cancelSearch()
	l.redraw()

	dirty := false
	for {
		timeout := idlePoll
		if dirty {
			timeout = debounce
		}

		k, err := l.keys.Read(timeout)
		if err == vkey.ErrTimeout {
			if dirty {
				l.relaunch()
				dirty = false
			}
			l.drainResults()
			l.redraw()
			continue
		}
		if err != nil {
			return err
		}

		switch {
		case k.Name == vkey.NameCtrlC || k.Name == vkey.NameEscape:
			return nil
		case k.Name == vkey.NameBackspace:
			if l.cursor > 0 {
				l.query = append(l.query[:l.cursor-1], l.query[l.cursor:]...)
				l.cursor--
				dirty = true
			}
		case k.Name == vkey.NameLeft:
			if l.cursor > 0 {
				l.cursor--
			}
		case k.Name == vkey.NameRight:
			if l.cursor < len(l.query) {
				l.cursor++
			}
		case k.Name == vkey.NameUp:
			if l.vOffset > 0 {
				l.vOffset--
			}
		case k.Name == vkey.NameDown:
			if l.vOffset < len(l.scrollback) {
				l.vOffset++
			}
		case k.Name == vkey.NameHome:
			l.hOffset = 0
		case k.Name == vkey.NameEnd:
			l.hOffset += 20
		case k.Rune != 0:
			l.query = append(l.query[:l.cursor:l.cursor], append([]rune{k.Rune}, l.query[l.cursor:]...)...)
			l.cursor++
			dirty = true
		}

		l.drainResults()
		l.redraw()
	}
}

// relaunch cancels the in-flight search, waits for the worker to observe
// the cancellation (worker-quiet), then compiles the current query and
// starts a fresh search generation. A compile error is shown inline and
// no search runs.
func (l *Loop) relaunch() {
	l.cancelSearch()

	gen := l.gen.Add(1)
	query := string(l.query)
	if strings.TrimSpace(query) == "" {
		l.scrollback = nil
		l.errMsg = ""
		return
	}

	pat, err := pattern.Compile(query, pattern.Options{
		IgnoreCase:  l.Opts.IgnoreCase,
		FixedString: l.Opts.FixedStrings,
		WordRegexp:  l.Opts.WordRegexp,
		LineRegexp:  l.Opts.LineRegexp,
	})
	if err != nil {
		l.errMsg = err.Error()
		l.scrollback = nil
		return
	}
	l.errMsg = ""

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.running.Add(1)

	fmtr := format.New(format.DefaultColorScheme(), false)
	opts := l.Opts
	root := l.Root
	go func() {
		defer l.running.Done()
		buffers, _, err := pipeline.Run(ctx, root, pat, opts, fmtr.Format, logx.SkipFile)
		if ctx.Err() != nil {
			return
		}
		res := &searchResult{gen: gen, lines: flattenLines(buffers)}
		if err != nil {
			res.errMsg = err.Error()
		}
		l.resultMu.Lock()
		l.latest = res
		l.resultMu.Unlock()
	}()
}

// cancelSearch sets the stop signal for any in-flight search and blocks
// until its worker goroutine has actually returned, so relaunch never
// races two generations writing scrollback at once.
func (l *Loop) cancelSearch() {
	if l.cancel != nil {
		l.cancel()
		l.running.Wait()
		l.cancel = nil
	}
}

// drainResults applies the most recently completed search's output, if
// any arrived since the last call and it still belongs to the current
// generation (a result from a generation the user has since typed past
// is discarded).
func (l *Loop) drainResults() {
	l.resultMu.Lock()
	res := l.latest
	l.latest = nil
	l.resultMu.Unlock()

	if res == nil || res.gen != l.gen.Load() {
		return
	}
	l.scrollback = res.lines
	if res.errMsg != "" {
		l.errMsg = res.errMsg
	}
	if l.vOffset > len(l.scrollback) {
		l.vOffset = 0
	}
}

// flattenLines turns a run's sorted OutputBuffers into a flat scrollback,
// already capped at ScrollbackLimit so a huge result set can't grow the
// ring without bound.
func flattenLines(buffers []pipeline.OutputBuffer) []string {
	var lines []string
	for _, b := range buffers {
		if b.Err != nil {
			lines = append(lines, "error: "+b.DisplayKey+": "+b.Err.Error())
			continue
		}
		text := strings.TrimRight(string(b.Data), "\n")
		if text == "" {
			continue
		}
		for _, ln := range strings.Split(text, "\n") {
			lines = append(lines, ln)
			if len(lines) >= ScrollbackLimit {
				return lines
			}
		}
	}
	return lines
}

func (l *Loop) redraw() {
	if l.screen == nil {
		return
	}
	s := l.screen

	header := "> " + string(l.query)
	if l.errMsg != "" {
		header += "  [" + l.errMsg + "]"
	}
	s.Clear(0)
	s.Put(0, 0, header, screen.PutOptions{Color: true, Wrap: -1})

	for row := 1; row < s.Height; row++ {
		s.Clear(row)
		idx := l.vOffset + row - 1
		if idx < 0 || idx >= len(l.scrollback) {
			continue
		}
		s.Put(row, 0, l.scrollback[idx], screen.PutOptions{Skip: l.hOffset, Color: true, Wrap: -1})
	}
	s.Flush()
}
