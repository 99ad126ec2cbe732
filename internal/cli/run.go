package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scangrep/scangrep/internal/format"
	"github.com/scangrep/scangrep/internal/logx"
	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pattern"
	"github.com/scangrep/scangrep/internal/pipeline"
	"github.com/scangrep/scangrep/internal/queryui"
	"github.com/scangrep/scangrep/internal/screen"
	"github.com/scangrep/scangrep/internal/vkey"
)

// runRoot assembles options, compiles the pattern, and dispatches to
// either the batch pipeline or the interactive query UI. It sets
// exitCode itself (0 = matched, 1 = no match, >1 = error) rather than
// relying on cobra's own error return, which only distinguishes success
// from failure of parsing the command line.
func runRoot(cmd *cobra.Command, args []string) error {
	source, roots, err := resolvePatternAndRoots(args)
	if err != nil {
		return err
	}

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	pat, err := pattern.Compile(source, pattern.Options{
		IgnoreCase:  opts.IgnoreCase,
		FixedString: opts.FixedStrings,
		WordRegexp:  opts.WordRegexp,
		LineRegexp:  opts.LineRegexp,
	})
	if err != nil {
		exitCode = 2
		return fmt.Errorf("compile pattern: %w", err)
	}

	if opts.Query {
		return runQuery(pat, roots, opts)
	}
	return runBatch(pat, roots, opts)
}

// resolvePatternAndRoots applies grep's own argument convention: with no
// -e flags, the first positional argument is the pattern and the rest
// are files; with -e, every positional argument is a file (or directory)
// to search. No file arguments means search the current directory.
func resolvePatternAndRoots(args []string) (string, []string, error) {
	if len(patternFlags) > 0 {
		return strings.Join(patternFlags, "|"), defaultRoots(args), nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("no pattern given (use a positional PATTERN or -e)")
	}
	return args[0], defaultRoots(args[1:]), nil
}

func defaultRoots(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// runBatch drives one non-interactive search and writes formatted output
// to stdout, returning an error only for problems that should abort the
// process (stdout write failure); per-file I/O errors are reported via
// logx and reflected only in the exit code (2), unless -s suppresses them.
func runBatch(pat *pattern.Pattern, roots []string, opts option.Options) error {
	colorize := resolveColor(opts.Color, term.IsTerminal(int(os.Stdout.Fd())))
	scheme := format.ParseGrepColor(format.ParseGrepColors(os.Getenv("GREP_COLORS")), os.Getenv("GREP_COLOR"))
	fmtr := format.New(scheme, colorize)

	var hadError atomic.Bool
	onError := func(path string, err error) {
		hadError.Store(true)
		logx.SkipFile(path, err)
	}
	if opts.SuppressErrors {
		onError = func(string, error) {}
	}

	buffers, _, err := pipeline.RunPaths(context.Background(), roots, pat, opts, fmtr.Format, onError)
	if err != nil {
		exitCode = 2
		return err
	}

	matched, err := format.Emit(os.Stdout, buffers, colorize)
	if err != nil {
		exitCode = 2
		return fmt.Errorf("write output: %w", err)
	}

	switch {
	case hadError.Load():
		exitCode = 2
	case matched > 0:
		exitCode = 0
	default:
		exitCode = 1
	}
	return nil
}

// runQuery launches the interactive query UI rooted at the first given
// path. If the terminal can't be set up (no controlling tty, or raw mode
// refused), it logs the failure and falls back to one non-interactive
// search of pat over every given root.
func runQuery(pat *pattern.Pattern, roots []string, opts option.Options) error {
	root := "."
	if len(roots) > 0 {
		root = roots[0]
	}
	// Interactive mode always walks the given root recursively; there is
	// no separate "search just this directory" gesture in the query UI,
	// so -d's default of erroring on a bare directory argument doesn't
	// apply here.
	opts.Recurse = true

	scr, err := screen.Setup("scangrep")
	if err != nil {
		logx.TerminalSetupFailed(err)
		return runBatch(pat, roots, opts)
	}
	defer scr.Teardown()

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		exitCode = 2
		return err
	}
	defer tty.Close()

	loop := queryui.New(root, opts, scr, vkey.NewReader(tty))
	if err := loop.Run(); err != nil {
		exitCode = 2
		return err
	}
	exitCode = 0
	return nil
}
