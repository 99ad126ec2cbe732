// flags.go defines the scangrep command's flags and how they combine
// with a loaded config file into an option.Options.
package cli

import (
	"os"
	"strings"

	"github.com/scangrep/scangrep/internal/option"
)

var (
	patternFlags []string // repeatable -e
	fixedStrings bool     // -F
	extendedRE   bool     // -E (default dialect; accepted for compatibility)
	perlRE       bool     // -P (accepted for compatibility; the engine is already Perl-flavored)
	basicRE      bool     // -G (accepted for compatibility; no POSIX-BRE dialect is implemented)
	ignoreCase   bool     // -i
	wordRegexp   bool     // -w
	lineRegexp   bool     // -x
	invert       bool     // -v

	count             bool // -c
	filesWithMatches  bool // -l
	filesWithoutMatch bool // -L
	quiet             bool // -q
	onlyMatching      bool // -o
	lineNumber        bool // -n
	columnNumber      bool // -k
	byteOffset        bool // -b
	withFilename      bool // -H
	noFilename        bool // -h
	suppressErrors    bool // -s
	colorWhen         string
	outputFormat      string
	maxCount          int
	beforeContext     int // -B
	afterContext      int // -A
	contextLines      int // -C

	recurse        bool   // -r/-R
	dirAction      string // -d action: read|skip|recurse
	hidden         bool
	followSymlinks bool // -S
	ignoreBinary   bool // -I
	maxDepth       int
	includeGlobs   []string
	excludeGlobs   []string
	excludeDirs    []string
	ignoreFiles    []string

	decompress bool // -z
	zmax       int

	jobs int
	mmap bool

	encoding string

	query bool // -Q

	configPath string
	logLevel   string
)

func init() {
	flags := rootCmd.Flags()

	// grep reserves -h for --no-filename; define our own --help with no
	// shorthand first so cobra's lazy InitDefaultHelpFlag doesn't also
	// try to claim "h" and panic on the redefinition.
	flags.Bool("help", false, "help for scangrep")

	flags.StringArrayVarP(&patternFlags, "regexp", "e", nil, "pattern to match (repeatable)")
	flags.BoolVarP(&fixedStrings, "fixed-strings", "F", false, "match PATTERN literally")
	flags.BoolVarP(&extendedRE, "extended-regexp", "E", true, "use extended regular expressions (default)")
	flags.BoolVarP(&perlRE, "perl-regexp", "P", false, "use Perl-compatible regular expressions (accepted; this is already the engine's native dialect)")
	flags.BoolVarP(&basicRE, "basic-regexp", "G", false, "use basic regular expressions (accepted for compatibility; treated as extended)")
	flags.BoolVarP(&ignoreCase, "ignore-case", "i", false, "case-insensitive match")
	flags.BoolVarP(&wordRegexp, "word-regexp", "w", false, "match only whole words")
	flags.BoolVarP(&lineRegexp, "line-regexp", "x", false, "match only whole lines")
	flags.BoolVarP(&invert, "invert-match", "v", false, "select non-matching lines")

	flags.BoolVarP(&count, "count", "c", false, "print only a count of matching lines per file")
	flags.BoolVarP(&filesWithMatches, "files-with-matches", "l", false, "print only names of files with matches")
	flags.BoolVarP(&filesWithoutMatch, "files-without-match", "L", false, "print only names of files without matches")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress all output, exit status only")
	flags.BoolVarP(&onlyMatching, "only-matching", "o", false, "print only the matched parts of a line")
	flags.BoolVarP(&lineNumber, "line-number", "n", false, "prefix output with line number")
	flags.BoolVarP(&columnNumber, "column", "k", false, "prefix output with column number")
	flags.BoolVarP(&byteOffset, "byte-offset", "b", false, "prefix output with byte offset")
	flags.BoolVarP(&withFilename, "with-filename", "H", false, "always print filename")
	flags.BoolVarP(&noFilename, "no-filename", "h", false, "never print filename")
	flags.BoolVarP(&suppressErrors, "no-messages", "s", false, "suppress error messages")
	flags.StringVar(&colorWhen, "color", "auto", "colorize output: auto|always|never")
	flags.StringVar(&outputFormat, "format", "plain", "output format: plain|json|csv|xml")
	flags.IntVarP(&maxCount, "max-count", "m", 0, "stop after N matching lines per file (0 = unlimited)")
	flags.IntVarP(&beforeContext, "before-context", "B", 0, "print N lines of leading context")
	flags.IntVarP(&afterContext, "after-context", "A", 0, "print N lines of trailing context")
	flags.IntVarP(&contextLines, "context", "C", 0, "print N lines of leading and trailing context")

	flags.BoolVarP(&recurse, "recursive", "r", false, "recurse into directories")
	flags.BoolVarP(&recurse, "dereference-recursive", "R", false, "recurse into directories, following symlinks")
	flags.StringVarP(&dirAction, "directories", "d", "read", "how to handle a directory argument: read|skip|recurse")
	flags.BoolVar(&hidden, "hidden", false, "search hidden files and directories")
	flags.BoolVarP(&followSymlinks, "follow-symlinks", "S", false, "follow symbolic links")
	flags.BoolVarP(&ignoreBinary, "ignore-binary", "I", false, "skip files that look binary")
	flags.IntVar(&maxDepth, "max-depth", 0, "limit recursion depth (0 = unlimited)")
	flags.StringArrayVar(&includeGlobs, "include", nil, "only search files matching glob")
	flags.StringArrayVar(&excludeGlobs, "exclude", nil, "skip files matching glob")
	flags.StringArrayVar(&excludeDirs, "exclude-dir", nil, "skip directories matching glob")
	flags.StringArrayVar(&ignoreFiles, "ignore-files", nil, "gitignore-style file(s) of exclude patterns")

	flags.BoolVarP(&decompress, "decompress", "z", false, "search inside compressed files and archives")
	flags.IntVar(&zmax, "zmax", 1, "maximum archive recursion depth")

	flags.IntVar(&jobs, "jobs", 0, "worker count (0 = number of CPUs)")
	flags.BoolVar(&mmap, "mmap", false, "prefer memory-mapped reads")

	flags.StringVar(&encoding, "encoding", "", "assume input is this encoding instead of BOM-sniffing")

	flags.BoolVarP(&query, "query", "Q", false, "launch the interactive query UI")

	flags.StringVar(&configPath, "config", "", "explicit config file (default: .scangreprc or ~/.scangreprc)")
	flags.StringVar(&logLevel, "log-level", "", "diagnostics verbosity: debug|info|warn|error")
}

// buildOptions assembles option.Options from the parsed flags, layering
// config-file defaults underneath anything the user actually passed.
func buildOptions() (option.Options, error) {
	opts := option.Default()

	opts.FixedStrings = fixedStrings
	opts.IgnoreCase = ignoreCase
	opts.WordRegexp = wordRegexp
	opts.LineRegexp = lineRegexp
	opts.Invert = invert

	opts.Count = count
	opts.FilesWithMatches = filesWithMatches
	opts.FilesWithoutMatch = filesWithoutMatch
	opts.Quiet = quiet
	opts.OnlyMatching = onlyMatching
	opts.LineNumber = lineNumber
	opts.ColumnNumber = columnNumber
	opts.ByteOffset = byteOffset
	opts.WithFilename = withFilename
	opts.NoFilename = noFilename
	opts.SuppressErrors = suppressErrors
	opts.MaxCount = maxCount
	opts.BeforeContext = max(beforeContext, contextLines)
	opts.AfterContext = max(afterContext, contextLines)

	opts.Recurse = recurse
	opts.Hidden = hidden
	opts.FollowSymlinks = followSymlinks
	if flagChanged("dereference-recursive") {
		opts.FollowSymlinks = true
	}

	switch strings.ToLower(dirAction) {
	case "skip":
		opts.DirAction = option.DirActionSkip
	case "recurse":
		opts.DirAction = option.DirActionRecurse
	default:
		opts.DirAction = option.DirActionRead
	}
	opts.IgnoreBinary = ignoreBinary
	opts.MaxDepth = maxDepth
	opts.IncludeGlobs = includeGlobs
	opts.ExcludeGlobs = excludeGlobs
	opts.ExcludeDirGlobs = excludeDirs
	opts.IgnoreFiles = ignoreFiles

	opts.Decompress = decompress
	opts.ZMax = zmax

	opts.Jobs = jobs
	opts.Mmap = mmap

	opts.Encoding = encoding
	opts.Query = query

	switch strings.ToLower(colorWhen) {
	case "always":
		opts.Color = option.ColorAlways
	case "never":
		opts.Color = option.ColorNever
	default:
		opts.Color = option.ColorAuto
	}

	switch strings.ToLower(outputFormat) {
	case "json":
		opts.Format = option.FormatJSON
	case "csv":
		opts.Format = option.FormatCSV
	case "xml":
		opts.Format = option.FormatXML
	default:
		opts.Format = option.FormatPlain
	}

	applyConfigDefaults(&opts)
	return opts, nil
}

// resolveColor turns ColorAuto into a concrete yes/no against whether fd
// is a terminal and $TERM isn't "dumb".
func resolveColor(mode option.ColorMode, isTerminal bool) bool {
	switch mode {
	case option.ColorAlways:
		return true
	case option.ColorNever:
		return false
	default:
		return isTerminal && os.Getenv("TERM") != "dumb"
	}
}
