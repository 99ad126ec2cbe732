// Package option defines the flat, immutable-per-invocation record of
// recognized switches that every other component (pattern, traverse,
// pipeline, format) reads to decide its behavior.
package option

// ColorMode selects when highlighted output uses SGR escapes.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// OutputFormat selects the serialization of matches.
type OutputFormat int

const (
	FormatPlain OutputFormat = iota
	FormatJSON
	FormatCSV
	FormatXML
)

// AggregateMode selects whole-file summary behavior that suppresses
// per-match output.
type AggregateMode int

const (
	AggregateNone AggregateMode = iota
	AggregateCount
	AggregateFilesWithMatches
	AggregateFilesWithoutMatch
	AggregateQuiet
)

// DirAction controls what happens when a command-line argument names a
// directory rather than a plain file.
type DirAction int

const (
	// DirActionRead is grep's own default: a bare directory argument is
	// reported as an error ("Is a directory") rather than searched.
	DirActionRead DirAction = iota
	DirActionSkip
	DirActionRecurse
)

// BufferMode controls whether the matcher is allowed to see past a
// newline.
type BufferMode int

const (
	LineBuffered BufferMode = iota
	BlockBuffered
)

// Options is the flat, immutable record built by the CLI or the query UI
// before a search is launched. A zero Options is the grep-compatible
// default: recursion off, case-sensitive, plain text output.
type Options struct {
	// Selection
	IgnoreCase   bool // -i
	WordRegexp   bool // -w
	LineRegexp   bool // -x
	Invert       bool // -v
	FixedStrings bool // -F

	// Output
	Count              bool // -c
	FilesWithMatches   bool // -l
	FilesWithoutMatch  bool // -L
	Quiet              bool // -q
	OnlyMatching       bool // -o
	LineNumber         bool // -n
	ColumnNumber       bool // -k
	ByteOffset         bool // -b
	WithFilename       bool // -H
	NoFilename         bool // -h
	SuppressErrors     bool // -s
	Color              ColorMode
	Format             OutputFormat
	BeforeContext      int
	AfterContext       int
	MaxCount           int // 0 = unlimited

	// Traversal
	Recurse         bool      // -r/-R
	DirAction       DirAction // -d action
	Hidden          bool      // --hidden
	FollowSymlinks  bool      // -S
	IgnoreBinary    bool      // -I
	MaxDepth        int       // 0 = unlimited
	IncludeGlobs    []string
	ExcludeGlobs    []string
	ExcludeDirGlobs []string
	IgnoreFiles     []string

	// Decompression
	Decompress bool // -z
	ZMax       int  // --zmax=N, archive recursion depth

	// Performance
	Jobs int // --jobs=N, 0 = runtime.NumCPU()
	Mmap bool

	// Encoding
	Encoding string // --encoding=NAME override; "" = BOM-sniffed

	// Interactive
	Query bool // -Q
}

// Default returns the grep-compatible baseline: case-sensitive, non-recursive,
// plain text, unbounded match count, no context lines.
func Default() Options {
	return Options{
		Color:  ColorAuto,
		Format: FormatPlain,
		ZMax:   1,
	}
}

// Aggregate reports which whole-file summary mode, if any, is active.
// FilesWithMatches takes precedence over FilesWithoutMatch, which takes
// precedence over Count, matching grep's own flag precedence when a user
// combines -l -L -c.
func (o Options) Aggregate() AggregateMode {
	switch {
	case o.Quiet:
		return AggregateQuiet
	case o.FilesWithMatches:
		return AggregateFilesWithMatches
	case o.FilesWithoutMatch:
		return AggregateFilesWithoutMatch
	case o.Count:
		return AggregateCount
	default:
		return AggregateNone
	}
}

// BufferMode reports whether the matcher must stay within one line.
//
// Line-buffered is the default: each line is tested independently, which
// is what -c/-o/-q/-v all assume when the compiled pattern cannot itself
// consume a newline. When patternCrossesLines is true (the pattern can
// match a literal "\n", e.g. `(.|\n)*`), scanning switches to block mode so
// that match, unless Invert is set: inverting "this block didn't match"
// has no well-defined per-line meaning, so -v always pins line-buffered.
func (o Options) BufferMode(patternCrossesLines bool) BufferMode {
	if o.Invert {
		return LineBuffered
	}
	if patternCrossesLines {
		return BlockBuffered
	}
	return LineBuffered
}

// ContextLines returns the number of lines of context to carry before and
// after a match, accounting for BeforeContext/AfterContext overrides.
func (o Options) ContextLines() (before, after int) {
	return o.BeforeContext, o.AfterContext
}

