// Package pattern translates grep-style pattern semantics (case folding,
// word boundaries, whole-line anchoring, fixed strings) onto the compiled
// matching engine and exposes the cursor-based Find contract the search
// pipeline drives one haystack at a time.
package pattern

import (
	"regexp/syntax"
	"strings"

	"github.com/coregx/coregex/meta"
)

// Options controls how a pattern source string is compiled.
type Options struct {
	// IgnoreCase folds ASCII (and, where the parser expands it, Unicode)
	// case during matching.
	IgnoreCase bool

	// FixedString disables regex metacharacters: Source is matched literally.
	FixedString bool

	// WordRegexp requires the match to fall on a word boundary at both ends,
	// the same contract as grep -w.
	WordRegexp bool

	// LineRegexp requires the match to span an entire line, the same
	// contract as grep -x. The caller is expected to present one line per
	// Find call when this is set; Pattern enforces it by anchoring the
	// compiled expression to \A and \z.
	LineRegexp bool

	// Multiline lets ^ and $ match at line boundaries within a haystack
	// instead of only at the very start and end.
	Multiline bool

	// DotMatchesNewline lets "." match "\n" (grep -z / PCRE "s" semantics).
	DotMatchesNewline bool
}

// Pattern is a compiled search expression bound to Options.
type Pattern struct {
	source       string
	engine       *meta.Engine
	options      Options
	crossesLines bool
}

// MatchSpan identifies a match's byte extent within the haystack it was
// found in, plus its capture groups when the pattern has any.
//
// Start and End are byte offsets with Start <= End; Groups[0] always equals
// [Start, End) and is omitted when the pattern has no explicit captures.
type MatchSpan struct {
	Start  int
	End    int
	Groups [][2]int
}

// Len reports the byte length of the match.
func (m MatchSpan) Len() int { return m.End - m.Start }

// Compile builds a Pattern from a source expression and Options.
//
// FixedString patterns are quoted with regexp/syntax's literal escaping
// before compilation so metacharacters in Source are matched verbatim.
// WordRegexp and LineRegexp are implemented by wrapping the parsed
// expression with word-boundary or line-anchor nodes rather than by string
// concatenation, so group numbering in Source is untouched.
func Compile(source string, opts Options) (*Pattern, error) {
	expr := source
	if opts.FixedString {
		expr = quoteMeta(source)
	}

	// syntax.Perl sets OneLine, which pins ^/$ to the start/end of the whole
	// input; clearing it lets them match at line boundaries too.
	flags := syntax.Perl
	if opts.IgnoreCase {
		flags |= syntax.FoldCase
	}
	if opts.Multiline {
		flags &^= syntax.OneLine
	}
	if opts.DotMatchesNewline {
		flags |= syntax.DotNL
	}

	re, err := syntax.Parse(expr, flags)
	if err != nil {
		return nil, err
	}

	if opts.WordRegexp {
		re = wrapWordBoundary(re)
	}
	if opts.LineRegexp {
		re = wrapLineAnchor(re)
	}

	engine, err := meta.CompileRegexp(re, meta.DefaultConfig())
	if err != nil {
		return nil, err
	}

	return &Pattern{
		source:       source,
		engine:       engine,
		options:      opts,
		crossesLines: canMatchNewline(re),
	}, nil
}

// CrossesLines reports whether the compiled pattern can consume a literal
// "\n", meaning the search pipeline must present it with whole-file blocks
// instead of one line at a time to find matches like S2's `/\*(.|\n)*?\*/`.
func (p *Pattern) CrossesLines() bool { return p.crossesLines }

// canMatchNewline walks the parsed syntax tree looking for any node able to
// consume a newline byte: an explicit "\n" literal or char-class range, or
// an unrestricted "any character" node ("." under dot-matches-newline).
func canMatchNewline(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if r == '\n' {
				return true
			}
		}
	case syntax.OpCharClass:
		for i := 0; i+1 < len(re.Rune); i += 2 {
			if re.Rune[i] <= '\n' && '\n' <= re.Rune[i+1] {
				return true
			}
		}
	case syntax.OpAnyChar:
		return true
	}
	for _, sub := range re.Sub {
		if canMatchNewline(sub) {
			return true
		}
	}
	return false
}

// Source returns the original, unescaped pattern text.
func (p *Pattern) Source() string { return p.source }

// NumCaptures returns the number of capture groups, not counting group 0.
func (p *Pattern) NumCaptures() int {
	n := p.engine.NumCaptures()
	if n > 0 {
		return n - 1
	}
	return 0
}

// IsMatch reports whether the pattern matches anywhere in haystack.
func (p *Pattern) IsMatch(haystack []byte) bool {
	return p.engine.IsMatch(haystack)
}

// Find returns the leftmost match starting at or after cursor, scanning the
// full haystack so that anchors (^, $, \b) see real context rather than a
// sliced window.
func (p *Pattern) Find(haystack []byte, cursor int) (MatchSpan, bool) {
	if p.NumCaptures() == 0 {
		start, end, found := p.engine.FindIndicesAt(haystack, cursor)
		if !found {
			return MatchSpan{}, false
		}
		return MatchSpan{Start: start, End: end}, true
	}

	m := p.engine.FindSubmatchAt(haystack, cursor)
	if m == nil {
		return MatchSpan{}, false
	}
	groups := make([][2]int, 0, p.NumCaptures()+1)
	groups = append(groups, [2]int{m.Start(), m.End()})
	for i := 1; i <= p.NumCaptures(); i++ {
		g := m.GroupIndex(i)
		if g == nil {
			groups = append(groups, [2]int{-1, -1})
			continue
		}
		groups = append(groups, [2]int{g[0], g[1]})
	}
	return MatchSpan{Start: m.Start(), End: m.End(), Groups: groups}, true
}

// FindAll returns every non-overlapping match in haystack, in left-to-right
// order, advancing past empty matches by one byte to guarantee progress.
func (p *Pattern) FindAll(haystack []byte) []MatchSpan {
	var spans []MatchSpan
	cursor := 0
	for cursor <= len(haystack) {
		span, found := p.Find(haystack, cursor)
		if !found {
			break
		}
		spans = append(spans, span)
		if span.End > cursor {
			cursor = span.End
		} else {
			cursor++
		}
	}
	return spans
}

// quoteMeta escapes every regex metacharacter in s, the same set
// regexp.QuoteMeta treats specially, so s matches only itself.
func quoteMeta(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// wrapWordBoundary rewrites re as \b(?:re)\b using the parser's native
// OpWordBoundary node, so the engine's existing zero-width-assertion
// handling executes it directly rather than via backtracking lookaround.
func wrapWordBoundary(re *syntax.Regexp) *syntax.Regexp {
	boundary := &syntax.Regexp{Op: syntax.OpWordBoundary}
	return &syntax.Regexp{
		Op:  syntax.OpConcat,
		Sub: []*syntax.Regexp{cloneFlags(boundary, re), re, cloneFlags(boundary, re)},
	}
}

// wrapLineAnchor rewrites re as \A(?:re)\z so a match must span the entire
// haystack passed to Find, matching grep -x when the pipeline presents one
// line at a time.
func wrapLineAnchor(re *syntax.Regexp) *syntax.Regexp {
	begin := &syntax.Regexp{Op: syntax.OpBeginText}
	end := &syntax.Regexp{Op: syntax.OpEndText}
	return &syntax.Regexp{
		Op:  syntax.OpConcat,
		Sub: []*syntax.Regexp{cloneFlags(begin, re), re, cloneFlags(end, re)},
	}
}

func cloneFlags(node, flagsFrom *syntax.Regexp) *syntax.Regexp {
	node.Flags = flagsFrom.Flags
	return node
}
