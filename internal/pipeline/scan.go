package pipeline

import (
	"bytes"

	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pattern"
)

// scanFile turns one FileContext into the MatchRecords its pattern (or,
// under invert, its absence) produces. The buffered-mode decision mirrors
// option.Options.BufferMode: invert always scans line by line, everything
// else block-scans when the pattern itself can consume a newline.
func scanFile(fc FileContext, pat *pattern.Pattern, opts option.Options) []MatchRecord {
	var records []MatchRecord
	switch {
	case opts.Invert:
		records = scanInvert(fc, pat, opts)
	case opts.BufferMode(pat.CrossesLines()) == option.BlockBuffered:
		records = scanBlock(fc, pat, opts)
	default:
		records = scanLines(fc, pat, opts)
	}
	return addContext(fc, records, opts)
}

// addContext fills the gaps around each selected line with
// BeforeContext/AfterContext neighbors, matching grep's -A/-B/-C: a line
// that would appear both as a match and as another match's context is
// kept once, as the match.
func addContext(fc FileContext, records []MatchRecord, opts option.Options) []MatchRecord {
	before, after := opts.ContextLines()
	if (before <= 0 && after <= 0) || len(records) == 0 {
		return records
	}

	lines := lineOffsets(fc.Bytes)
	selected := make(map[int]MatchRecord, len(records))
	for _, r := range records {
		selected[r.LineNumber] = r
	}

	want := make(map[int]bool)
	for _, r := range records {
		for ln := r.LineNumber - before; ln <= r.LineNumber+after; ln++ {
			if ln >= 1 && ln <= len(lines) {
				want[ln] = true
			}
		}
	}

	out := make([]MatchRecord, 0, len(want))
	for ln := 1; ln <= len(lines); ln++ {
		if !want[ln] {
			continue
		}
		if r, ok := selected[ln]; ok {
			out = append(out, r)
			continue
		}
		span := lines[ln-1]
		out = append(out, MatchRecord{LineNumber: ln, LineStart: span.start, LineEnd: span.end, IsContext: true})
	}
	return out
}

type lineSpan struct{ start, end int }

// lineOffsets indexes every line's byte span in data, 0-based (line N is
// lineOffsets(data)[N-1]).
func lineOffsets(data []byte) []lineSpan {
	var spans []lineSpan
	start := 0
	for start <= len(data) {
		end, next, last := nextLine(data, start)
		spans = append(spans, lineSpan{start, end})
		if last {
			break
		}
		start = next
	}
	return spans
}

func scanLines(fc FileContext, pat *pattern.Pattern, opts option.Options) []MatchRecord {
	data := fc.Bytes
	var records []MatchRecord
	lineNo := 0
	total := 0
	start := 0

	for start <= len(data) {
		lineNo++
		lineEnd, next, last := nextLine(data, start)

		line := data[start:lineEnd]
		var spans []pattern.MatchSpan
		cursor := 0
		for cursor <= len(line) {
			if opts.MaxCount > 0 && total >= opts.MaxCount {
				break
			}
			span, found := pat.Find(line, cursor)
			if !found {
				break
			}
			spans = append(spans, offsetSpan(span, start))
			total++
			if span.End > cursor {
				cursor = span.End
			} else {
				cursor++
			}
		}

		if len(spans) > 0 {
			records = append(records, MatchRecord{LineNumber: lineNo, LineStart: start, LineEnd: lineEnd, Spans: spans})
		}

		if last {
			break
		}
		start = next
	}

	return records
}

func scanInvert(fc FileContext, pat *pattern.Pattern, opts option.Options) []MatchRecord {
	data := fc.Bytes
	var records []MatchRecord
	lineNo := 0
	total := 0
	start := 0

	for start <= len(data) {
		lineNo++
		lineEnd, next, last := nextLine(data, start)

		if _, found := pat.Find(data[start:lineEnd], 0); !found {
			if opts.MaxCount <= 0 || total < opts.MaxCount {
				records = append(records, MatchRecord{LineNumber: lineNo, LineStart: start, LineEnd: lineEnd})
				total++
			}
		}

		if last {
			break
		}
		start = next
	}

	return records
}

func scanBlock(fc FileContext, pat *pattern.Pattern, opts option.Options) []MatchRecord {
	data := fc.Bytes
	spans := pat.FindAll(data)
	if opts.MaxCount > 0 && len(spans) > opts.MaxCount {
		spans = spans[:opts.MaxCount]
	}

	records := make([]MatchRecord, 0, len(spans))
	for _, span := range spans {
		lineStart := lineStartAt(data, span.Start)
		lineEnd := lineEndAt(data, span.End)
		lineNo := 1 + bytes.Count(data[:lineStart], []byte{'\n'})
		records = append(records, MatchRecord{LineNumber: lineNo, LineStart: lineStart, LineEnd: lineEnd, Spans: []pattern.MatchSpan{span}})
	}
	return records
}

// nextLine reports the end offset of the line starting at start (not
// including its newline), where the following line begins, and whether
// this was the data's final line.
func nextLine(data []byte, start int) (lineEnd, next int, last bool) {
	rel := bytes.IndexByte(data[start:], '\n')
	if rel == -1 {
		return len(data), len(data) + 1, true
	}
	// A newline that ends the data terminates the final line; the empty
	// remainder after it is not a line of its own.
	next = start + rel + 1
	return start + rel, next, next == len(data)
}

func lineStartAt(data []byte, pos int) int {
	idx := bytes.LastIndexByte(data[:pos], '\n')
	if idx == -1 {
		return 0
	}
	return idx + 1
}

func lineEndAt(data []byte, pos int) int {
	rel := bytes.IndexByte(data[pos:], '\n')
	if rel == -1 {
		return len(data)
	}
	return pos + rel
}

func offsetSpan(span pattern.MatchSpan, base int) pattern.MatchSpan {
	out := pattern.MatchSpan{Start: span.Start + base, End: span.End + base}
	if span.Groups != nil {
		out.Groups = make([][2]int, len(span.Groups))
		for i, g := range span.Groups {
			if g[0] < 0 {
				out.Groups[i] = g
				continue
			}
			out.Groups[i] = [2]int{g[0] + base, g[1] + base}
		}
	}
	return out
}
