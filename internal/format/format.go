// Package format renders a file's MatchRecords into the bytes Emit
// writes to stdout: plain grep-style lines with
// optional color and context, or one of the structured serializations
// (JSON, CSV, XML).
package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pipeline"
)

// Formatter renders pipeline results. It is stateless and safe to share
// across the worker goroutines that call pipeline.FormatFunc.
type Formatter struct {
	Scheme   ColorScheme
	Colorize bool
}

// New builds a Formatter. colorize should already reflect the resolved
// --color mode (auto/always/never) against whether stdout is a terminal;
// Formatter itself does not probe the terminal.
func New(scheme ColorScheme, colorize bool) *Formatter {
	return &Formatter{Scheme: scheme, Colorize: colorize}
}

// Format implements pipeline.FormatFunc.
func (f *Formatter) Format(fc pipeline.FileContext, records []pipeline.MatchRecord, opts option.Options) pipeline.OutputBuffer {
	switch opts.Aggregate() {
	case option.AggregateQuiet:
		return pipeline.OutputBuffer{}
	case option.AggregateFilesWithoutMatch:
		if len(records) > 0 {
			return pipeline.OutputBuffer{}
		}
		return pipeline.OutputBuffer{Data: []byte(fc.WorkItem.Path + "\n"), MatchCount: 0}
	case option.AggregateFilesWithMatches:
		if len(records) == 0 {
			return pipeline.OutputBuffer{}
		}
		return pipeline.OutputBuffer{Data: []byte(fc.WorkItem.Path + "\n"), MatchCount: len(records)}
	case option.AggregateCount:
		if len(records) == 0 {
			return pipeline.OutputBuffer{}
		}
		line := strconv.Itoa(len(records))
		if opts.WithFilename {
			line = fc.WorkItem.Path + ":" + line
		}
		return pipeline.OutputBuffer{Data: []byte(line + "\n"), MatchCount: len(records)}
	}

	if len(records) == 0 {
		return pipeline.OutputBuffer{}
	}

	switch opts.Format {
	case option.FormatJSON:
		return f.formatJSON(fc, records)
	case option.FormatCSV:
		return f.formatCSV(fc, records)
	case option.FormatXML:
		return f.formatXML(fc, records)
	default:
		return f.formatPlain(fc, records, opts)
	}
}

func showName(fc pipeline.FileContext, opts option.Options) bool {
	if opts.NoFilename {
		return false
	}
	return opts.WithFilename
}

func (f *Formatter) formatPlain(fc pipeline.FileContext, records []pipeline.MatchRecord, opts option.Options) pipeline.OutputBuffer {
	var buf bytes.Buffer
	name := fc.WorkItem.Path
	withName := showName(fc, opts)
	matchCount := 0
	prevLine := -1

	for _, rec := range records {
		if prevLine >= 0 && rec.LineNumber > prevLine+1 {
			buf.WriteString("--\n")
		}
		prevLine = rec.LineNumber

		sep := byte(':')
		if rec.IsContext {
			sep = '-'
		} else {
			matchCount++
		}

		if opts.OnlyMatching && len(rec.Spans) > 0 {
			for _, span := range rec.Spans {
				f.writePrefix(&buf, name, withName, rec.LineNumber, span.Start-rec.LineStart+1, span.Start, opts, sep)
				buf.WriteString(f.highlight(true, string(fc.Bytes[span.Start:span.End])))
				buf.WriteByte('\n')
			}
			continue
		}

		f.writePrefix(&buf, name, withName, rec.LineNumber, firstColumn(rec), rec.LineStart, opts, sep)
		buf.Write(f.renderLine(fc.Bytes, rec))
		buf.WriteByte('\n')
	}

	return pipeline.OutputBuffer{Data: buf.Bytes(), MatchCount: matchCount}
}

func firstColumn(rec pipeline.MatchRecord) int {
	if len(rec.Spans) == 0 {
		return 1
	}
	return rec.Spans[0].Start - rec.LineStart + 1
}

func (f *Formatter) writePrefix(buf *bytes.Buffer, name string, withName bool, lineNo, column, byteOffset int, opts option.Options, sep byte) {
	sepStr := f.sgr(f.Scheme.Separator, string(sep))
	if withName {
		buf.WriteString(f.sgr(f.Scheme.FileName, name))
		buf.WriteString(sepStr)
	}
	if opts.LineNumber {
		buf.WriteString(f.sgr(f.Scheme.LineNumber, strconv.Itoa(lineNo)))
		buf.WriteString(sepStr)
	}
	if opts.ColumnNumber {
		buf.WriteString(f.sgr(f.Scheme.ColumnNumber, strconv.Itoa(column)))
		buf.WriteString(sepStr)
	}
	if opts.ByteOffset {
		buf.WriteString(f.sgr(f.Scheme.ByteOffset, strconv.Itoa(byteOffset)))
		buf.WriteString(sepStr)
	}
}

// renderLine returns the full line text for rec, with every match span
// highlighted when coloring is enabled.
func (f *Formatter) renderLine(data []byte, rec pipeline.MatchRecord) []byte {
	if !f.Colorize || len(rec.Spans) == 0 {
		return data[rec.LineStart:rec.LineEnd]
	}

	var out bytes.Buffer
	cursor := rec.LineStart
	for _, span := range rec.Spans {
		if span.Start > cursor {
			out.Write(data[cursor:span.Start])
		}
		out.WriteString(f.highlight(true, string(data[span.Start:span.End])))
		cursor = span.End
	}
	if cursor < rec.LineEnd {
		out.Write(data[cursor:rec.LineEnd])
	}
	return out.Bytes()
}

func (f *Formatter) highlight(selected bool, s string) string {
	if !f.Colorize {
		return s
	}
	code := f.Scheme.ContextMatch
	if selected {
		code = f.Scheme.Match
	}
	return wrap(code, s)
}

func (f *Formatter) sgr(code, s string) string {
	if !f.Colorize {
		return s
	}
	return wrap(code, s)
}

type jsonMatch struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

func (f *Formatter) formatJSON(fc pipeline.FileContext, records []pipeline.MatchRecord) pipeline.OutputBuffer {
	out := make([]jsonMatch, 0, len(records))
	for _, rec := range records {
		out = append(out, jsonMatch{
			Path:   fc.WorkItem.Path,
			Line:   rec.LineNumber,
			Column: firstColumn(rec),
			Offset: rec.LineStart,
			Text:   string(fc.Bytes[rec.LineStart:rec.LineEnd]),
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return pipeline.OutputBuffer{Err: fmt.Errorf("format: marshal JSON for %s: %w", fc.WorkItem.Path, err)}
	}
	return pipeline.OutputBuffer{Data: append(data, '\n'), MatchCount: len(records)}
}

func (f *Formatter) formatCSV(fc pipeline.FileContext, records []pipeline.MatchRecord) pipeline.OutputBuffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, rec := range records {
		row := []string{
			fc.WorkItem.Path,
			strconv.Itoa(rec.LineNumber),
			strconv.Itoa(firstColumn(rec)),
			string(fc.Bytes[rec.LineStart:rec.LineEnd]),
		}
		if err := w.Write(row); err != nil {
			return pipeline.OutputBuffer{Err: fmt.Errorf("format: write CSV row for %s: %w", fc.WorkItem.Path, err)}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return pipeline.OutputBuffer{Err: err}
	}
	return pipeline.OutputBuffer{Data: buf.Bytes(), MatchCount: len(records)}
}

type xmlMatches struct {
	XMLName xml.Name   `xml:"matches"`
	Items   []xmlMatch `xml:"match"`
}

type xmlMatch struct {
	Path   string `xml:"path,attr"`
	Line   int    `xml:"line,attr"`
	Column int    `xml:"column,attr"`
	Text   string `xml:",chardata"`
}

func (f *Formatter) formatXML(fc pipeline.FileContext, records []pipeline.MatchRecord) pipeline.OutputBuffer {
	items := make([]xmlMatch, 0, len(records))
	for _, rec := range records {
		items = append(items, xmlMatch{
			Path:   fc.WorkItem.Path,
			Line:   rec.LineNumber,
			Column: firstColumn(rec),
			Text:   string(fc.Bytes[rec.LineStart:rec.LineEnd]),
		})
	}
	data, err := xml.MarshalIndent(xmlMatches{Items: items}, "", "  ")
	if err != nil {
		return pipeline.OutputBuffer{Err: fmt.Errorf("format: marshal XML for %s: %w", fc.WorkItem.Path, err)}
	}
	return pipeline.OutputBuffer{Data: append(data, '\n'), MatchCount: len(records)}
}
