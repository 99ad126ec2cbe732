package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pattern"
	"github.com/scangrep/scangrep/internal/pipeline"
)

func TestEmitDoesNotSeparateDistinctFiles(t *testing.T) {
	buffers := []pipeline.OutputBuffer{
		{Data: []byte("a.txt:1:hello\n"), MatchCount: 1},
		{Data: []byte("b.txt:1:hello\n"), MatchCount: 1},
	}
	var buf bytes.Buffer
	matched, err := Emit(&buf, buffers, false)
	require.NoError(t, err)
	require.Equal(t, 2, matched)
	require.Equal(t, "a.txt:1:hello\nb.txt:1:hello\n", buf.String())
}

func TestParseGrepColors(t *testing.T) {
	scheme := ParseGrepColors("fn=01;35:ln=32:mt=01;33")
	require.Equal(t, "01;35", scheme.FileName)
	require.Equal(t, "32", scheme.LineNumber)
	require.Equal(t, "01;33", scheme.Match)
	require.Equal(t, "01;33", scheme.ContextMatch)
}

func TestFormatPlainNoColor(t *testing.T) {
	pat, err := pattern.Compile("hello", pattern.Options{})
	require.NoError(t, err)

	fc := pipeline.FileContext{
		WorkItem: pipeline.WorkItem{Path: "a.txt"},
		Bytes:    []byte("hello world\n"),
	}
	opts := option.Default()
	opts.WithFilename = true
	opts.LineNumber = true

	var records []pipeline.MatchRecord
	for _, s := range pat.FindAll(fc.Bytes) {
		records = append(records, pipeline.MatchRecord{LineNumber: 1, LineStart: 0, LineEnd: len(fc.Bytes) - 1, Spans: []pattern.MatchSpan{s}})
	}

	f := New(DefaultColorScheme(), false)
	ob := f.Format(fc, records, opts)
	require.Contains(t, string(ob.Data), "a.txt:1:hello world")
}

func TestFormatPlainContextSeparatorAndGap(t *testing.T) {
	fc := pipeline.FileContext{
		WorkItem: pipeline.WorkItem{Path: "a.txt"},
		Bytes:    []byte("one\ntwo\nthree\nfour\nfive\n"),
	}
	opts := option.Default()
	opts.WithFilename = true
	opts.LineNumber = true

	records := []pipeline.MatchRecord{
		{LineNumber: 1, LineStart: 0, LineEnd: 3},
		{LineNumber: 4, LineStart: 14, LineEnd: 18, IsContext: true},
	}

	f := New(DefaultColorScheme(), false)
	ob := f.Format(fc, records, opts)
	out := string(ob.Data)
	require.Contains(t, out, "a.txt:1:one")
	require.Contains(t, out, "--\n")
	require.Contains(t, out, "a.txt-4-four")
	require.Equal(t, 1, ob.MatchCount)
}

func TestFormatCount(t *testing.T) {
	fc := pipeline.FileContext{WorkItem: pipeline.WorkItem{Path: "a.txt"}, Bytes: []byte("x\n")}
	opts := option.Default()
	opts.Count = true
	opts.WithFilename = true

	f := New(DefaultColorScheme(), false)
	records := []pipeline.MatchRecord{{LineNumber: 1}, {LineNumber: 2}}
	ob := f.Format(fc, records, opts)
	require.Equal(t, "a.txt:2\n", string(ob.Data))
}
