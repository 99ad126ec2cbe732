package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pattern"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func countingFormat(fc FileContext, records []MatchRecord, opts option.Options) OutputBuffer {
	return OutputBuffer{MatchCount: len(records), Data: []byte("ok")}
}

func TestScanLinesBasic(t *testing.T) {
	pat, err := pattern.Compile("foo", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	fc := FileContext{Bytes: []byte("foo bar\nbaz\nfoo foo\n")}
	opts := option.Default()

	records := scanFile(fc, pat, opts)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}
	if records[0].LineNumber != 1 || len(records[0].Spans) != 1 {
		t.Errorf("line 1 record = %+v", records[0])
	}
	if records[1].LineNumber != 3 || len(records[1].Spans) != 2 {
		t.Errorf("line 3 record = %+v", records[1])
	}
}

func TestScanFileContextLines(t *testing.T) {
	pat, err := pattern.Compile("three", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	fc := FileContext{Bytes: []byte("one\ntwo\nthree\nfour\nfive\n")}
	opts := option.Default()
	opts.BeforeContext = 1
	opts.AfterContext = 1

	records := scanFile(fc, pat, opts)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (two, three, four): %+v", len(records), records)
	}
	if records[0].LineNumber != 2 || !records[0].IsContext {
		t.Errorf("record[0] = %+v, want context line 2", records[0])
	}
	if records[1].LineNumber != 3 || records[1].IsContext {
		t.Errorf("record[1] = %+v, want match line 3", records[1])
	}
	if records[2].LineNumber != 4 || !records[2].IsContext {
		t.Errorf("record[2] = %+v, want context line 4", records[2])
	}
}

func TestScanFileContextMergesOverlappingWindows(t *testing.T) {
	pat, err := pattern.Compile("x", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	fc := FileContext{Bytes: []byte("x\nx\nx\n")}
	opts := option.Default()
	opts.AfterContext = 2

	records := scanFile(fc, pat, opts)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 with no duplicate lines: %+v", len(records), records)
	}
	for _, r := range records {
		if r.IsContext {
			t.Errorf("line %d should stay a match, not degrade to context, when another match claims it as its own line", r.LineNumber)
		}
	}
}

func TestScanInvert(t *testing.T) {
	pat, err := pattern.Compile("foo", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	fc := FileContext{Bytes: []byte("foo\nbar\nbaz\n")}
	opts := option.Default()
	opts.Invert = true

	records := scanFile(fc, pat, opts)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}
	if records[0].LineNumber != 2 || records[1].LineNumber != 3 {
		t.Errorf("unexpected line numbers: %+v", records)
	}
}

func TestScanBlockCrossesLines(t *testing.T) {
	pat, err := pattern.Compile(`/\*(.|\n)*?\*/`, pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	fc := FileContext{Bytes: []byte("code\n/* comment\nspans lines */\nmore code\n")}
	opts := option.Default()

	records := scanFile(fc, pat, opts)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1: %+v", len(records), records)
	}
	if records[0].LineNumber != 2 {
		t.Errorf("got line %d, want 2", records[0].LineNumber)
	}
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello world\n")
	writeFile(t, filepath.Join(root, "b.txt"), "nothing\n")

	pat, err := pattern.Compile("hello", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := option.Default()
	opts.Recurse = true

	buffers, stats, err := Run(context.Background(), root, pat, opts, countingFormat, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 1 {
		t.Fatalf("got %d buffers, want 1: %+v", len(buffers), buffers)
	}
	if stats.FilesScanned != 2 || stats.FilesMatched != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunPathsAcceptsExplicitFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeFile(t, path, "hello there\n")

	pat, err := pattern.Compile("hello", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := option.Default()

	buffers, stats, err := RunPaths(context.Background(), []string{path}, pat, opts, countingFormat, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 1 || stats.FilesMatched != 1 {
		t.Fatalf("buffers=%+v stats=%+v", buffers, stats)
	}
}

func TestRunPathsDirectoryArgumentDefaultsToError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello world\n")

	pat, err := pattern.Compile("hello", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := option.Default()

	var gotErr error
	onError := func(path string, err error) { gotErr = err }

	buffers, _, err := RunPaths(context.Background(), []string{root}, pat, opts, countingFormat, onError)
	if err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 0 {
		t.Fatalf("expected no buffers for an unwalked directory argument, got %+v", buffers)
	}
	if gotErr == nil {
		t.Fatal("expected an 'is a directory' error to reach onError")
	}
}

func TestRunPathsDirectoryArgumentSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello world\n")

	pat, err := pattern.Compile("hello", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := option.Default()
	opts.DirAction = option.DirActionSkip

	called := false
	onError := func(string, error) { called = true }

	buffers, _, err := RunPaths(context.Background(), []string{root}, pat, opts, countingFormat, onError)
	if err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 0 || called {
		t.Fatalf("expected a silently skipped directory, got buffers=%+v called=%v", buffers, called)
	}
}

func TestRunPathsDirectoryActionRecurse(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello world\n")

	pat, err := pattern.Compile("hello", pattern.Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := option.Default()
	opts.DirAction = option.DirActionRecurse

	buffers, stats, err := RunPaths(context.Background(), []string{root}, pat, opts, countingFormat, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(buffers) != 1 || stats.FilesMatched != 1 {
		t.Fatalf("buffers=%+v stats=%+v", buffers, stats)
	}
}
