// Package pipeline drives the producer/consumer search: a Traverser feeds
// WorkItems into a worker pool that scans each one against a compiled
// Pattern, and results are handed back in display-key order regardless of
// which worker finished first.
//
// The worker-pool shape is grounded on the concurrentFind loop in the
// pack's sourcegraph searcher (cmd/searcher/search/matcher.go): a fixed
// number of goroutines pull work from a shared, mutex-guarded source and
// write results into a shared, mutex-guarded sink, with a cancelable
// context bounding the whole run.
package pipeline

import (
	"context"
	"errors"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/pattern"
	"github.com/scangrep/scangrep/internal/source"
	"github.com/scangrep/scangrep/internal/traverse"
)

// errIsADirectory is reported for a directory command-line argument under
// the default -d=read action, mirroring grep's own "Is a directory" error.
var errIsADirectory = errors.New("is a directory")

// WorkItem is one byte stream to search: either a file the Traverser
// found directly, or a member recovered from inside an archive the
// Traverser's file pointed at. Data is nil for a plain file (read lazily
// from Path); it holds the already-decompressed bytes for an archive
// member, which has no file of its own to reopen.
type WorkItem struct {
	Path            string
	Data            []byte
	DecompressDepth int
	DisplayKey      string
}

// FileContext is a WorkItem together with its fully materialized,
// UTF-8-normalized content.
type FileContext struct {
	WorkItem WorkItem
	Bytes    []byte
	Encoding source.Encoding
}

// MatchRecord is one reportable line (or, in block-buffered mode, the
// line range bounding one match that may itself span several lines)
// together with the match spans it contains. A record with no Spans and
// IsContext false represents a non-matching line surfaced under invert
// mode; IsContext true marks a line pulled in only to satisfy
// BeforeContext/AfterContext, printed with a "-" separator instead of ":".
type MatchRecord struct {
	LineNumber int // 1-based
	LineStart  int // byte offset of the line's first byte in FileContext.Bytes
	LineEnd    int // byte offset one past the line's last byte, excluding '\n'
	Spans      []pattern.MatchSpan
	IsContext  bool
}

// OutputBuffer is one file's fully formatted result, held until the
// Emitter can write it in display-key order.
type OutputBuffer struct {
	DisplayKey string
	Data       []byte
	MatchCount int
	Err        error
}

// FormatFunc renders one file's match records into the bytes that should
// reach stdout. It returns a zero-value OutputBuffer (nil Data, nil Err)
// to suppress output entirely for a file, which Run treats as "nothing to
// emit".
type FormatFunc func(FileContext, []MatchRecord, option.Options) OutputBuffer

// Stats summarizes one Run.
type Stats struct {
	FilesScanned uint64
	FilesMatched uint64
	FilesSkipped uint64
}

// ErrorFunc receives path/err pairs for files the pipeline could not read
// or expand; it must not block.
type ErrorFunc func(path string, err error)

// Run walks root, searches every accepted file concurrently with pat, and
// returns the resulting OutputBuffers sorted into display-key order.
func Run(ctx context.Context, root string, pat *pattern.Pattern, opts option.Options, format FormatFunc, onError ErrorFunc) ([]OutputBuffer, Stats, error) {
	return RunPaths(ctx, []string{root}, pat, opts, format, onError)
}

// RunPaths behaves like Run but walks several roots, run concurrently
// with each other and merged into one work queue. Any root that names a
// plain file rather than a directory is searched directly without going
// through the Traverser's hidden/include/exclude filters, the same way
// grep always searches a file named explicitly on its command line
// regardless of its own --include/--exclude policy.
func RunPaths(ctx context.Context, roots []string, pat *pattern.Pattern, opts option.Options, format FormatFunc, onError ErrorFunc) ([]OutputBuffer, Stats, error) {
	if onError == nil {
		onError = func(string, error) {}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make(chan traverse.Entry)
	var feeders sync.WaitGroup
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			onError(root, err)
			continue
		}

		if !info.IsDir() {
			feeders.Add(1)
			go func(path string) {
				defer feeders.Done()
				select {
				case entries <- traverse.Entry{Path: path, DisplayKey: path}:
				case <-ctx.Done():
				}
			}(root)
			continue
		}

		if !opts.Recurse && opts.DirAction != option.DirActionRecurse {
			if opts.DirAction == option.DirActionSkip {
				continue
			}
			onError(root, errIsADirectory)
			continue
		}

		tr, err := traverse.New(root, opts)
		if err != nil {
			onError(root, err)
			continue
		}
		tr.OnSkipError = onError

		feeders.Add(1)
		go func() {
			defer feeders.Done()
			for e := range tr.Walk(ctx) {
				select {
				case entries <- e:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		feeders.Wait()
		close(entries)
	}()

	items := expand(ctx, entries, opts, onError)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		buffers []OutputBuffer
		stats   Stats
		wg      sync.WaitGroup
	)

	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case item, ok := <-items:
					if !ok {
						return
					}
					runOne(item, pat, opts, format, onError, &stats, &mu, &buffers)
				}
			}
		}()
	}
	wg.Wait()

	sort.Slice(buffers, func(i, j int) bool { return buffers[i].DisplayKey < buffers[j].DisplayKey })
	return buffers, stats, nil
}

func runOne(item WorkItem, pat *pattern.Pattern, opts option.Options, format FormatFunc, onError ErrorFunc, stats *Stats, mu *sync.Mutex, buffers *[]OutputBuffer) {
	fc, err := loadFileContext(item, opts)
	if err != nil {
		onError(item.Path, err)
		atomic.AddUint64(&stats.FilesSkipped, 1)
		return
	}
	atomic.AddUint64(&stats.FilesScanned, 1)

	records := scanFile(fc, pat, opts)
	if len(records) > 0 {
		atomic.AddUint64(&stats.FilesMatched, 1)
	} else if opts.Aggregate() != option.AggregateFilesWithoutMatch {
		return
	}

	ob := format(fc, records, opts)
	if ob.Data == nil && ob.Err == nil {
		return
	}
	ob.DisplayKey = item.DisplayKey

	mu.Lock()
	*buffers = append(*buffers, ob)
	mu.Unlock()
}

// loadFileContext materializes item's raw bytes and normalizes them to
// UTF-8. A decompressed archive member already carries its bytes in
// Data; anything else is read from Path.
func loadFileContext(item WorkItem, opts option.Options) (FileContext, error) {
	var (
		raw    []byte
		closer func() error
	)
	if item.Data != nil {
		raw = item.Data
	} else {
		var err error
		raw, closer, err = source.ReadRaw(item.Path, opts.Mmap)
		if err != nil {
			return FileContext{}, err
		}
	}
	defer func() {
		if closer != nil {
			_ = closer()
		}
	}()

	decoded, enc, err := source.Normalize(raw, opts.Encoding)
	if err != nil {
		return FileContext{}, err
	}
	if enc == source.EncodingUTF8 && opts.Encoding == "" {
		// decoded aliases raw, which is about to be unmapped/discarded;
		// copy it out so the FileContext owns independent memory.
		owned := make([]byte, len(decoded))
		copy(owned, decoded)
		decoded = owned
	}

	return FileContext{WorkItem: item, Bytes: decoded, Encoding: enc}, nil
}

// expand turns traversal Entries into WorkItems, recursively unpacking
// archives through source.Expand when opts.Decompress is set. It runs in
// its own goroutine so Run's worker pool can start consuming before the
// whole tree has been walked.
func expand(ctx context.Context, entries <-chan traverse.Entry, opts option.Options, onError ErrorFunc) <-chan WorkItem {
	out := make(chan WorkItem)
	go func() {
		defer close(out)
		for e := range entries {
			if !opts.Decompress || !looksArchived(e.Path) {
				select {
				case out <- WorkItem{Path: e.Path, DisplayKey: e.DisplayKey}:
				case <-ctx.Done():
					return
				}
				continue
			}

			raw, closer, err := source.ReadRaw(e.Path, false)
			if err != nil {
				onError(e.Path, err)
				continue
			}
			zmax := opts.ZMax
			if zmax <= 0 {
				zmax = 1
			}
			members, err := source.Expand(e.Path, raw, 0, zmax)
			if closer != nil {
				_ = closer()
			}
			if err != nil {
				onError(e.Path, err)
				continue
			}
			// A decompressed member's DisplayPath already encodes its
			// nesting ("archive.tar::member"); it doubles as both the
			// name shown to the user and the sort key among siblings.
			for _, m := range members {
				wi := WorkItem{Path: m.DisplayPath, Data: m.Data, DecompressDepth: m.Depth, DisplayKey: m.DisplayPath}
				select {
				case out <- wi:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func looksArchived(path string) bool {
	lower := strings.ToLower(path)
	for _, suf := range []string{".tar.gz", ".tgz", ".gz", ".bz2", ".zip", ".tar"} {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}
