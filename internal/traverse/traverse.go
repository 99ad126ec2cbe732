// Package traverse walks a file tree into a stream of candidate paths,
// applying hidden-file, symlink, and binary-file policy plus an IgnoreSet
// in the order a grep-style tool's filters compose: hidden, then symlink,
// then include globs, then exclude globs (including ignore-file entries),
// then a binary sniff.
package traverse

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/scangrep/scangrep/internal/option"
	"github.com/scangrep/scangrep/internal/source"
)

// Entry is one file the walk has accepted as a search candidate, paired
// with the key that orders it relative to its siblings in output.
// DisplayKey is the slash-separated path from the traversal root. The
// pipeline's archive expansion does not extend it: an expanded member's
// key is source.Entry.DisplayPath, built from the archive's Path, so
// members do not sort among their archive's siblings.
type Entry struct {
	Path       string
	DisplayKey string
}

// peekWindow is how much of a candidate file the binary sniff reads,
// matching source.IsBinary's own window.
const peekWindow = 32 * 1024

// Traverser walks Root, producing Entry values in traversal order.
type Traverser struct {
	Root           string
	Hidden         bool
	FollowSymlinks bool
	IgnoreBinary   bool
	MaxDepth       int // <= 0 means unlimited
	Ignore         *IgnoreSet

	// OnSkipError, if set, is called for every path the walk could not
	// stat or read rather than aborting the whole traversal.
	OnSkipError func(path string, err error)
}

// New builds a Traverser from opts, compiling its glob-based filters.
func New(root string, opts option.Options) (*Traverser, error) {
	ig, err := NewIgnoreSet(opts)
	if err != nil {
		return nil, err
	}
	return &Traverser{
		Root:           root,
		Hidden:         opts.Hidden,
		FollowSymlinks: opts.FollowSymlinks,
		IgnoreBinary:   opts.IgnoreBinary,
		MaxDepth:       opts.MaxDepth,
		Ignore:         ig,
	}, nil
}

// Walk emits accepted entries on the returned channel in traversal order
// and closes it when the walk finishes or ctx is canceled.
func (t *Traverser) Walk(ctx context.Context) <-chan Entry {
	out := make(chan Entry)
	go func() {
		defer close(out)
		t.walkDir(ctx, t.Root, "", 0, out)
	}()
	return out
}

func (t *Traverser) walkDir(ctx context.Context, dir, rel string, depth int, out chan<- Entry) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	t.Ignore.loadIgnoreFile(dir, rel)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.reportError(dir, err)
		return
	}

	for _, de := range entries {
		name := de.Name()
		if !t.Hidden && strings.HasPrefix(name, ".") {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		childPath := filepath.Join(dir, name)

		isDir, isSymlinkToDir, ok := t.classify(de, childPath)
		if !ok {
			continue
		}

		if isDir || isSymlinkToDir {
			if t.Ignore.MatchDir(childRel) {
				continue
			}
			if t.MaxDepth > 0 && depth+1 >= t.MaxDepth {
				continue
			}
			t.walkDir(ctx, childPath, childRel, depth+1, out)
			continue
		}

		if t.Ignore.MatchFile(childRel) {
			continue
		}

		if t.IgnoreBinary && t.looksBinary(childPath) {
			continue
		}

		select {
		case out <- Entry{Path: childPath, DisplayKey: childRel}:
		case <-ctx.Done():
			return
		}
	}
}

// classify resolves a directory entry's symlink policy and reports
// whether it is (or, followed, resolves to) a directory. ok is false when
// the entry should be skipped outright: an unfollowed symlink, or one
// whose target could not be statted.
func (t *Traverser) classify(de fs.DirEntry, path string) (isDir, isSymlinkToDir, ok bool) {
	if de.Type()&fs.ModeSymlink == 0 {
		return de.IsDir(), false, true
	}

	if !t.FollowSymlinks {
		return false, false, false
	}

	target, err := os.Stat(path) // Stat follows the link.
	if err != nil {
		t.reportError(path, err)
		return false, false, false
	}
	return false, target.IsDir(), true
}

func (t *Traverser) looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		t.reportError(path, err)
		return false
	}
	defer f.Close()

	buf := make([]byte, peekWindow)
	n, _ := f.Read(buf)
	return source.IsBinary(buf[:n])
}

func (t *Traverser) reportError(path string, err error) {
	if t.OnSkipError != nil {
		t.OnSkipError(path, err)
	}
}
