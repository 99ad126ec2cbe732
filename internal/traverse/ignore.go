package traverse

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/scangrep/scangrep/internal/option"
)

// IgnoreSet is the compiled include/exclude/gitignore-style rule set a
// Traverser consults for every candidate path. Rules compose the way a
// mature grep's --include/--exclude/--ignore-files flags do: include
// narrows the candidate set first, exclude (and ignore-file entries) then
// veto anything that slipped through.
type IgnoreSet struct {
	include    []glob.Glob
	exclude    []glob.Glob
	excludeDir []glob.Glob

	ignoreFileNames []string
	rules           []ignoreRule
}

type ignoreRule struct {
	g       glob.Glob
	dirOnly bool
}

// NewIgnoreSet compiles the include/exclude/exclude-dir globs carried by
// opts. Ignore files named in opts.IgnoreFiles are discovered lazily, one
// directory at a time, as the Traverser descends, the way a gitignore
// reader accumulates rules level by level rather than all at once.
func NewIgnoreSet(opts option.Options) (*IgnoreSet, error) {
	s := &IgnoreSet{ignoreFileNames: opts.IgnoreFiles}

	var err error
	if s.include, err = compileAll(opts.IncludeGlobs); err != nil {
		return nil, err
	}
	if s.exclude, err = compileAll(opts.ExcludeGlobs); err != nil {
		return nil, err
	}
	if s.excludeDir, err = compileAll(opts.ExcludeDirGlobs); err != nil {
		return nil, err
	}
	return s, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("traverse: bad glob %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// loadIgnoreFile reads any ignore file present in dir and appends its
// entries, recompiled relative to rel (dir's path from the traversal
// root). Lines that fail to parse as globs are dropped rather than
// aborting the walk.
func (s *IgnoreSet) loadIgnoreFile(dir, rel string) {
	for _, name := range s.ignoreFileNames {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(strings.NewReader(string(raw)))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			dirOnly := strings.HasSuffix(line, "/")
			pattern := strings.TrimSuffix(line, "/")
			if rel != "" {
				pattern = rel + "/" + pattern
			}
			// A bare name (no wildcard of its own) should also match
			// everything underneath it, the way a gitignore entry for a
			// directory name silently covers its whole subtree.
			if !strings.ContainsAny(pattern, "*?[") {
				pattern += "{,/**}"
			}

			g, err := glob.Compile(pattern, '/')
			if err != nil {
				continue
			}
			s.rules = append(s.rules, ignoreRule{g: g, dirOnly: dirOnly})
		}
	}
}

// MatchDir reports whether the directory at rel (relative to the
// traversal root) should be pruned entirely.
func (s *IgnoreSet) MatchDir(rel string) bool {
	for _, g := range s.excludeDir {
		if g.Match(rel) {
			return true
		}
	}
	for _, r := range s.rules {
		if r.g.Match(rel) {
			return true
		}
	}
	return false
}

// MatchFile reports whether the file at rel should be excluded from the
// candidate set: it fails an include filter, matches an exclude glob, or
// matches a non-directory-only ignore-file rule.
func (s *IgnoreSet) MatchFile(rel string) bool {
	if len(s.include) > 0 {
		included := false
		for _, g := range s.include {
			if g.Match(rel) {
				included = true
				break
			}
		}
		if !included {
			return true
		}
	}

	for _, g := range s.exclude {
		if g.Match(rel) {
			return true
		}
	}

	for _, r := range s.rules {
		if r.dirOnly {
			continue
		}
		if r.g.Match(rel) {
			return true
		}
	}

	return false
}
