package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/audioconv/internal/catalog"
)

// DiscoverOptions tunes Discover.
type DiscoverOptions struct {
	// Prune lists absolute directories that are not descended into.
	Prune []string

	// OnSkip is called for unreadable entries below the root, which are
	// skipped instead of aborting the walk.
	OnSkip func(path string, err error)
}

// Discover walks root and returns the absolute paths of all non-directory
// entries whose extension matches format case-insensitively, sorted
// lexicographically for a deterministic submission order. An empty result
// is not an error. A missing or unreadable root wraps ErrPathNotFound.
//
// A root that is a symlink to a directory is followed; the returned paths
// keep the root as given.
func Discover(root string, format catalog.Format, opts DiscoverOptions) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPathNotFound, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathNotFound, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, abs)
	}

	// WalkDir does not descend into a symlinked root, so walk its target
	// and map every path back under abs.
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathNotFound, err)
	}
	underRoot := func(path string) string {
		rel, err := filepath.Rel(target, path)
		if err != nil {
			return path
		}
		return filepath.Join(abs, rel)
	}

	prune := make(map[string]bool, len(opts.Prune))
	for _, p := range opts.Prune {
		prune[resolveDir(p)] = true
	}
	ext := format.Ext()

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == target {
				return fmt.Errorf("%w: %v", ErrPathNotFound, err)
			}
			if opts.OnSkip != nil {
				opts.OnSkip(underRoot(path), err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != target && prune[path] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		// A symlink named like an audio file may point at a directory.
		if d.Type()&fs.ModeSymlink != 0 {
			if fi, err := os.Stat(path); err != nil || fi.IsDir() {
				return nil
			}
		}
		files = append(files, underRoot(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// resolveDir cleans dir and resolves its symlinks when it exists, so that it
// compares equal to the paths WalkDir reports under a resolved root.
func resolveDir(dir string) string {
	dir = filepath.Clean(dir)
	if target, err := filepath.EvalSymlinks(dir); err == nil {
		return target
	}
	return dir
}
