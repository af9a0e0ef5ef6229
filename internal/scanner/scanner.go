// Package scanner turns a directory tree into a set of relative member paths.
//
// A Scanner walks one group root and classifies every non-directory entry as
// kept, ignored (extension or pattern filter) or skipped (the entry could not
// be read). Skipped entries never abort a scan; they are recorded in the
// Result so callers can see what was left out. A path that cannot be
// expressed relative to the root is a traversal defect and aborts the scan
// with ErrPathEscapesRoot.
//
// A Scanner holds no per-scan state and may be shared between goroutines.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/danieljhkim/modclash/internal/fsops"
)

var (
	// ErrPathEscapesRoot indicates a visited entry lies outside the scanned root.
	ErrPathEscapesRoot = errors.New("path escapes scan root")

	// ErrNotDirectory indicates the scan root is not a directory.
	ErrNotDirectory = errors.New("scan root is not a directory")

	// ErrInvalidPattern indicates an ignore pattern failed to compile.
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)

// Outcome classifies a visited non-directory entry.
type Outcome int

const (
	// OutcomeKept means the entry became a member.
	OutcomeKept Outcome = iota

	// OutcomeIgnored means the entry matched the extension or pattern filter.
	OutcomeIgnored

	// OutcomeSkipped means the entry could not be read and was left out.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeKept:
		return "kept"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Skip records an entry left out of a scan because it could not be read.
type Skip struct {
	// Path is relative to the root when it can be made so, otherwise as visited.
	Path string

	// Err is the error reported by the walk.
	Err error
}

// Result is the outcome of scanning one root.
type Result struct {
	// Root is the scanned directory.
	Root string

	// Members holds the kept entries as slash-separated relative paths.
	Members map[string]struct{}

	// Ignored lists the relative paths removed by the filters.
	Ignored []string

	// Skipped lists the entries that could not be read.
	Skipped []Skip
}

// record files one visited entry under its outcome. err is the walk error
// of a skipped entry and is nil otherwise.
func (r *Result) record(outcome Outcome, member string, err error) {
	switch outcome {
	case OutcomeKept:
		r.Members[member] = struct{}{}
	case OutcomeIgnored:
		r.Ignored = append(r.Ignored, member)
	case OutcomeSkipped:
		r.Skipped = append(r.Skipped, Skip{Path: member, Err: err})
	}
}

// Options configures the scan filters.
type Options struct {
	// IgnoreExtensions lists extensions to drop, compared case-insensitively.
	// A leading "." is optional.
	IgnoreExtensions []string

	// IgnorePatterns lists glob patterns matched against member paths.
	// "*" stays within one path segment, "**" crosses segments.
	IgnorePatterns []string
}

// Scanner walks group roots through an fsops.FS.
type Scanner struct {
	fs         fsops.FS
	ignoreExts map[string]struct{}
	patterns   []glob.Glob
}

// New creates a Scanner. Returns ErrInvalidPattern if a pattern does not compile.
func New(fsys fsops.FS, opts Options) (*Scanner, error) {
	s := &Scanner{
		fs:         fsys,
		ignoreExts: NormalizeExtensions(opts.IgnoreExtensions),
	}

	for _, p := range opts.IgnorePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		s.patterns = append(s.patterns, g)
	}

	return s, nil
}

// NormalizeExtensions lower-cases extensions and strips a leading ".".
// Blank entries are dropped.
func NormalizeExtensions(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		set[ext] = struct{}{}
	}
	return set
}

// Extension returns the lower-cased text after the last "." of the base
// name, or "" if there is none.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Classify decides the outcome for a readable entry with the given member path.
func (s *Scanner) Classify(member string) Outcome {
	if ext := Extension(member); ext != "" {
		if _, ignored := s.ignoreExts[ext]; ignored {
			return OutcomeIgnored
		}
	}
	for _, g := range s.patterns {
		if g.Match(member) {
			return OutcomeIgnored
		}
	}
	return OutcomeKept
}

// Scan walks root and returns its members.
//
// A root that is a symlink is resolved once and its target is walked;
// Result.Root keeps root as given. Unreadable entries are recorded in
// Result.Skipped and the walk continues. The scan aborts on context
// cancellation and on ErrPathEscapesRoot.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	walkRoot, err := s.resolveRoot(root)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Root:    root,
		Members: make(map[string]struct{}),
	}

	err = s.fs.WalkDir(walkRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			res.record(OutcomeSkipped, relOrPath(walkRoot, p), walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		member, err := s.memberPath(walkRoot, p)
		if err != nil {
			return err
		}
		res.record(s.Classify(member), member, nil)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return res, nil
}

// resolveRoot returns the directory to walk for root. Symlinked roots are
// resolved because the walk does not follow a symlink, the root included.
func (s *Scanner) resolveRoot(root string) (string, error) {
	info, err := s.fs.Lstat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat scan root: %w", err)
	}

	walkRoot := root
	if info.Mode()&fs.ModeSymlink != 0 {
		walkRoot, err = s.fs.EvalSymlinks(root)
		if err != nil {
			return "", fmt.Errorf("failed to resolve scan root: %w", err)
		}
		info, err = s.fs.Stat(walkRoot)
		if err != nil {
			return "", fmt.Errorf("failed to stat scan root: %w", err)
		}
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return walkRoot, nil
}

// memberPath converts a visited path into a slash-separated path relative to root.
func (s *Scanner) memberPath(root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathEscapesRoot, p, err)
	}
	if err := s.fs.ValidateRelPath(rel); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPathEscapesRoot, p, err)
	}
	return filepath.ToSlash(rel), nil
}

func relOrPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// Scan walks root on the real filesystem with an extension ignore-list and
// returns the member set.
func Scan(ctx context.Context, root string, ignoreExtensions []string) (map[string]struct{}, error) {
	s, err := New(fsops.NewRealFS(), Options{IgnoreExtensions: ignoreExtensions})
	if err != nil {
		return nil, err
	}
	res, err := s.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	return res.Members, nil
}
