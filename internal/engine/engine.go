// Package engine provides the host-facing entry points for conflict checks.
//
// The engine sits between callers (the CLI, or any program embedding
// modclash) and the scanner and conflict packages. It validates requests,
// scans every group root concurrently, waits for all scans to finish, then
// indexes the member sets and renders the report.
//
// Key components:
//   - Engine.Detect: scan group roots and report shared files
//   - Engine.DetectSets: report shared members of in-memory named sets
//   - DetectConflicts: plain function form returning only the report error
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/modclash/internal/config"
	"github.com/danieljhkim/modclash/internal/conflict"
	"github.com/danieljhkim/modclash/internal/fsops"
	"github.com/danieljhkim/modclash/internal/scanner"
)

// Engine runs conflict checks.
// It holds no per-call state; concurrent calls are safe.
type Engine struct {
	fs     fsops.FS
	logger *slog.Logger
}

// New creates a new Engine. A nil logger discards log output.
func New(fs fsops.FS, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		fs:     fs,
		logger: logger,
	}
}

// DetectConflicts scans groups on the real filesystem and returns nil when no
// file is shared, or a *conflict.ConflictError describing every shared file.
// Other errors indicate an invalid request or a scan failure.
func DetectConflicts(ctx context.Context, groups []GroupRoot, ignoreExtensions []string, groupLabel, memberLabel string) error {
	_, err := New(fsops.NewRealFS(), nil).Detect(ctx, &DetectRequest{
		Groups:           groups,
		IgnoreExtensions: ignoreExtensions,
		GroupLabel:       groupLabel,
		MemberLabel:      memberLabel,
	})
	return err
}

// Algorithm steps:
// 1. Validate group names and roots
// 2. Scan every root concurrently (bounded by Workers)
// 3. Wait for all scans; the first fatal scan error cancels the rest
// 4. Index member sets in request order
// 5. Report conflicts
//
// When conflicts exist, the result is returned together with a
// *conflict.ConflictError.
func (e *Engine) Detect(ctx context.Context, req *DetectRequest) (*DetectResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	sc, err := scanner.New(e.fs, scanner.Options{
		IgnoreExtensions: req.IgnoreExtensions,
		IgnorePatterns:   req.IgnorePatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	start := time.Now()
	scans, err := e.scanAll(ctx, sc, req.Groups, workerCount(req.Workers))
	if err != nil {
		return nil, err
	}

	groups := make([]conflict.Group, len(scans))
	summaries := make([]GroupSummary, len(scans))
	for i, res := range scans {
		groups[i] = conflict.Group{Name: req.Groups[i].Name, Members: res.Members}
		summaries[i] = summarize(req.Groups[i], res)
	}

	result, err := e.detect(labelOr(req.GroupLabel, config.DefaultGroupLabel), labelOr(req.MemberLabel, config.DefaultMemberLabel), groups)
	if result != nil {
		result.Groups = summaries
	}
	e.logger.Debug("detection finished", "groups", len(groups), "duration", time.Since(start))
	return result, err
}

// DetectSets reports members shared between in-memory named sets.
func (e *Engine) DetectSets(groupLabel, memberLabel string, sets []config.NamedSet) (*DetectResult, error) {
	groups := make([]conflict.Group, len(sets))
	summaries := make([]GroupSummary, len(sets))
	for i, set := range sets {
		groups[i] = conflict.NewGroup(set.Name, set.Members...)
		summaries[i] = GroupSummary{Name: set.Name, Members: len(groups[i].Members)}
	}

	result, err := e.detect(labelOr(groupLabel, config.DefaultGroupLabel), labelOr(memberLabel, config.DefaultMemberLabel), groups)
	if result != nil {
		result.Groups = summaries
	}
	return result, err
}

// detect indexes groups and renders the report. The result is nil only when
// the group names are invalid.
func (e *Engine) detect(groupLabel, memberLabel string, groups []conflict.Group) (*DetectResult, error) {
	entries, err := conflict.Detect(groups)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	e.logger.Info("conflict check complete",
		"groups", len(groups),
		"conflicts", len(entries),
	)

	result := &DetectResult{
		GroupLabel:  groupLabel,
		MemberLabel: memberLabel,
		Conflicts:   entries,
	}
	return result, conflict.Report(groupLabel, memberLabel, entries)
}

// scanAll scans every root and returns the results in input order.
// Each goroutine writes only its own slot; Wait is the only synchronization.
func (e *Engine) scanAll(ctx context.Context, sc *scanner.Scanner, roots []GroupRoot, workers int) ([]*scanner.Result, error) {
	results := make([]*scanner.Result, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			res, err := sc.Scan(gctx, root.Root)
			if err != nil {
				return fmt.Errorf("failed to scan group %q: %w", root.Name, err)
			}
			e.logger.Debug("scanned group",
				"group", root.Name,
				"root", root.Root,
				"members", len(res.Members),
				"ignored", len(res.Ignored),
				"skipped", len(res.Skipped),
			)
			for _, skip := range res.Skipped {
				e.logger.Debug("skipped unreadable entry", "group", root.Name, "path", skip.Path, "error", skip.Err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// validate checks group names and roots before any scan starts.
func (e *Engine) validate(req *DetectRequest) error {
	if req == nil || len(req.Groups) == 0 {
		return fmt.Errorf("%w: no groups to check", ErrValidation)
	}
	if req.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrValidation, req.Workers)
	}

	seen := make(map[string]struct{}, len(req.Groups))
	for _, g := range req.Groups {
		if g.Name == "" {
			return fmt.Errorf("%w: %w (root %s)", ErrValidation, conflict.ErrEmptyGroupName, g.Root)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("%w: %w: %q", ErrValidation, conflict.ErrDuplicateGroup, g.Name)
		}
		seen[g.Name] = struct{}{}

		if g.Root == "" {
			return fmt.Errorf("%w: group %q has no root", ErrValidation, g.Name)
		}
		info, err := e.fs.Stat(g.Root)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: root of group %q: %s", ErrNotFound, g.Name, g.Root)
			}
			return fmt.Errorf("failed to stat root of group %q: %w", g.Name, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: root of group %q is not a directory: %s", ErrValidation, g.Name, g.Root)
		}
	}

	return nil
}

func summarize(root GroupRoot, res *scanner.Result) GroupSummary {
	s := GroupSummary{
		Name:    root.Name,
		Root:    root.Root,
		Members: len(res.Members),
		Ignored: len(res.Ignored),
	}
	for _, skip := range res.Skipped {
		s.Skipped = append(s.Skipped, SkippedEntry{Path: skip.Path, Error: skip.Err.Error()})
	}
	return s
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
