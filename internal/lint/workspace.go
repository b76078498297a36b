package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"valed/internal/diag"
	"valed/internal/observ"
	"valed/internal/vale"
)

// Group pairs a project root with the eligible files beneath it, drawn from
// one batch file set. Constructed fresh for every run.
type Group struct {
	Root  string
	Files []string
}

// GroupByRoot assigns every file to the deepest root containing it. Files
// outside all roots are dropped: vale has to run with a defined working
// directory. Group order follows the order roots were given; empty groups
// are omitted.
func GroupByRoot(roots, files []string) []Group {
	canonRoots := make([]string, 0, len(roots))
	seenRoot := make(map[string]bool, len(roots))
	for _, root := range roots {
		canon := canonicalPath(root)
		if canon == "" || seenRoot[canon] {
			continue
		}
		seenRoot[canon] = true
		canonRoots = append(canonRoots, canon)
	}

	byRoot := make(map[string][]string)
	for _, file := range files {
		canon := canonicalPath(file)
		owner := ""
		for _, root := range canonRoots {
			if pathWithinRoot(root, canon) && len(root) > len(owner) {
				owner = root
			}
		}
		if owner == "" {
			continue
		}
		byRoot[owner] = append(byRoot[owner], canon)
	}

	groups := make([]Group, 0, len(byRoot))
	for _, root := range canonRoots {
		if files := byRoot[root]; len(files) > 0 {
			sort.Strings(files)
			groups = append(groups, Group{Root: root, Files: files})
		}
	}
	return groups
}

// Summary aggregates one completed batch run.
type Summary struct {
	Roots        int
	Files        int
	FilesFlagged int
	Errors       int
	Warnings     int
	Suggestions  int
	Elapsed      time.Duration
	// Entries holds the store contents the run published, keyed like the
	// store, so the CLI can render a report without re-reading the store.
	Entries map[string][]diag.Diagnostic
}

// Workspace runs the on-demand, whole-workspace batch lint. The run is an
// authoritative snapshot: the store is cleared and republished only after
// every root succeeded, and any failure leaves it untouched. Concurrently
// running per-document lints are not suppressed; their writes may land
// between the clear and the republish, an accepted race.
type Workspace struct {
	Lint       LintFunc
	Check      CheckFunc
	Store      diag.Store
	Extensions []string
	Exclude    []string
	// KeyFor maps an absolute file path to a store key: a file URI for the
	// editor, the path itself for the CLI. Nil means identity.
	KeyFor   func(path string) string
	Progress ProgressSink
	// Cache, when set, reuses parsed per-root results for unchanged trees.
	Cache *Cache
	// Jobs bounds concurrent per-root invocations. Values below one mean
	// one invocation at a time.
	Jobs  int
	Timer *observ.Timer
	Logf  func(format string, args ...any)
}

// Run executes the batch over roots. Not cancellable by the user once
// started; ctx exists for process shutdown.
func (w *Workspace) Run(ctx context.Context, roots []string) (*Summary, error) {
	start := time.Now()

	w.emit(Event{Stage: StageDiscover, Status: StatusWorking})
	discoverPhase := w.begin("discover")
	var all []string
	for _, root := range roots {
		files, err := Discover(root, w.Extensions, w.Exclude)
		if err != nil {
			w.emit(Event{Stage: StageDiscover, Status: StatusError, Err: err})
			return nil, fmt.Errorf("discovering files under %s: %w", root, err)
		}
		all = append(all, files...)
	}
	groups := GroupByRoot(roots, all)
	w.end(discoverPhase, fmt.Sprintf("%d files, %d roots", len(all), len(groups)))
	w.emit(Event{Stage: StageDiscover, Status: StatusDone, Files: len(all)})

	for _, g := range groups {
		w.emit(Event{Root: g.Root, Stage: StageLint, Status: StatusQueued, Files: len(g.Files)})
	}

	lintPhase := w.begin("lint")
	results := make([]vale.Result, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	jobs := w.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	eg.SetLimit(jobs)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			rootStart := time.Now()
			w.emit(Event{Root: g.Root, Stage: StageLint, Status: StatusWorking, Files: len(g.Files)})
			res, err := w.lintGroup(egCtx, g)
			if err != nil {
				w.emit(Event{Root: g.Root, Stage: StageLint, Status: StatusError, Err: err, Elapsed: time.Since(rootStart)})
				return fmt.Errorf("root %s: %w", g.Root, err)
			}
			results[i] = res
			w.emit(Event{Root: g.Root, Stage: StageLint, Status: StatusDone, Files: len(g.Files), Elapsed: time.Since(rootStart)})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		w.end(lintPhase, "failed")
		return nil, err
	}
	w.end(lintPhase, "")

	// Each file belongs to exactly one root, so later groups cannot collide
	// with earlier ones in the aggregate.
	summary := &Summary{
		Roots:   len(groups),
		Files:   len(all),
		Entries: make(map[string][]diag.Diagnostic),
	}
	for i, g := range groups {
		for path, findings := range results[i] {
			abs := path
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(g.Root, path)
			}
			diags, err := diag.FromFindings(findings)
			if err != nil {
				return nil, &vale.ParseError{Err: err}
			}
			if len(diags) == 0 {
				continue
			}
			summary.Entries[w.keyFor(canonicalPath(abs))] = diags
			for _, d := range diags {
				switch d.Severity {
				case diag.SevError:
					summary.Errors++
				case diag.SevWarning:
					summary.Warnings++
				default:
					summary.Suggestions++
				}
			}
		}
	}
	summary.FilesFlagged = len(summary.Entries)

	w.emit(Event{Stage: StagePublish, Status: StatusWorking})
	publishPhase := w.begin("publish")
	keys := make([]string, 0, len(summary.Entries))
	for key := range summary.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	w.Store.Clear()
	for _, key := range keys {
		w.Store.Set(key, summary.Entries[key])
	}
	w.end(publishPhase, fmt.Sprintf("%d files flagged", len(keys)))
	w.emit(Event{Stage: StagePublish, Status: StatusDone, Files: len(keys)})

	summary.Elapsed = time.Since(start)
	return summary, nil
}

func (w *Workspace) lintGroup(ctx context.Context, g Group) (vale.Result, error) {
	if err := w.Check(ctx, g.Root); err != nil {
		return nil, err
	}
	var digest string
	if w.Cache != nil {
		var err error
		digest, err = GroupDigest(g.Files)
		if err != nil {
			w.logf("cache digest for %s: %v", g.Root, err)
		} else if res, ok := w.Cache.Lookup(g.Root, digest); ok {
			w.logf("cache hit for %s (%d files)", g.Root, len(g.Files))
			return res, nil
		}
	}
	res, err := w.Lint(ctx, g.Root, g.Files...)
	if err != nil {
		return nil, err
	}
	if w.Cache != nil && digest != "" {
		if err := w.Cache.Save(g.Root, digest, res); err != nil {
			w.logf("cache save for %s: %v", g.Root, err)
		}
	}
	return res, nil
}

func (w *Workspace) keyFor(path string) string {
	if w.KeyFor == nil {
		return path
	}
	return w.KeyFor(path)
}

func (w *Workspace) emit(ev Event) {
	if w.Progress != nil {
		w.Progress.OnEvent(ev)
	}
}

func (w *Workspace) begin(name string) int {
	if w.Timer == nil {
		return -1
	}
	return w.Timer.Begin(name)
}

func (w *Workspace) end(idx int, note string) {
	if w.Timer != nil {
		w.Timer.End(idx, note)
	}
}

func (w *Workspace) logf(format string, args ...any) {
	if w.Logf != nil {
		w.Logf(format, args...)
	}
}

func canonicalPath(path string) string {
	if path == "" {
		return ""
	}
	candidate := filepath.FromSlash(path)
	if abs, err := filepath.Abs(candidate); err == nil {
		candidate = abs
	}
	return filepath.Clean(candidate)
}

func pathWithinRoot(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." {
		return false
	}
	prefix := ".." + string(filepath.Separator)
	return !strings.HasPrefix(rel, prefix)
}
