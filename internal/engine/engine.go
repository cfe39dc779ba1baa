// Package engine runs the identifier-removal pipeline: build the rename
// mapping from the manifest, move the content files, rewrite the manifest
// and write the change report.
//
// The mapping is computed once and drives every later step. Steps run
// strictly in sequence and each one finishes before the next starts, so
// the manifest tree is only rewritten after it has been fully read and
// after every file move has been attempted.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/navstrip/internal/config"
	"github.com/papapumpkin/navstrip/internal/journal"
	"github.com/papapumpkin/navstrip/internal/ledger"
	"github.com/papapumpkin/navstrip/internal/manifest"
	"github.com/papapumpkin/navstrip/internal/relocate"
	"github.com/papapumpkin/navstrip/internal/rename"
	"github.com/papapumpkin/navstrip/internal/telemetry"
)

// Observer receives progress notifications. *ui.Printer implements it.
type Observer interface {
	Step(n int, msg string)
	Warn(msg string)
	IncompleteRun(j *journal.Journal)
	MappingBuilt(leaves, mapped int)
	Action(a relocate.Action)
	DirPruned(dir string)
	ManifestWritten(path string, rewritten int)
	ReportWritten(path string, total int)
}

// Engine holds the resolved configuration of one pipeline.
type Engine struct {
	cfg      config.Config
	obs      Observer
	manifest string // manifest path
	root     string // content root
	report   string // report path
	stateDir string // journal and ledger directory
}

// New resolves cfg's paths. The content root is taken as given; the report
// and state directory, when relative, live next to the manifest.
func New(cfg config.Config, obs Observer) *Engine {
	if obs == nil {
		obs = nopObserver{}
	}
	base := filepath.Dir(cfg.Manifest)
	return &Engine{
		cfg:      cfg,
		obs:      obs,
		manifest: cfg.Manifest,
		root:     cfg.Root,
		report:   besides(base, cfg.Report),
		stateDir: besides(base, cfg.StateDir),
	}
}

func besides(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ReportPath returns where the change report is written.
func (e *Engine) ReportPath() string { return e.report }

// StateDir returns the directory holding the journal and ledger.
func (e *Engine) StateDir() string { return e.stateDir }

// Result describes a finished (or planned) run.
type Result struct {
	RunID   string
	DryRun  bool
	Leaves  int            // page references found in the navigation tree
	Mapping rename.Mapping // renames after the empty-destination policy
	Dropped []string       // all-identifier paths left out of Mapping
	Plan    *relocate.Plan

	// Set by Run only.
	Relocation *relocate.Result
	Applied    rename.Mapping // renames written into the manifest
	Report     rename.Report
	Elapsed    time.Duration
}

// Plan loads the manifest, builds the mapping and validates the moves
// against the filesystem without changing anything. A conflicting plan is
// returned together with a *relocate.PlanError.
func (e *Engine) Plan(ctx context.Context) (*Result, *manifest.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	doc, err := manifest.Load(e.manifest)
	if err != nil {
		return nil, nil, err
	}

	leaves := manifest.CollectLeaves(doc.Navigation())
	mapping := rename.FromPaths(leaves)
	res := &Result{Leaves: len(leaves), DryRun: e.cfg.DryRun}
	e.obs.MappingBuilt(len(leaves), len(mapping))

	empty := mapping.EmptyDestinations()
	switch e.cfg.EmptyDestination {
	case config.EmptyAllow:
		for _, old := range empty {
			e.obs.Warn(fmt.Sprintf("%s is made only of identifiers; moving it to %q", old, e.cfg.Extension))
		}
	default:
		for _, old := range empty {
			e.obs.Warn(fmt.Sprintf("%s is made only of identifiers; left unchanged", old))
		}
		mapping = mapping.Without(empty...)
		res.Dropped = empty
	}
	res.Mapping = mapping

	plan, err := relocate.BuildPlan(e.root, e.cfg.Extension, mapping.Sorted())
	res.Plan = plan
	if err != nil {
		return res, doc, err
	}
	return res, doc, nil
}

// Run executes the whole pipeline. With DryRun set it stops after planning
// and simulating the moves, and writes nothing. When the manifest has no
// identifiers left, Run changes nothing and writes nothing.
func (e *Engine) Run(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()

	em, err := e.openEvents()
	if err != nil {
		return nil, err
	}
	defer em.Close()
	em.SetRun(runID)
	emit(em, telemetry.KindRunStart, "", map[string]any{"manifest": e.manifest, "dry_run": e.cfg.DryRun})

	if prev, jerr := journal.Load(e.stateDir); jerr == nil && prev.Incomplete() {
		e.obs.IncompleteRun(prev)
	}

	e.obs.Step(1, "building path mapping from "+e.manifest)
	res, doc, err := e.Plan(ctx)
	if err != nil {
		emit(em, telemetry.KindRunFailed, "", err.Error())
		return res, err
	}
	res.RunID = runID
	emit(em, telemetry.KindMappingBuilt, "", map[string]int{"leaves": res.Leaves, "mapped": len(res.Mapping)})

	if len(res.Mapping) == 0 {
		res.Relocation = &relocate.Result{}
		res.Applied = rename.Mapping{}
		res.Report = rename.BuildReport(res.Applied)
		res.Elapsed = time.Since(start)
		emit(em, telemetry.KindRunDone, "", map[string]int{"changes": 0})
		return res, nil
	}

	var j *journal.Journal
	if !e.cfg.DryRun {
		j = journal.New(runID, e.manifest, e.root, res.Mapping.Sorted())
		if err := journal.Save(e.stateDir, j); err != nil {
			return res, err
		}
		defer func() {
			if err != nil {
				emit(em, telemetry.KindRunFailed, "", err.Error())
				if ferr := journal.Fail(e.stateDir, j, err); ferr != nil {
					e.obs.Warn("recording failure in journal: " + ferr.Error())
				}
			}
		}()
	}

	e.obs.Step(2, "moving content files")
	relocator := &relocate.Relocator{
		DryRun: e.cfg.DryRun,
		OnAction: func(a relocate.Action) {
			e.obs.Action(a)
			kind := telemetry.KindFileMoved
			if a.Type != relocate.ActionMove {
				kind = telemetry.KindFileSkipped
			}
			emit(em, kind, a.Pair.Old, map[string]string{"to": a.Pair.New, "outcome": string(a.Type)})
		},
	}
	res.Relocation, err = relocator.Apply(ctx, res.Plan)
	if err != nil {
		return res, err
	}
	for _, dir := range res.Relocation.Pruned {
		e.obs.DirPruned(dir)
		emit(em, telemetry.KindDirPruned, dir, nil)
	}
	if j != nil {
		if err := journal.Advance(e.stateDir, j, journal.PhaseRelocated); err != nil {
			return res, err
		}
	}

	res.Applied = e.appliedMapping(res)
	res.Report = rename.BuildReport(res.Applied)

	if e.cfg.DryRun {
		res.Elapsed = time.Since(start)
		emit(em, telemetry.KindRunDone, "", map[string]any{"changes": len(res.Applied), "dry_run": true})
		return res, nil
	}

	e.obs.Step(3, "updating "+e.manifest)
	if len(res.Applied) > 0 {
		doc.SetNavigation(manifest.Rewrite(doc.Navigation(), res.Applied))
		if err := doc.Save(e.manifest); err != nil {
			return res, err
		}
	}
	e.obs.ManifestWritten(e.manifest, len(res.Applied))
	emit(em, telemetry.KindManifestWritten, e.manifest, map[string]int{"rewritten": len(res.Applied)})
	if err := journal.Advance(e.stateDir, j, journal.PhaseRewritten); err != nil {
		return res, err
	}

	e.obs.Step(4, "writing report")
	if err := rename.WriteReport(e.report, res.Report); err != nil {
		return res, err
	}
	e.obs.ReportWritten(e.report, res.Report.TotalChanges)
	emit(em, telemetry.KindReportWritten, e.report, map[string]int{"total_changes": res.Report.TotalChanges})

	res.Elapsed = time.Since(start)
	if e.cfg.Ledger {
		if lerr := e.record(ctx, res, start); lerr != nil {
			e.obs.Warn("recording run history: " + lerr.Error())
		}
	}

	if err := journal.Advance(e.stateDir, j, journal.PhaseCompleted); err != nil {
		return res, err
	}
	emit(em, telemetry.KindRunDone, "", map[string]int{"changes": res.Report.TotalChanges})
	return res, nil
}

// appliedMapping applies the rewrite policy: "always" keeps the whole
// mapping, "synced" keeps only renames whose canonical file exists (or,
// in a dry run, would exist) after relocation.
func (e *Engine) appliedMapping(res *Result) rename.Mapping {
	if e.cfg.RewritePolicy != config.RewriteSynced {
		return res.Mapping
	}
	applied := res.Relocation.Applied()
	pairs := make([]rename.Pair, 0, len(applied))
	for _, a := range applied {
		pairs = append(pairs, a.Pair)
	}
	for _, a := range res.Relocation.Skipped {
		if a.Type == relocate.ActionMissing {
			e.obs.Warn(fmt.Sprintf("%s has no backing file; manifest entry left unchanged", a.Pair.Old))
		}
	}
	return rename.FromPairs(pairs)
}

// record writes the run and its per-file outcomes to the ledger.
func (e *Engine) record(ctx context.Context, res *Result, start time.Time) error {
	l, err := ledger.Open(ctx, filepath.Join(e.stateDir, ledger.FileName))
	if err != nil {
		return err
	}
	defer l.Close()

	changes := make([]ledger.Change, 0, len(res.Plan.Actions))
	for _, a := range res.Plan.Actions {
		changes = append(changes, ledger.Change{
			Source:      "/" + a.Pair.Old,
			Destination: "/" + a.Pair.New,
			Outcome:     string(a.Type),
		})
	}
	return l.Record(ctx, ledger.Run{
		ID:           res.RunID,
		Manifest:     e.manifest,
		Root:         e.root,
		StartedAt:    start,
		FinishedAt:   start.Add(res.Elapsed),
		TotalChanges: res.Report.TotalChanges,
		Moved:        len(res.Relocation.Moved),
		Skipped:      len(res.Relocation.Skipped),
		Status:       string(journal.PhaseCompleted),
	}, changes)
}

func (e *Engine) openEvents() (*telemetry.Emitter, error) {
	if e.cfg.Events == "" || e.cfg.DryRun {
		return nil, nil
	}
	return telemetry.NewEmitter(besides(filepath.Dir(e.manifest), e.cfg.Events))
}

// emit records an event; telemetry failures never fail a run.
func emit(em *telemetry.Emitter, kind, path string, data any) {
	_ = em.Emit(telemetry.Event{Kind: kind, Path: path, Data: data})
}

// IsConflict reports whether err is a planning conflict.
func IsConflict(err error) bool {
	return errors.Is(err, relocate.ErrConflict)
}

type nopObserver struct{}

func (nopObserver) Step(int, string) {}
func (nopObserver) Warn(string) {}
func (nopObserver) IncompleteRun(*journal.Journal) {}
func (nopObserver) MappingBuilt(int, int) {}
func (nopObserver) Action(relocate.Action) {}
func (nopObserver) DirPruned(string) {}
func (nopObserver) ManifestWritten(string, int) {}
func (nopObserver) ReportWritten(string, int) {}
