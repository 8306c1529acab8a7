// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one batch load: ingest the four inputs, reconcile
// authors, filter topics, and load authors, topics, publications and
// incoming publications into the graph store, in that order.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/scholar-graph/internal/graphdb"
	"github.com/pdiddy/scholar-graph/internal/ingest"
	"github.com/pdiddy/scholar-graph/internal/ledger"
	"github.com/pdiddy/scholar-graph/internal/logger"
	"github.com/pdiddy/scholar-graph/internal/metrics"
	"github.com/pdiddy/scholar-graph/internal/reconcile"
	"github.com/pdiddy/scholar-graph/internal/topicfilter"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Deps carries the collaborators of a run. Every field may be nil: a nil
// Executor makes every load fail with graphdb.ErrNotConnected, and a nil
// Ledger or Metrics skips that concern.
type Deps struct {
	Executor graphdb.Executor
	Ledger   *ledger.Ledger
	Metrics  *metrics.Metrics
	Log      *logger.Logger
}

// Summary holds the outcome of a run.
type Summary struct {
	RunID string

	Ingested map[types.BatchKind]int

	Merged     int
	Passes     int
	Unresolved []string

	TopicsKept    int
	TopicsDropped int

	// Loads holds one result per batch in load order. Empty for dry runs.
	Loads []graphdb.LoadResult

	Loaded int
	Failed int
}

// Total returns the number of batches attempted.
func (s Summary) Total() int {
	return s.Loaded + s.Failed
}

// HasFailures reports whether any batch failed to load.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run executes the pipeline and writes progress lines to w. It returns an
// error only when ingestion fails; load failures are counted in the
// summary and the remaining batches still run.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig, w io.Writer) (Summary, error) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	r := &run{deps: deps, log: log.With("component", "pipeline"), w: w}
	r.begin(ctx, cfg)

	ds, err := ingest.LoadDataset(cfg.Input)
	if err != nil {
		r.finish(ctx, ledger.StatusFailed)
		return r.summary, fmt.Errorf("ingesting input: %w", err)
	}
	r.summary.Ingested = make(map[types.BatchKind]int, len(types.Batches()))
	for _, kind := range types.Batches() {
		r.summary.Ingested[kind] = ds.Len(kind)
	}
	if deps.Metrics != nil {
		deps.Metrics.ObserveDataset(ds)
	}
	fmt.Fprintf(w, "ingested: %d authors, %d topics, %d publications, %d incoming publications\n",
		len(ds.Authors), len(ds.Topics), len(ds.Publications), len(ds.IncomingPublications))

	res := r.reconcile(ctx, ds, cfg.Reconcile)

	if cfg.DryRun {
		topics := r.filter(ds.Topics, res)
		fmt.Fprintf(w, "\ndry run: would load %d authors, %d topics, %d publications, %d incoming publications\n",
			len(res.Authors), len(topics), len(res.Publications), len(res.IncomingPublications))
		r.finish(ctx, ledger.StatusSucceeded)
		return r.summary, nil
	}

	loader := graphdb.NewLoader(deps.Executor, log)
	loader.EnsureIndexes(ctx)

	r.record(ctx, loader.LoadAuthors(ctx, res.Authors))
	topics := r.filter(ds.Topics, res)
	r.record(ctx, loader.LoadTopics(ctx, topics))
	r.record(ctx, loader.LoadPublications(ctx, res.Publications))
	r.record(ctx, loader.LoadIncomingPublications(ctx, res.IncomingPublications))

	fmt.Fprintln(w)
	for _, lr := range r.summary.Loads {
		if lr.Absent() {
			fmt.Fprintf(w, "%s: failed\n", lr.Batch)
			continue
		}
		fmt.Fprintf(w, "%s: %d\n", lr.Batch, lr.Count)
	}
	fmt.Fprintf(w, "\nloaded: %d, failed: %d\n", r.summary.Loaded, r.summary.Failed)

	status := ledger.StatusSucceeded
	if r.summary.HasFailures() {
		status = ledger.StatusFailed
	}
	r.finish(ctx, status)
	return r.summary, nil
}

// Reconcile ingests the inputs and reconciles authors without touching the
// store. It backs the reconcile command.
func Reconcile(cfg types.PipelineConfig) (reconcile.Result, error) {
	ds, err := ingest.LoadDataset(cfg.Input)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("ingesting input: %w", err)
	}
	return reconcileDataset(ds, cfg.Reconcile), nil
}

func reconcileDataset(ds types.Dataset, cfg types.ReconcileConfig) reconcile.Result {
	if cfg.Converge {
		return reconcile.Converge(ds.Authors, ds.Publications, ds.IncomingPublications)
	}
	return reconcile.Reconcile(ds.Authors, ds.Publications, ds.IncomingPublications)
}

// run holds the state threaded through one Run call.
type run struct {
	deps    Deps
	log     *logger.Logger
	w       io.Writer
	summary Summary
}

func (r *run) begin(ctx context.Context, cfg types.PipelineConfig) {
	if r.deps.Ledger == nil {
		return
	}
	id, err := r.deps.Ledger.BeginRun(ctx, ledger.RunInfo{
		InputDir: cfg.Input.Dir,
		Converge: cfg.Reconcile.Converge,
		DryRun:   cfg.DryRun,
	})
	if err != nil {
		r.log.Warn("ledger unavailable (continuing)", "error", err)
		return
	}
	r.summary.RunID = id
	r.log = r.log.With("run_id", id)
}

func (r *run) reconcile(ctx context.Context, ds types.Dataset, cfg types.ReconcileConfig) reconcile.Result {
	res := reconcileDataset(ds, cfg)

	r.summary.Merged = len(res.Decisions)
	r.summary.Passes = res.Passes
	r.summary.Unresolved = res.Unresolved()

	for _, d := range res.Decisions {
		fmt.Fprintf(r.w, "merged  %q: %s -> %s\n", d.FullName, d.RemovedID, d.CanonicalID)
	}
	fmt.Fprintf(r.w, "reconciled: %d merged in %d pass(es)\n", len(res.Decisions), res.Passes)
	if len(r.summary.Unresolved) > 0 {
		fmt.Fprintf(r.w, "  warning: %d names still shared by several authors (use --converge)\n", len(r.summary.Unresolved))
		r.log.Warn("unresolved author names", "names", r.summary.Unresolved)
	}

	if r.deps.Metrics != nil {
		r.deps.Metrics.AuthorsMerged.Add(float64(len(res.Decisions)))
	}
	if r.deps.Ledger != nil && r.summary.RunID != "" {
		if err := r.deps.Ledger.RecordDecisions(ctx, r.summary.RunID, res.Decisions); err != nil {
			r.log.Warn("recording merges failed (continuing)", "error", err)
		}
	}
	return res
}

func (r *run) filter(topics []types.Topic, res reconcile.Result) []types.Topic {
	kept := topicfilter.Filter(topics, res.Publications, res.IncomingPublications)
	r.summary.TopicsKept = len(kept)
	r.summary.TopicsDropped = len(topics) - len(kept)
	if r.deps.Metrics != nil {
		r.deps.Metrics.TopicsDropped.Add(float64(r.summary.TopicsDropped))
	}
	fmt.Fprintf(r.w, "filtered topics: kept %d, dropped %d\n", r.summary.TopicsKept, r.summary.TopicsDropped)
	return kept
}

func (r *run) record(ctx context.Context, res graphdb.LoadResult) {
	r.summary.Loads = append(r.summary.Loads, res)
	if res.Absent() {
		r.summary.Failed++
	} else {
		r.summary.Loaded++
	}
	if r.deps.Metrics != nil {
		r.deps.Metrics.ObserveLoad(res)
	}
	if r.deps.Ledger != nil && r.summary.RunID != "" {
		if err := r.deps.Ledger.RecordLoad(ctx, r.summary.RunID, res); err != nil {
			r.log.Warn("recording load failed (continuing)", "batch", res.Batch, "error", err)
		}
	}
}

func (r *run) finish(ctx context.Context, status string) {
	if r.deps.Ledger == nil || r.summary.RunID == "" {
		return
	}
	if err := r.deps.Ledger.FinishRun(ctx, r.summary.RunID, status); err != nil {
		r.log.Warn("finishing ledger run failed (continuing)", "error", err)
	}
}
