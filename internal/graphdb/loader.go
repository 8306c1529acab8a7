// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphdb

import (
	"context"
	"time"

	"github.com/pdiddy/scholar-graph/internal/logger"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// LoadResult is the outcome of one batch load.
type LoadResult struct {
	Batch types.BatchKind

	// Rows is the number of records sent.
	Rows int

	// Count is the number of distinct primary nodes the statement matched
	// or created. Zero when Err is set.
	Count int64

	// Writes and About count WRITES and IS_ABOUT edges for publication
	// batches.
	Writes int64
	About  int64

	Duration time.Duration

	// Err is set when the result is absent.
	Err error
}

// Absent reports whether the load produced no result.
func (r LoadResult) Absent() bool { return r.Err != nil }

// Loader issues one idempotent batch upsert per entity kind.
type Loader struct {
	exec Executor
	log  *logger.Logger
}

// NewLoader returns a loader over exec. A nil exec is allowed: every load
// then fails with ErrNotConnected.
func NewLoader(exec Executor, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{exec: exec, log: log.With("component", "loader")}
}

// EnsureIndexes creates the id lookup indexes. Failures are logged and
// otherwise ignored.
func (l *Loader) EnsureIndexes(ctx context.Context) {
	if l.exec == nil {
		return
	}
	for _, stmt := range indexStatements {
		if _, err := l.exec.Execute(ctx, stmt, nil); err != nil {
			l.log.Warn("index creation failed (continuing)", "error", err)
		}
	}
}

// LoadAuthors merges Author nodes.
func (l *Loader) LoadAuthors(ctx context.Context, authors []types.Author) LoadResult {
	rows := make([]map[string]any, len(authors))
	for i, a := range authors {
		rows[i] = map[string]any{
			"author_id":       a.AuthorID,
			"full_name":       a.FullName,
			"h_index":         a.HIndex,
			"research_sector": a.ResearchSector,
		}
	}
	return l.load(ctx, types.BatchAuthors, authorStatement, rows, nil)
}

// LoadTopics merges Topic nodes.
func (l *Loader) LoadTopics(ctx context.Context, topics []types.Topic) LoadResult {
	rows := make([]map[string]any, len(topics))
	for i, t := range topics {
		rows[i] = map[string]any{
			"topic_id": t.TopicID,
			"name":     t.Name,
		}
	}
	return l.load(ctx, types.BatchTopics, topicStatement, rows, nil)
}

// LoadPublications merges Publication nodes with their WRITES and IS_ABOUT
// edges. Authors and topics must be loaded first.
func (l *Loader) LoadPublications(ctx context.Context, pubs []types.Publication) LoadResult {
	return l.loadPublications(ctx, types.BatchPublications, pubs)
}

// LoadIncomingPublications loads incoming publications exactly like
// published ones, including the "published" status.
func (l *Loader) LoadIncomingPublications(ctx context.Context, pubs []types.Publication) LoadResult {
	return l.loadPublications(ctx, types.BatchIncomingPublications, pubs)
}

func (l *Loader) loadPublications(ctx context.Context, batch types.BatchKind, pubs []types.Publication) LoadResult {
	rows := make([]map[string]any, len(pubs))
	for i, p := range pubs {
		rows[i] = map[string]any{
			"publication_id":   p.PublicationID,
			"author_list":      nonNil(p.AuthorList),
			"topic_list":       nonNil(p.TopicList),
			"publication_year": p.PublicationYear,
			"doi":              p.DOI,
		}
	}
	return l.load(ctx, batch, publicationStatement, rows, map[string]any{"status": types.PublishedStatus})
}

func (l *Loader) load(ctx context.Context, batch types.BatchKind, statement string, rows []map[string]any, extra map[string]any) (res LoadResult) {
	res = LoadResult{Batch: batch, Rows: len(rows)}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if l.exec == nil {
		res.Err = &LoadError{Batch: batch, Err: ErrNotConnected}
		l.log.Error("load failed", "batch", batch, "error", res.Err)
		return res
	}
	if len(rows) == 0 {
		l.log.Info("empty batch, nothing to load", "batch", batch)
		return res
	}

	params := map[string]any{"rows": rows}
	for k, v := range extra {
		params[k] = v
	}

	out, err := l.exec.Execute(ctx, statement, params)
	if err != nil {
		res.Err = &LoadError{Batch: batch, Err: err}
		l.log.Error("load failed", "batch", batch, "rows", len(rows), "error", err)
		return res
	}

	if len(out) > 0 {
		res.Count = int64FromRow(out[0], "total")
		res.Writes = int64FromRow(out[0], "writes")
		res.About = int64FromRow(out[0], "about")
	}
	l.log.Info("batch loaded", "batch", batch, "rows", len(rows), "count", res.Count,
		"writes", res.Writes, "is_about", res.About)
	return res
}

func int64FromRow(row Row, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// nonNil sends an empty list rather than null for rows without ids.
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
