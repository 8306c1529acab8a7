// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts what a pipeline run ingested, merged, dropped and
// loaded, and optionally pushes the counts to a Prometheus Pushgateway.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/pdiddy/scholar-graph/internal/graphdb"
	"github.com/pdiddy/scholar-graph/internal/httputil"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Job is the Pushgateway job name.
const Job = "scholar_graph"

const namespace = "scholar_graph"

const (
	MetricRecordsIngested = "records_ingested_total"
	MetricAuthorsMerged   = "authors_merged_total"
	MetricTopicsDropped   = "topics_dropped_total"
	MetricNodesLoaded     = "nodes_loaded_total"
	MetricLoadFailures    = "load_failures_total"
)

// Metrics holds the counters of one run on a private registry, so
// repeated runs in one process never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsIngested *prometheus.CounterVec
	AuthorsMerged   prometheus.Counter
	TopicsDropped   prometheus.Counter
	NodesLoaded     *prometheus.CounterVec
	LoadFailures    *prometheus.CounterVec
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RecordsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricRecordsIngested,
				Help:      "Records read from input files.",
			},
			[]string{"batch"},
		),
		AuthorsMerged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricAuthorsMerged,
				Help:      "Author records removed by reconciliation.",
			},
		),
		TopicsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricTopicsDropped,
				Help:      "Topics no publication references.",
			},
		),
		NodesLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricNodesLoaded,
				Help:      "Rows the graph store reported for each batch.",
			},
			[]string{"batch"},
		),
		LoadFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricLoadFailures,
				Help:      "Batch loads that returned no result.",
			},
			[]string{"batch"},
		),
	}
	m.Registry.MustRegister(m.RecordsIngested, m.AuthorsMerged, m.TopicsDropped, m.NodesLoaded, m.LoadFailures)
	return m
}

// ObserveDataset adds the size of every batch in ds.
func (m *Metrics) ObserveDataset(ds types.Dataset) {
	for _, kind := range types.Batches() {
		m.RecordsIngested.WithLabelValues(string(kind)).Add(float64(ds.Len(kind)))
	}
}

// ObserveLoad counts a load result as loaded nodes or a failure.
func (m *Metrics) ObserveLoad(res graphdb.LoadResult) {
	batch := string(res.Batch)
	if res.Absent() {
		m.LoadFailures.WithLabelValues(batch).Inc()
		return
	}
	m.NodesLoaded.WithLabelValues(batch).Add(float64(res.Count))
}

// Push sends every counter to the Pushgateway at url under Job. Throttled
// or unavailable responses are retried.
func (m *Metrics) Push(url string) error {
	return m.push(url, &httputil.RetryDoer{})
}

func (m *Metrics) push(url string, client push.HTTPDoer) error {
	if err := push.New(url, Job).Gatherer(m.Registry).Client(client).Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
