// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-graph/internal/graphdb"
	"github.com/pdiddy/scholar-graph/internal/httputil"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

func TestObserveDataset(t *testing.T) {
	m := New()
	m.ObserveDataset(types.Dataset{
		Authors:      make([]types.Author, 3),
		Topics:       make([]types.Topic, 2),
		Publications: make([]types.Publication, 1),
	})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsIngested.WithLabelValues("authors")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsIngested.WithLabelValues("topics")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsIngested.WithLabelValues("publications")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RecordsIngested.WithLabelValues("incoming_publications")))
}

func TestObserveLoad(t *testing.T) {
	m := New()
	m.ObserveLoad(graphdb.LoadResult{Batch: types.BatchAuthors, Count: 4})
	m.ObserveLoad(graphdb.LoadResult{Batch: types.BatchTopics, Err: errors.New("boom")})

	assert.Equal(t, 4.0, testutil.ToFloat64(m.NodesLoaded.WithLabelValues("authors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadFailures.WithLabelValues("topics")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LoadFailures.WithLabelValues("authors")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.AuthorsMerged.Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(a.AuthorsMerged))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AuthorsMerged))
}

func TestPush(t *testing.T) {
	var (
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := New()
	m.TopicsDropped.Add(5)
	require.NoError(t, m.Push(srv.URL))

	assert.Equal(t, "/metrics/job/"+Job, path)
	assert.NotEmpty(t, body)
}

func TestPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Push(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushing metrics")
}

func TestPushRetriesUnavailable(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	err := m.push(srv.URL, &httputil.RetryDoer{Client: srv.Client(), BaseDelay: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
