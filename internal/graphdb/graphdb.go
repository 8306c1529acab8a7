// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphdb loads reconciled record batches into a Neo4j graph.
// The loader depends only on Executor, a single query-execution operation;
// Client implements it over the Neo4j Go driver.
package graphdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Row is one result record keyed by column name.
type Row map[string]any

// Executor runs one statement with parameters and returns its result rows.
type Executor interface {
	Execute(ctx context.Context, statement string, params map[string]any) ([]Row, error)
}

// ErrNotConnected is returned when no store connection is available, for
// example after the driver failed to open.
var ErrNotConnected = errors.New("graph store not connected")

// LoadError wraps a failed batch load.
type LoadError struct {
	Batch types.BatchKind
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Batch, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
