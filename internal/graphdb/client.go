// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pdiddy/scholar-graph/internal/logger"
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Client is the Neo4j connection handle. It is opened once per process
// and passed to the Loader; Close releases it.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// Open creates the driver and verifies connectivity within cfg.Timeout.
func Open(ctx context.Context, cfg types.StoreConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	cfg = cfg.WithDefaults()

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.SocketConnectTimeout = cfg.Timeout
		c.MaxConnectionPoolSize = 4
	})
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver for %s: %w", cfg.URI, err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to %s: %w", cfg.URI, err)
	}

	log.Info("connected to graph store", "uri", cfg.URI, "user", cfg.User, "database", cfg.Database)
	return &Client{
		driver:   driver,
		database: cfg.Database,
		log:      log.With("client", "neo4j"),
	}, nil
}

// Execute runs statement in its own write session. The session is closed
// on every return path.
func (c *Client) Execute(ctx context.Context, statement string, params map[string]any) ([]Row, error) {
	if c == nil || c.driver == nil {
		return nil, ErrNotConnected
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, statement, params)
	if err != nil {
		return nil, fmt.Errorf("running statement: %w", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting results: %w", err)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row(rec.AsMap())
	}
	return rows, nil
}

// Close releases the driver. It is safe on a nil or closed client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}
