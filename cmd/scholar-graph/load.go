// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-graph/internal/graphdb"
	"github.com/pdiddy/scholar-graph/internal/ledger"
	"github.com/pdiddy/scholar-graph/internal/metrics"
	"github.com/pdiddy/scholar-graph/internal/pipeline"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Ingest, reconcile, and load all records into Neo4j",
	Long: `Load reads the four input files, merges authors that share a full name,
drops unreferenced topics, and loads authors, topics, publications, and
incoming publications into Neo4j, in that order.

A batch that fails to load is reported and the remaining batches still run.
If the store is unreachable every batch fails; the command exits non-zero.
With --dry-run nothing is sent to the store.`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"input.dir":          "input-dir",
		"reconcile.converge": "converge",
		"dry_run":            "dry-run",
	}); err != nil {
		return err
	}
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	deps := pipeline.Deps{Log: appLog, Metrics: metrics.New()}

	if !cfg.DryRun {
		client, err := graphdb.Open(ctx, cfg.Neo4j, appLog)
		if err != nil {
			appLog.Error("graph store unavailable, every batch will fail", "error", err)
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			defer client.Close(ctx)
			deps.Executor = client
		}
	}

	if cfg.Ledger.Enabled {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			appLog.Warn("run ledger unavailable (continuing)", "path", cfg.Ledger.Path, "error", err)
		} else {
			defer l.Close()
			deps.Ledger = l
		}
	}

	summary, err := pipeline.Run(ctx, deps, cfg, os.Stdout)

	if cfg.Metrics.Pushgateway != "" {
		if pushErr := deps.Metrics.Push(cfg.Metrics.Pushgateway); pushErr != nil {
			appLog.Warn("metrics push failed", "error", pushErr)
		}
	}

	if err != nil {
		return err
	}
	if summary.RunID != "" {
		fmt.Printf("run: %s\n", summary.RunID)
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d batch(es) failed to load", summary.Failed, summary.Total())
	}
	return nil
}

func init() {
	loadCmd.Flags().String("input-dir", "", "directory holding the input files (default: data)")
	loadCmd.Flags().Bool("converge", false, "repeat author reconciliation until no two authors share a name")
	loadCmd.Flags().Bool("dry-run", false, "ingest and reconcile, print the plan, and skip the store")

	rootCmd.AddCommand(loadCmd)
}
