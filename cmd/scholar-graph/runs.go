// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-graph/internal/ledger"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	Long: `Runs lists the most recent load runs from the run ledger, newest first.
Use "runs show <id>" for the merges and batch results of one run.`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	l, err := ledger.Open(viper.GetString("ledger.path"))
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.Runs(context.Background(), limit)
	if err != nil {
		return err
	}
	return formatRuns(os.Stdout, runs)
}

func formatRuns(w io.Writer, runs []ledger.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-9s  %-8s  %s\n", "ID", "Started", "Status", "Mode", "Input")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, r := range runs {
		mode := "single"
		if r.Converge {
			mode = "converge"
		}
		if r.DryRun {
			mode += "*"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-9s  %-8s  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, mode, r.InputDir)
	}
	return nil
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the full report of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	l, err := ledger.Open(viper.GetString("ledger.path"))
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := context.Background()
	switch format {
	case "yaml":
		return l.ExportYAML(ctx, args[0], os.Stdout)
	case "json":
		return l.ExportJSON(ctx, args[0], os.Stdout)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	runsShowCmd.Flags().String("format", "yaml", "report format: yaml or json")

	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
