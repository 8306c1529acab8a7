// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-graph/internal/pipeline"
	"github.com/pdiddy/scholar-graph/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Show which authors would be merged, without touching the store",
	Long: `Reconcile ingests the input files and prints every merge decision:
the name shared by several author records, the record kept (highest
h-index), the record removed (lowest h-index), and how many publication
references were rewritten.

A single pass removes one record per shared name. Use --converge to repeat
passes until every name is unique.`,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"input.dir":          "input-dir",
		"reconcile.converge": "converge",
	}); err != nil {
		return err
	}
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	res, err := pipeline.Reconcile(cfg)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatReconcileOutput(os.Stdout, res, jsonOutput)
}

// reconcileReport is the JSON form of a reconciliation.
type reconcileReport struct {
	Passes     int                  `json:"passes"`
	Decisions  []reconcile.Decision `json:"decisions"`
	Unresolved []string             `json:"unresolved"`
}

func formatReconcileOutput(w io.Writer, res reconcile.Result, jsonOutput bool) error {
	if jsonOutput {
		report := reconcileReport{
			Passes:     res.Passes,
			Decisions:  res.Decisions,
			Unresolved: res.Unresolved(),
		}
		if report.Decisions == nil {
			report.Decisions = []reconcile.Decision{}
		}
		if report.Unresolved == nil {
			report.Unresolved = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if len(res.Decisions) == 0 {
		fmt.Fprintln(w, "No authors share a full name.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-30s  %-12s  %-12s  %s\n", "Pass", "Full name", "Kept", "Removed", "Refs")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, d := range res.Decisions {
		name := d.FullName
		if runes := []rune(name); len(runes) > 30 {
			name = string(runes[:27]) + "..."
		}
		fmt.Fprintf(w, "%-4d  %-30s  %-12s  %-12s  %d\n",
			d.Pass, name,
			fmt.Sprintf("%s (%g)", d.CanonicalID, d.CanonicalHIndex),
			fmt.Sprintf("%s (%g)", d.RemovedID, d.RemovedHIndex),
			d.RewrittenRefs)
	}
	fmt.Fprintf(w, "\nmerged: %d, passes: %d\n", len(res.Decisions), res.Passes)
	if names := res.Unresolved(); len(names) > 0 {
		fmt.Fprintf(w, "still shared: %s\n", strings.Join(names, ", "))
	}
	return nil
}

func init() {
	reconcileCmd.Flags().String("input-dir", "", "directory holding the input files (default: data)")
	reconcileCmd.Flags().Bool("converge", false, "repeat passes until no two authors share a name")
	reconcileCmd.Flags().Bool("json", false, "output decisions as JSON")

	rootCmd.AddCommand(reconcileCmd)
}
