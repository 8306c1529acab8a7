// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the report of run id to w as YAML.
func (l *Ledger) ExportYAML(ctx context.Context, id string, w io.Writer) error {
	report, err := l.Run(ctx, id)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the report of run id to w as indented JSON.
func (l *Ledger) ExportJSON(ctx context.Context, id string, w io.Writer) error {
	report, err := l.Run(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
