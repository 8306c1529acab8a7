// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables and config files can override it.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()

	v.SetDefault("input.dir", d.Input.Dir)
	v.SetDefault("input.authors", d.Input.Authors)
	v.SetDefault("input.topics", d.Input.Topics)
	v.SetDefault("input.publications", d.Input.Publications)
	v.SetDefault("input.incoming_publications", d.Input.IncomingPublications)
	v.SetDefault("input.delimiter", d.Input.Delimiter)
	v.SetDefault("input.header", d.Input.Header)

	v.SetDefault("neo4j.uri", d.Neo4j.URI)
	v.SetDefault("neo4j.user", d.Neo4j.User)
	v.SetDefault("neo4j.password", d.Neo4j.Password)
	v.SetDefault("neo4j.database", d.Neo4j.Database)
	v.SetDefault("neo4j.timeout", d.Neo4j.Timeout)

	v.SetDefault("reconcile.converge", d.Reconcile.Converge)

	v.SetDefault("ledger.enabled", d.Ledger.Enabled)
	v.SetDefault("ledger.path", d.Ledger.Path)

	v.SetDefault("metrics.pushgateway", d.Metrics.Pushgateway)

	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("dry_run", d.DryRun)
}

// bindFlags binds config keys to flags of cmd. Binding happens when the
// command runs, so commands sharing a flag name do not overwrite each
// other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag --%s: %w", flag, err)
		}
	}
	return nil
}

// pipelineConfig decodes the merged configuration and fills store
// credentials from .secrets/ where the configuration left them empty.
func pipelineConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	loadedSecrets.ApplyStore(&cfg.Neo4j)
	return cfg, nil
}
