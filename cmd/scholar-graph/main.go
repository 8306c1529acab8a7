// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-graph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-graph/internal/logger"
	"github.com/pdiddy/scholar-graph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

// loadedSecrets holds store credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// appLog is the process logger, built from log.mode and log.level.
var appLog = logger.Nop()

// rootCmd is the base command for the scholar-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-graph",
	Short: "Load authors, topics, and publications into a Neo4j graph",
	Long: `scholar-graph reads author, topic, publication, and incoming publication
records from CSV or XLSX files, merges authors recorded under the same full
name, drops topics no publication references, and loads the result into
Neo4j as Author, Topic, and Publication nodes joined by WRITES and IS_ABOUT
relationships.

Every load is recorded in a local run ledger; use "runs" to inspect it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New(viper.GetString("log.mode"), viper.GetString("log.level"))
		if err != nil {
			return err
		}
		appLog = log

		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-graph.yaml or ~/.config/scholar-graph/scholar-graph.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-graph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-graph"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("SCHOLAR_GRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	appLog.Sync()
	if err != nil {
		os.Exit(1)
	}
}
