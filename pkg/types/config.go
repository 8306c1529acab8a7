package types

import "time"

// InputConfig locates the four tabular inputs.
type InputConfig struct {
	// Dir is the directory holding the input files (default "data").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Authors, Topics, Publications, and IncomingPublications are file
	// names relative to Dir, or absolute paths. The extension selects the
	// reader: .csv or .xlsx.
	Authors              string `json:"authors" yaml:"authors" mapstructure:"authors"`
	Topics               string `json:"topics" yaml:"topics" mapstructure:"topics"`
	Publications         string `json:"publications" yaml:"publications" mapstructure:"publications"`
	IncomingPublications string `json:"incoming_publications" yaml:"incoming_publications" mapstructure:"incoming_publications"`

	// Delimiter is the CSV field separator (default ',').
	Delimiter string `json:"delimiter" yaml:"delimiter" mapstructure:"delimiter"`

	// Header reports whether the first row of each file is a header to skip.
	Header bool `json:"header" yaml:"header" mapstructure:"header"`
}

// StoreConfig holds the Neo4j connection settings.
type StoreConfig struct {
	// URI is the bolt or neo4j URI (default DefaultStoreURI).
	URI string `json:"uri" yaml:"uri" mapstructure:"uri"`

	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`

	// Database selects a named database. Empty uses the server default.
	Database string `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`

	// Timeout bounds the socket connect and the connectivity check (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

const (
	DefaultStoreURI     = "bolt://localhost:7687"
	DefaultStoreUser    = "neo4j"
	DefaultStoreTimeout = 10 * time.Second
)

// WithDefaults fills empty connection fields. URI and User are left empty
// in DefaultPipelineConfig so that secret files can supply them first.
func (c StoreConfig) WithDefaults() StoreConfig {
	if c.URI == "" {
		c.URI = DefaultStoreURI
	}
	if c.User == "" {
		c.User = DefaultStoreUser
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultStoreTimeout
	}
	return c
}

// ReconcileConfig holds identity reconciliation settings.
type ReconcileConfig struct {
	// Converge repeats reconciliation passes until no name collision
	// remains. The default single pass removes one duplicate per name.
	Converge bool `json:"converge" yaml:"converge" mapstructure:"converge"`
}

// LedgerConfig holds settings for the SQLite run ledger.
type LedgerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// MetricsConfig holds settings for run metrics.
type MetricsConfig struct {
	// Pushgateway is the Prometheus Pushgateway URL. Empty disables the push.
	Pushgateway string `json:"pushgateway,omitempty" yaml:"pushgateway,omitempty" mapstructure:"pushgateway"`
}

// LogConfig selects the logger mode and level.
type LogConfig struct {
	// Mode is "dev" or "prod".
	Mode  string `json:"mode" yaml:"mode" mapstructure:"mode"`
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	Input     InputConfig     `json:"input" yaml:"input" mapstructure:"input"`
	Neo4j     StoreConfig     `json:"neo4j" yaml:"neo4j" mapstructure:"neo4j"`
	Reconcile ReconcileConfig `json:"reconcile" yaml:"reconcile" mapstructure:"reconcile"`
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`

	// DryRun stops the pipeline before any store call.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`
}

// DefaultPipelineConfig returns the configuration used when no file,
// environment variable, or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Input: InputConfig{
			Dir:                  "data",
			Authors:              "authors.csv",
			Topics:               "topics.csv",
			Publications:         "publications.csv",
			IncomingPublications: "incoming_publications.csv",
			Delimiter:            ",",
			Header:               true,
		},
		Neo4j: StoreConfig{
			Timeout: DefaultStoreTimeout,
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    ".scholar-graph/ledger.db",
		},
		Log: LogConfig{
			Mode:  "dev",
			Level: "info",
		},
	}
}
