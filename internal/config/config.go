// Package config defines the configuration model of the healthcare ETL and
// the entry points that load it.
//
// A pipeline file (JSON or YAML) is optional: every field has a default,
// every field can be overridden from the environment with the ETL_ prefix
// (storage.db.dsn -> ETL_STORAGE_DB_DSN), and the CLI binds its flags on top.
//
// Example (trimmed):
//
//	{
//	  "job":     "healthcare",
//	  "source":  { "kind": "file", "file": { "path": "healthcare_dataset.csv" } },
//	  "parser":  { "kind": "csv", "options": { "date_layout": "2-1-2006" } },
//	  "clean":   { "dedupe": "key", "inverted_dates": "next_day" },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "healthcare.db", "table": "healthcare" } },
//	  "runtime": { "batch_size": 1000 }
//	}
package config

import "time"

// Pipeline is the top-level configuration object.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `mapstructure:"job" json:"job"`

	Source  Source        `mapstructure:"source" json:"source"`
	Parser  Parser        `mapstructure:"parser" json:"parser"`
	Clean   Clean         `mapstructure:"clean" json:"clean"`
	Storage Storage       `mapstructure:"storage" json:"storage"`
	Runtime RuntimeConfig `mapstructure:"runtime" json:"runtime"`
	Logging Logging       `mapstructure:"logging" json:"logging"`
	Tracing Tracing       `mapstructure:"tracing" json:"tracing"`
	Metrics Metrics       `mapstructure:"metrics" json:"metrics"`
	Report  Report        `mapstructure:"report" json:"report"`
}

// RuntimeConfig controls batching.
type RuntimeConfig struct {
	// BatchSize is the maximum number of parsed rows per batch. Skipped lines do not count.
	BatchSize int `mapstructure:"batch_size" json:"batch_size"`
}

// Source identifies where the input CSV comes from.
type Source struct {
	// Kind selects the source implementation: "file", "s3" or "http".
	Kind string `mapstructure:"kind" json:"kind"`

	File SourceFile `mapstructure:"file" json:"file"`
	S3   SourceS3   `mapstructure:"s3" json:"s3"`
	HTTP SourceHTTP `mapstructure:"http" json:"http"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL     string        `mapstructure:"url" json:"url"`
	Retries int           `mapstructure:"retries" json:"retries"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `mapstructure:"path" json:"path"`
}

// SourceS3 holds configuration for the "s3" source kind.
type SourceS3 struct {
	Bucket string `mapstructure:"bucket" json:"bucket"`
	Key    string `mapstructure:"key" json:"key"`
	Region string `mapstructure:"region" json:"region"`
	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint     string `mapstructure:"endpoint" json:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style" json:"use_path_style"`
}

// Parser selects how the raw source is turned into rows.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `mapstructure:"kind" json:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   date_layout (string), comma (string), lazy_quotes (bool),
	//   header_map (object: source header -> canonical header)
	Options Options `mapstructure:"options" json:"options"`
}

// Clean selects the policies of the row cleaner.
type Clean struct {
	// Dedupe is "key" (name, age, admission date, doctor) or "exact" (all
	// source columns).
	Dedupe string `mapstructure:"dedupe" json:"dedupe"`
	// InvertedDates is "next_day" (discharge = admission + 1 day) or
	// "same_day" (discharge = admission).
	InvertedDates string `mapstructure:"inverted_dates" json:"inverted_dates"`
	// NegativeBilling is "median" (batch median of non-negative amounts) or
	// "clamp" (0).
	NegativeBilling string `mapstructure:"negative_billing" json:"negative_billing"`
}

// Storage selects the sink used to persist cleaned records.
type Storage struct {
	// Kind selects the storage implementation: sqlite, postgres, mssql, mysql.
	Kind string   `mapstructure:"kind" json:"kind"`
	DB   DBConfig `mapstructure:"db" json:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	// DSN is the connection string; for sqlite a file path.
	DSN string `mapstructure:"dsn" json:"dsn"`
	// Table is the destination table name.
	Table string `mapstructure:"table" json:"table"`
	// AutoCreateTable creates the table if it is absent.
	AutoCreateTable bool `mapstructure:"auto_create_table" json:"auto_create_table"`
	// VerifyBillingType checks the persisted billing_amount type after the
	// first write.
	VerifyBillingType bool `mapstructure:"verify_billing_type" json:"verify_billing_type"`
}

// Logging configures the per-entry-point log file.
type Logging struct {
	Dir    string `mapstructure:"dir" json:"dir"`
	Level  string `mapstructure:"level" json:"level"`
	Stderr bool   `mapstructure:"stderr" json:"stderr"`
}

// Tracing configures the per-run trace provider.
type Tracing struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Output is "stdout", "stderr" or a file path.
	Output string `mapstructure:"output" json:"output"`
}

// Metrics configures the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `mapstructure:"backend" json:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url"`
	// DogStatsDAddr is the agent address used by the datadog backend.
	DogStatsDAddr string   `mapstructure:"dogstatsd_addr" json:"dogstatsd_addr"`
	Tags          []string `mapstructure:"tags" json:"tags"`
}

// Report configures the query layer.
type Report struct {
	// OutputDir receives the <name>_results.csv side files.
	OutputDir string `mapstructure:"output_dir" json:"output_dir"`
	// Concurrency bounds "report all".
	Concurrency int `mapstructure:"concurrency" json:"concurrency"`
	// Condition is the parameter of the by_condition report.
	Condition string `mapstructure:"condition" json:"condition"`
}
