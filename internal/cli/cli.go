// Package cli holds the start-up plumbing shared by the binaries: config
// loading, the per-script log file, the metrics recorder and the run tracer.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"healthetl/internal/config"
	"healthetl/internal/logging"
	"healthetl/internal/metrics"
	"healthetl/internal/metrics/datadog"
	"healthetl/internal/metrics/prompush"
	"healthetl/internal/tracing"
)

// Env is what every command needs once flags are parsed.
type Env struct {
	Pipeline config.Pipeline
	Log      zerolog.Logger
	closer   io.Closer
}

// Close flushes and closes the log file.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Setup loads the configuration named by --config, layering env and the
// command's flags over it, and opens <log_dir>/<script>.log.
func Setup(cmd *cobra.Command, script string) (*Env, error) {
	path, _ := cmd.Flags().GetString("config")
	p, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.New(p.Logging, script)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("job", p.Job).Logger()
	return &Env{Pipeline: p, Log: log, closer: closer}, nil
}

// PrintIssues writes one line per finding and reports whether any of them
// blocks execution.
func PrintIssues(w io.Writer, issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasErrors(issues)
}

// NewRecorder picks the metrics backend from p.Metrics. A backend that
// cannot be set up degrades to no metrics rather than failing the run. The
// returned func flushes whatever was recorded and releases the backend.
func NewRecorder(p config.Pipeline, log zerolog.Logger) (*metrics.Recorder, func()) {
	var (
		b       metrics.Backend
		release = func() error { return nil }
		err     error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		var dd *datadog.Backend
		dd, err = datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.DogStatsDAddr,
			Namespace: "healthetl.",
			Tags:      append([]string{"job:" + p.Job}, p.Metrics.Tags...),
		})
		if err == nil {
			b, release = dd, dd.Close
		}
	case "", "none":
		return metrics.Nop(), func() {}
	default:
		log.Warn().Str("backend", p.Metrics.Backend).Msg("metrics: unknown backend; metrics disabled")
		return metrics.Nop(), func() {}
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", p.Metrics.Backend).Msg("metrics: backend unavailable; using nop")
		return metrics.Nop(), func() {}
	}

	log.Info().Str("backend", p.Metrics.Backend).Msg("metrics enabled")
	rec := metrics.NewRecorder(p.Job, b)
	return rec, func() {
		if err := rec.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush failed")
		}
		if err := release(); err != nil {
			log.Warn().Err(err).Msg("metrics: close failed")
		}
	}
}

// StorageFlags registers the flags every store-facing command accepts.
func StorageFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "pipeline config file (JSON or YAML)")
	f.String("db", "", "database DSN or SQLite path")
	f.String("storage-kind", "", "storage backend: sqlite, postgres, mssql or mysql")
	f.String("table", "", "healthcare table name")
	f.String("log-dir", "", "directory of the log file")
	f.String("log-level", "", "debug, info, warn or error")
}

// StartTracing builds the run tracer for service. The returned stop func
// flushes pending spans and logs a failed shutdown.
func StartTracing(ctx context.Context, service string, p config.Pipeline, log zerolog.Logger) (*tracing.Provider, func(), error) {
	tp, err := tracing.New(ctx, service, p.Tracing)
	if err != nil {
		return nil, nil, err
	}
	return tp, func() { stopTracing(tp, log, 5*time.Second) }, nil
}

func stopTracing(tp *tracing.Provider, log zerolog.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("tracing: shutdown failed")
	}
}
