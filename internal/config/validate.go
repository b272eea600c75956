package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of p. It never mutates p;
// callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateClean(p.Clean)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateObservability(p)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.path", "file source requires a non-empty path"})
		}
	case "s3":
		if strings.TrimSpace(s.S3.Bucket) == "" {
			issues = append(issues, Issue{SeverityError, "source.s3.bucket", "s3 source requires a bucket"})
		}
		if strings.TrimSpace(s.S3.Key) == "" {
			issues = append(issues, Issue{SeverityError, "source.s3.key", "s3 source requires an object key"})
		}
	case "http":
		u, err := url.Parse(strings.TrimSpace(s.HTTP.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{SeverityError, "source.http.url", "http source requires an absolute http(s) URL"})
		}
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q; want file, s3 or http", s.Kind)})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if p.Kind != "csv" {
		issues = append(issues, Issue{SeverityError, "parser.kind", fmt.Sprintf("unsupported parser kind %q; only csv is implemented", p.Kind)})
		return issues
	}
	layout := p.Options.String("date_layout", "2-1-2006")
	sample := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	if got, err := time.Parse(layout, sample.Format(layout)); err != nil {
		issues = append(issues, Issue{SeverityError, "parser.options.date_layout", fmt.Sprintf("date_layout %q does not round-trip: %v", layout, err)})
	} else if !got.Equal(sample) {
		issues = append(issues, Issue{SeverityWarning, "parser.options.date_layout", fmt.Sprintf("date_layout %q lacks a day or month field", layout)})
	}
	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{SeverityError, "parser.options.comma", "comma must be a single character"})
	}
	return issues
}

func validateClean(c Clean) []Issue {
	var issues []Issue

	check := func(path, val string, allowed ...string) {
		for _, a := range allowed {
			if val == a {
				return
			}
		}
		issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("%q is not one of %s", val, strings.Join(allowed, ", "))})
	}
	check("clean.dedupe", c.Dedupe, "exact", "key")
	check("clean.inverted_dates", c.InvertedDates, "next_day", "same_day")
	check("clean.negative_billing", c.NegativeBilling, "median", "clamp")

	if c.InvertedDates == "same_day" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "clean.inverted_dates",
			Message:  "same_day repairs inverted stays to a zero-length stay; next_day is the default",
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	known := map[string]struct{}{"sqlite": {}, "postgres": {}, "mssql": {}, "mysql": {}}
	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	} else if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{SeverityWarning, "storage.kind", fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind)})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.dsn", "storage.db.dsn must not be empty"})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.table", "storage.db.table must not be empty"})
	}
	if !s.DB.AutoCreateTable {
		issues = append(issues, Issue{SeverityWarning, "storage.db.auto_create_table", "auto_create_table is false; the table must already exist"})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.BatchSize <= 0 {
		return []Issue{{SeverityError, "runtime.batch_size", fmt.Sprintf("batch_size=%d; must be positive", r.BatchSize)}}
	}
	return nil
}

func validateObservability(p Pipeline) []Issue {
	var issues []Issue

	switch strings.ToLower(p.Logging.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		issues = append(issues, Issue{SeverityWarning, "logging.level", fmt.Sprintf("unknown level %q; info is used", p.Logging.Level)})
	}
	switch p.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(p.Metrics.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url", "pushgateway backend requires a URL"})
		}
	case "datadog":
		if strings.TrimSpace(p.Metrics.DogStatsDAddr) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.dogstatsd_addr", "datadog backend requires an agent address"})
		}
	default:
		issues = append(issues, Issue{SeverityWarning, "metrics.backend", fmt.Sprintf("unknown metrics backend %q; metrics disabled", p.Metrics.Backend)})
	}
	if p.Report.Concurrency < 0 {
		issues = append(issues, Issue{SeverityError, "report.concurrency", "concurrency must not be negative"})
	}
	return issues
}
