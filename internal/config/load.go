package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ETL"

// FlagKeys maps CLI flag names to configuration keys. Only flags present in
// the FlagSet passed to Load are bound.
var FlagKeys = map[string]string{
	"source":         "source.file.path",
	"source-kind":    "source.kind",
	"source-url":     "source.http.url",
	"db":             "storage.db.dsn",
	"storage-kind":   "storage.kind",
	"table":          "storage.db.table",
	"batch-size":     "runtime.batch_size",
	"log-dir":        "logging.dir",
	"log-level":      "logging.level",
	"output-dir":     "report.output_dir",
	"condition":      "report.condition",
	"concurrency":    "report.concurrency",
	"dedupe":         "clean.dedupe",
	"inverted-dates": "clean.inverted_dates",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("job", "healthcare")

	v.SetDefault("source.kind", "file")
	v.SetDefault("source.file.path", "healthcare_dataset.csv")
	v.SetDefault("source.s3.bucket", "")
	v.SetDefault("source.s3.key", "")
	v.SetDefault("source.s3.region", "")
	v.SetDefault("source.s3.endpoint", "")
	v.SetDefault("source.s3.use_path_style", false)
	v.SetDefault("source.http.url", "")
	v.SetDefault("source.http.retries", 3)
	v.SetDefault("source.http.timeout", "30s")

	v.SetDefault("parser.kind", "csv")
	v.SetDefault("parser.options", map[string]any{"date_layout": "2-1-2006"})

	v.SetDefault("clean.dedupe", "key")
	v.SetDefault("clean.inverted_dates", "next_day")
	v.SetDefault("clean.negative_billing", "median")

	v.SetDefault("storage.kind", "sqlite")
	v.SetDefault("storage.db.dsn", "healthcare.db")
	v.SetDefault("storage.db.table", "healthcare")
	v.SetDefault("storage.db.auto_create_table", true)
	v.SetDefault("storage.db.verify_billing_type", true)

	v.SetDefault("runtime.batch_size", 1000)

	v.SetDefault("logging.dir", ".")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.stderr", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.output", "stderr")

	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "http://localhost:9091")
	v.SetDefault("metrics.dogstatsd_addr", "127.0.0.1:8125")

	v.SetDefault("report.output_dir", ".")
	v.SetDefault("report.concurrency", 4)
	v.SetDefault("report.condition", "Diabetes")
}

// Load builds a Pipeline from defaults, an optional config file at path,
// ETL_* environment variables and the flags in fs (nil for none), in
// increasing order of precedence.
func Load(path string, fs *pflag.FlagSet) (Pipeline, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range FlagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Pipeline{}, fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config: %w", err)
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	return p, nil
}
