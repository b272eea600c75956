package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"healthetl/internal/config"
	"healthetl/internal/datasource"
	"healthetl/internal/datasource/file"
	"healthetl/internal/datasource/httpsrc"
	s3src "healthetl/internal/datasource/s3"
	"healthetl/internal/etlerr"
	"healthetl/internal/metrics"
	csvparser "healthetl/internal/parser/csv"
	"healthetl/internal/runlock"
	"healthetl/internal/schema"
	"healthetl/internal/storage"
	"healthetl/internal/storage/sqlite"
	"healthetl/internal/transformer"
	"healthetl/internal/transformer/builtin"
)

// NewSource resolves the configured input location.
func NewSource(ctx context.Context, cfg config.Source) (datasource.Source, error) {
	switch cfg.Kind {
	case "file", "":
		return file.NewLocal(cfg.File.Path), nil
	case "s3":
		client, err := s3src.NewClient(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3src.NewObject(client, cfg.S3.Bucket, cfg.S3.Key), nil
	case "http":
		retries := cfg.HTTP.Retries
		if retries == 0 {
			retries = -1
		}
		return httpsrc.New(cfg.HTTP.URL, httpsrc.Options{Retries: retries, Timeout: cfg.HTTP.Timeout}), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// Build assembles a Driver from p: source, cleaning chain and sink. For
// sqlite it also takes the run lock next to the database file. The
// returned release func frees that lock and must be called once Run is
// done; it is never nil when err is nil.
func Build(ctx context.Context, p config.Pipeline, log zerolog.Logger, tracer trace.Tracer, rec *metrics.Recorder) (*Driver, func() error, error) {
	if rec == nil {
		rec = metrics.Nop()
	}
	contract := schema.Healthcare().WithTable(p.Storage.DB.Table)

	src, err := NewSource(ctx, p.Source)
	if err != nil {
		return nil, nil, err
	}

	release := func() error { return nil }
	if p.Storage.Kind == "sqlite" {
		if path := sqlite.FilePath(p.Storage.DB.DSN); path != "" {
			lock, err := runlock.Acquire(runlock.PathFor(path))
			if err != nil {
				return nil, nil, err
			}
			release = lock.Release
		}
	}

	repo, err := storage.New(ctx, storage.Config{
		Kind:    p.Storage.Kind,
		DSN:     p.Storage.DB.DSN,
		Table:   contract.Table,
		Columns: contract.Columns(),
	})
	if err != nil {
		release()
		return nil, nil, etlerr.Store("open store", err)
	}
	if p.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, p.Storage.Kind, repo, contract); err != nil {
			repo.Close()
			release()
			return nil, nil, etlerr.Store("create table", err)
		}
	}
	sink := storage.NewWriter(repo, contract, storage.WriterOptions{
		Kind:              p.Storage.Kind,
		VerifyBillingType: p.Storage.DB.VerifyBillingType,
	}, log)

	if p.Clean.InvertedDates == builtin.InvertedSameDay {
		log.Warn().Str("policy", builtin.InvertedSameDay).
			Msg("inverted stays are repaired to a zero-length stay; next_day is the default")
	}

	opt := csvparser.OptionsFrom(p.Parser.Options, p.Runtime.BatchSize)
	opt.OnWarn = func(line int, err error) {
		log.Warn().Int("line", line).Err(err).Msg("skipped malformed line")
	}

	d := &Driver{
		Open: func(ctx context.Context) (BatchSource, error) {
			r, err := csvparser.NewBatchReader(ctx, src, opt)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Cleaner: transformer.Chain{
			Steps:   builtin.Default(p.Clean, contract),
			Log:     log,
			Metrics: rec,
		},
		Writer:  sink,
		Log:     log,
		Tracer:  tracer,
		Metrics: rec,
	}
	log.Info().
		Str("job", p.Job).
		Str("source", src.String()).
		Str("storage", p.Storage.Kind).
		Str("table", contract.Table).
		Int("batch_size", opt.BatchSize).
		Msg("pipeline ready")
	return d, release, nil
}
