// Package pipeline drives the batch ETL: read a batch, clean it, append it,
// then move on to the next. Everything runs on the caller's goroutine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"healthetl/internal/metrics"
	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// BatchSource yields raw batches until io.EOF.
type BatchSource interface {
	Next(ctx context.Context) (records.Batch, error)
	Close() error
}

// Sink appends cleaned records.
type Sink interface {
	Append(ctx context.Context, recs []schema.Record) (int64, error)
	Close()
}

// Driver wires one run. Open is called once at the start of Run; both the
// source it returns and Writer are closed when Run returns, whatever the
// outcome.
type Driver struct {
	Open    func(ctx context.Context) (BatchSource, error)
	Cleaner transformer.Chain
	Writer  Sink
	Log     zerolog.Logger
	Tracer  trace.Tracer
	Metrics *metrics.Recorder
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	Batches       int
	RowsRead      int
	ParseWarnings int
	RowsWritten   int64
	Report        *transformer.Report
	Elapsed       time.Duration
}

func (d *Driver) tracer() trace.Tracer {
	if d.Tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return d.Tracer
}

func (d *Driver) metrics() *metrics.Recorder {
	if d.Metrics == nil {
		return metrics.Nop()
	}
	return d.Metrics
}

// Run processes the whole input. The first error aborts the run and is
// returned wrapped with the batch index; nothing is retried.
func (d *Driver) Run(ctx context.Context) (sum Summary, err error) {
	sum.Report = transformer.NewReport()
	start := time.Now()
	ctx, span := d.tracer().Start(ctx, "etl.run")
	defer func() {
		sum.Elapsed = time.Since(start)
		d.metrics().Step("run", err, sum.Elapsed)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	defer d.Writer.Close()

	src, err := d.Open(ctx)
	if err != nil {
		d.Log.Error().Err(err).Msg("open reader failed")
		return sum, fmt.Errorf("open reader: %w", err)
	}
	defer src.Close()

	for {
		b, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.Log.Error().Err(err).Int("batch", sum.Batches).Msg("read failed")
			return sum, fmt.Errorf("read batch %d: %w", sum.Batches, err)
		}
		if err := d.runBatch(ctx, b, &sum); err != nil {
			d.Log.Error().Err(err).Int("batch", b.Seq).Int("rows", len(b.Records)).Msg("batch failed")
			return sum, fmt.Errorf("load batch %d: %w", b.Seq, err)
		}
	}

	rep := sum.Report
	d.Log.Info().
		Int("rows_read", sum.RowsRead).
		Int("parse_warnings", sum.ParseWarnings).
		Int("duplicates", rep.Duplicates).
		Int("imputed", transformer.Total(rep.Imputed)).
		Int("coerced", transformer.Total(rep.Coerced)).
		Int("normalized", transformer.Total(rep.Normalized)).
		Int("repaired", transformer.Total(rep.Repaired)).
		Int("dropped", rep.Dropped).
		Int64("rows_written", sum.RowsWritten).
		Int("batches", sum.Batches).
		Dur("elapsed", time.Since(start).Truncate(time.Millisecond)).
		Msg("run complete")
	return sum, nil
}

func (d *Driver) runBatch(ctx context.Context, b records.Batch, sum *Summary) (err error) {
	ctx, span := d.tracer().Start(ctx, "etl.batch", trace.WithAttributes(
		attribute.Int("batch", b.Seq),
		attribute.Int("rows_in", len(b.Records)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	m := d.metrics()

	sum.Batches++
	sum.RowsRead += len(b.Records)
	sum.ParseWarnings += b.Skipped
	m.Rows("read", int64(len(b.Records)))
	m.Rows("parse_warnings", int64(b.Skipped))

	start := time.Now()
	rows, rep, err := d.Cleaner.Apply(ctx, b.Records)
	sum.Report.Merge(rep)
	if err != nil {
		m.Step("clean", err, time.Since(start))
		return fmt.Errorf("clean: %w", err)
	}
	recs, err := transformer.Materialize(rows)
	m.Step("clean", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	m.Rows("duplicates", int64(rep.Duplicates))
	m.Rows("imputed", int64(transformer.Total(rep.Imputed)))
	m.Rows("repaired", int64(transformer.Total(rep.Repaired)))

	start = time.Now()
	n, err := d.Writer.Append(ctx, recs)
	m.Step("write", err, time.Since(start))
	sum.RowsWritten += n
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	m.Rows("written", n)
	m.Batches(1)

	span.SetAttributes(attribute.Int("rows_out", len(recs)))
	d.Log.Info().
		Int("batch", b.Seq).
		Int("rows_in", len(b.Records)).
		Int("rows_out", len(recs)).
		Int64("total", sum.RowsWritten).
		Msg("batch loaded")
	return nil
}
