// Package tracing builds one OpenTelemetry tracer provider per run.
//
// The provider is handed to the components that need it and is never
// installed as the global provider. When tracing is disabled the tracer is
// a noop and Shutdown does nothing.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"healthetl/internal/config"
)

// InstrumentationName is the tracer name used by every component.
const InstrumentationName = "healthetl"

// Provider owns the tracer of a run.
type Provider struct {
	tracer   trace.Tracer
	flush    func(context.Context) error
	shutdown func(context.Context) error
}

// New returns a Provider for service. Disabled config yields a noop provider.
// Output "stdout" or "stderr" selects a stream; any other value is a file
// path that spans are appended to.
func New(ctx context.Context, service string, cfg config.Tracing) (*Provider, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}

	var (
		w       io.Writer
		closeFn func() error
	)
	switch cfg.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open trace output %s: %w", cfg.Output, err)
		}
		w, closeFn = f, f.Close
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, fmt.Errorf("stdout trace exporter: %w", err)
	}
	p, err := NewWithExporter(ctx, service, exp)
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, err
	}
	if closeFn != nil {
		inner := p.shutdown
		p.shutdown = func(ctx context.Context) error {
			err := inner(ctx)
			if cerr := closeFn(); err == nil {
				err = cerr
			}
			return err
		}
	}
	return p, nil
}

// NewWithExporter builds a Provider that batches spans into exp.
func NewWithExporter(ctx context.Context, service string, exp sdktrace.SpanExporter) (*Provider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(service)))
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	return &Provider{tracer: tp.Tracer(InstrumentationName), flush: tp.ForceFlush, shutdown: tp.Shutdown}, nil
}

// Noop returns a Provider whose spans are discarded.
func Noop() *Provider {
	return &Provider{
		tracer:   noop.NewTracerProvider().Tracer(InstrumentationName),
		flush:    func(context.Context) error { return nil },
		shutdown: func(context.Context) error { return nil },
	}
}

// Tracer returns the run tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// ForceFlush exports every ended span without releasing the exporter.
func (p *Provider) ForceFlush(ctx context.Context) error { return p.flush(ctx) }

// Shutdown flushes pending spans and releases the exporter.
func (p *Provider) Shutdown(ctx context.Context) error { return p.shutdown(ctx) }
