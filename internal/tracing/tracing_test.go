package tracing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"healthetl/internal/config"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	p, err := New(context.Background(), "etl", config.Tracing{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, span := p.Tracer().Start(context.Background(), "etl.run")
	if span.SpanContext().IsValid() {
		t.Fatalf("noop tracer produced a recording span")
	}
	span.End()
	if err := p.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewWithExporter_RecordsSpans(t *testing.T) {
	t.Parallel()

	exp := tracetest.NewInMemoryExporter()
	p, err := NewWithExporter(context.Background(), "etl", exp)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	ctx, run := p.Tracer().Start(context.Background(), "etl.run")
	_, batch := p.Tracer().Start(ctx, "etl.batch")
	batch.SetAttributes(attribute.Int("batch", 1))
	batch.End()
	run.End()

	if err := p.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name != "etl.batch" || spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Fatalf("unexpected span tree: %+v", spans)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNew_FileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trace.json")
	p, err := New(context.Background(), "report", config.Tracing{Enabled: true, Output: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, span := p.Tracer().Start(context.Background(), "report.run")
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if !strings.Contains(string(b), "report.run") {
		t.Fatalf("trace file missing span: %s", b)
	}
}
