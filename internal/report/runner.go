package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"healthetl/internal/etlerr"
	"healthetl/internal/schema"
)

// Result is the materialized output of one report.
type Result struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]string
	// Path is the CSV side file; empty when no output directory is set.
	Path string
}

// Runner executes reports against one database.
type Runner struct {
	DB       *sqlx.DB
	Contract schema.Contract
	Params   Params
	// OutputDir receives <name>_results.csv; empty disables side files.
	OutputDir string
	Log       zerolog.Logger
	Tracer    trace.Tracer
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return r.Tracer
}

// Run executes the named report.
func (r *Runner) Run(ctx context.Context, name string) (res *Result, err error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("report %q: %w", name, etlerr.ErrNotFound)
	}
	if err := r.Contract.CheckVersion(schema.Version); err != nil {
		return nil, err
	}

	ctx, span := r.tracer().Start(ctx, "report.run", trace.WithAttributes(attribute.String("report", name)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	query, err := def.SQL(r.Contract)
	if err != nil {
		return nil, err
	}
	var args []any
	if def.Args != nil {
		args = def.Args(r.Params)
	}

	rows, err := r.DB.QueryxContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		return nil, etlerr.Store("query "+name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, etlerr.Store("columns "+name, err)
	}
	res = &Result{Name: name, Title: def.Title, Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, etlerr.Store("scan "+name, err)
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = cell(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, etlerr.Store("rows "+name, err)
	}
	span.SetAttributes(attribute.Int("rows", len(res.Rows)))

	if r.OutputDir != "" {
		res.Path = filepath.Join(r.OutputDir, name+"_results.csv")
		if err := writeCSV(res.Path, res); err != nil {
			return nil, err
		}
	}

	r.Log.Info().
		Str("report", name).
		Int("rows", len(res.Rows)).
		Str("output", res.Path).
		Dur("elapsed", time.Since(start)).
		Msg("report complete")
	return res, nil
}

// RunAll runs names with at most limit queries in flight (limit <= 0 runs
// them one at a time). The first failure cancels the rest. Results keep
// the order of names.
func (r *Runner) RunAll(ctx context.Context, names []string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 1
	}
	out := make([]*Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			res, err := r.Run(ctx, name)
			if err != nil {
				return fmt.Errorf("report %s: %w", name, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.Log.Error().Err(err).Msg("reports aborted")
		return nil, err
	}
	return out, nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(schema.DateLayout)
	default:
		return fmt.Sprint(x)
	}
}

func writeCSV(path string, res *Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(res.Columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(res.Rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
