package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"healthetl/internal/etlerr"
	"healthetl/internal/schema"
)

// WriterOptions tunes a Writer.
type WriterOptions struct {
	// Kind is the storage kind the repository was opened with; it selects the
	// dialect used for type verification.
	Kind string
	// VerifyBillingType checks once, after the first non-empty append, that
	// the persisted billing_amount column still has a floating point type.
	VerifyBillingType bool
}

// Writer appends cleaned records to the contract's table through a
// Repository. It is not safe for concurrent use.
type Writer struct {
	repo     Repository
	contract schema.Contract
	columns  []string
	opt      WriterOptions
	log      zerolog.Logger

	verified    bool
	total       int64
	batches     int64
	start       time.Time
	lastFlushTS time.Time
}

// NewWriter wraps repo. The repository must have been opened for c.Table.
func NewWriter(repo Repository, c schema.Contract, opt WriterOptions, log zerolog.Logger) *Writer {
	now := time.Now()
	return &Writer{
		repo:        repo,
		contract:    c,
		columns:     c.Columns(),
		opt:         opt,
		log:         log.With().Str("component", "writer").Str("table", c.Table).Logger(),
		start:       now,
		lastFlushTS: now,
	}
}

// Append writes recs in one backend call. An empty slice is a no-op.
func (w *Writer) Append(ctx context.Context, recs []schema.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = r.Values()
	}

	n, err := w.repo.CopyFrom(ctx, w.columns, rows)
	w.total += n
	if err != nil {
		w.log.Error().Err(err).Int("rows", len(rows)).Int64("total", w.total).Msg("append failed")
		return n, etlerr.Store("append", err)
	}

	w.batches++
	now := time.Now()
	since := now.Sub(w.lastFlushTS)
	rps := float64(0)
	if since > 0 {
		rps = float64(n) / since.Seconds()
	}
	w.log.Info().
		Int64("batch", w.batches).
		Int64("inserted", n).
		Int64("total_inserted", w.total).
		Str("rps", fmt.Sprintf("%.0f", rps)).
		Dur("elapsed", now.Sub(w.start).Truncate(time.Millisecond)).
		Msg("batch appended")
	w.lastFlushTS = now

	if w.opt.VerifyBillingType && !w.verified {
		if err := w.VerifyBillingType(ctx); err != nil {
			return n, err
		}
		w.verified = true
	}
	return n, nil
}

// Total returns the number of rows appended so far.
func (w *Writer) Total() int64 { return w.total }

// VerifyBillingType compares the catalog type of billing_amount with the
// type the dialect would create.
func (w *Writer) VerifyBillingType(ctx context.Context) error {
	want, err := ExpectedType(w.opt.Kind, schema.KindFloat)
	if err != nil {
		return etlerr.Store("verify billing type", err)
	}
	got, err := w.repo.ColumnType(ctx, w.contract.Table, schema.ColBillingAmount)
	if err != nil {
		return etlerr.Store("verify billing type", err)
	}
	if !sameFloatType(got, want) {
		return etlerr.Store("verify billing type",
			fmt.Errorf("%s.%s has type %q, want %q", w.contract.Table, schema.ColBillingAmount, got, want))
	}
	w.log.Debug().Str("type", got).Msg("billing_amount type verified")
	return nil
}

// Close releases the repository.
func (w *Writer) Close() {
	w.repo.Close()
}

var floatTypes = map[string]struct{}{
	"real":             {},
	"float":            {},
	"float8":           {},
	"double":           {},
	"double precision": {},
}

func sameFloatType(got, want string) bool {
	g := strings.ToLower(strings.TrimSpace(got))
	w := strings.ToLower(strings.TrimSpace(want))
	if g == w {
		return true
	}
	_, gf := floatTypes[g]
	_, wf := floatTypes[w]
	return gf && wf
}
