// Package transformer runs the cleaning steps over one batch at a time.
//
// A Chain applies its Steps in order. Steps mutate and filter
// []records.Record in place and count every recoverable repair in the
// shared Report. Each step finds a logger tagged with its name in the
// context (zerolog.Ctx).
package transformer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"healthetl/internal/metrics"
	"healthetl/pkg/records"
)

// Step is one cleaning stage.
type Step interface {
	Name() string
	Apply(ctx context.Context, in []records.Record, rep *Report) ([]records.Record, error)
}

// Chain is an ordered list of steps with the run's logger and metrics.
type Chain struct {
	Steps   []Step
	Log     zerolog.Logger
	Metrics *metrics.Recorder
}

// Apply runs every step over in and returns the surviving rows and the
// batch report. A step error aborts the batch.
func (c Chain) Apply(ctx context.Context, in []records.Record) ([]records.Record, *Report, error) {
	rep := NewReport()
	rep.Rows = len(in)

	out := in
	for _, s := range c.Steps {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		stepLog := c.Log.With().Str("step", s.Name()).Logger()
		start := time.Now()
		before := len(out)

		var err error
		out, err = s.Apply(stepLog.WithContext(ctx), out, rep)
		if c.Metrics != nil {
			c.Metrics.Step("clean."+s.Name(), err, time.Since(start))
		}
		if err != nil {
			return nil, rep, fmt.Errorf("%s: %w", s.Name(), err)
		}
		stepLog.Debug().Int("rows_in", before).Int("rows_out", len(out)).Dur("took", time.Since(start)).Msg("step applied")
	}
	return out, rep, nil
}
