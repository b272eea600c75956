package builtin

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// Unknown fills text columns that are empty across the whole batch.
const Unknown = "Unknown"

// Impute fills missing values with batch statistics. Numeric columns get
// the median of their parseable values (0 when there are none); text
// columns get the mode. Date columns are left to Coerce.
//
// It runs on raw rows keyed by source header.
type Impute struct {
	Contract schema.Contract
}

func (Impute) Name() string { return "impute" }

func (m Impute) Apply(ctx context.Context, in []records.Record, rep *transformer.Report) ([]records.Record, error) {
	if len(in) == 0 {
		return in, nil
	}
	missing := map[string]int{}

	for _, f := range m.Contract.SourceFields() {
		col := f.Source
		holes := lo.Filter(in, func(r records.Record, _ int) bool { return r.Missing(col) })
		if len(holes) == 0 {
			continue
		}

		var fill any
		switch f.Type {
		case schema.KindDate:
			continue
		case schema.KindInt, schema.KindFloat:
			vals := lo.FilterMap(in, func(r records.Record, _ int) (float64, bool) { return number(r[col]) })
			med, _ := median(vals)
			fill = med
		default:
			vals := lo.FilterMap(in, func(r records.Record, _ int) (string, bool) { return r.String(col) })
			md, ok := mode(vals)
			if !ok {
				md = Unknown
			}
			fill = md
		}

		for _, r := range holes {
			r[col] = fill
		}
		missing[f.Name] = len(holes)
		rep.Imputed[f.Name] += len(holes)
	}

	if len(missing) > 0 {
		zerolog.Ctx(ctx).Warn().Dict("missing", transformer.Dict(missing)).Msg("columns with missing values")
	}
	return in, nil
}
