package builtin

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// Coerce converts every contract column of a renamed row to its Go type:
// int -> int64 (rounded half away from zero), float -> float64,
// date -> time.Time at midnight UTC, text -> trimmed NFC string.
//
// A numeric value that cannot be parsed takes the batch median of the
// column. A missing date takes the batch median date, then the row's other
// date; a row left with no date at all is dropped.
type Coerce struct {
	Contract schema.Contract
}

func (Coerce) Name() string { return "coerce" }

// dateCounterpart pairs the two date columns.
var dateCounterpart = map[string]string{
	schema.ColDateOfAdmission: schema.ColDischargeDate,
	schema.ColDischargeDate:   schema.ColDateOfAdmission,
}

func (c Coerce) Apply(ctx context.Context, in []records.Record, rep *transformer.Report) ([]records.Record, error) {
	if len(in) == 0 {
		return in, nil
	}
	log := zerolog.Ctx(ctx)

	var dates []schema.Field
	for _, f := range c.Contract.SourceFields() {
		switch f.Type {
		case schema.KindInt, schema.KindFloat:
			c.coerceNumber(in, f, rep)
		case schema.KindDate:
			dates = append(dates, f)
		case schema.KindText:
			for _, r := range in {
				r[f.Name] = text(r[f.Name])
			}
		default:
			return nil, fmt.Errorf("column %s: unsupported type %q", f.Name, f.Type)
		}
	}

	medians := make(map[string]time.Time, len(dates))
	for _, f := range dates {
		var ts []time.Time
		for _, r := range in {
			if t, ok := r[f.Name].(time.Time); ok {
				ts = append(ts, t)
			}
		}
		if med, ok := medianDate(ts); ok {
			medians[f.Name] = med
		}
	}

	out := in[:0]
	for _, r := range in {
		for _, f := range dates {
			if t, ok := r[f.Name].(time.Time); ok {
				r[f.Name] = day(t)
				continue
			}
			if med, ok := medians[f.Name]; ok {
				r[f.Name] = med
				rep.Coerced[f.Name]++
			}
		}
		ok := true
		for _, f := range dates {
			if _, has := r[f.Name].(time.Time); has {
				continue
			}
			if t, has := r[dateCounterpart[f.Name]].(time.Time); has {
				r[f.Name] = t
				rep.Coerced[f.Name]++
				continue
			}
			ok = false
		}
		if !ok {
			rep.Dropped++
			log.Warn().Str("name", fmt.Sprint(r[schema.ColName])).Msg("row has no usable date; dropped")
			continue
		}
		out = append(out, r)
	}

	if n := transformer.Total(rep.Coerced); n > 0 {
		log.Warn().Dict("fallbacks", transformer.Dict(rep.Coerced)).Msg("invalid values replaced with batch medians")
	}
	return out, nil
}

func (c Coerce) coerceNumber(in []records.Record, f schema.Field, rep *transformer.Report) {
	parse := number
	if f.Type == schema.KindInt {
		parse = integer
	}
	var vals []float64
	for _, r := range in {
		if v, ok := parse(r[f.Name]); ok {
			vals = append(vals, v)
		}
	}
	med, _ := median(vals)

	for _, r := range in {
		v, ok := parse(r[f.Name])
		if !ok {
			v = med
			rep.Coerced[f.Name]++
		}
		if f.Type == schema.KindInt {
			r[f.Name] = int64(math.Round(v))
		} else {
			r[f.Name] = v
		}
	}
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return norm.NFC.String(strings.TrimSpace(s))
	default:
		return norm.NFC.String(strings.TrimSpace(fmt.Sprint(s)))
	}
}
