package builtin

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// Repair policies.
const (
	InvertedNextDay = "next_day"
	InvertedSameDay = "same_day"
	BillingMedian   = "median"
	BillingClamp    = "clamp"
)

// Repair kinds recorded in Report.Repaired.
const (
	RepairNegativeAge     = "negative_age"
	RepairNegativeBilling = "negative_billing"
	RepairInvertedDates   = "inverted_dates"
)

// Repair enforces the record invariants on typed rows:
//
//   - a negative age becomes the batch median of non-negative ages;
//   - a negative billing amount becomes the batch median of non-negative
//     amounts ("median", default) or 0 ("clamp");
//   - a discharge before admission becomes admission + 1 day ("next_day",
//     default) or admission ("same_day").
type Repair struct {
	InvertedDates   string
	NegativeBilling string
}

func (Repair) Name() string { return "repair" }

func (p Repair) Apply(ctx context.Context, in []records.Record, rep *transformer.Report) ([]records.Record, error) {
	inverted := strings.ToLower(strings.TrimSpace(p.InvertedDates))
	if inverted == "" {
		inverted = InvertedNextDay
	}
	if inverted != InvertedNextDay && inverted != InvertedSameDay {
		return nil, fmt.Errorf("unknown inverted-dates policy %q", p.InvertedDates)
	}
	billing := strings.ToLower(strings.TrimSpace(p.NegativeBilling))
	if billing == "" {
		billing = BillingMedian
	}
	if billing != BillingMedian && billing != BillingClamp {
		return nil, fmt.Errorf("unknown negative-billing policy %q", p.NegativeBilling)
	}

	var ages, amounts []float64
	for _, r := range in {
		if a, ok := r[schema.ColAge].(int64); ok && a >= 0 {
			ages = append(ages, float64(a))
		}
		if b, ok := r[schema.ColBillingAmount].(float64); ok && b >= 0 {
			amounts = append(amounts, b)
		}
	}
	medAge, _ := median(ages)
	medBilling, _ := median(amounts)
	if billing == BillingClamp {
		medBilling = 0
	}

	for _, r := range in {
		if a, ok := r[schema.ColAge].(int64); ok && a < 0 {
			r[schema.ColAge] = int64(math.Round(medAge))
			rep.Repaired[RepairNegativeAge]++
		}
		if b, ok := r[schema.ColBillingAmount].(float64); ok && b < 0 {
			r[schema.ColBillingAmount] = medBilling
			rep.Repaired[RepairNegativeBilling]++
		}
		adm, ok1 := r[schema.ColDateOfAdmission].(time.Time)
		dis, ok2 := r[schema.ColDischargeDate].(time.Time)
		if ok1 && ok2 && dis.Before(adm) {
			if inverted == InvertedSameDay {
				r[schema.ColDischargeDate] = adm
			} else {
				r[schema.ColDischargeDate] = adm.AddDate(0, 0, 1)
			}
			rep.Repaired[RepairInvertedDates]++
		}
	}

	if transformer.Total(rep.Repaired) > 0 {
		zerolog.Ctx(ctx).Warn().Dict("repairs", transformer.Dict(rep.Repaired)).Str("inverted_dates", inverted).Msg("integrity violations repaired")
	}
	return in, nil
}
