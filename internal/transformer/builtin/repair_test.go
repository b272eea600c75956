package builtin

import (
	"fmt"
	"testing"
	"time"

	"healthetl/internal/schema"
)

func TestRepair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		step          Repair
		wantBilling   float64
		wantDischarge time.Time
	}{
		{"defaults", Repair{}, 22500.10, date(2024, 1, 21)},
		{"clamp and same day", Repair{InvertedDates: InvertedSameDay, NegativeBilling: BillingClamp}, 0, date(2024, 1, 20)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, rep, err := apply(tt.step,
				typed(map[string]any{schema.ColBillingAmount: 30000.0, schema.ColAge: int64(40)}),
				typed(map[string]any{schema.ColBillingAmount: 15000.20, schema.ColAge: int64(20)}),
				typed(map[string]any{
					schema.ColBillingAmount:   -50.0,
					schema.ColAge:             int64(-1),
					schema.ColDateOfAdmission: date(2024, 1, 20),
					schema.ColDischargeDate:   date(2024, 1, 15),
				}),
			)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			bad := out[2]
			if got, _ := bad[schema.ColBillingAmount].(float64); !approx(got, tt.wantBilling) {
				t.Errorf("billing = %v, want %v", got, tt.wantBilling)
			}
			if got := bad[schema.ColAge]; got != int64(30) {
				t.Errorf("age = %v, want median 30", got)
			}
			if got := bad[schema.ColDischargeDate].(time.Time); !got.Equal(tt.wantDischarge) {
				t.Errorf("discharge = %v, want %v", got, tt.wantDischarge)
			}
			if rep.Repaired[RepairNegativeAge] != 1 || rep.Repaired[RepairNegativeBilling] != 1 || rep.Repaired[RepairInvertedDates] != 1 {
				t.Errorf("Repaired = %v", rep.Repaired)
			}
		})
	}
}

func TestRepair_BadPolicy(t *testing.T) {
	t.Parallel()

	if _, _, err := apply(Repair{InvertedDates: "yesterday"}, typed(nil)); err == nil {
		t.Fatalf("expected error for unknown inverted-dates policy")
	}
	if _, _, err := apply(Repair{NegativeBilling: "abs"}, typed(nil)); err == nil {
		t.Fatalf("expected error for unknown billing policy")
	}
}

func TestIdentifyAndRename(t *testing.T) {
	t.Parallel()

	n := 0
	out, _, err := apply(Identify{NewID: func() string { n++; return fmt.Sprintf("id-%d", n) }}, typed(nil), typed(nil))
	if err != nil {
		t.Fatalf("Identify error = %v", err)
	}
	if out[0][schema.ColRecordID] != "id-1" || out[1][schema.ColRecordID] != "id-2" {
		t.Fatalf("ids = %v, %v", out[0][schema.ColRecordID], out[1][schema.ColRecordID])
	}

	out, _, err = apply(Identify{}, typed(nil), typed(nil))
	if err != nil || out[0][schema.ColRecordID] == out[1][schema.ColRecordID] {
		t.Fatalf("uuid ids not unique: %v", err)
	}

	out, _, err = apply(Rename{Contract: schema.Healthcare()}, raw(map[string]any{"Extra Col": "x"}))
	if err != nil {
		t.Fatalf("Rename error = %v", err)
	}
	r := out[0]
	if r[schema.ColBloodType] != "A+" || r[schema.ColDateOfAdmission] == nil || r["extra_col"] != "x" {
		t.Fatalf("renamed row = %v", r)
	}
	if _, ok := r["Blood Type"]; ok {
		t.Fatalf("source key kept after rename")
	}
}
