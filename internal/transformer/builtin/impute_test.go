package builtin

import (
	"testing"

	"healthetl/internal/schema"
)

func TestImpute(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{"Age": "20", "Medical Condition": "Diabetes", "Medication": nil},
		{"Age": "40", "Medical Condition": "hypertension", "Medication": nil},
		{"Age": nil, "Medical Condition": nil, "Medication": nil, "Billing Amount": "abc"},
		{"Age": "x", "Medical Condition": "hypertension", "Medication": nil},
	}
	r0, r1, r2, r3 := raw(rows[0]), raw(rows[1]), raw(rows[2]), raw(rows[3])
	out, rep, err := apply(Impute{Contract: schema.Healthcare()}, r0, r1, r2, r3)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("rows = %d", len(out))
	}

	if got := out[2]["Age"]; got != 30.0 {
		t.Errorf("Age = %#v, want median 30 of parseable values", got)
	}
	if got := out[3]["Age"]; got != "x" {
		t.Errorf("unparseable Age rewritten by Impute: %#v", got)
	}
	if got := out[2]["Medical Condition"]; got != "hypertension" {
		t.Errorf("Medical Condition = %#v, want mode", got)
	}
	if got := out[0]["Medication"]; got != Unknown {
		t.Errorf("all-empty column = %#v, want %q", got, Unknown)
	}
	if got := out[2]["Billing Amount"]; got != "abc" {
		t.Errorf("present value changed: %#v", got)
	}
	if rep.Imputed[schema.ColAge] != 1 || rep.Imputed[schema.ColMedication] != 4 || rep.Imputed[schema.ColMedicalCondition] != 1 {
		t.Errorf("Imputed = %v", rep.Imputed)
	}
}

func TestImpute_NumericWithoutValuesIsZero(t *testing.T) {
	t.Parallel()

	out, _, err := apply(Impute{Contract: schema.Healthcare()}, raw(map[string]any{"Room Number": nil}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := out[0]["Room Number"]; got != 0.0 {
		t.Fatalf("Room Number = %#v, want 0", got)
	}
}

func TestImpute_LeavesDates(t *testing.T) {
	t.Parallel()

	out, rep, _ := apply(Impute{Contract: schema.Healthcare()}, raw(map[string]any{"Discharge Date": nil}))
	if out[0]["Discharge Date"] != nil || rep.Imputed[schema.ColDischargeDate] != 0 {
		t.Fatalf("date imputed by Impute: %v", out[0]["Discharge Date"])
	}
}
