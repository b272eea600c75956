package builtin

import (
	"testing"

	"healthetl/pkg/records"
)

func TestDeDup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    string
		overrides []map[string]any
		wantRows  int
		wantDrops int
	}{
		{
			name:      "exact drops identical rows only",
			policy:    DedupeExact,
			overrides: []map[string]any{nil, nil, {"Billing Amount": "25000"}},
			wantRows:  2,
			wantDrops: 1,
		},
		{
			name:      "key ignores non-key columns",
			policy:    DedupeKey,
			overrides: []map[string]any{nil, {"Billing Amount": "25000"}, {"Name": "Jane Doe"}},
			wantRows:  2,
			wantDrops: 1,
		},
		{
			name:      "default policy keys on name age admission and doctor",
			overrides: []map[string]any{nil, {"Billing Amount": "-50"}, {"Doctor": "Dr. Other"}},
			wantRows:  2,
			wantDrops: 1,
		},
		{
			name:      "missing values fingerprint as null",
			policy:    DedupeExact,
			overrides: []map[string]any{{"Medication": nil}, {"Medication": nil}, {"Medication": ""}},
			wantRows:  2,
			wantDrops: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := make([]records.Record, 0, len(tt.overrides))
			for _, o := range tt.overrides {
				in = append(in, raw(o))
			}
			out, rep, err := apply(DeDup{Policy: tt.policy}, in...)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if len(out) != tt.wantRows || rep.Duplicates != tt.wantDrops {
				t.Fatalf("rows=%d dups=%d, want %d/%d", len(out), rep.Duplicates, tt.wantRows, tt.wantDrops)
			}
		})
	}
}

func TestDeDup_KeepsFirst(t *testing.T) {
	t.Parallel()

	out, _, err := apply(DeDup{Policy: DedupeKey}, raw(map[string]any{"Billing Amount": "1"}), raw(map[string]any{"Billing Amount": "2"}))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(out) != 1 || out[0]["Billing Amount"] != "1" {
		t.Fatalf("kept %v, want first occurrence", out)
	}
}

func TestDeDup_UnknownPolicy(t *testing.T) {
	t.Parallel()

	if _, _, err := apply(DeDup{Policy: "fuzzy"}, raw(nil)); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
