package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"healthetl/internal/ddl"
	"healthetl/internal/etlerr"
	"healthetl/internal/schema"
)

func init() {
	RegisterDDL("fakeddl", Dialect{
		MapType: func(kind string) string {
			if kind == schema.KindFloat {
				return "REAL"
			}
			return "TEXT"
		},
		EnsureTable: func(ctx context.Context, repo ddl.Execer, td ddl.TableDef) error {
			return repo.Exec(ctx, "CREATE TABLE IF NOT EXISTS "+td.FQN)
		},
	})
}

func sampleRecord(id string) schema.Record {
	adm := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return schema.Record{
		RecordID:         id,
		Name:             "Jane Doe",
		Age:              41,
		Gender:           "Female",
		BloodType:        "A+",
		MedicalCondition: "Asthma",
		DateOfAdmission:  adm,
		DischargeDate:    adm.AddDate(0, 0, 2),
		BillingAmount:    1234.5,
		TestResults:      "Normal",
	}
}

func TestWriter_AppendEmptyIsNoop(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	w := NewWriter(repo, schema.Healthcare(), WriterOptions{Kind: "fakeddl"}, zerolog.Nop())
	n, err := w.Append(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("Append(nil) = (%d, %v), want (0, nil)", n, err)
	}
	if len(repo.copied) != 0 {
		t.Fatalf("CopyFrom called for empty batch")
	}
}

func TestWriter_AppendUsesContractColumns(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{colType: "REAL"}
	w := NewWriter(repo, schema.Healthcare(), WriterOptions{Kind: "fakeddl", VerifyBillingType: true}, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := w.Append(ctx, []schema.Record{sampleRecord("a"), sampleRecord("b")}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if w.Total() != 4 {
		t.Fatalf("Total = %d, want 4", w.Total())
	}
	if got := strings.Join(repo.columns, ","); got != strings.Join(schema.Healthcare().Columns(), ",") {
		t.Fatalf("columns = %s", got)
	}
	if repo.typeHits != 1 {
		t.Fatalf("billing type verified %d times, want once", repo.typeHits)
	}
	w.Close()
	if !repo.closed {
		t.Fatalf("Close did not close repository")
	}
}

func TestWriter_VerifyBillingTypeDrift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		colType string
		wantErr bool
	}{
		{"exact", "REAL", false},
		{"float alias", "FLOAT", false},
		{"text drift", "TEXT", true},
		{"integer drift", "INTEGER", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeRepo{colType: tt.colType}
			w := NewWriter(repo, schema.Healthcare(), WriterOptions{Kind: "fakeddl"}, zerolog.Nop())
			err := w.VerifyBillingType(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyBillingType() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, etlerr.ErrStore) {
				t.Fatalf("drift error is not ErrStore: %v", err)
			}
		})
	}
}

func TestWriter_CopyErrorIsStoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	repo := &fakeRepo{copyErr: boom}
	w := NewWriter(repo, schema.Healthcare(), WriterOptions{Kind: "fakeddl"}, zerolog.Nop())
	_, err := w.Append(context.Background(), []schema.Record{sampleRecord("x")})
	if !errors.Is(err, etlerr.ErrStore) || !errors.Is(err, boom) {
		t.Fatalf("Append error = %v, want ErrStore wrapping cause", err)
	}
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := EnsureTable(ctx, "fakeddl", repo, schema.Healthcare()); err != nil {
			t.Fatalf("EnsureTable #%d: %v", i, err)
		}
	}
	if len(repo.execs) != 2 || repo.execs[0] != "CREATE TABLE IF NOT EXISTS healthcare" {
		t.Fatalf("execs = %v", repo.execs)
	}

	if err := EnsureTable(ctx, "nope", repo, schema.Healthcare()); err == nil {
		t.Fatalf("expected error for unregistered dialect")
	}
}
