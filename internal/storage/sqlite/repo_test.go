package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"healthetl/internal/schema"
	"healthetl/internal/storage"
)

func openTestRepo(t *testing.T) (storage.Repository, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "healthcare.db")
	repo, err := storage.New(context.Background(), storage.Config{
		Kind:    "sqlite",
		DSN:     dsn,
		Table:   schema.HealthcareTable,
		Columns: schema.Healthcare().Columns(),
	})
	if err != nil {
		t.Fatalf("storage.New(sqlite): %v", err)
	}
	t.Cleanup(repo.Close)
	return repo, dsn
}

func TestEnsureTable_Idempotent(t *testing.T) {
	t.Parallel()

	repo, _ := openTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := storage.EnsureTable(ctx, "sqlite", repo, schema.Healthcare()); err != nil {
			t.Fatalf("EnsureTable #%d: %v", i+1, err)
		}
	}

	typ, err := repo.ColumnType(ctx, schema.HealthcareTable, schema.ColBillingAmount)
	if err != nil {
		t.Fatalf("ColumnType: %v", err)
	}
	if typ != "REAL" {
		t.Fatalf("billing_amount type = %q, want REAL", typ)
	}
	if typ, _ := repo.ColumnType(ctx, schema.HealthcareTable, schema.ColAge); typ != "INTEGER" {
		t.Fatalf("age type = %q, want INTEGER", typ)
	}
	if _, err := repo.ColumnType(ctx, schema.HealthcareTable, "nope"); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestCopyFrom_StoresISODatesAndRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	repo, _ := openTestRepo(t)
	ctx := context.Background()
	if err := storage.EnsureTable(ctx, "sqlite", repo, schema.Healthcare()); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}

	adm := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rec := schema.Record{
		RecordID: "r-1", Name: "John Smith", Age: 50, Gender: "Male", BloodType: "O-",
		MedicalCondition: "Diabetes", DateOfAdmission: adm, DischargeDate: adm.AddDate(0, 0, 1),
		Doctor: "Dr. John Smith", BillingAmount: 30000, RoomNumber: 101, TestResults: "Normal",
	}
	cols := schema.Healthcare().Columns()

	n, err := repo.CopyFrom(ctx, cols, [][]any{rec.Values()})
	if err != nil || n != 1 {
		t.Fatalf("CopyFrom = (%d, %v), want (1, nil)", n, err)
	}

	r := repo.(*storage.Closing[*Repository]).Backend
	var got string
	if err := r.db.QueryRowContext(ctx, `SELECT date_of_admission FROM healthcare WHERE record_id = 'r-1'`).Scan(&got); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != "2024-03-05" {
		t.Fatalf("date_of_admission stored as %q, want 2024-03-05", got)
	}

	if _, err := repo.CopyFrom(ctx, cols, [][]any{rec.Values()}); err == nil {
		t.Fatalf("expected primary key violation on duplicate record_id")
	}
	if _, err := repo.CopyFrom(ctx, cols, [][]any{{"short"}}); err == nil {
		t.Fatalf("expected row length error")
	}
	if n, err := repo.CopyFrom(ctx, cols, nil); n != 0 || err != nil {
		t.Fatalf("CopyFrom(nil) = (%d, %v)", n, err)
	}
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"healthcare.db", "healthcare.db"},
		{"file:data/h.db?_pragma=busy_timeout(5000)", "data/h.db"},
		{":memory:", ""},
		{"file::memory:?cache=shared", ""},
	}
	for _, tt := range tests {
		if got := FilePath(tt.in); got != tt.want {
			t.Errorf("FilePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
