package ddl

import (
	"context"
	"errors"
	"strings"
	"testing"

	gddl "healthetl/internal/ddl"
	"healthetl/internal/schema"
)

// TestQuoteFQN verifies that quoteFQN quotes each segment of a possibly
// qualified table name and ignores empty segments.
func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple table", in: "healthcare", want: `"healthcare"`},
		{name: "main schema", in: "main.healthcare", want: `"main"."healthcare"`},
		{name: "with spaces and empties", in: " .main..healthcare. ", want: `"main"."healthcare"`},
		{name: "with quotes", in: `main."h"`, want: `"main"."""h"""`},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := quoteFQN(tt.in); got != tt.want {
				t.Fatalf("quoteFQN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildCreateTableSQL_Healthcare(t *testing.T) {
	t.Parallel()

	td, err := gddl.FromContract(schema.Healthcare(), MapType)
	if err != nil {
		t.Fatalf("FromContract: %v", err)
	}
	stmt, err := BuildCreateTableSQL(td)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}

	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "healthcare" (`,
		`"record_id" TEXT NOT NULL`,
		`"age" INTEGER NOT NULL`,
		`"billing_amount" REAL NOT NULL`,
		`"date_of_admission" TEXT NOT NULL`,
		`PRIMARY KEY ("record_id")`,
	} {
		if !strings.Contains(stmt, want) {
			t.Errorf("statement missing %q:\n%s", want, stmt)
		}
	}
}

func TestBuildCreateTableSQL_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		td   gddl.TableDef
	}{
		{"empty fqn", gddl.TableDef{Columns: []gddl.ColumnDef{{Name: "a", SQLType: "TEXT"}}}},
		{"no columns", gddl.TableDef{FQN: "t"}},
		{"empty column name", gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{SQLType: "TEXT"}}}},
		{"missing type", gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: "a"}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := BuildCreateTableSQL(tt.td); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestBuildIndexSQL(t *testing.T) {
	t.Parallel()

	td, err := gddl.FromContract(schema.Healthcare().WithTable("main.hc"), MapType)
	if err != nil {
		t.Fatalf("FromContract: %v", err)
	}
	got := BuildIndexSQL(td)
	want := []string{
		`CREATE INDEX IF NOT EXISTS "main"."idx_hc_medical_condition" ON "hc" ("medical_condition");`,
		`CREATE INDEX IF NOT EXISTS "main"."idx_hc_doctor" ON "hc" ("doctor");`,
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("BuildIndexSQL() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if n := len(BuildIndexSQL(gddl.TableDef{FQN: "doctors", Columns: []gddl.ColumnDef{{Name: "doctor_name"}}})); n != 0 {
		t.Fatalf("doctors table got %d indexes", n)
	}
}

type fakeExecer struct {
	calls   int
	lastSQL string
	err     error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string) error {
	f.calls++
	f.lastSQL = sql
	return f.err
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()

	td := gddl.TableDef{FQN: "doctors", Columns: []gddl.ColumnDef{{Name: "doctor_name", SQLType: "TEXT", PrimaryKey: true}}}

	var ex fakeExecer
	if err := EnsureTable(context.Background(), &ex, td); err != nil {
		t.Fatalf("EnsureTable() error = %v", err)
	}
	if ex.calls != 1 || !strings.HasPrefix(ex.lastSQL, "CREATE TABLE IF NOT EXISTS") {
		t.Fatalf("calls=%d sql=%q", ex.calls, ex.lastSQL)
	}

	boom := errors.New("locked")
	ex = fakeExecer{err: boom}
	if err := EnsureTable(context.Background(), &ex, td); !errors.Is(err, boom) {
		t.Fatalf("EnsureTable() error = %v, want %v", err, boom)
	}
	hc, err := gddl.FromContract(schema.Healthcare(), MapType)
	if err != nil {
		t.Fatalf("FromContract: %v", err)
	}
	ex = fakeExecer{}
	if err := EnsureTable(context.Background(), &ex, hc); err != nil || ex.calls != 3 {
		t.Fatalf("healthcare: err=%v calls=%d, want table plus two indexes", err, ex.calls)
	}

	ex = fakeExecer{}
	if err := EnsureTable(context.Background(), &ex, gddl.TableDef{}); err == nil || ex.calls != 0 {
		t.Fatalf("build error must short-circuit Exec; err=%v calls=%d", err, ex.calls)
	}
}
