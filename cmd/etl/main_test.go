package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

const header = "Name,Age,Gender,Blood Type,Medical Condition,Date of Admission,Doctor,Hospital,Insurance Provider,Billing Amount,Room Number,Admission Type,Discharge Date,Medication,Test Results\n"

func TestRun_LoadsCSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	body := header +
		"Dr. John Smith,45,Male,A+,Diabetes,01-01-2024,Dr. John Smith,General,Aetna,30000,101,Emergency,05-01-2024,Metformin,Normal\n" +
		"Jane Doe,38,Female,O-,Asthma,10-01-2024,Dr. Sarah Davis,City,Cigna,1200.5,202,Elective,12-01-2024,Aspirin,Abnormal\n"
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	db := filepath.Join(dir, "healthcare.db")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"run", "--source", src, "--db", db, "--batch-size", "1", "--log-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, errOut.String())
	}
	if !strings.Contains(out.String(), "loaded 2 rows in 2 batches") {
		t.Fatalf("stdout = %q", out.String())
	}

	conn, err := sql.Open("sqlite", db)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM healthcare").Scan(&n); err != nil || n != 2 {
		t.Fatalf("rows = %d, err = %v", n, err)
	}

	logData, err := os.ReadFile(filepath.Join(dir, "etl.log"))
	if err != nil || !strings.Contains(string(logData), "run complete") {
		t.Fatalf("etl.log = %q, err = %v", logData, err)
	}
}

func TestRun_MissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--source", filepath.Join(dir, "absent.csv"), "--db", filepath.Join(dir, "h.db"), "--log-dir", dir})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(cfg, []byte(`{"runtime": {"batch_size": -1}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&errOut)
	root.SetArgs([]string{"validate", "--config", cfg})
	if err := root.Execute(); err == nil {
		t.Fatalf("invalid configuration accepted")
	}
	if !strings.Contains(errOut.String(), "runtime.batch_size") {
		t.Fatalf("stderr = %q", errOut.String())
	}

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"validate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	if !strings.Contains(out.String(), "configuration is valid") {
		t.Fatalf("stdout = %q", out.String())
	}
}
