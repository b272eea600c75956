// Package csv reads the healthcare billing CSV in bounded batches.
//
// The header is read and checked once when the reader is built. Each line
// is then decoded with csvutil into a fixed row struct and turned into a
// records.Record keyed by the source header names. Empty cells become nil.
// The two date columns are parsed with a day-first layout; an unparseable
// date becomes nil and is imputed later by the cleaner.
//
// Malformed lines (CSV syntax errors, wrong field count) are skipped and
// reported through Options.OnWarn; they never fail the run.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"healthetl/internal/config"
	"healthetl/internal/datasource"
	"healthetl/internal/schema"
	"healthetl/pkg/records"
)

// DefaultDateLayout is day-first and accepts unpadded fields (31-12-2024, 5-1-2024).
const DefaultDateLayout = "2-1-2006"

// Options tunes a BatchReader.
type Options struct {
	// BatchSize is the maximum number of rows per batch (default 1000).
	BatchSize int
	// DateLayout parses Date of Admission and Discharge Date.
	DateLayout string
	Comma      rune
	LazyQuotes bool
	// HeaderMap renames raw header cells to the canonical source headers.
	HeaderMap map[string]string
	// OnWarn receives every skipped line.
	OnWarn func(line int, err error)
}

// OptionsFrom reads parser options from the pipeline configuration.
func OptionsFrom(opt config.Options, batchSize int) Options {
	return Options{
		BatchSize:  batchSize,
		DateLayout: opt.String("date_layout", DefaultDateLayout),
		Comma:      opt.Rune("comma", ','),
		LazyQuotes: opt.Bool("lazy_quotes", false),
		HeaderMap:  opt.StringMap("header_map"),
	}
}

// sourceRow is the fixed shape of one input line.
type sourceRow struct {
	Name              string `csv:"Name"`
	Age               string `csv:"Age"`
	Gender            string `csv:"Gender"`
	BloodType         string `csv:"Blood Type"`
	MedicalCondition  string `csv:"Medical Condition"`
	DateOfAdmission   string `csv:"Date of Admission"`
	Doctor            string `csv:"Doctor"`
	Hospital          string `csv:"Hospital"`
	InsuranceProvider string `csv:"Insurance Provider"`
	BillingAmount     string `csv:"Billing Amount"`
	RoomNumber        string `csv:"Room Number"`
	AdmissionType     string `csv:"Admission Type"`
	DischargeDate     string `csv:"Discharge Date"`
	Medication        string `csv:"Medication"`
	TestResults       string `csv:"Test Results"`
}

// BatchReader yields the input as a finite, non-restartable sequence of
// batches.
type BatchReader struct {
	rc  io.ReadCloser
	cr  *csv.Reader
	dec *csvutil.Decoder
	opt Options

	seq     int
	line    int // last physical record number read (header = 1)
	rows    int
	skipped int
	done    bool
}

// NewBatchReader opens src and validates its header. A missing source fails
// with an error wrapping etlerr.ErrNotFound; a header lacking any of the
// fifteen required columns fails with a *HeaderError.
func NewBatchReader(ctx context.Context, src datasource.Source, opt Options) (*BatchReader, error) {
	if opt.BatchSize <= 0 {
		opt.BatchSize = 1000
	}
	if opt.DateLayout == "" {
		opt.DateLayout = DefaultDateLayout
	}
	if opt.Comma == 0 {
		opt.Comma = ','
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	cr := csv.NewReader(rc)
	cr.Comma = opt.Comma
	cr.LazyQuotes = opt.LazyQuotes

	raw, err := cr.Read()
	if err != nil {
		rc.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header of %s: empty input", src)
		}
		return nil, fmt.Errorf("read header of %s: %w", src, err)
	}
	header := CleanHeader(raw, opt.HeaderMap)
	if missing := missingColumns(header, schema.Healthcare().SourceHeaders()); len(missing) > 0 {
		rc.Close()
		return nil, &HeaderError{Missing: missing}
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("csv decoder: %w", err)
	}
	return &BatchReader{rc: rc, cr: cr, dec: dec, opt: opt, line: 1}, nil
}

// Next returns the next batch of at most BatchSize rows, or io.EOF once the
// input is exhausted.
func (r *BatchReader) Next(ctx context.Context) (records.Batch, error) {
	if r.done {
		return records.Batch{}, io.EOF
	}
	b := records.Batch{Seq: r.seq, Records: make([]records.Record, 0, r.opt.BatchSize)}

	for len(b.Records) < r.opt.BatchSize {
		if err := ctx.Err(); err != nil {
			return records.Batch{}, err
		}

		var row sourceRow
		err := r.dec.Decode(&row)
		r.line++
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			line, ok := malformedLine(err, r.line)
			if !ok {
				return records.Batch{}, fmt.Errorf("read line %d: %w", r.line, err)
			}
			r.line = line
			b.Skipped++
			r.skipped++
			if r.opt.OnWarn != nil {
				r.opt.OnWarn(line, err)
			}
			continue
		}
		r.line, _ = r.cr.FieldPos(0)
		b.Records = append(b.Records, r.toRecord(row))
	}

	if len(b.Records) == 0 && b.Skipped == 0 {
		return records.Batch{}, io.EOF
	}
	r.rows += len(b.Records)
	r.seq++
	return b, nil
}

// Rows returns the number of rows produced so far.
func (r *BatchReader) Rows() int { return r.rows }

// Skipped returns the number of malformed lines dropped so far.
func (r *BatchReader) Skipped() int { return r.skipped }

// Close releases the underlying source.
func (r *BatchReader) Close() error { return r.rc.Close() }

// malformedLine reports whether err is a recoverable per-line error and the
// line it happened on.
func malformedLine(err error, fallback int) (int, bool) {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.StartLine, true
	}
	if errors.Is(err, csvutil.ErrFieldCount) {
		return fallback, true
	}
	return 0, false
}

func (r *BatchReader) toRecord(s sourceRow) records.Record {
	rec := make(records.Record, 15)
	text := func(key, v string) {
		if v = strings.TrimSpace(v); v == "" {
			rec[key] = nil
			return
		}
		rec[key] = v
	}
	date := func(key, v string) {
		t, err := time.Parse(r.opt.DateLayout, strings.TrimSpace(v))
		if err != nil {
			rec[key] = nil
			return
		}
		rec[key] = t.UTC()
	}

	text("Name", s.Name)
	text("Age", s.Age)
	text("Gender", s.Gender)
	text("Blood Type", s.BloodType)
	text("Medical Condition", s.MedicalCondition)
	date("Date of Admission", s.DateOfAdmission)
	text("Doctor", s.Doctor)
	text("Hospital", s.Hospital)
	text("Insurance Provider", s.InsuranceProvider)
	text("Billing Amount", s.BillingAmount)
	text("Room Number", s.RoomNumber)
	text("Admission Type", s.AdmissionType)
	date("Discharge Date", s.DischargeDate)
	text("Medication", s.Medication)
	text("Test Results", s.TestResults)
	return rec
}
