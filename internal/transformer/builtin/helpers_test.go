package builtin

import (
	"context"
	"math"
	"time"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// raw returns a complete source-keyed row as the reader produces it, with
// overrides applied.
func raw(over map[string]any) records.Record {
	r := records.Record{
		"Name":               "John Smith",
		"Age":                "30",
		"Gender":             "Male",
		"Blood Type":         "A+",
		"Medical Condition":  "Diabetes",
		"Date of Admission":  date(2024, 1, 1),
		"Doctor":             "Dr. John Smith",
		"Hospital":           "General",
		"Insurance Provider": "Aetna",
		"Billing Amount":     "30000",
		"Room Number":        "101",
		"Admission Type":     "Emergency",
		"Discharge Date":     date(2024, 1, 5),
		"Medication":         "Insulin",
		"Test Results":       "Normal",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

// typed returns a renamed, coerced row for the later steps.
func typed(over map[string]any) records.Record {
	r := records.Record{
		schema.ColName:              "John Smith",
		schema.ColAge:               int64(30),
		schema.ColGender:            "Male",
		schema.ColBloodType:         "A+",
		schema.ColMedicalCondition:  "Diabetes",
		schema.ColDateOfAdmission:   date(2024, 1, 1),
		schema.ColDoctor:            "Dr. John Smith",
		schema.ColHospital:          "General",
		schema.ColInsuranceProvider: "Aetna",
		schema.ColBillingAmount:     30000.0,
		schema.ColRoomNumber:        int64(101),
		schema.ColAdmissionType:     "Emergency",
		schema.ColDischargeDate:     date(2024, 1, 5),
		schema.ColMedication:        "Insulin",
		schema.ColTestResults:       "Normal",
	}
	for k, v := range over {
		r[k] = v
	}
	return r
}

func apply(s transformer.Step, in ...records.Record) ([]records.Record, *transformer.Report, error) {
	rep := transformer.NewReport()
	out, err := s.Apply(context.Background(), in, rep)
	return out, rep, err
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
