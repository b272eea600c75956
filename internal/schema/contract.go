// Package schema is the versioned column contract shared by the writer and
// the report layer. Both sides derive table and column names from here so a
// rename can never leave one of them behind.
package schema

import (
	"fmt"
	"strings"
)

// Version is bumped whenever a column is added, removed, renamed or retyped.
const Version = 1

// Default table names.
const (
	HealthcareTable = "healthcare"
	DoctorsTable    = "doctors"
)

// Target column names of the healthcare table.
const (
	ColRecordID          = "record_id"
	ColName              = "name"
	ColAge               = "age"
	ColGender            = "gender"
	ColBloodType         = "blood_type"
	ColMedicalCondition  = "medical_condition"
	ColDateOfAdmission   = "date_of_admission"
	ColDoctor            = "doctor"
	ColHospital          = "hospital"
	ColInsuranceProvider = "insurance_provider"
	ColBillingAmount     = "billing_amount"
	ColRoomNumber        = "room_number"
	ColAdmissionType     = "admission_type"
	ColDischargeDate     = "discharge_date"
	ColMedication        = "medication"
	ColTestResults       = "test_results"
)

// Logical column kinds. Storage backends map these to SQL types.
const (
	KindText  = "text"
	KindInt   = "int"
	KindFloat = "float"
	KindDate  = "date"
)

// Field describes one column of the contract.
type Field struct {
	Name       string   `json:"name"`
	Source     string   `json:"source,omitempty"` // header in the input file; empty for generated columns
	Type       string   `json:"type"`             // "text" | "int" | "float" | "date"
	Required   bool     `json:"required,omitempty"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
	Enum       []string `json:"enum,omitempty"`
}

// Contract is a named, versioned, ordered set of fields.
type Contract struct {
	Name    string  `json:"name"`
	Version int     `json:"version"`
	Table   string  `json:"table"`
	Fields  []Field `json:"fields"`
}

var (
	genders      = []string{"Male", "Female", "Unknown"}
	bloodTypes   = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", "Unknown"}
	testOutcomes = []string{"Normal", "Abnormal", "Inconclusive"}
)

// Healthcare returns the contract of the cleaned patient billing table.
func Healthcare() Contract {
	return Contract{
		Name:    "healthcare",
		Version: Version,
		Table:   HealthcareTable,
		Fields: []Field{
			{Name: ColRecordID, Type: KindText, Required: true, PrimaryKey: true},
			{Name: ColName, Source: "Name", Type: KindText, Required: true},
			{Name: ColAge, Source: "Age", Type: KindInt, Required: true},
			{Name: ColGender, Source: "Gender", Type: KindText, Required: true, Enum: genders},
			{Name: ColBloodType, Source: "Blood Type", Type: KindText, Required: true, Enum: bloodTypes},
			{Name: ColMedicalCondition, Source: "Medical Condition", Type: KindText, Required: true},
			{Name: ColDateOfAdmission, Source: "Date of Admission", Type: KindDate, Required: true},
			{Name: ColDoctor, Source: "Doctor", Type: KindText, Required: true},
			{Name: ColHospital, Source: "Hospital", Type: KindText, Required: true},
			{Name: ColInsuranceProvider, Source: "Insurance Provider", Type: KindText, Required: true},
			{Name: ColBillingAmount, Source: "Billing Amount", Type: KindFloat, Required: true},
			{Name: ColRoomNumber, Source: "Room Number", Type: KindInt, Required: true},
			{Name: ColAdmissionType, Source: "Admission Type", Type: KindText, Required: true},
			{Name: ColDischargeDate, Source: "Discharge Date", Type: KindDate, Required: true},
			{Name: ColMedication, Source: "Medication", Type: KindText, Required: true},
			{Name: ColTestResults, Source: "Test Results", Type: KindText, Required: true, Enum: testOutcomes},
		},
	}
}

// WithTable returns a copy of c targeting table. An empty table keeps c.Table.
func (c Contract) WithTable(table string) Contract {
	if t := strings.TrimSpace(table); t != "" {
		c.Table = t
	}
	return c
}

// Columns returns the target column names in contract order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// SourceFields returns the fields that are read from the input file.
func (c Contract) SourceFields() []Field {
	out := make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Source != "" {
			out = append(out, f)
		}
	}
	return out
}

// SourceHeaders returns the required input header names in contract order.
func (c Contract) SourceHeaders() []string {
	fs := c.SourceFields()
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Source
	}
	return out
}

// Field returns the field named name.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsOfType returns the fields whose logical type is kind.
func (c Contract) FieldsOfType(kind string) []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Type == kind {
			out = append(out, f)
		}
	}
	return out
}

// TargetName converts a source header into its target column name: lower
// case, surrounding space trimmed, inner spaces replaced by underscores.
func TargetName(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}

// CheckVersion fails when a caller compiled against version want is handed a
// contract of another version.
func (c Contract) CheckVersion(want int) error {
	if c.Version != want {
		return fmt.Errorf("schema %s: version %d, want %d", c.Name, c.Version, want)
	}
	return nil
}
