package schema

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the persisted ISO form of date columns.
const DateLayout = "2006-01-02"

// Record is one cleaned patient billing row, ready to be written.
type Record struct {
	RecordID          string
	Name              string
	Age               int64
	Gender            string
	BloodType         string
	MedicalCondition  string
	DateOfAdmission   time.Time
	Doctor            string
	Hospital          string
	InsuranceProvider string
	BillingAmount     float64
	RoomNumber        int64
	AdmissionType     string
	DischargeDate     time.Time
	Medication        string
	TestResults       string
}

// Values returns the row in Healthcare() column order.
func (r Record) Values() []any {
	return []any{
		r.RecordID,
		r.Name,
		r.Age,
		r.Gender,
		r.BloodType,
		r.MedicalCondition,
		r.DateOfAdmission,
		r.Doctor,
		r.Hospital,
		r.InsuranceProvider,
		r.BillingAmount,
		r.RoomNumber,
		r.AdmissionType,
		r.DischargeDate,
		r.Medication,
		r.TestResults,
	}
}

// Validate checks the invariants every persisted row must satisfy.
func (r Record) Validate() error {
	switch {
	case r.RecordID == "":
		return fmt.Errorf("record_id is empty")
	case r.Age < 0:
		return fmt.Errorf("age %d is negative", r.Age)
	case r.BillingAmount < 0:
		return fmt.Errorf("billing_amount %.2f is negative", r.BillingAmount)
	case r.DateOfAdmission.IsZero() || r.DischargeDate.IsZero():
		return fmt.Errorf("date_of_admission or discharge_date is missing")
	case r.DischargeDate.Before(r.DateOfAdmission):
		return fmt.Errorf("discharge_date %s before date_of_admission %s",
			r.DischargeDate.Format(DateLayout), r.DateOfAdmission.Format(DateLayout))
	case r.MedicalCondition == "":
		return fmt.Errorf("medical_condition is empty")
	case !slices.Contains(genders, r.Gender):
		return fmt.Errorf("gender %q outside vocabulary", r.Gender)
	case !slices.Contains(bloodTypes, r.BloodType):
		return fmt.Errorf("blood_type %q outside vocabulary", r.BloodType)
	case !slices.Contains(testOutcomes, r.TestResults):
		return fmt.Errorf("test_results %q outside vocabulary", r.TestResults)
	}
	return nil
}

// Doctor is one row of the reference doctors table.
type Doctor struct {
	DoctorName string `gorm:"column:doctor_name;primaryKey;size:255" csv:"doctor_name"`
	Specialty  string `gorm:"column:specialty;size:255;not null" csv:"specialty"`
}

// TableName pins the gorm table name to DoctorsTable.
func (Doctor) TableName() string { return DoctorsTable }
