package transformer

import (
	"fmt"
	"time"

	"healthetl/internal/schema"
	"healthetl/pkg/records"
)

// Materialize converts cleaned rows into typed schema records and checks
// every record invariant. A failure here means a cleaning step let a bad
// value through; the batch is aborted.
func Materialize(rows []records.Record) ([]schema.Record, error) {
	out := make([]schema.Record, 0, len(rows))
	for i, r := range rows {
		var (
			rec schema.Record
			err error
		)
		str := func(col string) string {
			if err != nil {
				return ""
			}
			s, ok := r[col].(string)
			if !ok {
				err = fmt.Errorf("column %s: want string, got %T", col, r[col])
			}
			return s
		}
		i64 := func(col string) int64 {
			if err != nil {
				return 0
			}
			n, ok := r[col].(int64)
			if !ok {
				err = fmt.Errorf("column %s: want int64, got %T", col, r[col])
			}
			return n
		}
		date := func(col string) time.Time {
			if err != nil {
				return time.Time{}
			}
			t, ok := r[col].(time.Time)
			if !ok {
				err = fmt.Errorf("column %s: want time.Time, got %T", col, r[col])
			}
			return t
		}

		rec.RecordID = str(schema.ColRecordID)
		rec.Name = str(schema.ColName)
		rec.Age = i64(schema.ColAge)
		rec.Gender = str(schema.ColGender)
		rec.BloodType = str(schema.ColBloodType)
		rec.MedicalCondition = str(schema.ColMedicalCondition)
		rec.DateOfAdmission = date(schema.ColDateOfAdmission)
		rec.Doctor = str(schema.ColDoctor)
		rec.Hospital = str(schema.ColHospital)
		rec.InsuranceProvider = str(schema.ColInsuranceProvider)
		if err == nil {
			f, ok := r[schema.ColBillingAmount].(float64)
			if !ok {
				err = fmt.Errorf("column %s: want float64, got %T", schema.ColBillingAmount, r[schema.ColBillingAmount])
			}
			rec.BillingAmount = f
		}
		rec.RoomNumber = i64(schema.ColRoomNumber)
		rec.AdmissionType = str(schema.ColAdmissionType)
		rec.DischargeDate = date(schema.ColDischargeDate)
		rec.Medication = str(schema.ColMedication)
		rec.TestResults = str(schema.ColTestResults)

		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
