package growth

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies which record source an observation came from.
type SourceKind string

const (
	SourceManual             SourceKind = "manual"
	SourceVital              SourceKind = "vital"
	SourcePerinatalBirth     SourceKind = "perinatal-birth"
	SourcePerinatalDischarge SourceKind = "perinatal-discharge"
)

// Observation is one timestamped growth measurement fused into the patient
// timeline. It is assembled at read time and never persisted in this form.
// At least one of the measurement fields is present.
type Observation struct {
	PatientID           uuid.UUID  `json:"patient_id"`
	Instant             time.Time  `json:"instant"`
	WeightKG            *float64   `json:"weight_kg,omitempty"`
	HeightCM            *float64   `json:"height_cm,omitempty"`
	HeadCircumferenceCM *float64   `json:"head_circumference_cm,omitempty"`
	Source              SourceKind `json:"source"`
}

// MeasurementRow maps to one row of the manual_measurement or
// vitals_measurement tables, which share the same column shape. RecordedAt
// is kept as the stored text; the aggregator parses it.
type MeasurementRow struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	RecordedAt          string     `db:"recorded_at" json:"recorded_at"`
	WeightKG            *float64   `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCM            *float64   `db:"height_cm" json:"height_cm,omitempty"`
	HeadCircumferenceCM *float64   `db:"head_circumference_cm" json:"head_circumference_cm,omitempty"`
	Source              SourceKind `db:"source" json:"source"`
}

// PerinatalRecord maps to the perinatal_record table. It contributes at most
// two synthetic timeline points: a birth point and a maternity discharge
// point.
type PerinatalRecord struct {
	ID                       uuid.UUID  `db:"id" json:"id"`
	PatientID                uuid.UUID  `db:"patient_id" json:"patient_id"`
	DOB                      *time.Time `db:"dob" json:"dob,omitempty"`
	BirthWeightGrams         *int       `db:"birth_weight_g" json:"birth_weight_g,omitempty"`
	BirthLengthCM            *float64   `db:"birth_length_cm" json:"birth_length_cm,omitempty"`
	BirthHeadCircumferenceCM *float64   `db:"birth_head_circumference_cm" json:"birth_head_circumference_cm,omitempty"`
	MaternityDischargeDate   *time.Time `db:"maternity_discharge_date" json:"maternity_discharge_date,omitempty"`
	DischargeWeightGrams     *int       `db:"discharge_weight_g" json:"discharge_weight_g,omitempty"`
}

// VelocityResult is a view over the two most recent weight-bearing
// observations at or before a reference instant. It is computed on demand
// and never stored.
type VelocityResult struct {
	Latest      Observation  `json:"latest"`
	Previous    *Observation `json:"previous,omitempty"`
	ElapsedDays int          `json:"elapsed_days,omitempty"`
	RatePerDay  int          `json:"rate_per_day,omitempty"`
	Adequate    bool         `json:"adequate"`
}

// HasRate reports whether a rate could be computed, i.e. a previous
// weight-bearing observation existed.
func (v *VelocityResult) HasRate() bool {
	return v.Previous != nil
}
