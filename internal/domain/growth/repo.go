package growth

import (
	"context"

	"github.com/google/uuid"
)

// MeasurementRepository reads the manually entered and vitals-table
// measurement rows for a patient. Both tables share one column shape and
// are read through a single positional union.
type MeasurementRepository interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MeasurementRow, error)
	ListByPatientPaged(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MeasurementRow, int, error)
}

// PerinatalRepository reads the perinatal history record for a patient.
// GetByPatient returns (nil, nil) when the patient has no record.
type PerinatalRepository interface {
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*PerinatalRecord, error)
}
