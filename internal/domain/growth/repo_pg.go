package growth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wellchild/wellchild/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Measurement Repository ===========

type measurementRepoPG struct{ pool *pgxpool.Pool }

func NewMeasurementRepoPG(pool *pgxpool.Pool) MeasurementRepository {
	return &measurementRepoPG{pool: pool}
}

func (r *measurementRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// measurementUnion reads both measurement tables positionally. The source
// column is synthesized so the aggregator can tag each observation.
const measurementUnion = `
	SELECT id, patient_id, recorded_at, weight_kg, height_cm, head_circumference_cm, 'manual' AS source
	FROM manual_measurement WHERE patient_id = $1
	UNION ALL
	SELECT id, patient_id, recorded_at, weight_kg, height_cm, head_circumference_cm, 'vital' AS source
	FROM vitals_measurement WHERE patient_id = $1`

func scanMeasurement(row pgx.Row) (*MeasurementRow, error) {
	var m MeasurementRow
	err := row.Scan(&m.ID, &m.PatientID, &m.RecordedAt,
		&m.WeightKG, &m.HeightCM, &m.HeadCircumferenceCM, &m.Source)
	return &m, err
}

func (r *measurementRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MeasurementRow, error) {
	rows, err := r.conn(ctx).Query(ctx, measurementUnion, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MeasurementRow
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *measurementRepoPG) ListByPatientPaged(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MeasurementRow, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM manual_measurement WHERE patient_id = $1)
		     + (SELECT COUNT(*) FROM vitals_measurement WHERE patient_id = $1)`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		measurementUnion+` ORDER BY recorded_at LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MeasurementRow
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// =========== Perinatal Repository ===========

type perinatalRepoPG struct{ pool *pgxpool.Pool }

func NewPerinatalRepoPG(pool *pgxpool.Pool) PerinatalRepository {
	return &perinatalRepoPG{pool: pool}
}

func (r *perinatalRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const perinatalCols = `id, patient_id, dob, birth_weight_g, birth_length_cm,
	birth_head_circumference_cm, maternity_discharge_date, discharge_weight_g`

func (r *perinatalRepoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*PerinatalRecord, error) {
	var p PerinatalRecord
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+perinatalCols+` FROM perinatal_record WHERE patient_id = $1`, patientID).
		Scan(&p.ID, &p.PatientID, &p.DOB, &p.BirthWeightGrams, &p.BirthLengthCM,
			&p.BirthHeadCircumferenceCM, &p.MaternityDischargeDate, &p.DischargeWeightGrams)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
