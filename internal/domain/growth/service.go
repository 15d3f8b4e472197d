package growth

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wellchild/wellchild/internal/platform/chrono"
)

// DefaultAdequateGainGramsPerDay is the weight-gain adequacy threshold used
// when no deployment-specific value is configured.
const DefaultAdequateGainGramsPerDay = 20

type Service struct {
	measurements MeasurementRepository
	perinatal    PerinatalRepository
	threshold    int // adequate gain, grams per day
	logger       zerolog.Logger
}

func NewService(measurements MeasurementRepository, perinatal PerinatalRepository, thresholdGramsPerDay int, logger zerolog.Logger) *Service {
	if thresholdGramsPerDay <= 0 {
		thresholdGramsPerDay = DefaultAdequateGainGramsPerDay
	}
	return &Service{
		measurements: measurements,
		perinatal:    perinatal,
		threshold:    thresholdGramsPerDay,
		logger:       logger,
	}
}

// Threshold returns the configured adequate-gain threshold in grams per day.
func (s *Service) Threshold() int { return s.threshold }

// Timeline fuses the manual, vitals and perinatal record sources into one
// timeline sorted ascending by instant. Rows whose timestamp cannot be
// parsed are dropped and logged. Duplicate instants across sources are kept
// as distinct observations since they may carry different field subsets.
//
// A failing store read degrades to an empty timeline: growth reporting is a
// secondary feature and must not take the visit workflow down with it.
func (s *Service) Timeline(ctx context.Context, patientID uuid.UUID) []Observation {
	var timeline []Observation

	rows, err := s.measurements.ListByPatient(ctx, patientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID.String()).
			Msg("measurement store unavailable, returning empty timeline")
		return []Observation{}
	}
	for _, row := range rows {
		instant, err := chrono.ParseInstant(row.RecordedAt)
		if err != nil {
			s.logger.Debug().Str("patient_id", patientID.String()).
				Str("recorded_at", row.RecordedAt).Str("source", string(row.Source)).
				Msg("dropping measurement with unparsable timestamp")
			continue
		}
		if row.WeightKG == nil && row.HeightCM == nil && row.HeadCircumferenceCM == nil {
			continue
		}
		timeline = append(timeline, Observation{
			PatientID:           row.PatientID,
			Instant:             instant,
			WeightKG:            row.WeightKG,
			HeightCM:            row.HeightCM,
			HeadCircumferenceCM: row.HeadCircumferenceCM,
			Source:              row.Source,
		})
	}

	rec, err := s.perinatal.GetByPatient(ctx, patientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", patientID.String()).
			Msg("perinatal record unavailable, timeline omits birth points")
	} else if rec != nil {
		timeline = append(timeline, synthesizePerinatal(rec)...)
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Instant.Before(timeline[j].Instant)
	})
	if timeline == nil {
		timeline = []Observation{}
	}
	return timeline
}

// synthesizePerinatal converts a perinatal record into its birth and
// discharge timeline points. Birth weight is stored in grams and converted
// to kilograms to match the measurement tables.
func synthesizePerinatal(rec *PerinatalRecord) []Observation {
	var points []Observation
	if rec.DOB != nil && (rec.BirthWeightGrams != nil || rec.BirthLengthCM != nil || rec.BirthHeadCircumferenceCM != nil) {
		birth := Observation{
			PatientID: rec.PatientID,
			Instant:   *rec.DOB,
			HeightCM:  rec.BirthLengthCM,
			Source:    SourcePerinatalBirth,
		}
		if rec.BirthWeightGrams != nil {
			kg := float64(*rec.BirthWeightGrams) / 1000
			birth.WeightKG = &kg
		}
		birth.HeadCircumferenceCM = rec.BirthHeadCircumferenceCM
		points = append(points, birth)
	}
	if rec.MaternityDischargeDate != nil && rec.DischargeWeightGrams != nil {
		kg := float64(*rec.DischargeWeightGrams) / 1000
		points = append(points, Observation{
			PatientID: rec.PatientID,
			Instant:   *rec.MaternityDischargeDate,
			WeightKG:  &kg,
			Source:    SourcePerinatalDischarge,
		})
	}
	return points
}

// Velocity derives the weight gain rate from the two most recent
// weight-bearing observations at or before referenceInstant. It returns nil
// when the timeline holds no weight at or before that instant, and a result
// without a rate when only one exists.
//
// Elapsed days are clamped to a minimum of one: identical or inverted
// timestamps come from upstream data entry errors and must not blow up the
// division.
func (s *Service) Velocity(timeline []Observation, referenceInstant time.Time) *VelocityResult {
	var weighted []Observation
	for _, obs := range timeline {
		if obs.WeightKG != nil && !obs.Instant.After(referenceInstant) {
			weighted = append(weighted, obs)
		}
	}
	if len(weighted) == 0 {
		return nil
	}
	sort.SliceStable(weighted, func(i, j int) bool {
		return weighted[i].Instant.After(weighted[j].Instant)
	})

	latest := weighted[0]
	if len(weighted) == 1 {
		return &VelocityResult{Latest: latest}
	}
	previous := weighted[1]

	elapsed := int(math.Round(latest.Instant.Sub(previous.Instant).Hours() / 24))
	if elapsed < 1 {
		elapsed = 1
	}
	deltaGrams := (*latest.WeightKG - *previous.WeightKG) * 1000
	rate := int(math.Round(deltaGrams / float64(elapsed)))

	return &VelocityResult{
		Latest:      latest,
		Previous:    &previous,
		ElapsedDays: elapsed,
		RatePerDay:  rate,
		Adequate:    rate >= s.threshold,
	}
}

// VelocityForPatient is the aggregate-then-compute convenience used by the
// HTTP surface.
func (s *Service) VelocityForPatient(ctx context.Context, patientID uuid.UUID, referenceInstant time.Time) *VelocityResult {
	return s.Velocity(s.Timeline(ctx, patientID), referenceInstant)
}

// RawMeasurements lists stored measurement rows without timeline fusion,
// for the data entry surface.
func (s *Service) RawMeasurements(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MeasurementRow, int, error) {
	return s.measurements.ListByPatientPaged(ctx, patientID, limit, offset)
}
