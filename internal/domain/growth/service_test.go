package growth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repositories --

type mockMeasurementRepo struct {
	rows map[uuid.UUID][]*MeasurementRow
	err  error
}

func newMockMeasurementRepo() *mockMeasurementRepo {
	return &mockMeasurementRepo{rows: make(map[uuid.UUID][]*MeasurementRow)}
}

func (m *mockMeasurementRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*MeasurementRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows[patientID], nil
}

func (m *mockMeasurementRepo) ListByPatientPaged(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*MeasurementRow, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.rows[patientID]
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

type mockPerinatalRepo struct {
	records map[uuid.UUID]*PerinatalRecord
	err     error
}

func newMockPerinatalRepo() *mockPerinatalRepo {
	return &mockPerinatalRepo{records: make(map[uuid.UUID]*PerinatalRecord)}
}

func (m *mockPerinatalRepo) GetByPatient(_ context.Context, patientID uuid.UUID) (*PerinatalRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[patientID], nil
}

func newTestService(meas *mockMeasurementRepo, peri *mockPerinatalRepo) *Service {
	return NewService(meas, peri, DefaultAdequateGainGramsPerDay, zerolog.Nop())
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func dptr(t time.Time) *time.Time {
	return &t
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -- Timeline Tests --

func TestTimeline_SortedAscending(t *testing.T) {
	pid := uuid.New()
	meas := newMockMeasurementRepo()
	meas.rows[pid] = []*MeasurementRow{
		{PatientID: pid, RecordedAt: "2024-03-01", WeightKG: fptr(5.0), Source: SourceManual},
		{PatientID: pid, RecordedAt: "2024-01-15 08:30:00", WeightKG: fptr(3.9), Source: SourceVital},
		{PatientID: pid, RecordedAt: "2024-02-01T10:00:00Z", WeightKG: fptr(4.4), Source: SourceManual},
	}
	svc := newTestService(meas, newMockPerinatalRepo())

	timeline := svc.Timeline(context.Background(), pid)
	if len(timeline) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(timeline))
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i].Instant.Before(timeline[i-1].Instant) {
			t.Errorf("timeline not sorted at index %d", i)
		}
	}
}

func TestTimeline_Idempotent(t *testing.T) {
	pid := uuid.New()
	meas := newMockMeasurementRepo()
	meas.rows[pid] = []*MeasurementRow{
		{PatientID: pid, RecordedAt: "2024-01-15", WeightKG: fptr(3.9), Source: SourceManual},
		{PatientID: pid, RecordedAt: "2024-02-01", WeightKG: fptr(4.4), Source: SourceVital},
	}
	peri := newMockPerinatalRepo()
	peri.records[pid] = &PerinatalRecord{
		PatientID:        pid,
		DOB:              dptr(day(2024, 1, 1)),
		BirthWeightGrams: iptr(3200),
	}
	svc := newTestService(meas, peri)

	first := svc.Timeline(context.Background(), pid)
	second := svc.Timeline(context.Background(), pid)
	if len(first) != len(second) {
		t.Fatalf("expected identical lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Instant.Equal(second[i].Instant) || first[i].Source != second[i].Source {
			t.Errorf("observation %d differs between calls", i)
		}
	}
}

func TestTimeline_DropsUnparsableRows(t *testing.T) {
	pid := uuid.New()
	meas := newMockMeasurementRepo()
	meas.rows[pid] = []*MeasurementRow{
		{PatientID: pid, RecordedAt: "not-a-date", WeightKG: fptr(4.0), Source: SourceManual},
		{PatientID: pid, RecordedAt: "2024-02-01", WeightKG: fptr(4.4), Source: SourceVital},
	}
	svc := newTestService(meas, newMockPerinatalRepo())

	timeline := svc.Timeline(context.Background(), pid)
	if len(timeline) != 1 {
		t.Fatalf("expected unparsable row to be dropped, got %d observations", len(timeline))
	}
	if timeline[0].Source != SourceVital {
		t.Errorf("expected surviving observation from vitals, got %s", timeline[0].Source)
	}
}

func TestTimeline_StoreUnavailableReturnsEmpty(t *testing.T) {
	meas := newMockMeasurementRepo()
	meas.err = fmt.Errorf("connection refused")
	svc := newTestService(meas, newMockPerinatalRepo())

	timeline := svc.Timeline(context.Background(), uuid.New())
	if timeline == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(timeline) != 0 {
		t.Errorf("expected empty timeline, got %d observations", len(timeline))
	}
}

func TestTimeline_PreservesDuplicateInstantsAcrossSources(t *testing.T) {
	pid := uuid.New()
	meas := newMockMeasurementRepo()
	meas.rows[pid] = []*MeasurementRow{
		{PatientID: pid, RecordedAt: "2024-02-01", WeightKG: fptr(4.4), Source: SourceManual},
		{PatientID: pid, RecordedAt: "2024-02-01", HeightCM: fptr(55.0), Source: SourceVital},
	}
	svc := newTestService(meas, newMockPerinatalRepo())

	timeline := svc.Timeline(context.Background(), pid)
	if len(timeline) != 2 {
		t.Fatalf("expected both same-instant observations kept, got %d", len(timeline))
	}
}

func TestTimeline_BirthAndDischargeSynthesis(t *testing.T) {
	pid := uuid.New()
	peri := newMockPerinatalRepo()
	peri.records[pid] = &PerinatalRecord{
		PatientID:              pid,
		DOB:                    dptr(day(2024, 1, 1)),
		BirthWeightGrams:       iptr(3200),
		MaternityDischargeDate: dptr(day(2024, 1, 3)),
		DischargeWeightGrams:   iptr(3100),
	}
	svc := newTestService(newMockMeasurementRepo(), peri)

	timeline := svc.Timeline(context.Background(), pid)
	if len(timeline) != 2 {
		t.Fatalf("expected 2 synthetic observations, got %d", len(timeline))
	}
	if !timeline[0].Instant.Equal(day(2024, 1, 1)) || *timeline[0].WeightKG != 3.2 {
		t.Errorf("unexpected birth point: %v %v", timeline[0].Instant, *timeline[0].WeightKG)
	}
	if timeline[0].Source != SourcePerinatalBirth {
		t.Errorf("expected perinatal-birth source, got %s", timeline[0].Source)
	}
	if !timeline[1].Instant.Equal(day(2024, 1, 3)) || *timeline[1].WeightKG != 3.1 {
		t.Errorf("unexpected discharge point: %v %v", timeline[1].Instant, *timeline[1].WeightKG)
	}
	if timeline[1].Source != SourcePerinatalDischarge {
		t.Errorf("expected perinatal-discharge source, got %s", timeline[1].Source)
	}
}

// -- Velocity Tests --

func obsAt(instant time.Time, weightKG float64) Observation {
	return Observation{Instant: instant, WeightKG: fptr(weightKG), Source: SourceManual}
}

func TestVelocity_TenDayGain(t *testing.T) {
	svc := newTestService(newMockMeasurementRepo(), newMockPerinatalRepo())
	timeline := []Observation{
		obsAt(day(2024, 1, 3), 3.10),
		obsAt(day(2024, 1, 13), 3.50),
	}
	v := svc.Velocity(timeline, day(2024, 1, 31))
	if v == nil {
		t.Fatal("expected a velocity result")
	}
	if v.ElapsedDays != 10 {
		t.Errorf("expected 10 elapsed days, got %d", v.ElapsedDays)
	}
	if v.RatePerDay != 40 {
		t.Errorf("expected 40 g/day, got %d", v.RatePerDay)
	}
	if !v.Adequate {
		t.Error("expected adequate gain")
	}
}

func TestVelocity_ClampsIdenticalInstants(t *testing.T) {
	svc := newTestService(newMockMeasurementRepo(), newMockPerinatalRepo())
	timeline := []Observation{
		obsAt(day(2024, 1, 3), 3.10),
		obsAt(day(2024, 1, 3), 3.50),
	}
	v := svc.Velocity(timeline, day(2024, 1, 31))
	if v == nil {
		t.Fatal("expected a velocity result")
	}
	if v.ElapsedDays != 1 {
		t.Errorf("expected elapsed days clamped to 1, got %d", v.ElapsedDays)
	}
}

func TestVelocity_ThresholdBoundary(t *testing.T) {
	svc := newTestService(newMockMeasurementRepo(), newMockPerinatalRepo())

	// 200 g over 10 days = exactly 20 g/day
	at := svc.Velocity([]Observation{
		obsAt(day(2024, 1, 1), 3.00),
		obsAt(day(2024, 1, 11), 3.20),
	}, day(2024, 1, 31))
	if at.RatePerDay != 20 || !at.Adequate {
		t.Errorf("rate 20 must be adequate, got rate=%d adequate=%v", at.RatePerDay, at.Adequate)
	}

	// 190 g over 10 days = 19 g/day
	below := svc.Velocity([]Observation{
		obsAt(day(2024, 1, 1), 3.00),
		obsAt(day(2024, 1, 11), 3.19),
	}, day(2024, 1, 31))
	if below.RatePerDay != 19 || below.Adequate {
		t.Errorf("rate 19 must be inadequate, got rate=%d adequate=%v", below.RatePerDay, below.Adequate)
	}
}

func TestVelocity_NoWeightObservations(t *testing.T) {
	svc := newTestService(newMockMeasurementRepo(), newMockPerinatalRepo())
	timeline := []Observation{
		{Instant: day(2024, 1, 3), HeightCM: fptr(52.0), Source: SourceManual},
	}
	if v := svc.Velocity(timeline, day(2024, 1, 31)); v != nil {
		t.Errorf("expected nil result, got %+v", v)
	}
}

func TestVelocity_SingleObservationHasNoRate(t *testing.T) {
	svc := newTestService(newMockMeasurementRepo(), newMockPerinatalRepo())
	v := svc.Velocity([]Observation{obsAt(day(2024, 1, 3), 3.10)}, day(2024, 1, 31))
	if v == nil {
		t.Fatal("expected a result with the latest observation")
	}
	if v.HasRate() {
		t.Error("expected no rate with a single observation")
	}
	if v.Previous != nil {
		t.Error("expected previous to be nil")
	}
}

func TestVelocity_IgnoresObservationsAfterReference(t *testing.T) {
	svc := newTestService(newMockMeasurementRepo(), newMockPerinatalRepo())
	timeline := []Observation{
		obsAt(day(2024, 1, 3), 3.10),
		obsAt(day(2024, 1, 13), 3.50),
		obsAt(day(2024, 2, 1), 4.20),
	}
	v := svc.Velocity(timeline, day(2024, 1, 20))
	if v == nil {
		t.Fatal("expected a velocity result")
	}
	if !v.Latest.Instant.Equal(day(2024, 1, 13)) {
		t.Errorf("expected latest at 2024-01-13, got %v", v.Latest.Instant)
	}
}

func TestVelocity_ConfigurableThreshold(t *testing.T) {
	svc := NewService(newMockMeasurementRepo(), newMockPerinatalRepo(), 30, zerolog.Nop())
	v := svc.Velocity([]Observation{
		obsAt(day(2024, 1, 1), 3.00),
		obsAt(day(2024, 1, 11), 3.25), // 25 g/day
	}, day(2024, 1, 31))
	if v.Adequate {
		t.Error("25 g/day must be inadequate under a 30 g/day threshold")
	}
}
