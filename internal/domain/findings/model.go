package findings

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DairyIntakeKind discriminates the two historical uses of the dairy intake
// column: a structured frequency code or free supplementation text.
type DairyIntakeKind string

const (
	DairyStructuredCode DairyIntakeKind = "code"
	DairyFreeText       DairyIntakeKind = "text"
)

// DairyIntakeMaxCode is the highest structured frequency code; only the
// maximum is clinically flagged.
const DairyIntakeMaxCode = 3

// DairyIntake is the tagged union over the overloaded dairy intake field.
// The shape is resolved once when the snapshot is decoded, not re-sniffed
// at every use site.
type DairyIntake struct {
	Kind DairyIntakeKind `json:"kind"`
	Code int             `json:"code,omitempty"`
	Text string          `json:"text,omitempty"`
}

// UnmarshalJSON accepts either a number/numeric string (structured code) or
// arbitrary text, resolving the union at the boundary.
func (d *DairyIntake) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		d.Kind = DairyStructuredCode
		d.Code = int(v)
	case string:
		if code, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			d.Kind = DairyStructuredCode
			d.Code = code
		} else {
			d.Kind = DairyFreeText
			d.Text = v
		}
	case map[string]interface{}:
		// Already-tagged form round-trips unchanged.
		type alias DairyIntake
		var a alias
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*d = DairyIntake(a)
	}
	return nil
}

// IsSet reports whether the field carried any value at all.
func (d DairyIntake) IsSet() bool {
	return d.Kind != ""
}

// FeedingFindings covers the feeding section of a visit.
type FeedingFindings struct {
	Normal          bool        `json:"normal"`
	Comment         string      `json:"comment,omitempty"`
	DairyIntake     DairyIntake `json:"dairy_intake,omitempty"`
	Supplementation string      `json:"supplementation,omitempty"`
}

// StoolFindings covers the stool pattern question.
type StoolFindings struct {
	Normal  bool   `json:"normal"`
	Comment string `json:"comment,omitempty"`
}

// SleepHoursFlagBelow is the sleep duration threshold in hours per day;
// shorter sleep is listed as a finding.
const SleepHoursFlagBelow = 10.0

// SleepFindings covers the sleep section.
type SleepFindings struct {
	Normal      bool     `json:"normal"`
	Comment     string   `json:"comment,omitempty"`
	HoursPerDay *float64 `json:"hours_per_day,omitempty"`
}

// SystemFinding is one body-system row of the physical exam.
type SystemFinding struct {
	Normal  bool   `json:"normal"`
	Comment string `json:"comment,omitempty"`
}

// ExamFindings holds the per-system physical exam results. Systems are
// reported in the fixed canonical order of examSystems.
type ExamFindings struct {
	Skin            SystemFinding `json:"skin"`
	Head            SystemFinding `json:"head"`
	Eyes            SystemFinding `json:"eyes"`
	Ears            SystemFinding `json:"ears"`
	Mouth           SystemFinding `json:"mouth"`
	Heart           SystemFinding `json:"heart"`
	Lungs           SystemFinding `json:"lungs"`
	Abdomen         SystemFinding `json:"abdomen"`
	Genitourinary   SystemFinding `json:"genitourinary"`
	Musculoskeletal SystemFinding `json:"musculoskeletal"`
	Neurological    SystemFinding `json:"neurological"`
}

// MilestoneStatus is the assessment outcome for one milestone item.
type MilestoneStatus string

const (
	MilestoneAchieved    MilestoneStatus = "achieved"
	MilestoneInProgress  MilestoneStatus = "in_progress"
	MilestoneNotAchieved MilestoneStatus = "not_achieved"
)

// MilestoneFinding records the status of one catalog milestone.
type MilestoneFinding struct {
	ID     string          `json:"id"`
	Status MilestoneStatus `json:"status"`
}

// ScreeningScore is one neurodevelopmental screening domain result; scores
// below the cutoff are listed.
type ScreeningScore struct {
	Domain string `json:"domain"`
	Score  *int   `json:"score,omitempty"`
	Cutoff int    `json:"cutoff"`
}

// Snapshot is the full structured clinical state captured for one visit.
// Callers assemble it from whatever structured fields they hold; it is
// never persisted in this form.
type Snapshot struct {
	ParentalConcerns string             `json:"parental_concerns,omitempty"`
	Feeding          FeedingFindings    `json:"feeding"`
	Stool            StoolFindings      `json:"stool"`
	Sleep            SleepFindings      `json:"sleep"`
	Exam             ExamFindings       `json:"exam"`
	Milestones       []MilestoneFinding `json:"milestones,omitempty"`
	Screening        []ScreeningScore   `json:"screening,omitempty"`
	ExamNotes        string             `json:"exam_notes,omitempty"`
}
