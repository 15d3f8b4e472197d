package refcurve

import "time"

// MetricKind identifies which anthropometric measure a reference table
// describes.
type MetricKind string

const (
	MetricWeight            MetricKind = "weight"
	MetricLength            MetricKind = "length"
	MetricHeadCircumference MetricKind = "head-circumference"
)

// fileAbbrev is the base-name prefix used by the reference table resources
// (e.g. wfa_0_24m_M.csv for weight-for-age, boys, 0-24 months).
func (m MetricKind) fileAbbrev() string {
	switch m {
	case MetricWeight:
		return "wfa"
	case MetricLength:
		return "lfa"
	case MetricHeadCircumference:
		return "hcfa"
	}
	return ""
}

// Valid reports whether m is one of the known metric kinds.
func (m MetricKind) Valid() bool {
	return m.fileAbbrev() != ""
}

// Sex selects the reference population.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is a known sex code.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Point is a single age-anchored curve value. Instant is the patient's
// calendar date corresponding to the table's age-in-months column.
type Point struct {
	Instant time.Time `json:"instant"`
	Value   float64   `json:"value"`
}

// Series is one labeled curve (a percentile or SD band) for one metric and
// sex. Points are sorted ascending by instant.
type Series struct {
	Metric MetricKind `json:"metric"`
	Sex    Sex        `json:"sex"`
	Label  string     `json:"label"`
	Points []Point    `json:"points"`
}

// labelRank is the canonical overlay ordering. Percentile and SD spellings
// of the same band share a rank; ties fall back to alphabetical order.
var labelRank = map[string]int{
	"p3": 0, "-2SD": 0,
	"p15": 1, "-1SD": 1,
	"p50": 2, "0SD": 2,
	"p85": 3, "+1SD": 3,
	"p97": 4, "+2SD": 4,
}

// rankOf returns the canonical rank for a label; unknown labels sort last.
func rankOf(label string) int {
	if r, ok := labelRank[label]; ok {
		return r
	}
	return len(labelRank)
}
