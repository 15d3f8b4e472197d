package refcurve

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"math"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// daysPerMonth is the average Gregorian month length. The fractional part of
// an age-in-months value is converted to days with this factor; the whole
// part uses calendar month arithmetic. Patient observations are plotted on a
// calendar axis, so reference curves must be anchored the same way or the
// overlay drifts visibly.
const daysPerMonth = 30.437

// subLocations are the directory candidates tried when resolving a
// reference table, in order.
var subLocations = []string{".", "reference", "data/reference", "who"}

// ageRanges are the base-name age-range segments tried per metric.
var ageRanges = []string{"0_24m", "0_60m"}

// Loader resolves and parses reference curve tables from a file system.
// The table layout is only loosely specified, so delimiter, age column and
// value columns are all detected from the header row.
type Loader struct {
	fsys   fs.FS
	logger zerolog.Logger
}

func NewLoader(fsys fs.FS, logger zerolog.Logger) *Loader {
	return &Loader{fsys: fsys, logger: logger}
}

// Load returns the overlay series for one metric and sex, anchored to the
// patient's birth date. A missing or unreadable resource yields an empty
// set: the caller renders "reference data unavailable", never an error.
func (l *Loader) Load(metric MetricKind, sex Sex, birthDate time.Time) []Series {
	data, name := l.resolve(metric, sex)
	if data == nil {
		l.logger.Warn().Str("metric", string(metric)).Str("sex", string(sex)).
			Msg("reference curve resource not found")
		return []Series{}
	}

	series, err := parseTable(data, metric, sex, birthDate)
	if err != nil {
		l.logger.Warn().Err(err).Str("resource", name).
			Msg("reference curve resource unreadable")
		return []Series{}
	}
	return series
}

// resolve tries base-name, sex-suffix casing and sub-location combinations
// until one reads successfully.
func (l *Loader) resolve(metric MetricKind, sex Sex) ([]byte, string) {
	suffixes := []string{string(sex), strings.ToLower(string(sex)), strings.ToUpper(string(sex))}
	for _, loc := range subLocations {
		for _, ageRange := range ageRanges {
			for _, suffix := range suffixes {
				name := path.Join(loc, fmt.Sprintf("%s_%s_%s.csv", metric.fileAbbrev(), ageRange, suffix))
				data, err := fs.ReadFile(l.fsys, name)
				if err == nil {
					return data, name
				}
			}
		}
	}
	return nil, ""
}

func parseTable(data []byte, metric MetricKind, sex Sex, birthDate time.Time) ([]Series, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("empty resource")
	}

	delimiter := ','
	if strings.Contains(lines[0], ";") {
		delimiter = ';'
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := records[0]
	ageIdx := locateAgeColumn(header)

	// Column index -> canonical label.
	labels := make(map[int]string)
	for i, h := range header {
		if i == ageIdx {
			continue
		}
		if label, ok := classifyHeader(h); ok {
			labels[i] = label
		}
	}
	// Legacy single-value tables carry an unlabeled median in column 1.
	if len(labels) == 0 && len(header) > 1 {
		labels[1] = "p50"
	}

	points := make(map[string][]Point)
	for _, row := range records[1:] {
		if ageIdx >= len(row) {
			continue
		}
		months, err := parseNumber(row[ageIdx])
		if err != nil {
			continue
		}
		instant := ageToInstant(birthDate, months)
		for idx, label := range labels {
			if idx >= len(row) {
				continue
			}
			value, err := parseNumber(row[idx])
			if err != nil {
				continue
			}
			points[label] = append(points[label], Point{Instant: instant, Value: value})
		}
	}

	var series []Series
	for label, pts := range points {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Instant.Before(pts[j].Instant) })
		series = append(series, Series{Metric: metric, Sex: sex, Label: label, Points: pts})
	}
	sort.SliceStable(series, func(i, j int) bool {
		ri, rj := rankOf(series[i].Label), rankOf(series[j].Label)
		if ri != rj {
			return ri < rj
		}
		return series[i].Label < series[j].Label
	})
	if series == nil {
		series = []Series{}
	}
	return series, nil
}

// ageToInstant anchors an age-in-months value to the patient's calendar
// axis: whole months via calendar arithmetic, the fraction as rounded days.
func ageToInstant(birthDate time.Time, months float64) time.Time {
	whole := int(months)
	frac := months - float64(whole)
	return birthDate.AddDate(0, whole, 0).AddDate(0, 0, int(math.Round(frac*daysPerMonth)))
}

// locateAgeColumn finds the age column by header name, defaulting to the
// first column.
func locateAgeColumn(header []string) int {
	for i, h := range header {
		n := strings.ToLower(strings.TrimSpace(h))
		if strings.Contains(n, "month") || n == "age" || n == "age (months)" || n == "months" {
			return i
		}
	}
	return 0
}

var sdPattern = regexp.MustCompile(`^(?:sd|z)([+-]?\d)$|^([+-]?\d)(?:sd|z)$`)

// classifyHeader maps the header-name synonyms observed across reference
// table vintages to canonical series labels. Unrecognized headers are
// ignored by the loader.
func classifyHeader(h string) (string, bool) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "")
	switch n {
	case "m", "median", "p50", "p0.50":
		return "p50", true
	}
	for _, p := range []string{"p97", "p85", "p15", "p3"} {
		if strings.Contains(n, p) {
			return p, true
		}
	}
	if m := sdPattern.FindStringSubmatch(n); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		v, err := strconv.Atoi(digits)
		if err != nil || v < -2 || v > 2 {
			return "", false
		}
		switch {
		case v == 0:
			return "0SD", true
		case v > 0:
			return fmt.Sprintf("+%dSD", v), true
		default:
			return fmt.Sprintf("%dSD", v), true
		}
	}
	return "", false
}

// parseNumber parses a numeric cell, tolerating comma decimal separators
// found in semicolon-delimited exports.
func parseNumber(cell string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(cell), ",", "."), 64)
}
