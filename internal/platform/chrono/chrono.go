// Package chrono normalizes the timestamp text found in growth record
// sources into a single instant representation. The three record sources
// evolved independently and serialize their timestamps differently, so the
// parser tolerates every format observed in production data.
package chrono

import (
	"errors"
	"time"
)

// ErrUnparsable is returned when a timestamp matches none of the known
// formats. Callers exclude the record from the timeline; this is never a
// fatal condition.
var ErrUnparsable = errors.New("chrono: unparsable timestamp")

// instantFormats are tried in order. Date-only values parse as midnight UTC
// so they order deterministically against full date-times.
var instantFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseInstant parses timestamp text from any of the growth record sources.
// It returns the first successful match; no timezone conversion is applied
// beyond what the input itself encodes.
func ParseInstant(text string) (time.Time, error) {
	for _, layout := range instantFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsable
}
