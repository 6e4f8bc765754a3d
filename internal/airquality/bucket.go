package airquality

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownFrequency is returned for an unsupported time-bucket granularity.
var ErrUnknownFrequency = errors.New("unknown frequency")

// Frequency is the time-bucket granularity of a series.
type Frequency string

const (
	Hourly  Frequency = "hourly"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Frequencies returns the supported granularities, finest first.
func Frequencies() []Frequency {
	return []Frequency{Hourly, Daily, Weekly, Monthly, Yearly}
}

// ParseFrequency resolves a granularity name case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Frequencies() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

// Bucket returns the label of the bucket holding t. Hourly and daily buckets are
// labelled by their start; weekly buckets by the Sunday that closes the week, monthly
// buckets by the last day of the month and yearly buckets by December 31st.
// Names are matched case-insensitively; an unknown frequency leaves t unchanged.
func (f Frequency) Bucket(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch Frequency(strings.ToLower(strings.TrimSpace(string(f)))) {
	case Hourly:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case Daily:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Weekly:
		offset := (7 - int(t.Weekday())) % 7
		return time.Date(y, m, d+offset, 0, 0, 0, 0, loc)
	case Monthly:
		return time.Date(y, m+1, 0, 0, 0, 0, 0, loc)
	case Yearly:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	}
	return t
}
