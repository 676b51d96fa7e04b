// Package model holds the domain types of the reservation engine: assets,
// relationship edges, reservations and the interval algebra they share.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of all calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidInterval marks any malformed interval: reversed dates, a
// partial clock window or a window that is empty or out of range.
var ErrInvalidInterval = errors.New("invalid interval")

// ClockTime is a time of day in minutes since midnight, so a SMALLINT
// column holds it and comparisons stay integer. Valid values run 0..1440;
// 1440 is allowed as an exclusive end meaning end of day.
type ClockTime int

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad clock time %q", ErrInvalidInterval, s)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(ct)/60, int(ct)%60)
}

// MarshalJSON renders the clock time as "HH:MM".
func (ct ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.String())
}

// UnmarshalJSON accepts "HH:MM".
func (ct *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: clock time must be a string", ErrInvalidInterval)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// Date truncates t to its UTC calendar date.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Interval is an occupation of one asset in time. Dates are inclusive on
// both ends at day granularity. A nil TimeFrom/TimeTo pair means a
// whole-day reservation that blocks every moment of each covered date;
// when set, the pair bounds a half-open [TimeFrom, TimeTo) window that
// applies to each covered date.
type Interval struct {
	DateFrom time.Time  `json:"date_from"`
	DateTo   time.Time  `json:"date_to"`
	TimeFrom *ClockTime `json:"time_from,omitempty"`
	TimeTo   *ClockTime `json:"time_to,omitempty"`
}

// NewInterval builds a whole-day interval over [from, to].
func NewInterval(from, to time.Time) Interval {
	return Interval{DateFrom: Date(from), DateTo: Date(to)}
}

// NewTimedInterval builds an interval with a clock window on each date.
func NewTimedInterval(from, to time.Time, timeFrom, timeTo ClockTime) Interval {
	return Interval{DateFrom: Date(from), DateTo: Date(to), TimeFrom: &timeFrom, TimeTo: &timeTo}
}

// Timed reports whether the interval carries a clock window.
func (iv Interval) Timed() bool { return iv.TimeFrom != nil && iv.TimeTo != nil }

// Validate checks the interval's internal consistency.
func (iv Interval) Validate() error {
	if iv.DateFrom.IsZero() || iv.DateTo.IsZero() {
		return fmt.Errorf("%w: both dates are required", ErrInvalidInterval)
	}
	if iv.DateFrom.After(iv.DateTo) {
		return fmt.Errorf("%w: date_from after date_to", ErrInvalidInterval)
	}
	if (iv.TimeFrom == nil) != (iv.TimeTo == nil) {
		return fmt.Errorf("%w: time_from and time_to must be set together", ErrInvalidInterval)
	}
	if iv.Timed() {
		if *iv.TimeFrom < 0 || *iv.TimeTo > 24*60 {
			return fmt.Errorf("%w: clock window out of range", ErrInvalidInterval)
		}
		if *iv.TimeFrom >= *iv.TimeTo {
			return fmt.Errorf("%w: clock window must have time_from before time_to", ErrInvalidInterval)
		}
	}
	return nil
}

// Overlaps reports whether two intervals occupy any common moment. Date
// ranges are inclusive; once the dates intersect, a whole-day interval on
// either side blocks everything, and two timed intervals conflict exactly
// when their half-open windows intersect, so touching endpoints are fine.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.DateFrom.After(other.DateTo) || other.DateFrom.After(iv.DateTo) {
		return false
	}
	if !iv.Timed() || !other.Timed() {
		return true
	}
	return *iv.TimeFrom < *other.TimeTo && *other.TimeFrom < *iv.TimeTo
}

// ContainsDate reports whether d falls inside the interval's date range.
func (iv Interval) ContainsDate(d time.Time) bool {
	d = Date(d)
	return !d.Before(iv.DateFrom) && !d.After(iv.DateTo)
}

// ExtendedBy returns a copy with days appended to DateTo. The start date
// and any clock window are untouched.
func (iv Interval) ExtendedBy(days int) Interval {
	out := iv
	out.DateTo = iv.DateTo.AddDate(0, 0, days)
	return out
}

type intervalJSON struct {
	DateFrom string     `json:"date_from"`
	DateTo   string     `json:"date_to"`
	TimeFrom *ClockTime `json:"time_from,omitempty"`
	TimeTo   *ClockTime `json:"time_to,omitempty"`
}

// MarshalJSON renders dates as "YYYY-MM-DD" strings.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{
		DateFrom: iv.DateFrom.Format(DateLayout),
		DateTo:   iv.DateTo.Format(DateLayout),
		TimeFrom: iv.TimeFrom,
		TimeTo:   iv.TimeTo,
	})
}

// UnmarshalJSON parses "YYYY-MM-DD" dates and optional "HH:MM" times.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	from, err := time.Parse(DateLayout, raw.DateFrom)
	if err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidInterval, raw.DateFrom)
	}
	to, err := time.Parse(DateLayout, raw.DateTo)
	if err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidInterval, raw.DateTo)
	}
	iv.DateFrom = Date(from)
	iv.DateTo = Date(to)
	iv.TimeFrom = raw.TimeFrom
	iv.TimeTo = raw.TimeTo
	return nil
}
