package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) ClockTime { return ClockTime(h*60 + m) }

func TestIntervalValidate(t *testing.T) {
	from := clock(9, 0)
	to := clock(11, 0)
	cases := []struct {
		name string
		iv   Interval
		ok   bool
	}{
		{"whole day single date", NewInterval(date(2024, 6, 10), date(2024, 6, 10)), true},
		{"whole day range", NewInterval(date(2024, 6, 10), date(2024, 6, 12)), true},
		{"timed", NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), from, to), true},
		{"reversed dates", NewInterval(date(2024, 6, 12), date(2024, 6, 10)), false},
		{"missing dates", Interval{}, false},
		{"only time_from", Interval{DateFrom: date(2024, 6, 10), DateTo: date(2024, 6, 10), TimeFrom: &from}, false},
		{"only time_to", Interval{DateFrom: date(2024, 6, 10), DateTo: date(2024, 6, 10), TimeTo: &to}, false},
		{"zero-length window", NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), from, from), false},
		{"reversed window", NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), to, from), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.iv.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalidInterval) {
					t.Fatalf("expected ErrInvalidInterval, got %v", err)
				}
			}
		})
	}
}

func TestOverlapsDateGranularity(t *testing.T) {
	a := NewInterval(date(2024, 6, 10), date(2024, 6, 12))
	cases := []struct {
		name string
		b    Interval
		want bool
	}{
		{"disjoint before", NewInterval(date(2024, 6, 7), date(2024, 6, 9)), false},
		{"disjoint after", NewInterval(date(2024, 6, 13), date(2024, 6, 15)), false},
		{"touching start date", NewInterval(date(2024, 6, 8), date(2024, 6, 10)), true},
		{"contained", NewInterval(date(2024, 6, 11), date(2024, 6, 11)), true},
		{"covering", NewInterval(date(2024, 6, 1), date(2024, 6, 30)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOverlapsWholeDayBlocksTimed(t *testing.T) {
	wholeDay := NewInterval(date(2024, 6, 10), date(2024, 6, 12))
	timed := NewTimedInterval(date(2024, 6, 11), date(2024, 6, 11), clock(9, 0), clock(11, 0))
	if !wholeDay.Overlaps(timed) {
		t.Fatal("whole-day interval must block any timed interval on a shared date")
	}
	if !timed.Overlaps(wholeDay) {
		t.Fatal("overlap must be symmetric")
	}
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	morning := NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), clock(9, 0), clock(12, 0))
	afternoon := NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), clock(12, 0), clock(15, 0))
	if morning.Overlaps(afternoon) || afternoon.Overlaps(morning) {
		t.Fatal("touching clock endpoints must not overlap")
	}
	overlapping := NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), clock(11, 59), clock(15, 0))
	if !morning.Overlaps(overlapping) {
		t.Fatal("one-minute overlap must conflict")
	}
}

func TestOverlapsSymmetryAndReflexivity(t *testing.T) {
	intervals := []Interval{
		NewInterval(date(2024, 6, 10), date(2024, 6, 12)),
		NewTimedInterval(date(2024, 6, 10), date(2024, 6, 10), clock(9, 0), clock(11, 0)),
		NewTimedInterval(date(2024, 6, 11), date(2024, 6, 13), clock(14, 0), clock(16, 0)),
		NewInterval(date(2024, 7, 1), date(2024, 7, 1)),
	}
	for i, a := range intervals {
		if !a.Overlaps(a) {
			t.Errorf("interval %d must overlap itself", i)
		}
		for j, b := range intervals {
			if a.Overlaps(b) != b.Overlaps(a) {
				t.Errorf("symmetry violated between %d and %d", i, j)
			}
		}
	}
}

func TestExtendedBy(t *testing.T) {
	iv := NewInterval(date(2024, 9, 1), date(2024, 9, 5))
	got := iv.ExtendedBy(3)
	if !got.DateFrom.Equal(date(2024, 9, 1)) {
		t.Fatalf("start date must not move, got %v", got.DateFrom)
	}
	if !got.DateTo.Equal(date(2024, 9, 8)) {
		t.Fatalf("DateTo = %v, want 2024-09-08", got.DateTo)
	}
}

func TestIntervalJSONRoundTrip(t *testing.T) {
	iv := NewTimedInterval(date(2024, 6, 10), date(2024, 6, 11), clock(9, 30), clock(17, 0))
	raw, err := json.Marshal(iv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Interval
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.DateFrom.Equal(iv.DateFrom) || !back.DateTo.Equal(iv.DateTo) {
		t.Fatalf("dates changed: %v", back)
	}
	if !back.Timed() || *back.TimeFrom != *iv.TimeFrom || *back.TimeTo != *iv.TimeTo {
		t.Fatalf("clock window changed: %v", back)
	}
}

func TestIntervalJSONRejectsBadDate(t *testing.T) {
	var iv Interval
	err := json.Unmarshal([]byte(`{"date_from":"June 10","date_to":"2024-06-11"}`), &iv)
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}
