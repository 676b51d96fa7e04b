package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// DayBuckets maps a "YYYY-MM-DD" date to the reservations touching that
// date. A reservation spanning several days appears in every bucket its
// date range covers.
type DayBuckets map[string][]model.Reservation

// Aggregator buckets the availability index into day, week and month views
// for presentation collaborators. It carries no business rule beyond range
// inclusion.
type Aggregator struct {
	store ReservationStore
}

// NewAggregator builds an Aggregator over the reservation store.
func NewAggregator(store ReservationStore) *Aggregator {
	return &Aggregator{store: store}
}

// BucketByDay returns, for each date in [from, to], the live reservations
// of the given assets that cover that date. Dates with no reservations are
// omitted from the map.
func (a *Aggregator) BucketByDay(ctx context.Context, assetIDs []uint64, from, to time.Time) (DayBuckets, error) {
	from, to = model.Date(from), model.Date(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: range start after range end", model.ErrInvalidInterval)
	}
	resvs, err := a.store.LiveInRange(ctx, assetIDs, from, to)
	if err != nil {
		return nil, err
	}
	buckets := make(DayBuckets)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, r := range resvs {
			if r.Interval.ContainsDate(d) {
				key := d.Format(model.DateLayout)
				buckets[key] = append(buckets[key], r)
			}
		}
	}
	return buckets, nil
}

// BucketByWeek groups the per-day buckets by the Monday of their week. The
// outer key is the week start formatted as "YYYY-MM-DD".
func (a *Aggregator) BucketByWeek(ctx context.Context, assetIDs []uint64, from, to time.Time) (map[string]DayBuckets, error) {
	days, err := a.BucketByDay(ctx, assetIDs, from, to)
	if err != nil {
		return nil, err
	}
	weeks := make(map[string]DayBuckets)
	for key, resvs := range days {
		d, err := time.Parse(model.DateLayout, key)
		if err != nil {
			return nil, err
		}
		wk := weekStart(d).Format(model.DateLayout)
		if weeks[wk] == nil {
			weeks[wk] = make(DayBuckets)
		}
		weeks[wk][key] = resvs
	}
	return weeks, nil
}

// BucketByMonth groups the per-day buckets by calendar month. The outer
// key is formatted as "YYYY-MM".
func (a *Aggregator) BucketByMonth(ctx context.Context, assetIDs []uint64, from, to time.Time) (map[string]DayBuckets, error) {
	days, err := a.BucketByDay(ctx, assetIDs, from, to)
	if err != nil {
		return nil, err
	}
	months := make(map[string]DayBuckets)
	for key, resvs := range days {
		mo := key[:7]
		if months[mo] == nil {
			months[mo] = make(DayBuckets)
		}
		months[mo][key] = resvs
	}
	return months, nil
}

// weekStart returns the Monday of d's week.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
