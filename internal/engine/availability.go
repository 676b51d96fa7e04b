package engine

import (
	"context"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// AvailabilityIndex is the read-only view of live (pending or approved)
// reservations per asset. It is derived from the reservation store on
// every call rather than materialized; per-asset reservation volume is
// small enough that a linear scan is the whole index.
type AvailabilityIndex struct {
	store ReservationStore
}

// NewAvailabilityIndex wraps a reservation store in the read-only view.
func NewAvailabilityIndex(store ReservationStore) *AvailabilityIndex {
	return &AvailabilityIndex{store: store}
}

// IntervalsFor returns the live reservations occupying the asset, ordered
// by id. Rejected and superseded reservations never appear.
func (ix *AvailabilityIndex) IntervalsFor(ctx context.Context, assetID uint64) ([]model.Reservation, error) {
	return ix.store.LiveByAsset(ctx, assetID)
}

// IntervalsInRange returns the live reservations for the asset whose date
// ranges intersect [from, to]. The calendar aggregator builds its buckets
// from this.
func (ix *AvailabilityIndex) IntervalsInRange(ctx context.Context, assetID uint64, from, to time.Time) ([]model.Reservation, error) {
	return ix.store.LiveInRange(ctx, []uint64{assetID}, model.Date(from), model.Date(to))
}

// SnapshotFor captures a guard token per live reservation for each asset,
// to be handed to a guarded store commit. Token order follows LiveByAsset,
// which orders by id.
func (ix *AvailabilityIndex) SnapshotFor(ctx context.Context, assetIDs []uint64) (Snapshot, map[uint64][]model.Reservation, error) {
	snap := make(Snapshot, len(assetIDs))
	live := make(map[uint64][]model.Reservation, len(assetIDs))
	for _, id := range assetIDs {
		resvs, err := ix.store.LiveByAsset(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		tokens := make([]string, len(resvs))
		for i, r := range resvs {
			tokens[i] = SnapshotToken(r)
		}
		snap[id] = tokens
		live[id] = resvs
	}
	return snap, live, nil
}
