package engine

import (
	"context"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// FirstConflict scans existing reservations in order and returns the first
// whose interval overlaps the candidate, or nil when the candidate fits.
// Reservations whose ids appear in exclude are skipped; edit and extend
// re-checks use that to ignore the rows being replaced. The scan is pure
// and O(n) in the asset's live reservation count.
func FirstConflict(candidate model.Interval, existing []model.Reservation, exclude map[uint64]bool) *model.Reservation {
	for i := range existing {
		if exclude[existing[i].ID] {
			continue
		}
		if candidate.Overlaps(existing[i].Interval) {
			return &existing[i]
		}
	}
	return nil
}

// Check runs the conflict scan for a single asset against the availability
// index. It returns nil when the slot is free and a *ConflictError naming
// the blocking reservation otherwise.
func Check(ctx context.Context, ix *AvailabilityIndex, assetID uint64, candidate model.Interval) error {
	live, err := ix.IntervalsFor(ctx, assetID)
	if err != nil {
		return err
	}
	if blocking := FirstConflict(candidate, live, nil); blocking != nil {
		return &ConflictError{AssetID: assetID, Blocking: *blocking}
	}
	return nil
}
