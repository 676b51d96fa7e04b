package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// AssetStore looks up the booking-relevant slice of an asset. The
// production implementation reads MySQL through a TTL cache; tests use the
// in-memory store.
type AssetStore interface {
	GetAsset(ctx context.Context, id uint64) (*model.Asset, error)
}

// RelationshipStore returns the relationship edges touching an asset, in
// either direction.
type RelationshipStore interface {
	EdgesFor(ctx context.Context, assetID uint64) ([]model.AssetRelationship, error)
}

// Snapshot records, per asset, a token for every live reservation observed
// during a conflict check. Guarded store writes compare it against the
// current live set under lock and fail with ErrCommitRace when the two
// differ, which closes the check-then-act window without the engine
// holding locks across its own logic. Tokens combine id and updated_at so
// a concurrent edit of an existing row (same id, new interval) is caught
// as well as an insert or delete.
type Snapshot map[uint64][]string

// SnapshotToken derives the guard token for one reservation row.
func SnapshotToken(r model.Reservation) string {
	return fmt.Sprintf("%d@%d", r.ID, r.UpdatedAt.UnixNano())
}

// Matches reports whether liveTokens equals the snapshot entry for
// assetID. Both sides must be in id order; store implementations own that.
func (s Snapshot) Matches(assetID uint64, liveTokens []string) bool {
	observed := s[assetID]
	if len(observed) != len(liveTokens) {
		return false
	}
	for i := range observed {
		if observed[i] != liveTokens[i] {
			return false
		}
	}
	return true
}

// ReservationStore persists reservations. CreateGroup and
// UpdateGroupInterval are guarded atomic commits: each must verify the
// snapshot against the current live set and either apply every change or
// none, leaving zero partial state visible to concurrent readers.
type ReservationStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GroupByID(ctx context.Context, groupID string) ([]model.Reservation, error)

	// LiveByAsset returns the pending and approved reservations for one
	// asset, ordered by id.
	LiveByAsset(ctx context.Context, assetID uint64) ([]model.Reservation, error)

	// LiveInRange returns live reservations for the given assets whose
	// date ranges intersect [from, to].
	LiveInRange(ctx context.Context, assetIDs []uint64, from, to time.Time) ([]model.Reservation, error)

	ListByRequester(ctx context.Context, requesterID uint64) ([]model.Reservation, error)
	ListByAsset(ctx context.Context, assetID uint64) ([]model.Reservation, error)

	// CreateGroup inserts all rows of a cascade booking atomically,
	// assigning ids, or fails with ErrCommitRace when any member asset's
	// live set no longer matches the snapshot.
	CreateGroup(ctx context.Context, group []*model.Reservation, observed Snapshot) error

	// UpdateGroupInterval replaces the interval and status of every row in
	// a group atomically under the same snapshot guard.
	UpdateGroupInterval(ctx context.Context, groupID string, iv model.Interval, status model.Status, observed Snapshot) error

	// UpdateStatus applies an administrative decision. Implementations
	// must only move pending rows and return ErrIllegalTransition when the
	// row left pending concurrently.
	UpdateStatus(ctx context.Context, id uint64, status model.Status) error
}
