package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// Requester identifies the user a booking is made for. Identity comes from
// the auth collaborator (JWT claims at the HTTP boundary); the engine only
// records it and enforces ownership on edit/extend.
type Requester struct {
	ID   uint64
	Name string
}

// Orchestrator ties the scheduling core together: it resolves cascade
// sets, validates assets, runs conflict checks against the availability
// index and drives guarded atomic commits through the reservation store.
// All methods are safe for concurrent callers; the store's snapshot guard
// decides races, and the orchestrator retries a lost commit once with a
// fresh check before surfacing any error.
type Orchestrator struct {
	assets   AssetStore
	resolver *Resolver
	index    *AvailabilityIndex
	store    ReservationStore

	now        func() time.Time
	newGroupID func() (string, error)
}

// NewOrchestrator wires the orchestrator from its three stores.
func NewOrchestrator(assets AssetStore, rels RelationshipStore, store ReservationStore) *Orchestrator {
	return &Orchestrator{
		assets:     assets,
		resolver:   NewResolver(rels),
		index:      NewAvailabilityIndex(store),
		store:      store,
		// Microsecond precision matches the DATETIME(6) columns, so
		// snapshot tokens agree between freshly created rows and re-reads.
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newGroupID: randomGroupID,
	}
}

// Resolver exposes the linked-asset resolver for UI disclosure of cascade
// sets before a requester confirms.
func (o *Orchestrator) Resolver() *Resolver { return o.resolver }

// Index exposes the availability index for calendar rendering.
func (o *Orchestrator) Index() *AvailabilityIndex { return o.index }

// RequestBooking validates the interval, resolves the cascade set of the
// requested asset, conflict-checks the same candidate interval for every
// member and commits one pending reservation row per member as a single
// group. If any member conflicts, the whole request fails and no rows are
// created. The returned slice holds the created rows with assigned ids.
func (o *Orchestrator) RequestBooking(ctx context.Context, assetID uint64, iv model.Interval, requester Requester, purpose string) ([]model.Reservation, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	members, err := o.resolver.CascadeSet(ctx, assetID)
	if err != nil {
		return nil, err
	}
	for _, id := range members {
		asset, err := o.assets.GetAsset(ctx, id)
		if err != nil {
			return nil, err
		}
		if !asset.Bookable() {
			return nil, fmt.Errorf("%w: asset %d", ErrAssetNotReservable, id)
		}
	}
	group, err := o.tryCreate(ctx, members, iv, requester, purpose)
	if errors.Is(err, ErrCommitRace) {
		// Lost the race between check and commit; re-run the full
		// check-and-commit once. A genuine conflict surfaces as
		// ConflictError here.
		group, err = o.tryCreate(ctx, members, iv, requester, purpose)
	}
	return group, err
}

func (o *Orchestrator) tryCreate(ctx context.Context, members []uint64, iv model.Interval, requester Requester, purpose string) ([]model.Reservation, error) {
	snap, live, err := o.index.SnapshotFor(ctx, members)
	if err != nil {
		return nil, err
	}
	for _, id := range members {
		if blocking := FirstConflict(iv, live[id], nil); blocking != nil {
			return nil, &ConflictError{AssetID: id, Blocking: *blocking}
		}
	}
	groupID, err := o.newGroupID()
	if err != nil {
		return nil, err
	}
	now := o.now()
	group := make([]*model.Reservation, len(members))
	for i, id := range members {
		group[i] = &model.Reservation{
			GroupID:       groupID,
			AssetID:       id,
			RequesterID:   requester.ID,
			RequesterName: requester.Name,
			Interval:      iv,
			Purpose:       purpose,
			Status:        model.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}
	if err := o.store.CreateGroup(ctx, group, snap); err != nil {
		return nil, err
	}
	out := make([]model.Reservation, len(group))
	for i, r := range group {
		out[i] = *r
	}
	return out, nil
}

// EditReservation replaces the interval of a pending or rejected booking
// and resets it to pending. The edit applies to the whole cascade group:
// every member asset is re-checked against the new interval, excluding the
// group's own rows from the scan. Only the requester who created the
// booking may edit it.
func (o *Orchestrator) EditReservation(ctx context.Context, reservationID uint64, requester Requester, iv model.Interval) ([]model.Reservation, error) {
	if err := iv.Validate(); err != nil {
		return nil, err
	}
	res, err := o.store.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.RequesterID != requester.ID {
		return nil, ErrNotOwner
	}
	if !res.Status.CanEdit() {
		return nil, fmt.Errorf("%w: cannot edit %s reservation", ErrIllegalTransition, res.Status)
	}
	return o.replaceGroupInterval(ctx, res.GroupID, iv)
}

// ExtendReservation appends trailing days to an approved booking and
// resets it to pending for re-review. The original start date is
// untouched; only DateTo moves. The re-check excludes the group's own
// current rows so the existing occupation does not conflict with itself.
func (o *Orchestrator) ExtendReservation(ctx context.Context, reservationID uint64, requester Requester, days int) ([]model.Reservation, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: extension must add at least one day", model.ErrInvalidInterval)
	}
	res, err := o.store.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.RequesterID != requester.ID {
		return nil, ErrNotOwner
	}
	if !res.Status.CanExtend() {
		return nil, fmt.Errorf("%w: cannot extend %s reservation", ErrIllegalTransition, res.Status)
	}
	return o.replaceGroupInterval(ctx, res.GroupID, res.Interval.ExtendedBy(days))
}

// replaceGroupInterval re-checks the new interval for every asset in the
// group (excluding the group's own rows) and commits the replacement
// atomically, retrying a lost race once.
func (o *Orchestrator) replaceGroupInterval(ctx context.Context, groupID string, iv model.Interval) ([]model.Reservation, error) {
	err := o.tryReplace(ctx, groupID, iv)
	if errors.Is(err, ErrCommitRace) {
		err = o.tryReplace(ctx, groupID, iv)
	}
	if err != nil {
		return nil, err
	}
	return o.store.GroupByID(ctx, groupID)
}

func (o *Orchestrator) tryReplace(ctx context.Context, groupID string, iv model.Interval) error {
	rows, err := o.store.GroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	exclude := make(map[uint64]bool, len(rows))
	assetIDs := make([]uint64, len(rows))
	for i, r := range rows {
		exclude[r.ID] = true
		assetIDs[i] = r.AssetID
	}
	snap, live, err := o.index.SnapshotFor(ctx, assetIDs)
	if err != nil {
		return err
	}
	for _, id := range assetIDs {
		if blocking := FirstConflict(iv, live[id], exclude); blocking != nil {
			return &ConflictError{AssetID: id, Blocking: *blocking}
		}
	}
	return o.store.UpdateGroupInterval(ctx, groupID, iv, model.StatusPending, snap)
}

// DecideReservation applies an administrative approve or reject to a
// single pending reservation row. Who may invoke it is the caller's
// concern (role middleware at the HTTP boundary); the engine enforces only
// the legality of the transition itself.
func (o *Orchestrator) DecideReservation(ctx context.Context, reservationID uint64, approve bool) (*model.Reservation, error) {
	res, err := o.store.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.CanDecide() {
		return nil, fmt.Errorf("%w: cannot decide %s reservation", ErrIllegalTransition, res.Status)
	}
	next := model.StatusRejected
	if approve {
		next = model.StatusApproved
	}
	if err := o.store.UpdateStatus(ctx, reservationID, next); err != nil {
		return nil, err
	}
	return o.store.GetByID(ctx, reservationID)
}

// randomGroupID produces an opaque correlation key for a cascade booking.
func randomGroupID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
