// Package engine implements the reservation scheduling core: interval
// conflict detection, linked-asset cascades, the booking orchestrator and
// the reservation lifecycle. It is storage-agnostic; persistence is
// supplied through the store interfaces in store.go.
package engine

import (
	"errors"
	"fmt"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// Sentinel errors shared between the engine and its store implementations.
// Handlers translate them into HTTP statuses with errors.Is.
var (
	// ErrAssetNotFound is returned when an asset id has no backing row.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrReservationNotFound is returned when a reservation id has no
	// backing row.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAssetNotReservable rejects bookings on assets whose reservable
	// flag is off or whose inventory status is not bookable.
	ErrAssetNotReservable = errors.New("asset not reservable")

	// ErrNotOwner rejects edit/extend attempts by anyone other than the
	// reservation's requester.
	ErrNotOwner = errors.New("reservation not owned by requester")

	// ErrIllegalTransition rejects lifecycle moves the state machine does
	// not allow, such as approving a non-pending reservation.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrCommitRace is returned by a store when the live reservation set
	// changed between the conflict check and the commit. The orchestrator
	// retries the full check-and-commit once before surfacing it.
	ErrCommitRace = errors.New("commit lost race with concurrent booking")
)

// ConflictError reports that a candidate interval collides with an
// existing live reservation. AssetID names the cascade member that
// blocked the request, which is not necessarily the asset the requester
// asked for.
type ConflictError struct {
	AssetID  uint64
	Blocking model.Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("asset %d already reserved %s..%s by reservation %d",
		e.AssetID,
		e.Blocking.Interval.DateFrom.Format(model.DateLayout),
		e.Blocking.Interval.DateTo.Format(model.DateLayout),
		e.Blocking.ID)
}
