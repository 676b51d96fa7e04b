package model

import "time"

// Status is the closed set of reservation states. Keeping it a named type
// (rather than free-form strings) lets transition logic switch exhaustively
// and makes illegal states unrepresentable at the API boundary.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Live reports whether a reservation in this state occupies availability.
// Rejected reservations never block other bookings.
func (s Status) Live() bool { return s == StatusPending || s == StatusApproved }

// CanDecide reports whether an administrative approve/reject is legal.
func (s Status) CanDecide() bool { return s == StatusPending }

// CanEdit reports whether the requester may replace the interval. A
// rejected request can be corrected and resubmitted; an approved one
// cannot be edited, only extended.
func (s Status) CanEdit() bool { return s == StatusPending || s == StatusRejected }

// CanExtend reports whether trailing days may be appended. Only approved
// reservations are extendable; the extension re-enters review as pending.
func (s Status) CanExtend() bool { return s == StatusApproved }

// Reservation is one asset's share of a booking. A cascade booking across
// linked assets creates one row per member asset, all carrying the same
// GroupID, requester, interval and purpose.
//
// Fields:
//
//	ID            – primary key identifier.
//	GroupID       – correlation key shared by all rows of one cascade booking.
//	AssetID       – asset occupied by this row.
//	RequesterID   – user who requested the booking; owns edit/extend.
//	RequesterName – display name captured at request time.
//	Interval      – the booked time span.
//	Purpose       – optional free-text reason supplied by the requester.
//	Status        – lifecycle state (pending, approved, rejected).
//	CreatedAt     – creation timestamp (UTC).
//	UpdatedAt     – last modification timestamp (UTC).
type Reservation struct {
	ID            uint64    `json:"id"`
	GroupID       string    `json:"group_id"`
	AssetID       uint64    `json:"asset_id"`
	RequesterID   uint64    `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	Interval      Interval  `json:"interval"`
	Purpose       string    `json:"purpose,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
