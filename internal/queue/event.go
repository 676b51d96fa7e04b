// Package queue defines the messages published to the broker after a
// reservation changes state, plus the background consumer. Notification
// delivery is an external collaborator that subscribes to these events;
// the booking engine only publishes.
package queue

import "github.com/ravshanbk/asset-reservation/internal/model"

// Event types carried in ReservationEvent.Type.
const (
	EventRequested = "reservation.requested"
	EventEdited    = "reservation.edited"
	EventExtended  = "reservation.extended"
	EventApproved  = "reservation.approved"
	EventRejected  = "reservation.rejected"
)

// ReservationEvent describes one lifecycle transition of a booking group.
// It carries enough context for a notifier to render a message without
// querying the primary database.
type ReservationEvent struct {
	Type           string         `json:"type"`
	GroupID        string         `json:"group_id"`
	ReservationIDs []uint64       `json:"reservation_ids"`
	AssetIDs       []uint64       `json:"asset_ids"`
	RequesterID    uint64         `json:"requester_id"`
	RequesterName  string         `json:"requester_name"`
	Interval       model.Interval `json:"interval"`
	Status         model.Status   `json:"status"`
	Purpose        string         `json:"purpose,omitempty"`
	OccurredAt     string         `json:"occurred_at"`
}

// FromGroup builds an event from the rows of one cascade group. The rows
// share interval, requester and status, so the first row is canonical.
func FromGroup(eventType string, group []model.Reservation) ReservationEvent {
	ev := ReservationEvent{Type: eventType}
	if len(group) == 0 {
		return ev
	}
	first := group[0]
	ev.GroupID = first.GroupID
	ev.RequesterID = first.RequesterID
	ev.RequesterName = first.RequesterName
	ev.Interval = first.Interval
	ev.Status = first.Status
	ev.Purpose = first.Purpose
	for _, r := range group {
		ev.ReservationIDs = append(ev.ReservationIDs, r.ID)
		ev.AssetIDs = append(ev.AssetIDs, r.AssetID)
	}
	return ev
}
