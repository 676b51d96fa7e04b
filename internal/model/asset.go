package model

// AssetStatus mirrors the inventory status column of the assets table.
// Only assets in AssetAvailable may receive new bookings; the other states
// exist so the booking engine can refuse them with a clear reason.
type AssetStatus string

const (
	AssetAvailable AssetStatus = "available"
	AssetInRepair  AssetStatus = "in_repair"
	AssetRetired   AssetStatus = "retired"
	AssetLost      AssetStatus = "lost"
)

// Asset is the slice of the externally managed asset entity that the
// booking engine needs: identity plus the two fields that gate
// reservability. Inventory CRUD lives in a separate system.
type Asset struct {
	ID         uint64      `json:"id"`
	Name       string      `json:"name"`
	Reservable bool        `json:"reservable"`
	Status     AssetStatus `json:"status"`
}

// Bookable reports whether the asset may receive a new reservation.
func (a Asset) Bookable() bool {
	return a.Reservable && a.Status == AssetAvailable
}
