// Package store provides an in-memory implementation of the engine store
// interfaces. It backs the test suite and local development; production
// uses the MySQL repositories. A single mutex serializes every commit,
// which is exactly the atomicity the guarded-commit contract requires.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
)

// Memory holds assets, relationship edges and reservations behind one
// mutex. It implements engine.AssetStore, engine.RelationshipStore and
// engine.ReservationStore.
type Memory struct {
	mu           sync.Mutex
	assets       map[uint64]model.Asset
	edges        []model.AssetRelationship
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		assets:       make(map[uint64]model.Asset),
		reservations: make(map[uint64]*model.Reservation),
		nextID:       1,
	}
}

// AddAsset seeds an asset.
func (m *Memory) AddAsset(a model.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
}

// Link seeds an undirected relationship edge between two assets.
func (m *Memory) Link(assetID, relatedID uint64, kind model.RelationKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, model.AssetRelationship{
		ID:        uint64(len(m.edges) + 1),
		AssetID:   assetID,
		RelatedID: relatedID,
		Kind:      kind,
	})
}

// GetAsset implements engine.AssetStore.
func (m *Memory) GetAsset(ctx context.Context, id uint64) (*model.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, engine.ErrAssetNotFound
	}
	return &a, nil
}

// EdgesFor implements engine.RelationshipStore.
func (m *Memory) EdgesFor(ctx context.Context, assetID uint64) ([]model.AssetRelationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AssetRelationship
	for _, e := range m.edges {
		if e.AssetID == assetID || e.RelatedID == assetID {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetByID implements engine.ReservationStore.
func (m *Memory) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, engine.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

// GroupByID implements engine.ReservationStore.
func (m *Memory) GroupByID(ctx context.Context, groupID string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.GroupID == groupID {
			out = append(out, *r)
		}
	}
	if len(out) == 0 {
		return nil, engine.ErrReservationNotFound
	}
	sortByID(out)
	return out, nil
}

// LiveByAsset implements engine.ReservationStore.
func (m *Memory) LiveByAsset(ctx context.Context, assetID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveByAssetLocked(assetID), nil
}

func (m *Memory) liveByAssetLocked(assetID uint64) []model.Reservation {
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.AssetID == assetID && r.Status.Live() {
			out = append(out, *r)
		}
	}
	sortByID(out)
	return out
}

// LiveInRange implements engine.ReservationStore.
func (m *Memory) LiveInRange(ctx context.Context, assetIDs []uint64, from, to time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uint64]bool, len(assetIDs))
	for _, id := range assetIDs {
		wanted[id] = true
	}
	var out []model.Reservation
	for _, r := range m.reservations {
		if !wanted[r.AssetID] || !r.Status.Live() {
			continue
		}
		if r.Interval.DateFrom.After(to) || from.After(r.Interval.DateTo) {
			continue
		}
		out = append(out, *r)
	}
	sortByID(out)
	return out, nil
}

// ListByRequester implements engine.ReservationStore.
func (m *Memory) ListByRequester(ctx context.Context, requesterID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.RequesterID == requesterID {
			out = append(out, *r)
		}
	}
	sortByID(out)
	return out, nil
}

// ListByAsset implements engine.ReservationStore.
func (m *Memory) ListByAsset(ctx context.Context, assetID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.AssetID == assetID {
			out = append(out, *r)
		}
	}
	sortByID(out)
	return out, nil
}

// CreateGroup implements the guarded atomic group insert. Under the lock
// it compares the current live set of every member asset against the
// snapshot taken at check time; any drift means another commit won the
// race and the whole insert is abandoned with ErrCommitRace.
func (m *Memory) CreateGroup(ctx context.Context, group []*model.Reservation, observed engine.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range group {
		if !observed.Matches(r.AssetID, tokensOf(m.liveByAssetLocked(r.AssetID))) {
			return engine.ErrCommitRace
		}
	}
	for _, r := range group {
		r.ID = m.nextID
		m.nextID++
		cp := *r
		m.reservations[r.ID] = &cp
	}
	return nil
}

// UpdateGroupInterval implements the guarded atomic group update.
func (m *Memory) UpdateGroupInterval(ctx context.Context, groupID string, iv model.Interval, status model.Status, observed engine.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []*model.Reservation
	for _, r := range m.reservations {
		if r.GroupID == groupID {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return engine.ErrReservationNotFound
	}
	for _, r := range rows {
		if !observed.Matches(r.AssetID, tokensOf(m.liveByAssetLocked(r.AssetID))) {
			return engine.ErrCommitRace
		}
	}
	now := time.Now().UTC()
	for _, r := range rows {
		r.Interval = iv
		r.Status = status
		r.UpdatedAt = now
	}
	return nil
}

// UpdateStatus implements the administrative decision write. Only pending
// rows move; a row that left pending concurrently fails the transition.
func (m *Memory) UpdateStatus(ctx context.Context, id uint64, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return engine.ErrReservationNotFound
	}
	if r.Status != model.StatusPending {
		return engine.ErrIllegalTransition
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func tokensOf(resvs []model.Reservation) []string {
	tokens := make([]string, len(resvs))
	for i, r := range resvs {
		tokens[i] = engine.SnapshotToken(r)
	}
	return tokens
}

func sortByID(resvs []model.Reservation) {
	sort.Slice(resvs, func(i, j int) bool { return resvs[i].ID < resvs[j].ID })
}
