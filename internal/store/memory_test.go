package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pending(groupID string, assetID uint64, iv model.Interval) *model.Reservation {
	now := time.Now().UTC()
	return &model.Reservation{
		GroupID:   groupID,
		AssetID:   assetID,
		Interval:  iv,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func snapshotFor(t *testing.T, m *Memory, assetIDs ...uint64) engine.Snapshot {
	t.Helper()
	snap, _, err := engine.NewAvailabilityIndex(m).SnapshotFor(context.Background(), assetIDs)
	if err != nil {
		t.Fatalf("SnapshotFor: %v", err)
	}
	return snap
}

func TestCreateGroupAssignsIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	group := []*model.Reservation{
		pending("g1", 1, model.NewInterval(day(2024, 6, 10), day(2024, 6, 12))),
		pending("g1", 2, model.NewInterval(day(2024, 6, 10), day(2024, 6, 12))),
	}
	if err := m.CreateGroup(ctx, group, snapshotFor(t, m, 1, 2)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if group[0].ID == 0 || group[1].ID == 0 || group[0].ID == group[1].ID {
		t.Fatalf("rows must get distinct assigned ids: %d, %d", group[0].ID, group[1].ID)
	}
	rows, err := m.GroupByID(ctx, "g1")
	if err != nil {
		t.Fatalf("GroupByID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestCreateGroupRejectsStaleSnapshot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	iv := model.NewInterval(day(2024, 6, 10), day(2024, 6, 12))

	// Snapshot taken while the asset is empty.
	stale := snapshotFor(t, m, 1)

	// Another commit lands in between.
	if err := m.CreateGroup(ctx, []*model.Reservation{pending("winner", 1, iv)}, snapshotFor(t, m, 1)); err != nil {
		t.Fatalf("winner commit: %v", err)
	}

	err := m.CreateGroup(ctx, []*model.Reservation{pending("loser", 1, iv)}, stale)
	if !errors.Is(err, engine.ErrCommitRace) {
		t.Fatalf("expected ErrCommitRace, got %v", err)
	}
	if _, err := m.GroupByID(ctx, "loser"); !errors.Is(err, engine.ErrReservationNotFound) {
		t.Fatal("losing group must not be persisted")
	}
}

func TestLiveByAssetExcludesRejected(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	r := pending("g1", 1, model.NewInterval(day(2024, 6, 10), day(2024, 6, 12)))
	if err := m.CreateGroup(ctx, []*model.Reservation{r}, snapshotFor(t, m, 1)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := m.UpdateStatus(ctx, r.ID, model.StatusRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	live, err := m.LiveByAsset(ctx, 1)
	if err != nil {
		t.Fatalf("LiveByAsset: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("rejected row must not be live, got %d", len(live))
	}
	all, _ := m.ListByAsset(ctx, 1)
	if len(all) != 1 {
		t.Fatalf("rejected row must still exist in history, got %d", len(all))
	}
}

func TestUpdateGroupIntervalGuardSeesStatusDrift(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	r := pending("g1", 1, model.NewInterval(day(2024, 6, 10), day(2024, 6, 12)))
	if err := m.CreateGroup(ctx, []*model.Reservation{r}, snapshotFor(t, m, 1)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	stale := snapshotFor(t, m, 1)

	// An approval changes the row's updated_at, so its guard token drifts.
	if err := m.UpdateStatus(ctx, r.ID, model.StatusApproved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	err := m.UpdateGroupInterval(ctx, "g1", model.NewInterval(day(2024, 6, 15), day(2024, 6, 16)), model.StatusPending, stale)
	if !errors.Is(err, engine.ErrCommitRace) {
		t.Fatalf("expected ErrCommitRace, got %v", err)
	}
}

func TestUpdateGroupIntervalRewritesAllRows(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	iv := model.NewInterval(day(2024, 6, 10), day(2024, 6, 12))
	group := []*model.Reservation{pending("g1", 1, iv), pending("g1", 2, iv)}
	if err := m.CreateGroup(ctx, group, snapshotFor(t, m, 1, 2)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	next := model.NewInterval(day(2024, 6, 20), day(2024, 6, 21))
	if err := m.UpdateGroupInterval(ctx, "g1", next, model.StatusPending, snapshotFor(t, m, 1, 2)); err != nil {
		t.Fatalf("UpdateGroupInterval: %v", err)
	}
	rows, _ := m.GroupByID(ctx, "g1")
	for _, r := range rows {
		if !r.Interval.DateFrom.Equal(next.DateFrom) || !r.Interval.DateTo.Equal(next.DateTo) {
			t.Fatalf("row %d kept old interval: %+v", r.ID, r.Interval)
		}
	}
}

func TestUpdateStatusOnlyMovesPendingRows(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	r := pending("g1", 1, model.NewInterval(day(2024, 6, 10), day(2024, 6, 12)))
	if err := m.CreateGroup(ctx, []*model.Reservation{r}, snapshotFor(t, m, 1)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := m.UpdateStatus(ctx, r.ID, model.StatusApproved); err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if err := m.UpdateStatus(ctx, r.ID, model.StatusRejected); !errors.Is(err, engine.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if err := m.UpdateStatus(ctx, 999, model.StatusApproved); !errors.Is(err, engine.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestLiveInRangeFiltersByDateAndAsset(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	rows := []*model.Reservation{
		pending("g1", 1, model.NewInterval(day(2024, 6, 10), day(2024, 6, 12))),
		pending("g2", 1, model.NewInterval(day(2024, 7, 1), day(2024, 7, 2))),
		pending("g3", 2, model.NewInterval(day(2024, 6, 11), day(2024, 6, 11))),
	}
	for _, r := range rows {
		if err := m.CreateGroup(ctx, []*model.Reservation{r}, snapshotFor(t, m, r.AssetID)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	got, err := m.LiveInRange(ctx, []uint64{1}, day(2024, 6, 1), day(2024, 6, 30))
	if err != nil {
		t.Fatalf("LiveInRange: %v", err)
	}
	if len(got) != 1 || got[0].GroupID != "g1" {
		t.Fatalf("want only g1 in June for asset 1, got %+v", got)
	}
}
