package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
)

const tsLayout = "2006-01-02 15:04:05.000000"

// ReservationRepo persists reservations and implements
// engine.ReservationStore. Guarded writes lock the live rows of the
// affected assets with SELECT ... FOR UPDATE before comparing the
// snapshot; under InnoDB the range scan also takes the index gap lock, so
// a concurrent insert for the same asset blocks until the transaction
// finishes and the loser sees the drift.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, group_id, asset_id, requester_id, requester_name,
       date_from, date_to, time_from, time_to, purpose, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var r model.Reservation
	var timeFrom, timeTo sql.NullInt64
	err := row.Scan(
		&r.ID, &r.GroupID, &r.AssetID, &r.RequesterID, &r.RequesterName,
		&r.Interval.DateFrom, &r.Interval.DateTo, &timeFrom, &timeTo,
		&r.Purpose, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if timeFrom.Valid && timeTo.Valid {
		tf := model.ClockTime(timeFrom.Int64)
		tt := model.ClockTime(timeTo.Int64)
		r.Interval.TimeFrom = &tf
		r.Interval.TimeTo = &tt
	}
	r.Interval.DateFrom = model.Date(r.Interval.DateFrom)
	r.Interval.DateTo = model.Date(r.Interval.DateTo)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

func (r *ReservationRepo) queryReservations(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns one reservation or engine.ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GroupByID returns all rows of a cascade group ordered by id.
func (r *ReservationRepo) GroupByID(ctx context.Context, groupID string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE group_id = ? ORDER BY id`
	out, err := r.queryReservations(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, engine.ErrReservationNotFound
	}
	return out, nil
}

// LiveByAsset returns the pending and approved reservations for an asset.
func (r *ReservationRepo) LiveByAsset(ctx context.Context, assetID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
	           FROM reservations
	           WHERE asset_id = ? AND status IN ('pending','approved')
	           ORDER BY id`
	return r.queryReservations(ctx, q, assetID)
}

// LiveInRange returns live reservations for the given assets whose date
// ranges intersect [from, to].
func (r *ReservationRepo) LiveInRange(ctx context.Context, assetIDs []uint64, from, to time.Time) ([]model.Reservation, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(assetIDs)), ",")
	q := `SELECT ` + reservationCols + `
	      FROM reservations
	      WHERE asset_id IN (` + placeholders + `)
	        AND status IN ('pending','approved')
	        AND date_from <= ? AND date_to >= ?
	      ORDER BY id`
	args := make([]interface{}, 0, len(assetIDs)+2)
	for _, id := range assetIDs {
		args = append(args, id)
	}
	args = append(args, to.Format(model.DateLayout), from.Format(model.DateLayout))
	return r.queryReservations(ctx, q, args...)
}

// ListByRequester returns all reservations created by a user, newest first.
func (r *ReservationRepo) ListByRequester(ctx context.Context, requesterID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
	           FROM reservations WHERE requester_id = ? ORDER BY created_at DESC, id DESC`
	return r.queryReservations(ctx, q, requesterID)
}

// ListByAsset returns every reservation for an asset regardless of status,
// newest first. Used by the administrative listing.
func (r *ReservationRepo) ListByAsset(ctx context.Context, assetID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + `
	           FROM reservations WHERE asset_id = ? ORDER BY created_at DESC, id DESC`
	return r.queryReservations(ctx, q, assetID)
}

// lockLiveTokensTx locks the live rows of the given assets and returns the
// current guard token list per asset, ordered by id.
func lockLiveTokensTx(ctx context.Context, tx *sql.Tx, assetIDs []uint64) (map[uint64][]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(assetIDs)), ",")
	q := `SELECT asset_id, id, updated_at
	      FROM reservations
	      WHERE asset_id IN (` + placeholders + `) AND status IN ('pending','approved')
	      ORDER BY id FOR UPDATE`
	args := make([]interface{}, len(assetIDs))
	for i, id := range assetIDs {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tokens := make(map[uint64][]string, len(assetIDs))
	for rows.Next() {
		var assetID, id uint64
		var updatedAt time.Time
		if err := rows.Scan(&assetID, &id, &updatedAt); err != nil {
			return nil, err
		}
		tokens[assetID] = append(tokens[assetID], engine.SnapshotToken(model.Reservation{ID: id, UpdatedAt: updatedAt.UTC()}))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// CreateGroup inserts all rows of a cascade booking in one transaction.
// It re-locks the live rows of every member asset, compares them against
// the snapshot taken at check time, and abandons the insert with
// engine.ErrCommitRace when anything drifted.
func (r *ReservationRepo) CreateGroup(ctx context.Context, group []*model.Reservation, observed engine.Snapshot) error {
	if len(group) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	assetIDs := make([]uint64, len(group))
	for i, res := range group {
		assetIDs[i] = res.AssetID
	}
	current, err := lockLiveTokensTx(ctx, tx, assetIDs)
	if err != nil {
		return err
	}
	for _, res := range group {
		if !observed.Matches(res.AssetID, current[res.AssetID]) {
			return engine.ErrCommitRace
		}
	}
	const ins = `INSERT INTO reservations
	             (group_id, asset_id, requester_id, requester_name,
	              date_from, date_to, time_from, time_to, purpose, status, created_at, updated_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, res := range group {
		var timeFrom, timeTo interface{}
		if res.Interval.Timed() {
			timeFrom, timeTo = int64(*res.Interval.TimeFrom), int64(*res.Interval.TimeTo)
		}
		result, err := tx.ExecContext(ctx, ins,
			res.GroupID, res.AssetID, res.RequesterID, res.RequesterName,
			res.Interval.DateFrom.Format(model.DateLayout),
			res.Interval.DateTo.Format(model.DateLayout),
			timeFrom, timeTo, res.Purpose, string(res.Status),
			res.CreatedAt.Format(tsLayout), res.UpdatedAt.Format(tsLayout),
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateGroupInterval replaces the interval and status of every row in a
// group under the same snapshot guard as CreateGroup.
func (r *ReservationRepo) UpdateGroupInterval(ctx context.Context, groupID string, iv model.Interval, status model.Status, observed engine.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock the group's own rows first to learn the member assets.
	rows, err := tx.QueryContext(ctx, `SELECT asset_id FROM reservations WHERE group_id = ? FOR UPDATE`, groupID)
	if err != nil {
		return err
	}
	var assetIDs []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		assetIDs = append(assetIDs, id)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if len(assetIDs) == 0 {
		return engine.ErrReservationNotFound
	}
	current, err := lockLiveTokensTx(ctx, tx, assetIDs)
	if err != nil {
		return err
	}
	for _, assetID := range assetIDs {
		if !observed.Matches(assetID, current[assetID]) {
			return engine.ErrCommitRace
		}
	}
	var timeFrom, timeTo interface{}
	if iv.Timed() {
		timeFrom, timeTo = int64(*iv.TimeFrom), int64(*iv.TimeTo)
	}
	const upd = `UPDATE reservations
	             SET date_from = ?, date_to = ?, time_from = ?, time_to = ?,
	                 status = ?, updated_at = UTC_TIMESTAMP(6)
	             WHERE group_id = ?`
	if _, err := tx.ExecContext(ctx, upd,
		iv.DateFrom.Format(model.DateLayout), iv.DateTo.Format(model.DateLayout),
		timeFrom, timeTo, string(status), groupID,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStatus applies an administrative decision. The WHERE clause only
// matches pending rows, so a decision racing another decision fails with
// engine.ErrIllegalTransition instead of silently overwriting it.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.Status) error {
	const upd = `UPDATE reservations
	             SET status = ?, updated_at = UTC_TIMESTAMP(6)
	             WHERE id = ? AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, upd, string(status), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return engine.ErrIllegalTransition
	}
	return nil
}
