// Package repository implements the engine store interfaces on MySQL via
// database/sql. Queries are plain SQL; guarded commits run inside explicit
// transactions with SELECT ... FOR UPDATE so the first committer wins and
// the loser observes a changed live set. All timestamps are stored in UTC.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ravshanbk/asset-reservation/internal/engine"
	"github.com/ravshanbk/asset-reservation/internal/model"
)

// AssetRepo reads the booking-relevant asset fields. Asset CRUD belongs to
// the inventory system; this repo only ever selects.
type AssetRepo struct {
	db *sql.DB
}

// NewAssetRepo returns an AssetRepo bound to the given database.
func NewAssetRepo(db *sql.DB) *AssetRepo { return &AssetRepo{db: db} }

// GetAsset returns the asset's id, name, reservable flag and status.
// engine.ErrAssetNotFound is returned when no row exists.
func (r *AssetRepo) GetAsset(ctx context.Context, id uint64) (*model.Asset, error) {
	const q = `SELECT id, name, reservable, status FROM assets WHERE id = ?`
	var a model.Asset
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Name, &a.Reservable, &a.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
