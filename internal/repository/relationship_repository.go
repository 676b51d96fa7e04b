package repository

import (
	"context"
	"database/sql"

	"github.com/ravshanbk/asset-reservation/internal/model"
)

// RelationshipRepo reads the linked-asset graph. Edges are stored with an
// asset_id/related_asset_id direction but booking semantics are
// undirected, so EdgesFor matches either column.
type RelationshipRepo struct {
	db *sql.DB
}

// NewRelationshipRepo returns a RelationshipRepo bound to the given database.
func NewRelationshipRepo(db *sql.DB) *RelationshipRepo { return &RelationshipRepo{db: db} }

// EdgesFor returns every relationship edge touching the asset.
func (r *RelationshipRepo) EdgesFor(ctx context.Context, assetID uint64) ([]model.AssetRelationship, error) {
	const q = `SELECT id, asset_id, related_asset_id, kind
	           FROM asset_relationships
	           WHERE asset_id = ? OR related_asset_id = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, assetID, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []model.AssetRelationship
	for rows.Next() {
		var e model.AssetRelationship
		if err := rows.Scan(&e.ID, &e.AssetID, &e.RelatedID, &e.Kind); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}
