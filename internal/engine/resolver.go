package engine

import (
	"context"
	"sort"
)

// Resolver computes linked-asset cascade sets. Booking one item of a kit
// must reserve every item transitively connected to it, so the cascade set
// of an asset is its connected component in the relationship graph.
type Resolver struct {
	rels RelationshipStore
}

// NewResolver builds a Resolver over the given relationship store.
func NewResolver(rels RelationshipStore) *Resolver {
	return &Resolver{rels: rels}
}

// CascadeSet returns every asset transitively linked to assetID, including
// assetID itself, sorted ascending. The traversal is breadth-first and
// tracks visited ids: the relationship graph is user-editable, so cycles
// are possible and must not hang the walk. Edge direction is ignored.
func (r *Resolver) CascadeSet(ctx context.Context, assetID uint64) ([]uint64, error) {
	visited := map[uint64]bool{assetID: true}
	queue := []uint64{assetID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		edges, err := r.rels.EdgesFor(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			neighbor := e.RelatedID
			if neighbor == current {
				neighbor = e.AssetID
			}
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	out := make([]uint64, 0, len(visited))
	for id := range visited {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
