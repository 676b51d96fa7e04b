package model

// RelationKind classifies an edge between two assets. All kinds cascade
// identically for booking purposes: any edge means "books together". The
// distinction only matters to inventory screens.
type RelationKind string

const (
	RelationComponent RelationKind = "component"
	RelationAccessory RelationKind = "accessory"
	RelationSet       RelationKind = "set"
	RelationRelated   RelationKind = "related"
)

// Valid reports whether k is one of the known relation kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationComponent, RelationAccessory, RelationSet, RelationRelated:
		return true
	}
	return false
}

// AssetRelationship is an undirected edge in the linked-asset graph. The
// storage distinguishes AssetID from RelatedID, but booking semantics
// treat the edge symmetrically: reserving either endpoint reserves the
// other. Self-loops are rejected at write time; traversal still guards
// against cycles because the graph is user-editable.
type AssetRelationship struct {
	ID        uint64       `json:"id"`
	AssetID   uint64       `json:"asset_id"`
	RelatedID uint64       `json:"related_id"`
	Kind      RelationKind `json:"kind"`
}
