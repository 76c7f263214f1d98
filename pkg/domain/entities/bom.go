package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BOMEdge is a stored bill-of-materials line keyed by item identities.
//
// A normal edge consumes QtyPer of the child per unit of parent. A dilution edge
// instead requires PerMainQty of the child per unit of DilutionMainID consumed,
// independently of the nominal parent.
type BOMEdge struct {
	ID             int64               `json:"id"`
	ParentID       ItemID              `json:"parent_id"`
	ChildID        ItemID              `json:"child_id"`
	QtyPer         decimal.Decimal     `json:"qty"`
	IsDilution     bool                `json:"is_dilution"`
	PerMainQty     decimal.NullDecimal `json:"per_main_qty"`
	DilutionMainID *ItemID             `json:"dilution_main_id,omitempty"`
}

// NewBOMEdge creates a validated BOMEdge
func NewBOMEdge(parentID, childID ItemID, qtyPer decimal.Decimal, isDilution bool, perMainQty decimal.NullDecimal, dilutionMainID *ItemID) (*BOMEdge, error) {
	if parentID == 0 {
		return nil, fmt.Errorf("%w: parent item cannot be empty", ErrInvalidArgument)
	}
	if childID == 0 {
		return nil, fmt.Errorf("%w: child item cannot be empty", ErrInvalidArgument)
	}
	if parentID == childID {
		return nil, fmt.Errorf("%w: parent and child cannot be the same item: %d", ErrInvalidArgument, parentID)
	}
	if qtyPer.IsNegative() {
		return nil, fmt.Errorf("%w: quantity per cannot be negative, got %s", ErrInvalidArgument, qtyPer)
	}
	if isDilution && dilutionMainID == nil {
		return nil, fmt.Errorf("%w: dilution line must reference a main ingredient", ErrInvalidArgument)
	}
	if perMainQty.Valid && perMainQty.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: per-main quantity cannot be negative, got %s", ErrInvalidArgument, perMainQty.Decimal)
	}

	return &BOMEdge{
		ParentID:       parentID,
		ChildID:        childID,
		QtyPer:         qtyPer,
		IsDilution:     isDilution,
		PerMainQty:     perMainQty,
		DilutionMainID: dilutionMainID,
	}, nil
}

// References reports whether the edge references id in any of its three roles
func (e BOMEdge) References(id ItemID) bool {
	if e.ParentID == id || e.ChildID == id {
		return true
	}
	return e.DilutionMainID != nil && *e.DilutionMainID == id
}

// Reassign returns a copy of the edge with every reference to from rewritten to to
func (e BOMEdge) Reassign(from, to ItemID) BOMEdge {
	out := e
	if out.ParentID == from {
		out.ParentID = to
	}
	if out.ChildID == from {
		out.ChildID = to
	}
	if out.DilutionMainID != nil && *out.DilutionMainID == from {
		main := to
		out.DilutionMainID = &main
	}
	return out
}

// BOMEdgeView is a BOM edge resolved to item codes, as consumed by the graph loader.
// DilutionMainCode is empty when the edge has no main ingredient.
type BOMEdgeView struct {
	ID               int64               `json:"id"`
	ParentCode       ItemCode            `json:"parent_code"`
	ChildCode        ItemCode            `json:"child_code"`
	QtyPer           decimal.Decimal     `json:"qty"`
	IsDilution       bool                `json:"is_dilution"`
	PerMainQty       decimal.NullDecimal `json:"per_main_qty"`
	DilutionMainCode ItemCode            `json:"dilution_main_code,omitempty"`
}

// BOMEdgeInput describes a BOM line by item codes for catalog writes
type BOMEdgeInput struct {
	Parent       ItemCode
	Child        ItemCode
	QtyPer       decimal.Decimal
	IsDilution   bool
	PerMainQty   decimal.NullDecimal
	DilutionMain ItemCode
}

// BOMEdgeUpdate carries optional field changes for an existing BOM line.
// Nil fields keep the stored value.
type BOMEdgeUpdate struct {
	Parent       *ItemCode
	Child        *ItemCode
	QtyPer       *decimal.Decimal
	IsDilution   *bool
	PerMainQty   *decimal.NullDecimal
	DilutionMain *ItemCode
}
