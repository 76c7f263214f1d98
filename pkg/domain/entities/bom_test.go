package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBOMEdge_Validation(t *testing.T) {
	valid, err := NewBOMEdge(1, 2, decimal.NewFromInt(2), false, decimal.NullDecimal{}, nil)
	if err != nil {
		t.Fatalf("Expected valid BOM creation to succeed: %v", err)
	}
	if !valid.QtyPer.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected quantity per 2, got %s", valid.QtyPer)
	}

	main := ItemID(3)
	testCases := []struct {
		name       string
		parent     ItemID
		child      ItemID
		qtyPer     decimal.Decimal
		isDilution bool
		perMain    decimal.NullDecimal
		main       *ItemID
	}{
		{"empty parent", 0, 2, decimal.NewFromInt(1), false, decimal.NullDecimal{}, nil},
		{"empty child", 1, 0, decimal.NewFromInt(1), false, decimal.NullDecimal{}, nil},
		{"parent equals child", 1, 1, decimal.NewFromInt(1), false, decimal.NullDecimal{}, nil},
		{"negative quantity", 1, 2, decimal.NewFromInt(-1), false, decimal.NullDecimal{}, nil},
		{"dilution without main", 1, 2, decimal.Zero, true, decimal.NewNullDecimal(decimal.NewFromInt(4)), nil},
		{"negative per main", 1, 2, decimal.Zero, true, decimal.NewNullDecimal(decimal.NewFromInt(-4)), &main},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBOMEdge(tc.parent, tc.child, tc.qtyPer, tc.isDilution, tc.perMain, tc.main)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestBOMEdge_Reassign(t *testing.T) {
	main := ItemID(7)
	edge := BOMEdge{
		ID:             10,
		ParentID:       1,
		ChildID:        7,
		QtyPer:         decimal.NewFromInt(1),
		IsDilution:     true,
		PerMainQty:     decimal.NewNullDecimal(decimal.NewFromInt(4)),
		DilutionMainID: &main,
	}

	if !edge.References(7) {
		t.Fatal("Expected edge to reference item 7")
	}
	if edge.References(9) {
		t.Fatal("Expected edge not to reference item 9")
	}

	moved := edge.Reassign(7, 9)
	if moved.ID != edge.ID {
		t.Errorf("Expected row identity %d to be preserved, got %d", edge.ID, moved.ID)
	}
	if moved.ParentID != 1 {
		t.Errorf("Expected parent untouched, got %d", moved.ParentID)
	}
	if moved.ChildID != 9 {
		t.Errorf("Expected child 9, got %d", moved.ChildID)
	}
	if moved.DilutionMainID == nil || *moved.DilutionMainID != 9 {
		t.Errorf("Expected dilution main 9, got %v", moved.DilutionMainID)
	}
	if *edge.DilutionMainID != 7 {
		t.Errorf("Expected original edge to be unchanged, got main %d", *edge.DilutionMainID)
	}
}
