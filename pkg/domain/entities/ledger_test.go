package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSnapshot_RoundTripKeepsRowIdentity(t *testing.T) {
	main := ItemID(1)
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		OldItem:   Item{ID: 1, Code: "OLD_1", Name: "Old", UnitOfMeasure: "kg", LeadTimeDays: 3, BatchSize: DefaultBatchSize},
		Inventory: []InventoryLot{{ID: 11, ItemID: 1, Location: "Main", Quantity: decimal.RequireFromString("12.5")}},
		BOMEdges: []BOMEdge{{
			ID: 21, ParentID: 5, ChildID: 6, QtyPer: decimal.Zero, IsDilution: true,
			PerMainQty: decimal.NewNullDecimal(decimal.NewFromInt(4)), DilutionMainID: &main,
		}},
		ProductionOrders: []ProductionOrder{{ID: 31, ItemID: 1, Quantity: decimal.NewFromInt(40), DueDate: &due, Status: StatusOpen}},
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("Failed to encode snapshot: %v", err)
	}

	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}

	if decoded.Version != SnapshotVersion {
		t.Errorf("Expected version %d, got %d", SnapshotVersion, decoded.Version)
	}
	if decoded.RowCount() != 3 {
		t.Errorf("Expected 3 rows, got %d", decoded.RowCount())
	}
	if decoded.Inventory[0].ID != 11 || !decoded.Inventory[0].Quantity.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Unexpected inventory row: %+v", decoded.Inventory[0])
	}
	if decoded.BOMEdges[0].DilutionMainID == nil || *decoded.BOMEdges[0].DilutionMainID != 1 {
		t.Errorf("Expected dilution main 1, got %v", decoded.BOMEdges[0].DilutionMainID)
	}
	if !decoded.ProductionOrders[0].DueDate.Equal(due) {
		t.Errorf("Expected due date %v, got %v", due, decoded.ProductionOrders[0].DueDate)
	}
}

func TestDecodeSnapshot_RejectsUnknownVersion(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"version": 99, "old_item": {}}`))
	if err == nil {
		t.Fatal("Expected error for unknown snapshot version")
	}
	if !strings.Contains(err.Error(), "unsupported snapshot version 99") {
		t.Errorf("Unexpected error: %v", err)
	}
}
