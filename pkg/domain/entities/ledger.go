package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is the current layout of a substitution snapshot
const SnapshotVersion = 1

// Snapshot captures every row referencing an item at the moment it was replaced,
// plus the item's own record. Rows keep their original identities.
type Snapshot struct {
	Version          int               `json:"version"`
	OldItem          Item              `json:"old_item"`
	Inventory        []InventoryLot    `json:"inventory"`
	BOMEdges         []BOMEdge         `json:"bom_edges"`
	PurchaseOrders   []PurchaseOrder   `json:"purchase_orders"`
	ProductionOrders []ProductionOrder `json:"production_orders"`
}

// RowCount returns the number of snapshotted rows, excluding the item record
func (s *Snapshot) RowCount() int {
	return len(s.Inventory) + len(s.BOMEdges) + len(s.PurchaseOrders) + len(s.ProductionOrders)
}

// EncodeSnapshot serializes a snapshot for storage
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a stored snapshot, rejecting layouts it does not understand
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var header struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot header: %w", err)
	}

	switch header.Version {
	case SnapshotVersion:
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot v%d: %w", header.Version, err)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}
}

// LedgerEntry is an append-only record of one replacement. Entries are never mutated.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	OldCode   ItemCode  `json:"old_code"`
	NewCode   ItemCode  `json:"new_code"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// LedgerSummary is a ledger entry without its snapshot, for history listings
type LedgerSummary struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	OldCode   ItemCode  `json:"old_code"`
	NewCode   ItemCode  `json:"new_code"`
}

// Summary strips the snapshot from the entry
func (e *LedgerEntry) Summary() LedgerSummary {
	return LedgerSummary{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		OldCode:   e.OldCode,
		NewCode:   e.NewCode,
	}
}
