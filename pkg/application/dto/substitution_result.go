package dto

import (
	"time"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// RowCounts reports how many rows of each table a substitution touched
type RowCounts struct {
	Inventory        int64 `json:"inventory"`
	BOMEdges         int64 `json:"bom_edges"`
	PurchaseOrders   int64 `json:"purchase_orders"`
	ProductionOrders int64 `json:"production_orders"`
}

// Total sums the per-table counts
func (c RowCounts) Total() int64 {
	return c.Inventory + c.BOMEdges + c.PurchaseOrders + c.ProductionOrders
}

// ReplaceResult is the outcome of a single code replacement
type ReplaceResult struct {
	Replaced    bool              `json:"replaced"`
	OldCode     entities.ItemCode `json:"old_code"`
	NewCode     entities.ItemCode `json:"new_code"`
	CreatedNew  bool              `json:"created_new"`
	HistoryID   int64             `json:"history_id"`
	Timestamp   time.Time         `json:"history_ts"`
	RowsUpdated RowCounts         `json:"rows_updated"`
}

// BulkReplaceItem is one per-item outcome of a bulk replacement.
// Failures are reported here instead of aborting the batch.
type BulkReplaceItem struct {
	OldCode   entities.ItemCode `json:"old_code"`
	NewCode   entities.ItemCode `json:"new_code"`
	OK        bool              `json:"ok"`
	HistoryID int64             `json:"history_id,omitempty"`
	Timestamp *time.Time        `json:"history_ts,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// BulkReplaceResult collects per-item outcomes in match order
type BulkReplaceResult struct {
	OldPattern string            `json:"old_pattern"`
	NewPattern string            `json:"new_pattern"`
	Items      []BulkReplaceItem `json:"items"`
}

// Failed counts the items that could not be replaced
func (r *BulkReplaceResult) Failed() int {
	n := 0
	for _, item := range r.Items {
		if !item.OK {
			n++
		}
	}
	return n
}

// UndoResult is the outcome of reversing a ledger entry
type UndoResult struct {
	Undone        bool              `json:"undone"`
	HistoryID     int64             `json:"history_id"`
	OldCode       entities.ItemCode `json:"old_code"`
	RecreatedItem bool              `json:"recreated_item"`
	RowsRestored  int               `json:"rows_restored"`
}
