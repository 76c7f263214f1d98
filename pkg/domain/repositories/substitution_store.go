package repositories

import (
	"context"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// LedgerRepository provides read access to the append-only replacement ledger
type LedgerRepository interface {
	// GetLedgerEntry returns entities.ErrNotFound when id does not resolve
	GetLedgerEntry(ctx context.Context, id int64) (*entities.LedgerEntry, error)
	// ListLedgerEntries returns summaries ordered newest first
	ListLedgerEntries(ctx context.Context) ([]entities.LedgerSummary, error)
}

// SubstitutionStore is the storage boundary for code replacement and undo.
// Every mutation happens inside WithTx: if fn returns an error, none of its
// writes are visible afterwards.
type SubstitutionStore interface {
	LedgerRepository
	ListItemCodes(ctx context.Context) ([]entities.ItemCode, error)
	WithTx(ctx context.Context, fn func(tx SubstitutionTx) error) error
}

// SubstitutionTx is the row-level surface available inside a substitution transaction
type SubstitutionTx interface {
	// FindItemByCode returns entities.ErrNotFound when the code does not resolve
	FindItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error)
	ItemExists(ctx context.Context, id entities.ItemID) (bool, error)
	CreateItem(ctx context.Context, item *entities.Item) (entities.ItemID, error)

	InventoryByItem(ctx context.Context, id entities.ItemID) ([]entities.InventoryLot, error)
	BOMEdgesByItem(ctx context.Context, id entities.ItemID) ([]entities.BOMEdge, error)
	PurchaseOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.PurchaseOrder, error)
	ProductionOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.ProductionOrder, error)

	// Reassign* rewrite every reference from one item identity to another and
	// return the number of rows touched
	ReassignInventory(ctx context.Context, from, to entities.ItemID) (int64, error)
	ReassignBOMEdges(ctx context.Context, from, to entities.ItemID) (int64, error)
	ReassignPurchaseOrders(ctx context.Context, from, to entities.ItemID) (int64, error)
	ReassignProductionOrders(ctx context.Context, from, to entities.ItemID) (int64, error)

	// Restore* overwrite a row by its identity; entities.ErrNotFound if the row is gone
	RestoreInventoryLot(ctx context.Context, lot entities.InventoryLot) error
	RestoreBOMEdge(ctx context.Context, edge entities.BOMEdge) error
	RestorePurchaseOrder(ctx context.Context, po entities.PurchaseOrder) error
	RestoreProductionOrder(ctx context.Context, order entities.ProductionOrder) error

	AppendLedgerEntry(ctx context.Context, entry *entities.LedgerEntry) (int64, error)
}
