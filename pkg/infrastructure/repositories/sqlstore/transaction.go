package sqlstore

import (
	"context"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// transaction implements repositories.SubstitutionTx over an open sqlx.Tx
type transaction struct {
	q queries
}

func (tx *transaction) FindItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error) {
	return tx.q.findItemByCode(ctx, code)
}

func (tx *transaction) ItemExists(ctx context.Context, id entities.ItemID) (bool, error) {
	return tx.q.itemExists(ctx, id)
}

func (tx *transaction) CreateItem(ctx context.Context, item *entities.Item) (entities.ItemID, error) {
	return tx.q.createItem(ctx, item)
}

func (tx *transaction) InventoryByItem(ctx context.Context, id entities.ItemID) ([]entities.InventoryLot, error) {
	return tx.q.inventoryByItem(ctx, id)
}

func (tx *transaction) BOMEdgesByItem(ctx context.Context, id entities.ItemID) ([]entities.BOMEdge, error) {
	return tx.q.bomEdgesByItem(ctx, id)
}

func (tx *transaction) PurchaseOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.PurchaseOrder, error) {
	return tx.q.purchaseOrdersByItem(ctx, id)
}

func (tx *transaction) ProductionOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.ProductionOrder, error) {
	return tx.q.productionOrdersByItem(ctx, id)
}

func (tx *transaction) ReassignInventory(ctx context.Context, from, to entities.ItemID) (int64, error) {
	return tx.q.reassignInventory(ctx, from, to)
}

func (tx *transaction) ReassignBOMEdges(ctx context.Context, from, to entities.ItemID) (int64, error) {
	return tx.q.reassignBOMEdges(ctx, from, to)
}

func (tx *transaction) ReassignPurchaseOrders(ctx context.Context, from, to entities.ItemID) (int64, error) {
	return tx.q.reassignOrders(ctx, purchaseOrders, from, to)
}

func (tx *transaction) ReassignProductionOrders(ctx context.Context, from, to entities.ItemID) (int64, error) {
	return tx.q.reassignOrders(ctx, productionOrders, from, to)
}

func (tx *transaction) RestoreInventoryLot(ctx context.Context, lot entities.InventoryLot) error {
	return tx.q.restoreInventoryLot(ctx, lot)
}

func (tx *transaction) RestoreBOMEdge(ctx context.Context, edge entities.BOMEdge) error {
	return tx.q.restoreBOMEdge(ctx, edge)
}

func (tx *transaction) RestorePurchaseOrder(ctx context.Context, po entities.PurchaseOrder) error {
	return tx.q.restoreOrder(ctx, purchaseOrders, po.ID, po.ItemID, po.Quantity, po.ETA, po.Status)
}

func (tx *transaction) RestoreProductionOrder(ctx context.Context, order entities.ProductionOrder) error {
	return tx.q.restoreOrder(ctx, productionOrders, order.ID, order.ItemID, order.Quantity, order.DueDate, order.Status)
}

func (tx *transaction) AppendLedgerEntry(ctx context.Context, entry *entities.LedgerEntry) (int64, error) {
	return tx.q.appendLedgerEntry(ctx, entry)
}
