package memory

import (
	"context"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// transaction exposes the row-level substitution surface over a private copy of the tables
type transaction struct {
	state  *state
	faults map[string]error
}

func (tx *transaction) fault(op string) error {
	return tx.faults[op]
}

func (tx *transaction) FindItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error) {
	if err := tx.fault("FindItemByCode"); err != nil {
		return nil, err
	}
	return tx.state.findItemByCode(code)
}

func (tx *transaction) ItemExists(ctx context.Context, id entities.ItemID) (bool, error) {
	return tx.state.itemExists(id), nil
}

func (tx *transaction) CreateItem(ctx context.Context, item *entities.Item) (entities.ItemID, error) {
	if err := tx.fault("CreateItem"); err != nil {
		return 0, err
	}
	return tx.state.createItem(item)
}

func (tx *transaction) InventoryByItem(ctx context.Context, id entities.ItemID) ([]entities.InventoryLot, error) {
	return tx.state.inventoryByItem(id), nil
}

func (tx *transaction) BOMEdgesByItem(ctx context.Context, id entities.ItemID) ([]entities.BOMEdge, error) {
	return tx.state.bomEdgesByItem(id), nil
}

func (tx *transaction) PurchaseOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.PurchaseOrder, error) {
	return tx.state.purchaseOrdersByItem(id), nil
}

func (tx *transaction) ProductionOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.ProductionOrder, error) {
	return tx.state.productionOrdersByItem(id), nil
}

func (tx *transaction) ReassignInventory(ctx context.Context, from, to entities.ItemID) (int64, error) {
	if err := tx.fault("ReassignInventory"); err != nil {
		return 0, err
	}
	return tx.state.reassignInventory(from, to), nil
}

func (tx *transaction) ReassignBOMEdges(ctx context.Context, from, to entities.ItemID) (int64, error) {
	if err := tx.fault("ReassignBOMEdges"); err != nil {
		return 0, err
	}
	return tx.state.reassignBOMEdges(from, to)
}

func (tx *transaction) ReassignPurchaseOrders(ctx context.Context, from, to entities.ItemID) (int64, error) {
	if err := tx.fault("ReassignPurchaseOrders"); err != nil {
		return 0, err
	}
	return tx.state.reassignPurchaseOrders(from, to), nil
}

func (tx *transaction) ReassignProductionOrders(ctx context.Context, from, to entities.ItemID) (int64, error) {
	if err := tx.fault("ReassignProductionOrders"); err != nil {
		return 0, err
	}
	return tx.state.reassignProductionOrders(from, to), nil
}

func (tx *transaction) RestoreInventoryLot(ctx context.Context, lot entities.InventoryLot) error {
	if err := tx.fault("RestoreInventoryLot"); err != nil {
		return err
	}
	return tx.state.restoreInventoryLot(lot)
}

func (tx *transaction) RestoreBOMEdge(ctx context.Context, edge entities.BOMEdge) error {
	if err := tx.fault("RestoreBOMEdge"); err != nil {
		return err
	}
	return tx.state.restoreBOMEdge(edge)
}

func (tx *transaction) RestorePurchaseOrder(ctx context.Context, po entities.PurchaseOrder) error {
	if err := tx.fault("RestorePurchaseOrder"); err != nil {
		return err
	}
	return tx.state.restorePurchaseOrder(po)
}

func (tx *transaction) RestoreProductionOrder(ctx context.Context, order entities.ProductionOrder) error {
	if err := tx.fault("RestoreProductionOrder"); err != nil {
		return err
	}
	return tx.state.restoreProductionOrder(order)
}

func (tx *transaction) AppendLedgerEntry(ctx context.Context, entry *entities.LedgerEntry) (int64, error) {
	if err := tx.fault("AppendLedgerEntry"); err != nil {
		return 0, err
	}
	return tx.state.appendLedgerEntry(entry)
}
