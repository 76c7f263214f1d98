package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// AddInventoryLot records on-hand stock for an item at a location
func (s *Store) AddInventoryLot(ctx context.Context, code entities.ItemCode, location string, qty decimal.Decimal) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		q := queries{ext: tx}
		itemID, err := q.resolve(ctx, code)
		if err != nil {
			return err
		}
		lot, err := entities.NewInventoryLot(itemID, location, qty)
		if err != nil {
			return err
		}

		id, err = q.insert(ctx, `INSERT INTO inventory (item_id, location, qty) VALUES (?, ?, ?)`,
			int64(lot.ItemID), lot.Location, lot.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert inventory lot: %w", err)
		}
		return nil
	})
	return id, err
}

// ListInventory returns every lot resolved to its item code
func (s *Store) ListInventory(ctx context.Context) ([]entities.InventoryView, error) {
	views := []entities.InventoryView{}
	query := `
		SELECT inv.id, i.code, i.name, inv.location, inv.qty
		FROM inventory inv
		JOIN items i ON i.id = inv.item_id
		ORDER BY inv.id
	`
	if err := s.list(ctx, &views, query); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return views, nil
}

type quantityRow struct {
	Code     entities.ItemCode `db:"code"`
	Quantity decimal.Decimal   `db:"qty"`
}

// SumInventoryByItem returns on-hand quantity per item code across all locations
func (q queries) SumInventoryByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error) {
	var rows []quantityRow
	query := `SELECT i.code, inv.qty FROM inventory inv JOIN items i ON i.id = inv.item_id`
	if err := q.list(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return sumByCode(rows), nil
}

// sumByCode totals decimal text columns in Go, since SQL SUM over TEXT would lose precision
func sumByCode(rows []quantityRow) map[entities.ItemCode]decimal.Decimal {
	totals := make(map[entities.ItemCode]decimal.Decimal)
	for _, row := range rows {
		totals[row.Code] = totals[row.Code].Add(row.Quantity)
	}
	return totals
}

func (q queries) inventoryByItem(ctx context.Context, id entities.ItemID) ([]entities.InventoryLot, error) {
	var lots []entities.InventoryLot
	query := `SELECT id, item_id, location, qty FROM inventory WHERE item_id = ? ORDER BY id`
	if err := q.list(ctx, &lots, query, int64(id)); err != nil {
		return nil, fmt.Errorf("failed to read inventory for item %d: %w", id, err)
	}
	return lots, nil
}

func (q queries) reassignInventory(ctx context.Context, from, to entities.ItemID) (int64, error) {
	return q.exec(ctx, `UPDATE inventory SET item_id = ? WHERE item_id = ?`, int64(to), int64(from))
}

func (q queries) restoreInventoryLot(ctx context.Context, lot entities.InventoryLot) error {
	if err := q.checkRestore(ctx, "inventory", "inventory lot", lot.ID, lot.ItemID); err != nil {
		return err
	}
	_, err := q.exec(ctx, `UPDATE inventory SET item_id = ?, location = ?, qty = ? WHERE id = ?`,
		int64(lot.ItemID), lot.Location, lot.Quantity, lot.ID)
	return err
}

// checkRestore verifies a row still exists and the item it will point at resolves
func (q queries) checkRestore(ctx context.Context, table, label string, rowID int64, itemIDs ...entities.ItemID) error {
	found, err := q.exists(ctx, `SELECT id FROM `+table+` WHERE id = ?`, rowID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s %d", entities.ErrNotFound, label, rowID)
	}

	for _, itemID := range itemIDs {
		ok, err := q.itemExists(ctx, itemID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %d references missing item %d", entities.ErrInvalidReference, label, rowID, itemID)
		}
	}
	return nil
}
