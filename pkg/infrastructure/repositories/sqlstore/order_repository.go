package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// orderRow is shared by purchase and production orders; Date is the ETA or the due date
type orderRow struct {
	ID       int64           `db:"id"`
	ItemID   int64           `db:"item_id"`
	Code     string          `db:"code"`
	Quantity decimal.Decimal `db:"qty"`
	Date     sql.NullString  `db:"order_date"`
	Status   string          `db:"status"`
}

// orderTable describes the column that differs between the two order tables
type orderTable struct {
	name    string
	label   string
	dateCol string
}

var (
	purchaseOrders   = orderTable{name: "purchase_orders", label: "purchase order", dateCol: "eta"}
	productionOrders = orderTable{name: "production_orders", label: "production order", dateCol: "due_date"}
)

// AddPurchaseOrder records open inbound supply for an item
func (s *Store) AddPurchaseOrder(ctx context.Context, code entities.ItemCode, qty decimal.Decimal, eta *time.Time) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		q := queries{ext: tx}
		itemID, err := q.resolve(ctx, code)
		if err != nil {
			return err
		}
		po, err := entities.NewPurchaseOrder(itemID, qty, eta)
		if err != nil {
			return err
		}
		id, err = q.insertOrder(ctx, purchaseOrders, po.ItemID, po.Quantity, po.ETA, po.Status)
		return err
	})
	return id, err
}

// AddProductionOrder records open demand for an item
func (s *Store) AddProductionOrder(ctx context.Context, code entities.ItemCode, qty decimal.Decimal, due *time.Time) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		q := queries{ext: tx}
		itemID, err := q.resolve(ctx, code)
		if err != nil {
			return err
		}
		order, err := entities.NewProductionOrder(itemID, qty, due)
		if err != nil {
			return err
		}
		id, err = q.insertOrder(ctx, productionOrders, order.ItemID, order.Quantity, order.DueDate, order.Status)
		return err
	})
	return id, err
}

// SetPurchaseOrderStatus moves a purchase order through its lifecycle
func (s *Store) SetPurchaseOrderStatus(ctx context.Context, id int64, status entities.OrderStatus) error {
	return s.setStatus(ctx, purchaseOrders, id, status)
}

// SetProductionOrderStatus moves a production order through its lifecycle
func (s *Store) SetProductionOrderStatus(ctx context.Context, id int64, status entities.OrderStatus) error {
	return s.setStatus(ctx, productionOrders, id, status)
}

// ListPurchaseOrders returns every purchase order resolved to its item code
func (s *Store) ListPurchaseOrders(ctx context.Context) ([]entities.PurchaseOrderView, error) {
	rows, err := s.orders(ctx, purchaseOrders, "")
	if err != nil {
		return nil, err
	}

	views := make([]entities.PurchaseOrderView, 0, len(rows))
	for _, row := range rows {
		eta, err := parseDateColumn(row.Date)
		if err != nil {
			return nil, err
		}
		views = append(views, entities.PurchaseOrderView{
			ID:       row.ID,
			Code:     entities.ItemCode(row.Code),
			Quantity: row.Quantity,
			ETA:      eta,
			Status:   entities.OrderStatus(row.Status),
		})
	}
	return views, nil
}

// ListOpenProductionOrders returns open demand resolved to item codes
func (q queries) ListOpenProductionOrders(ctx context.Context) ([]entities.ProductionOrderView, error) {
	rows, err := q.orders(ctx, productionOrders, "WHERE o.status = ?", string(entities.StatusOpen))
	if err != nil {
		return nil, err
	}

	var views []entities.ProductionOrderView
	for _, row := range rows {
		due, err := parseDateColumn(row.Date)
		if err != nil {
			return nil, err
		}
		views = append(views, entities.ProductionOrderView{
			ID:       row.ID,
			Code:     entities.ItemCode(row.Code),
			Quantity: row.Quantity,
			DueDate:  due,
		})
	}
	return views, nil
}

// SumOpenPOByItem returns open inbound quantity per item code
func (q queries) SumOpenPOByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error) {
	var rows []quantityRow
	query := `
		SELECT i.code, po.qty
		FROM purchase_orders po
		JOIN items i ON i.id = po.item_id
		WHERE po.status = ?
	`
	if err := q.list(ctx, &rows, query, string(entities.StatusOpen)); err != nil {
		return nil, fmt.Errorf("failed to read purchase orders: %w", err)
	}
	return sumByCode(rows), nil
}

func (q queries) insertOrder(ctx context.Context, t orderTable, itemID entities.ItemID, qty decimal.Decimal, date *time.Time, status entities.OrderStatus) (int64, error) {
	id, err := q.insert(ctx,
		`INSERT INTO `+t.name+` (item_id, qty, `+t.dateCol+`, status) VALUES (?, ?, ?, ?)`,
		int64(itemID), qty, dateArg(date), string(status))
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", t.label, err)
	}
	return id, nil
}

func (q queries) setStatus(ctx context.Context, t orderTable, id int64, status entities.OrderStatus) error {
	n, err := q.exec(ctx, `UPDATE `+t.name+` SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", t.label, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", entities.ErrNotFound, t.label, id)
	}
	return nil
}

func (q queries) orders(ctx context.Context, t orderTable, where string, args ...interface{}) ([]orderRow, error) {
	var rows []orderRow
	query := `
		SELECT o.id, o.item_id, i.code, o.qty, o.` + t.dateCol + ` AS order_date, o.status
		FROM ` + t.name + ` o
		JOIN items i ON i.id = o.item_id
		` + where + `
		ORDER BY o.id
	`
	if err := q.list(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", t.label, err)
	}
	return rows, nil
}

func (q queries) ordersByItem(ctx context.Context, t orderTable, id entities.ItemID) ([]orderRow, error) {
	return q.orders(ctx, t, "WHERE o.item_id = ?", int64(id))
}

func (q queries) purchaseOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.PurchaseOrder, error) {
	rows, err := q.ordersByItem(ctx, purchaseOrders, id)
	if err != nil {
		return nil, err
	}

	var pos []entities.PurchaseOrder
	for _, row := range rows {
		eta, err := parseDateColumn(row.Date)
		if err != nil {
			return nil, err
		}
		pos = append(pos, entities.PurchaseOrder{
			ID:       row.ID,
			ItemID:   entities.ItemID(row.ItemID),
			Quantity: row.Quantity,
			ETA:      eta,
			Status:   entities.OrderStatus(row.Status),
		})
	}
	return pos, nil
}

func (q queries) productionOrdersByItem(ctx context.Context, id entities.ItemID) ([]entities.ProductionOrder, error) {
	rows, err := q.ordersByItem(ctx, productionOrders, id)
	if err != nil {
		return nil, err
	}

	var orders []entities.ProductionOrder
	for _, row := range rows {
		due, err := parseDateColumn(row.Date)
		if err != nil {
			return nil, err
		}
		orders = append(orders, entities.ProductionOrder{
			ID:       row.ID,
			ItemID:   entities.ItemID(row.ItemID),
			Quantity: row.Quantity,
			DueDate:  due,
			Status:   entities.OrderStatus(row.Status),
		})
	}
	return orders, nil
}

func (q queries) reassignOrders(ctx context.Context, t orderTable, from, to entities.ItemID) (int64, error) {
	return q.exec(ctx, `UPDATE `+t.name+` SET item_id = ? WHERE item_id = ?`, int64(to), int64(from))
}

func (q queries) restoreOrder(ctx context.Context, t orderTable, id int64, itemID entities.ItemID, qty decimal.Decimal, date *time.Time, status entities.OrderStatus) error {
	if err := q.checkRestore(ctx, t.name, t.label, id, itemID); err != nil {
		return err
	}
	_, err := q.exec(ctx,
		`UPDATE `+t.name+` SET item_id = ?, qty = ?, `+t.dateCol+` = ?, status = ? WHERE id = ?`,
		int64(itemID), qty, dateArg(date), string(status), id)
	return err
}
