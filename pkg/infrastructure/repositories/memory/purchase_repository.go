package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// AddPurchaseOrder records open inbound supply for an item
func (s *Store) AddPurchaseOrder(ctx context.Context, code entities.ItemCode, qty decimal.Decimal, eta *time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	itemID, err := st.resolve(code)
	if err != nil {
		return 0, err
	}
	po, err := entities.NewPurchaseOrder(itemID, qty, eta)
	if err != nil {
		return 0, err
	}

	st.nextPurchaseID++
	po.ID = st.nextPurchaseID
	st.purchases[po.ID] = *po
	return po.ID, nil
}

// SetPurchaseOrderStatus moves a purchase order through its lifecycle
func (s *Store) SetPurchaseOrderStatus(ctx context.Context, id int64, status entities.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	po, ok := s.state.purchases[id]
	if !ok {
		return fmt.Errorf("%w: purchase order %d", entities.ErrNotFound, id)
	}
	po.Status = status
	s.state.purchases[id] = po
	return nil
}

// ListPurchaseOrders returns every purchase order resolved to its item code
func (s *Store) ListPurchaseOrders(ctx context.Context) ([]entities.PurchaseOrderView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	pos := valuesByKey(st.purchases)
	views := make([]entities.PurchaseOrderView, 0, len(pos))
	for _, po := range pos {
		views = append(views, entities.PurchaseOrderView{
			ID:       po.ID,
			Code:     st.codeOf(po.ItemID),
			Quantity: po.Quantity,
			ETA:      po.ETA,
			Status:   po.Status,
		})
	}
	return views, nil
}

// SumOpenPOByItem returns open inbound quantity per item code
func (s *Store) SumOpenPOByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SumOpenPOByItem(ctx)
}

// SumOpenPOByItem implements repositories.PlanningRepository for snapshot reads
func (st *state) SumOpenPOByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error) {
	totals := make(map[entities.ItemCode]decimal.Decimal)
	for _, po := range st.purchases {
		if !po.Status.IsOpen() {
			continue
		}
		code := st.codeOf(po.ItemID)
		totals[code] = totals[code].Add(po.Quantity)
	}
	return totals, nil
}

func (st *state) purchaseOrdersByItem(id entities.ItemID) []entities.PurchaseOrder {
	var pos []entities.PurchaseOrder
	for _, po := range valuesByKey(st.purchases) {
		if po.ItemID == id {
			pos = append(pos, po)
		}
	}
	return pos
}

func (st *state) reassignPurchaseOrders(from, to entities.ItemID) int64 {
	var n int64
	for id, po := range st.purchases {
		if po.ItemID == from {
			po.ItemID = to
			st.purchases[id] = po
			n++
		}
	}
	return n
}

func (st *state) restorePurchaseOrder(po entities.PurchaseOrder) error {
	if _, ok := st.purchases[po.ID]; !ok {
		return fmt.Errorf("%w: purchase order %d", entities.ErrNotFound, po.ID)
	}
	if !st.itemExists(po.ItemID) {
		return fmt.Errorf("%w: purchase order %d references missing item %d", entities.ErrInvalidReference, po.ID, po.ItemID)
	}
	st.purchases[po.ID] = po
	return nil
}
