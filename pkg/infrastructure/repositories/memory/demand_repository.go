package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// AddProductionOrder records open demand for an item
func (s *Store) AddProductionOrder(ctx context.Context, code entities.ItemCode, qty decimal.Decimal, due *time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	itemID, err := st.resolve(code)
	if err != nil {
		return 0, err
	}
	order, err := entities.NewProductionOrder(itemID, qty, due)
	if err != nil {
		return 0, err
	}

	st.nextProductionID++
	order.ID = st.nextProductionID
	st.productions[order.ID] = *order
	return order.ID, nil
}

// SetProductionOrderStatus moves a production order through its lifecycle
func (s *Store) SetProductionOrderStatus(ctx context.Context, id int64, status entities.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.state.productions[id]
	if !ok {
		return fmt.Errorf("%w: production order %d", entities.ErrNotFound, id)
	}
	order.Status = status
	s.state.productions[id] = order
	return nil
}

// ListOpenProductionOrders returns open demand resolved to item codes
func (s *Store) ListOpenProductionOrders(ctx context.Context) ([]entities.ProductionOrderView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListOpenProductionOrders(ctx)
}

// ListOpenProductionOrders implements repositories.PlanningRepository for snapshot reads
func (st *state) ListOpenProductionOrders(ctx context.Context) ([]entities.ProductionOrderView, error) {
	var views []entities.ProductionOrderView
	for _, order := range valuesByKey(st.productions) {
		if !order.Status.IsOpen() {
			continue
		}
		views = append(views, entities.ProductionOrderView{
			ID:       order.ID,
			Code:     st.codeOf(order.ItemID),
			Quantity: order.Quantity,
			DueDate:  order.DueDate,
		})
	}
	return views, nil
}

func (st *state) productionOrdersByItem(id entities.ItemID) []entities.ProductionOrder {
	var orders []entities.ProductionOrder
	for _, order := range valuesByKey(st.productions) {
		if order.ItemID == id {
			orders = append(orders, order)
		}
	}
	return orders
}

func (st *state) reassignProductionOrders(from, to entities.ItemID) int64 {
	var n int64
	for id, order := range st.productions {
		if order.ItemID == from {
			order.ItemID = to
			st.productions[id] = order
			n++
		}
	}
	return n
}

func (st *state) restoreProductionOrder(order entities.ProductionOrder) error {
	if _, ok := st.productions[order.ID]; !ok {
		return fmt.Errorf("%w: production order %d", entities.ErrNotFound, order.ID)
	}
	if !st.itemExists(order.ItemID) {
		return fmt.Errorf("%w: production order %d references missing item %d", entities.ErrInvalidReference, order.ID, order.ItemID)
	}
	st.productions[order.ID] = order
	return nil
}
