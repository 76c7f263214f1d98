package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// AddInventoryLot records on-hand stock for an item at a location
func (s *Store) AddInventoryLot(ctx context.Context, code entities.ItemCode, location string, qty decimal.Decimal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	itemID, err := st.resolve(code)
	if err != nil {
		return 0, err
	}
	lot, err := entities.NewInventoryLot(itemID, location, qty)
	if err != nil {
		return 0, err
	}

	st.nextLotID++
	lot.ID = st.nextLotID
	st.lots[lot.ID] = *lot
	return lot.ID, nil
}

// ListInventory returns every lot resolved to its item code
func (s *Store) ListInventory(ctx context.Context) ([]entities.InventoryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	lots := valuesByKey(st.lots)
	views := make([]entities.InventoryView, 0, len(lots))
	for _, lot := range lots {
		item := st.items[lot.ItemID]
		views = append(views, entities.InventoryView{
			ID:       lot.ID,
			Code:     item.Code,
			Name:     item.Name,
			Location: lot.Location,
			Quantity: lot.Quantity,
		})
	}
	return views, nil
}

// SumInventoryByItem returns on-hand quantity per item code across all locations
func (s *Store) SumInventoryByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SumInventoryByItem(ctx)
}

// SumInventoryByItem implements repositories.PlanningRepository for snapshot reads
func (st *state) SumInventoryByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error) {
	totals := make(map[entities.ItemCode]decimal.Decimal)
	for _, lot := range st.lots {
		code := st.codeOf(lot.ItemID)
		totals[code] = totals[code].Add(lot.Quantity)
	}
	return totals, nil
}

func (st *state) inventoryByItem(id entities.ItemID) []entities.InventoryLot {
	var lots []entities.InventoryLot
	for _, lot := range valuesByKey(st.lots) {
		if lot.ItemID == id {
			lots = append(lots, lot)
		}
	}
	return lots
}

func (st *state) reassignInventory(from, to entities.ItemID) int64 {
	var n int64
	for id, lot := range st.lots {
		if lot.ItemID == from {
			lot.ItemID = to
			st.lots[id] = lot
			n++
		}
	}
	return n
}

func (st *state) restoreInventoryLot(lot entities.InventoryLot) error {
	if _, ok := st.lots[lot.ID]; !ok {
		return fmt.Errorf("%w: inventory lot %d", entities.ErrNotFound, lot.ID)
	}
	if !st.itemExists(lot.ItemID) {
		return fmt.Errorf("%w: inventory lot %d references missing item %d", entities.ErrInvalidReference, lot.ID, lot.ItemID)
	}
	st.lots[lot.ID] = lot
	return nil
}
