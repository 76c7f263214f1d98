package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// CreateItem adds a new item. Codes are unique.
func (s *Store) CreateItem(ctx context.Context, item *entities.Item) (entities.ItemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createItem(item)
}

// FindItemByCode returns item master data for a code
func (s *Store) FindItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.findItemByCode(code)
}

// ListItems returns all items ordered by code
func (s *Store) ListItems(ctx context.Context) ([]entities.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := valuesByKey(s.state.items)
	slices.SortFunc(items, func(a, b entities.Item) int {
		return strings.Compare(string(a.Code), string(b.Code))
	})
	return items, nil
}

// ListItemCodes returns every item code in ascending order
func (s *Store) ListItemCodes(ctx context.Context) ([]entities.ItemCode, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]entities.ItemCode, len(items))
	for i, item := range items {
		codes[i] = item.Code
	}
	return codes, nil
}

// SetItemLeadTime updates an item's lead time in days
func (s *Store) SetItemLeadTime(ctx context.Context, code entities.ItemCode, days int) error {
	if days < 0 {
		return fmt.Errorf("%w: lead time cannot be negative, got %d", entities.ErrInvalidArgument, days)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.state.findItemByCode(code)
	if err != nil {
		return err
	}
	item.LeadTimeDays = days
	s.state.items[item.ID] = *item
	return nil
}

// SetItemBatchSize updates an item's batch size; zero or negative resets it to the default
func (s *Store) SetItemBatchSize(ctx context.Context, code entities.ItemCode, size decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.state.findItemByCode(code)
	if err != nil {
		return err
	}
	item.BatchSize = entities.EffectiveBatchSize(size, entities.DefaultBatchSize)
	s.state.items[item.ID] = *item
	return nil
}

// GetPlanningAttributes returns lead time and batch size for a code
func (s *Store) GetPlanningAttributes(ctx context.Context, code entities.ItemCode) (*entities.PlanningAttributes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetPlanningAttributes(ctx, code)
}

func (st *state) createItem(item *entities.Item) (entities.ItemID, error) {
	if item.Code == "" {
		return 0, fmt.Errorf("%w: item code cannot be empty", entities.ErrInvalidArgument)
	}
	if _, ok := st.itemByCode(item.Code); ok {
		return 0, fmt.Errorf("%w: item %s already exists", entities.ErrInvalidArgument, item.Code)
	}

	st.nextItemID++
	stored := *item
	stored.ID = st.nextItemID
	if stored.Name == "" {
		stored.Name = string(stored.Code)
	}
	if stored.UnitOfMeasure == "" {
		stored.UnitOfMeasure = entities.DefaultUnitOfMeasure
	}
	stored.BatchSize = entities.EffectiveBatchSize(stored.BatchSize, entities.DefaultBatchSize)
	st.items[stored.ID] = stored

	item.ID = stored.ID
	return stored.ID, nil
}

func (st *state) itemByCode(code entities.ItemCode) (entities.Item, bool) {
	for _, item := range st.items {
		if item.Code == code {
			return item, true
		}
	}
	return entities.Item{}, false
}

func (st *state) findItemByCode(code entities.ItemCode) (*entities.Item, error) {
	item, ok := st.itemByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: item %s", entities.ErrNotFound, code)
	}
	return &item, nil
}

func (st *state) resolve(code entities.ItemCode) (entities.ItemID, error) {
	item, err := st.findItemByCode(code)
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

func (st *state) codeOf(id entities.ItemID) entities.ItemCode {
	return st.items[id].Code
}

func (st *state) itemExists(id entities.ItemID) bool {
	_, ok := st.items[id]
	return ok
}

// GetPlanningAttributes implements repositories.PlanningRepository for snapshot reads
func (st *state) GetPlanningAttributes(ctx context.Context, code entities.ItemCode) (*entities.PlanningAttributes, error) {
	item, err := st.findItemByCode(code)
	if err != nil {
		return nil, err
	}
	return &entities.PlanningAttributes{
		LeadTimeDays: item.LeadTimeDays,
		BatchSize:    item.BatchSize,
	}, nil
}

// DeleteItem removes an item that no row references any more
func (s *Store) DeleteItem(ctx context.Context, code entities.ItemCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	item, err := st.findItemByCode(code)
	if err != nil {
		return err
	}
	if st.isReferenced(item.ID) {
		return fmt.Errorf("%w: item %s is still referenced", entities.ErrInvalidReference, code)
	}
	delete(st.items, item.ID)
	return nil
}

func (st *state) isReferenced(id entities.ItemID) bool {
	return len(st.inventoryByItem(id)) > 0 ||
		len(st.bomEdgesByItem(id)) > 0 ||
		len(st.purchaseOrdersByItem(id)) > 0 ||
		len(st.productionOrdersByItem(id)) > 0
}
