package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

const itemColumns = `id, code, name, uom, lead_time, batch_size`

// CreateItem inserts an item, rejecting a code that is already taken
func (s *Store) CreateItem(ctx context.Context, item *entities.Item) (entities.ItemID, error) {
	var id entities.ItemID
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = queries{ext: tx}.createItem(ctx, item)
		return err
	})
	return id, err
}

// FindItemByCode returns entities.ErrNotFound when the code does not resolve
func (s *Store) FindItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error) {
	return s.findItemByCode(ctx, code)
}

// ListItems returns every item ordered by code
func (s *Store) ListItems(ctx context.Context) ([]entities.Item, error) {
	items := []entities.Item{}
	if err := s.list(ctx, &items, `SELECT `+itemColumns+` FROM items ORDER BY code`); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListItemCodes returns every item code in sorted order
func (s *Store) ListItemCodes(ctx context.Context) ([]entities.ItemCode, error) {
	codes := []entities.ItemCode{}
	if err := s.list(ctx, &codes, `SELECT code FROM items ORDER BY code`); err != nil {
		return nil, fmt.Errorf("failed to list item codes: %w", err)
	}
	return codes, nil
}

// SetItemLeadTime updates an item's purchasing lead time in days
func (s *Store) SetItemLeadTime(ctx context.Context, code entities.ItemCode, days int) error {
	if days < 0 {
		return fmt.Errorf("%w: lead time cannot be negative, got %d", entities.ErrInvalidArgument, days)
	}
	return s.updateItem(ctx, code, `UPDATE items SET lead_time = ? WHERE code = ?`, days, string(code))
}

// SetItemBatchSize updates an item's batch size; zero or negative resets it to the default
func (s *Store) SetItemBatchSize(ctx context.Context, code entities.ItemCode, size decimal.Decimal) error {
	size = entities.EffectiveBatchSize(size, entities.DefaultBatchSize)
	return s.updateItem(ctx, code, `UPDATE items SET batch_size = ? WHERE code = ?`, size, string(code))
}

func (s *Store) updateItem(ctx context.Context, code entities.ItemCode, query string, args ...interface{}) error {
	n, err := s.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", code, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: item %s", entities.ErrNotFound, code)
	}
	return nil
}

// DeleteItem removes an item that no row references any more
func (s *Store) DeleteItem(ctx context.Context, code entities.ItemCode) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		q := queries{ext: tx}
		item, err := q.findItemByCode(ctx, code)
		if err != nil {
			return err
		}

		referenced, err := q.isReferenced(ctx, item.ID)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("%w: item %s is still referenced", entities.ErrInvalidReference, code)
		}

		_, err = q.exec(ctx, `DELETE FROM items WHERE id = ?`, int64(item.ID))
		return err
	})
}

// GetPlanningAttributes returns lead time and batch size for a code
func (q queries) GetPlanningAttributes(ctx context.Context, code entities.ItemCode) (*entities.PlanningAttributes, error) {
	item, err := q.findItemByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &entities.PlanningAttributes{
		LeadTimeDays: item.LeadTimeDays,
		BatchSize:    item.BatchSize,
	}, nil
}

func (q queries) createItem(ctx context.Context, item *entities.Item) (entities.ItemID, error) {
	if item.Code == "" {
		return 0, fmt.Errorf("%w: item code cannot be empty", entities.ErrInvalidArgument)
	}
	taken, err := q.exists(ctx, `SELECT id FROM items WHERE code = ?`, string(item.Code))
	if err != nil {
		return 0, fmt.Errorf("failed to check item %s: %w", item.Code, err)
	}
	if taken {
		return 0, fmt.Errorf("%w: item %s already exists", entities.ErrInvalidArgument, item.Code)
	}

	name := item.Name
	if name == "" {
		name = string(item.Code)
	}
	uom := item.UnitOfMeasure
	if uom == "" {
		uom = entities.DefaultUnitOfMeasure
	}

	id, err := q.insert(ctx,
		`INSERT INTO items (code, name, uom, lead_time, batch_size) VALUES (?, ?, ?, ?, ?)`,
		string(item.Code), name, uom, item.LeadTimeDays,
		entities.EffectiveBatchSize(item.BatchSize, entities.DefaultBatchSize))
	if err != nil {
		return 0, fmt.Errorf("failed to insert item %s: %w", item.Code, err)
	}

	item.ID = entities.ItemID(id)
	return item.ID, nil
}

func (q queries) findItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error) {
	var item entities.Item
	err := q.get(ctx, &item, `SELECT `+itemColumns+` FROM items WHERE code = ?`, string(code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", entities.ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", code, err)
	}
	return &item, nil
}

func (q queries) resolve(ctx context.Context, code entities.ItemCode) (entities.ItemID, error) {
	item, err := q.findItemByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

func (q queries) itemExists(ctx context.Context, id entities.ItemID) (bool, error) {
	return q.exists(ctx, `SELECT id FROM items WHERE id = ?`, int64(id))
}

func (q queries) isReferenced(ctx context.Context, id entities.ItemID) (bool, error) {
	checks := []string{
		`SELECT id FROM inventory WHERE item_id = ?`,
		`SELECT id FROM purchase_orders WHERE item_id = ?`,
		`SELECT id FROM production_orders WHERE item_id = ?`,
	}
	for _, query := range checks {
		found, err := q.exists(ctx, query, int64(id))
		if err != nil || found {
			return found, err
		}
	}
	return q.exists(ctx,
		`SELECT id FROM boms WHERE parent_item_id = ? OR child_item_id = ? OR dilution_main_item_id = ?`,
		int64(id), int64(id), int64(id))
}
