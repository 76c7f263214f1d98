package substitution

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
	"github.com/vsinha/blendmrp/pkg/domain/services"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
)

// Replace re-points every inventory lot, BOM line (as parent, child or dilution
// main), purchase order and production order from oldCode to newCode in one
// transaction, after recording a snapshot of those rows in the ledger.
//
// A missing newCode is created as a placeholder item when createIfMissing is
// set. The old item is left in place, unreferenced.
func (s *Service) Replace(ctx context.Context, oldCode, newCode entities.ItemCode, createIfMissing bool) (*dto.ReplaceResult, error) {
	result, err := s.replace(ctx, oldCode, newCode, createIfMissing)
	s.observeReplacement(ModeSingle, result, err)
	return result, err
}

func (s *Service) replace(ctx context.Context, oldCode, newCode entities.ItemCode, createIfMissing bool) (*dto.ReplaceResult, error) {
	log := s.logger.With().Str("old_code", string(oldCode)).Str("new_code", string(newCode)).Logger()

	if oldCode == "" || newCode == "" {
		return nil, fmt.Errorf("%w: old and new item codes are required", entities.ErrInvalidArgument)
	}
	if oldCode == newCode {
		return nil, fmt.Errorf("%w: cannot replace %s with itself", entities.ErrInvalidArgument, oldCode)
	}

	result := &dto.ReplaceResult{OldCode: oldCode, NewCode: newCode}
	err := s.store.WithTx(ctx, func(tx repositories.SubstitutionTx) error {
		oldItem, err := tx.FindItemByCode(ctx, oldCode)
		if err != nil {
			return fmt.Errorf("failed to resolve old item: %w", err)
		}

		newItem, created, err := s.resolveTarget(ctx, tx, newCode, createIfMissing)
		if err != nil {
			return err
		}
		result.CreatedNew = created

		snapshot, err := capture(ctx, tx, *oldItem)
		if err != nil {
			return err
		}
		for _, edge := range snapshot.BOMEdges {
			rewritten := edge.Reassign(oldItem.ID, newItem.ID)
			if rewritten.ParentID == rewritten.ChildID {
				return fmt.Errorf("%w: bom line %d would make %s consume itself", entities.ErrInvalidReference, edge.ID, newCode)
			}
		}

		entry := &entities.LedgerEntry{
			Timestamp: s.now().UTC(),
			OldCode:   oldCode,
			NewCode:   newCode,
			Snapshot:  *snapshot,
		}
		historyID, err := tx.AppendLedgerEntry(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
		result.HistoryID = historyID
		result.Timestamp = entry.Timestamp

		counts, err := rewrite(ctx, tx, oldItem.ID, newItem.ID)
		if err != nil {
			return fmt.Errorf("%w: replacing %s with %s rolled back: %w", entities.ErrAtomicityViolation, oldCode, newCode, err)
		}
		result.RowsUpdated = counts
		return nil
	})
	if err != nil {
		s.rolledBack(log, err, "replacement rolled back")
		return nil, err
	}

	result.Replaced = true
	log.Info().
		Int64("history_id", result.HistoryID).
		Int64("rows", result.RowsUpdated.Total()).
		Bool("created_new", result.CreatedNew).
		Msg("item replaced")
	s.publish(events.ItemReplacedEvent, events.ItemReplaced{
		HistoryID:  result.HistoryID,
		OldCode:    oldCode,
		NewCode:    newCode,
		CreatedNew: result.CreatedNew,
		Rows:       result.RowsUpdated.Total(),
	})

	return result, nil
}

func (s *Service) resolveTarget(ctx context.Context, tx repositories.SubstitutionTx, code entities.ItemCode, createIfMissing bool) (*entities.Item, bool, error) {
	item, err := tx.FindItemByCode(ctx, code)
	if err == nil {
		return item, false, nil
	}
	if !errors.Is(err, entities.ErrNotFound) || !createIfMissing {
		return nil, false, fmt.Errorf("failed to resolve new item: %w", err)
	}

	placeholder := entities.NewPlaceholderItem(code, s.config.PlaceholderUOM)
	id, err := tx.CreateItem(ctx, placeholder)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create placeholder item %s: %w", code, err)
	}
	placeholder.ID = id
	return placeholder, true, nil
}

// capture snapshots the old item and every row referencing it
func capture(ctx context.Context, tx repositories.SubstitutionTx, old entities.Item) (*entities.Snapshot, error) {
	snapshot := &entities.Snapshot{Version: entities.SnapshotVersion, OldItem: old}

	var err error
	if snapshot.Inventory, err = tx.InventoryByItem(ctx, old.ID); err != nil {
		return nil, fmt.Errorf("failed to snapshot inventory: %w", err)
	}
	if snapshot.BOMEdges, err = tx.BOMEdgesByItem(ctx, old.ID); err != nil {
		return nil, fmt.Errorf("failed to snapshot bom lines: %w", err)
	}
	if snapshot.PurchaseOrders, err = tx.PurchaseOrdersByItem(ctx, old.ID); err != nil {
		return nil, fmt.Errorf("failed to snapshot purchase orders: %w", err)
	}
	if snapshot.ProductionOrders, err = tx.ProductionOrdersByItem(ctx, old.ID); err != nil {
		return nil, fmt.Errorf("failed to snapshot production orders: %w", err)
	}
	return snapshot, nil
}

func rewrite(ctx context.Context, tx repositories.SubstitutionTx, from, to entities.ItemID) (dto.RowCounts, error) {
	var counts dto.RowCounts
	var err error

	if counts.Inventory, err = tx.ReassignInventory(ctx, from, to); err != nil {
		return counts, fmt.Errorf("inventory: %w", err)
	}
	if counts.BOMEdges, err = tx.ReassignBOMEdges(ctx, from, to); err != nil {
		return counts, fmt.Errorf("bom lines: %w", err)
	}
	if counts.PurchaseOrders, err = tx.ReassignPurchaseOrders(ctx, from, to); err != nil {
		return counts, fmt.Errorf("purchase orders: %w", err)
	}
	if counts.ProductionOrders, err = tx.ReassignProductionOrders(ctx, from, to); err != nil {
		return counts, fmt.Errorf("production orders: %w", err)
	}
	return counts, nil
}

// ReplaceBulk replaces every item matching oldPattern. With a wildcard, the text
// it captures is substituted into newPattern's first wildcard (or newPattern is
// used verbatim when it has none). Without a wildcard this is a single exact
// replacement. Each item is replaced in its own transaction and failures are
// reported per item.
func (s *Service) ReplaceBulk(ctx context.Context, oldPattern, newPattern string, createIfMissing bool) (*dto.BulkReplaceResult, error) {
	if oldPattern == "" || newPattern == "" {
		return nil, fmt.Errorf("%w: old and new patterns are required", entities.ErrInvalidArgument)
	}

	mappings, err := s.match(ctx, oldPattern, newPattern)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkReplaceResult{
		OldPattern: oldPattern,
		NewPattern: newPattern,
		Items:      make([]dto.BulkReplaceItem, 0, len(mappings)),
	}
	for _, m := range mappings {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item := dto.BulkReplaceItem{OldCode: m.Old, NewCode: m.New}
		replaced, err := s.replace(ctx, m.Old, m.New, createIfMissing)
		s.observeReplacement(ModeBulk, replaced, err)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.OK = true
			item.HistoryID = replaced.HistoryID
			ts := replaced.Timestamp
			item.Timestamp = &ts
		}
		result.Items = append(result.Items, item)
	}

	s.logger.Info().
		Str("old_pattern", oldPattern).
		Str("new_pattern", newPattern).
		Int("matched", len(result.Items)).
		Int("failed", result.Failed()).
		Msg("bulk replacement finished")
	s.publish(events.BulkReplaceFinishedEvent, events.BulkReplaceFinished{
		OldPattern: oldPattern,
		NewPattern: newPattern,
		Matched:    len(result.Items),
		Failed:     result.Failed(),
	})

	return result, nil
}

func (s *Service) match(ctx context.Context, oldPattern, newPattern string) ([]services.CodeMapping, error) {
	oldP := services.ParseCodePattern(oldPattern)
	if !oldP.HasWildcard() {
		return []services.CodeMapping{{
			Old: entities.ItemCode(oldPattern),
			New: entities.ItemCode(newPattern),
		}}, nil
	}

	codes, err := s.store.ListItemCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list item codes: %w", err)
	}
	return services.MapCodes(codes, oldP, services.ParseCodePattern(newPattern)), nil
}
