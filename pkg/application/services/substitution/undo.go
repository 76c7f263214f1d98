package substitution

import (
	"context"
	"errors"
	"fmt"

	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
)

// Undo restores every row captured by a ledger entry to its snapshotted values,
// by row identity, re-pointing references to the old item. The old item is
// recreated when it no longer exists. The ledger entry itself is kept, and
// later replacements touching the same rows are not unwound.
func (s *Service) Undo(ctx context.Context, historyID int64) (*dto.UndoResult, error) {
	result, err := s.undo(ctx, historyID)
	if s.metrics != nil {
		s.metrics.ObserveUndo(err)
	}
	return result, err
}

func (s *Service) undo(ctx context.Context, historyID int64) (*dto.UndoResult, error) {
	log := s.logger.With().Int64("history_id", historyID).Logger()

	entry, err := s.store.GetLedgerEntry(ctx, historyID)
	if err != nil {
		log.Warn().Err(err).Msg("undo failed")
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}
	snapshot := entry.Snapshot

	result := &dto.UndoResult{
		HistoryID:    historyID,
		OldCode:      snapshot.OldItem.Code,
		RowsRestored: snapshot.RowCount(),
	}
	err = s.store.WithTx(ctx, func(tx repositories.SubstitutionTx) error {
		oldID, recreated, err := ensureItem(ctx, tx, snapshot.OldItem)
		if err != nil {
			return err
		}
		result.RecreatedItem = recreated

		return restore(ctx, tx, &snapshot, oldID)
	})
	if err != nil {
		s.rolledBack(log, err, "undo rolled back")
		return nil, err
	}

	result.Undone = true
	log.Info().
		Str("old_code", string(result.OldCode)).
		Int("rows", result.RowsRestored).
		Bool("recreated_item", result.RecreatedItem).
		Msg("replacement undone")
	s.publish(events.ReplacementUndoneEvent, events.ReplacementUndone{
		HistoryID:     historyID,
		OldCode:       result.OldCode,
		RecreatedItem: result.RecreatedItem,
		Rows:          result.RowsRestored,
	})

	return result, nil
}

// ensureItem returns the current identity of the snapshotted item, recreating it if needed
func ensureItem(ctx context.Context, tx repositories.SubstitutionTx, old entities.Item) (entities.ItemID, bool, error) {
	existing, err := tx.FindItemByCode(ctx, old.Code)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, entities.ErrNotFound) {
		return 0, false, fmt.Errorf("failed to resolve old item: %w", err)
	}

	recreated := old
	recreated.ID = 0
	id, err := tx.CreateItem(ctx, &recreated)
	if err != nil {
		return 0, false, fmt.Errorf("failed to recreate item %s: %w", old.Code, err)
	}
	return id, true, nil
}

func restore(ctx context.Context, tx repositories.SubstitutionTx, snapshot *entities.Snapshot, oldID entities.ItemID) error {
	snapshotID := snapshot.OldItem.ID
	remap := func(id entities.ItemID) entities.ItemID {
		if id == snapshotID {
			return oldID
		}
		return id
	}

	for _, lot := range snapshot.Inventory {
		lot.ItemID = remap(lot.ItemID)
		if err := tx.RestoreInventoryLot(ctx, lot); err != nil {
			return restoreError("inventory lot", lot.ID, err)
		}
	}

	for _, edge := range snapshot.BOMEdges {
		restored := edge.Reassign(snapshotID, oldID)
		if err := checkReferences(ctx, tx, restored, oldID); err != nil {
			return err
		}
		if err := tx.RestoreBOMEdge(ctx, restored); err != nil {
			return restoreError("bom line", edge.ID, err)
		}
	}

	for _, po := range snapshot.PurchaseOrders {
		po.ItemID = remap(po.ItemID)
		if err := tx.RestorePurchaseOrder(ctx, po); err != nil {
			return restoreError("purchase order", po.ID, err)
		}
	}

	for _, order := range snapshot.ProductionOrders {
		order.ItemID = remap(order.ItemID)
		if err := tx.RestoreProductionOrder(ctx, order); err != nil {
			return restoreError("production order", order.ID, err)
		}
	}

	return nil
}

// restoreError reports a snapshotted row that has since been deleted as
// ErrInvalidReference, so it cannot be mistaken for a missing history entry.
func restoreError(kind string, id int64, err error) error {
	if errors.Is(err, entities.ErrNotFound) {
		return fmt.Errorf("%w: %s %d no longer exists (%v)", entities.ErrInvalidReference, kind, id, err)
	}
	return fmt.Errorf("failed to restore %s %d: %w", kind, id, err)
}

// checkReferences verifies the references of a restored BOM line other than the old item still resolve
func checkReferences(ctx context.Context, tx repositories.SubstitutionTx, edge entities.BOMEdge, oldID entities.ItemID) error {
	refs := []entities.ItemID{edge.ParentID, edge.ChildID}
	if edge.DilutionMainID != nil {
		refs = append(refs, *edge.DilutionMainID)
	}
	for _, ref := range refs {
		if ref == oldID {
			continue
		}
		ok, err := tx.ItemExists(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to check item %d: %w", ref, err)
		}
		if !ok {
			return fmt.Errorf("%w: bom line %d references item %d which no longer exists", entities.ErrInvalidReference, edge.ID, ref)
		}
	}
	return nil
}
