package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// ledgerRow stores a ledger entry the way a relational store would, with the
// snapshot as an encoded payload
type ledgerRow struct {
	id       int64
	ts       time.Time
	oldCode  entities.ItemCode
	newCode  entities.ItemCode
	snapshot []byte
}

// GetLedgerEntry returns a ledger entry with its decoded snapshot
func (s *Store) GetLedgerEntry(ctx context.Context, id int64) (*entities.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.getLedgerEntry(id)
}

// ListLedgerEntries returns ledger summaries newest first
func (s *Store) ListLedgerEntries(ctx context.Context) ([]entities.LedgerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]entities.LedgerSummary, 0, len(s.state.ledger))
	for _, row := range slices.Backward(s.state.ledger) {
		summaries = append(summaries, entities.LedgerSummary{
			ID:        row.id,
			Timestamp: row.ts,
			OldCode:   row.oldCode,
			NewCode:   row.newCode,
		})
	}
	return summaries, nil
}

func (st *state) getLedgerEntry(id int64) (*entities.LedgerEntry, error) {
	for _, row := range st.ledger {
		if row.id != id {
			continue
		}
		snapshot, err := entities.DecodeSnapshot(row.snapshot)
		if err != nil {
			return nil, fmt.Errorf("ledger entry %d: %w", id, err)
		}
		return &entities.LedgerEntry{
			ID:        row.id,
			Timestamp: row.ts,
			OldCode:   row.oldCode,
			NewCode:   row.newCode,
			Snapshot:  *snapshot,
		}, nil
	}
	return nil, fmt.Errorf("%w: history entry %d", entities.ErrNotFound, id)
}

func (st *state) appendLedgerEntry(entry *entities.LedgerEntry) (int64, error) {
	payload, err := entities.EncodeSnapshot(&entry.Snapshot)
	if err != nil {
		return 0, err
	}

	st.nextLedgerID++
	st.ledger = append(st.ledger, ledgerRow{
		id:       st.nextLedgerID,
		ts:       entry.Timestamp,
		oldCode:  entry.OldCode,
		newCode:  entry.NewCode,
		snapshot: payload,
	})
	entry.ID = st.nextLedgerID
	return entry.ID, nil
}
