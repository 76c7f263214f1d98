package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

type ledgerRow struct {
	ID       int64  `db:"id"`
	TS       string `db:"ts"`
	OldCode  string `db:"old_code"`
	NewCode  string `db:"new_code"`
	Snapshot string `db:"snapshot"`
}

func (r ledgerRow) summary() (entities.LedgerSummary, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.TS)
	if err != nil {
		return entities.LedgerSummary{}, fmt.Errorf("history entry %d has corrupt timestamp: %w", r.ID, err)
	}
	return entities.LedgerSummary{
		ID:        r.ID,
		Timestamp: ts,
		OldCode:   entities.ItemCode(r.OldCode),
		NewCode:   entities.ItemCode(r.NewCode),
	}, nil
}

// GetLedgerEntry returns a ledger entry with its decoded snapshot
func (s *Store) GetLedgerEntry(ctx context.Context, id int64) (*entities.LedgerEntry, error) {
	var row ledgerRow
	err := s.get(ctx, &row, `SELECT id, ts, old_code, new_code, snapshot FROM replace_history WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: history entry %d", entities.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry %d: %w", id, err)
	}

	summary, err := row.summary()
	if err != nil {
		return nil, err
	}
	snapshot, err := entities.DecodeSnapshot([]byte(row.Snapshot))
	if err != nil {
		return nil, fmt.Errorf("ledger entry %d: %w", id, err)
	}
	return &entities.LedgerEntry{
		ID:        summary.ID,
		Timestamp: summary.Timestamp,
		OldCode:   summary.OldCode,
		NewCode:   summary.NewCode,
		Snapshot:  *snapshot,
	}, nil
}

// ListLedgerEntries returns ledger summaries newest first
func (s *Store) ListLedgerEntries(ctx context.Context) ([]entities.LedgerSummary, error) {
	var rows []ledgerRow
	if err := s.list(ctx, &rows, `SELECT id, ts, old_code, new_code, '' AS snapshot FROM replace_history ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	summaries := make([]entities.LedgerSummary, 0, len(rows))
	for _, row := range rows {
		summary, err := row.summary()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (q queries) appendLedgerEntry(ctx context.Context, entry *entities.LedgerEntry) (int64, error) {
	payload, err := entities.EncodeSnapshot(&entry.Snapshot)
	if err != nil {
		return 0, err
	}

	id, err := q.insert(ctx,
		`INSERT INTO replace_history (ts, old_code, new_code, snapshot) VALUES (?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano), string(entry.OldCode), string(entry.NewCode), string(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to insert history entry: %w", err)
	}
	entry.ID = id
	return id, nil
}
