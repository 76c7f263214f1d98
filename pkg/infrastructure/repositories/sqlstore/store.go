package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
)

var (
	_ repositories.PlanningRepository = (*Store)(nil)
	_ repositories.SnapshotReader     = (*Store)(nil)
	_ repositories.CatalogRepository  = (*Store)(nil)
	_ repositories.SubstitutionStore  = (*Store)(nil)
	_ repositories.SubstitutionTx     = (*transaction)(nil)
	_ repositories.PlanningRepository = queries{}
)

// Store implements the repository interfaces over a relational database
type Store struct {
	queries
	db *DB
}

// NewStore creates a store over an open database
func NewStore(db *DB) *Store {
	return &Store{queries: queries{ext: db.DB}, db: db}
}

// WithTx runs fn inside a database transaction, rolling back if it returns an error
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.SubstitutionTx) error) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&transaction{queries{ext: tx}})
	})
}

// WithSnapshot runs fn against a read transaction so every planning read sees the same data
func (s *Store) WithSnapshot(ctx context.Context, fn func(repo repositories.PlanningRepository) error) error {
	return s.db.WithReadTx(ctx, func(tx *sqlx.Tx) error {
		return fn(queries{ext: tx})
	})
}

// queries runs statements against either the pool or an open transaction
type queries struct {
	ext sqlx.ExtContext
}

func (q queries) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q queries) list(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q queries) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q queries) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := q.get(ctx, &id, query+" RETURNING id", args...); err != nil {
		return 0, err
	}
	return id, nil
}

func (q queries) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int
	if err := q.get(ctx, &n, "SELECT COUNT(*) FROM ("+query+") AS matched", args...); err != nil {
		return false, err
	}
	return n > 0, nil
}

// dateArg stores a nullable calendar date as YYYY-MM-DD text
func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return entities.FormatDate(t)
}

func parseDateColumn(col sql.NullString) (*time.Time, error) {
	if !col.Valid {
		return nil, nil
	}
	t, err := entities.ParseDate(col.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt date column: %w", err)
	}
	return t, nil
}

func idArg(id *entities.ItemID) interface{} {
	if id == nil {
		return nil
	}
	return int64(*id)
}
