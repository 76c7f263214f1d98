package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

type edgeRow struct {
	ID         int64               `db:"id"`
	ParentID   int64               `db:"parent_item_id"`
	ChildID    int64               `db:"child_item_id"`
	QtyPer     decimal.Decimal     `db:"qty"`
	IsDilution bool                `db:"is_dilution"`
	PerMainQty decimal.NullDecimal `db:"per_main_qty"`
	MainID     sql.NullInt64       `db:"dilution_main_item_id"`
}

func (r edgeRow) edge() entities.BOMEdge {
	edge := entities.BOMEdge{
		ID:         r.ID,
		ParentID:   entities.ItemID(r.ParentID),
		ChildID:    entities.ItemID(r.ChildID),
		QtyPer:     r.QtyPer,
		IsDilution: r.IsDilution,
		PerMainQty: r.PerMainQty,
	}
	if r.MainID.Valid {
		main := entities.ItemID(r.MainID.Int64)
		edge.DilutionMainID = &main
	}
	return edge
}

type edgeViewRow struct {
	ID               int64               `db:"id"`
	ParentCode       entities.ItemCode   `db:"parent_code"`
	ChildCode        entities.ItemCode   `db:"child_code"`
	QtyPer           decimal.Decimal     `db:"qty"`
	IsDilution       bool                `db:"is_dilution"`
	PerMainQty       decimal.NullDecimal `db:"per_main_qty"`
	DilutionMainCode entities.ItemCode   `db:"dilution_main_code"`
}

const edgeColumns = `id, parent_item_id, child_item_id, qty, is_dilution, per_main_qty, dilution_main_item_id`

const edgeViewQuery = `
	SELECT b.id, p.code AS parent_code, c.code AS child_code, b.qty, b.is_dilution,
		b.per_main_qty, COALESCE(m.code, '') AS dilution_main_code
	FROM boms b
	JOIN items p ON p.id = b.parent_item_id
	JOIN items c ON c.id = b.child_item_id
	LEFT JOIN items m ON m.id = b.dilution_main_item_id
`

// AddBOMEdge adds a BOM line, resolving parent, child and dilution main by code
func (s *Store) AddBOMEdge(ctx context.Context, input entities.BOMEdgeInput) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		q := queries{ext: tx}
		edge, err := q.newEdge(ctx, input)
		if err != nil {
			return err
		}

		id, err = q.insert(ctx,
			`INSERT INTO boms (parent_item_id, child_item_id, qty, is_dilution, per_main_qty, dilution_main_item_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			int64(edge.ParentID), int64(edge.ChildID), edge.QtyPer, edge.IsDilution, edge.PerMainQty, idArg(edge.DilutionMainID))
		if err != nil {
			return fmt.Errorf("failed to insert bom line: %w", err)
		}
		return nil
	})
	return id, err
}

// UpdateBOMEdge applies the non-nil fields of update to an existing line
func (s *Store) UpdateBOMEdge(ctx context.Context, id int64, update entities.BOMEdgeUpdate) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		q := queries{ext: tx}
		current, err := q.edgeView(ctx, id)
		if err != nil {
			return err
		}

		input := entities.BOMEdgeInput{
			Parent:       current.ParentCode,
			Child:        current.ChildCode,
			QtyPer:       current.QtyPer,
			IsDilution:   current.IsDilution,
			PerMainQty:   current.PerMainQty,
			DilutionMain: current.DilutionMainCode,
		}
		if update.Parent != nil {
			input.Parent = *update.Parent
		}
		if update.Child != nil {
			input.Child = *update.Child
		}
		if update.QtyPer != nil {
			input.QtyPer = *update.QtyPer
		}
		if update.IsDilution != nil {
			input.IsDilution = *update.IsDilution
		}
		if update.PerMainQty != nil {
			input.PerMainQty = *update.PerMainQty
		}
		if update.DilutionMain != nil {
			input.DilutionMain = *update.DilutionMain
		}

		edge, err := q.newEdge(ctx, input)
		if err != nil {
			return err
		}
		edge.ID = id
		return q.writeEdge(ctx, *edge)
	})
}

// DeleteBOMEdge removes a BOM line
func (s *Store) DeleteBOMEdge(ctx context.Context, id int64) error {
	n, err := s.exec(ctx, `DELETE FROM boms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bom line %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bom line %d", entities.ErrNotFound, id)
	}
	return nil
}

// ListBOMEdgesForParent returns the lines whose nominal parent is code
func (s *Store) ListBOMEdgesForParent(ctx context.Context, parent entities.ItemCode) ([]entities.BOMEdgeView, error) {
	parentID, err := s.resolve(ctx, parent)
	if err != nil {
		return nil, err
	}
	return s.edgeViews(ctx, edgeViewQuery+` WHERE b.parent_item_id = ? ORDER BY b.id`, int64(parentID))
}

// ListBOMEdges returns every BOM line resolved to item codes
func (q queries) ListBOMEdges(ctx context.Context) ([]entities.BOMEdgeView, error) {
	return q.edgeViews(ctx, edgeViewQuery+` ORDER BY b.id`)
}

func (q queries) edgeViews(ctx context.Context, query string, args ...interface{}) ([]entities.BOMEdgeView, error) {
	var rows []edgeViewRow
	if err := q.list(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bom lines: %w", err)
	}

	views := make([]entities.BOMEdgeView, 0, len(rows))
	for _, row := range rows {
		views = append(views, entities.BOMEdgeView(row))
	}
	return views, nil
}

func (q queries) edgeView(ctx context.Context, id int64) (*entities.BOMEdgeView, error) {
	views, err := q.edgeViews(ctx, edgeViewQuery+` WHERE b.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("%w: bom line %d", entities.ErrNotFound, id)
	}
	return &views[0], nil
}

func (q queries) newEdge(ctx context.Context, input entities.BOMEdgeInput) (*entities.BOMEdge, error) {
	parentID, err := q.resolve(ctx, input.Parent)
	if err != nil {
		return nil, err
	}
	childID, err := q.resolve(ctx, input.Child)
	if err != nil {
		return nil, err
	}

	var mainID *entities.ItemID
	if input.DilutionMain != "" {
		id, err := q.resolve(ctx, input.DilutionMain)
		if err != nil {
			return nil, err
		}
		mainID = &id
	}

	return entities.NewBOMEdge(parentID, childID, input.QtyPer, input.IsDilution, input.PerMainQty, mainID)
}

func (q queries) writeEdge(ctx context.Context, edge entities.BOMEdge) error {
	_, err := q.exec(ctx,
		`UPDATE boms SET parent_item_id = ?, child_item_id = ?, qty = ?, is_dilution = ?,
			per_main_qty = ?, dilution_main_item_id = ?
		WHERE id = ?`,
		int64(edge.ParentID), int64(edge.ChildID), edge.QtyPer, edge.IsDilution,
		edge.PerMainQty, idArg(edge.DilutionMainID), edge.ID)
	if err != nil {
		return fmt.Errorf("failed to write bom line %d: %w", edge.ID, err)
	}
	return nil
}

func (q queries) bomEdgesByItem(ctx context.Context, id entities.ItemID) ([]entities.BOMEdge, error) {
	var rows []edgeRow
	query := `SELECT ` + edgeColumns + ` FROM boms
		WHERE parent_item_id = ? OR child_item_id = ? OR dilution_main_item_id = ?
		ORDER BY id`
	if err := q.list(ctx, &rows, query, int64(id), int64(id), int64(id)); err != nil {
		return nil, fmt.Errorf("failed to read bom lines for item %d: %w", id, err)
	}

	var edges []entities.BOMEdge
	for _, row := range rows {
		edges = append(edges, row.edge())
	}
	return edges, nil
}

// reassignBOMEdges rewrites each role separately so a line referencing the item
// in several roles is still counted once
func (q queries) reassignBOMEdges(ctx context.Context, from, to entities.ItemID) (int64, error) {
	edges, err := q.bomEdgesByItem(ctx, from)
	if err != nil {
		return 0, err
	}
	for _, edge := range edges {
		rewritten := edge.Reassign(from, to)
		if rewritten.ParentID == rewritten.ChildID {
			return 0, fmt.Errorf("%w: bom line %d would consume its own parent", entities.ErrInvalidReference, edge.ID)
		}
	}

	updates := []string{
		`UPDATE boms SET parent_item_id = ? WHERE parent_item_id = ?`,
		`UPDATE boms SET child_item_id = ? WHERE child_item_id = ?`,
		`UPDATE boms SET dilution_main_item_id = ? WHERE dilution_main_item_id = ?`,
	}
	for _, query := range updates {
		if _, err := q.exec(ctx, query, int64(to), int64(from)); err != nil {
			return 0, err
		}
	}
	return int64(len(edges)), nil
}

func (q queries) restoreBOMEdge(ctx context.Context, edge entities.BOMEdge) error {
	refs := []entities.ItemID{edge.ParentID, edge.ChildID}
	if edge.DilutionMainID != nil {
		refs = append(refs, *edge.DilutionMainID)
	}
	if err := q.checkRestore(ctx, "boms", "bom line", edge.ID, refs...); err != nil {
		return err
	}
	return q.writeEdge(ctx, edge)
}
