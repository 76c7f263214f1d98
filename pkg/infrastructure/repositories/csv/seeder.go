package csv

import (
	"context"
	"fmt"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
)

// SeedSummary counts the rows written by Seed. A row that fails is recorded in
// Errors and the rest of the scenario is still applied.
type SeedSummary struct {
	Items            int      `json:"items"`
	BOMLines         int      `json:"bom_lines"`
	Inventory        int      `json:"inventory"`
	PurchaseOrders   int      `json:"purchase_orders"`
	ProductionOrders int      `json:"production_orders"`
	Errors           []string `json:"errors,omitempty"`
}

// Seed writes a scenario into the catalog. Items go first so that every other
// table can resolve codes.
func Seed(ctx context.Context, repo repositories.CatalogRepository, s *Scenario) (*SeedSummary, error) {
	summary := &SeedSummary{}
	fail := func(kind string, row int, err error) {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s row %d: %v", kind, row, err))
	}

	for i, item := range s.Items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := repo.CreateItem(ctx, item); err != nil {
			fail("item", i+1, err)
			continue
		}
		summary.Items++
	}

	for i, row := range s.BOM {
		if _, err := repo.AddBOMEdge(ctx, bomInput(ctx, repo, row)); err != nil {
			fail("bom", i+1, err)
			continue
		}
		summary.BOMLines++
	}

	for i, row := range s.Inventory {
		if _, err := repo.AddInventoryLot(ctx, row.Code, row.Location, row.Qty); err != nil {
			fail("inventory", i+1, err)
			continue
		}
		summary.Inventory++
	}

	for i, row := range s.PurchaseOrders {
		if _, err := repo.AddPurchaseOrder(ctx, row.Code, row.Qty, row.Date); err != nil {
			fail("purchase order", i+1, err)
			continue
		}
		summary.PurchaseOrders++
	}

	for i, row := range s.ProductionOrders {
		if _, err := repo.AddProductionOrder(ctx, row.Code, row.Qty, row.Date); err != nil {
			fail("production order", i+1, err)
			continue
		}
		summary.ProductionOrders++
	}

	return summary, nil
}

// bomInput converts a per-batch quantity into a per-unit quantity using the
// parent's batch size, defaulting to 25 when the parent is unknown
func bomInput(ctx context.Context, repo repositories.CatalogRepository, row BOMRow) entities.BOMEdgeInput {
	input := entities.BOMEdgeInput{
		Parent:       row.Parent,
		Child:        row.Child,
		QtyPer:       row.Qty,
		IsDilution:   row.IsDilution,
		PerMainQty:   row.PerMainQty,
		DilutionMain: row.DilutionMain,
	}
	if !row.PerBatch.Valid || !row.PerBatch.Decimal.IsPositive() {
		return input
	}

	batchSize := entities.DefaultBatchSize
	if parent, err := repo.FindItemByCode(ctx, row.Parent); err == nil {
		batchSize = entities.EffectiveBatchSize(parent.BatchSize, entities.DefaultBatchSize)
	}
	input.QtyPer = row.PerBatch.Decimal.Div(batchSize)
	return input
}
