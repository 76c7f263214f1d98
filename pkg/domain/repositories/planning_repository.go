package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// PlanningRepository provides the read-only data consumed by a planning run
type PlanningRepository interface {
	ListOpenProductionOrders(ctx context.Context) ([]entities.ProductionOrderView, error)
	ListBOMEdges(ctx context.Context) ([]entities.BOMEdgeView, error)
	SumInventoryByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error)
	SumOpenPOByItem(ctx context.Context) (map[entities.ItemCode]decimal.Decimal, error)

	// GetPlanningAttributes returns entities.ErrNotFound when the code does not resolve
	GetPlanningAttributes(ctx context.Context, code entities.ItemCode) (*entities.PlanningAttributes, error)
}

// SnapshotReader is implemented by stores that can serve a planning run from
// one consistent read. The planning service uses it when available.
type SnapshotReader interface {
	WithSnapshot(ctx context.Context, fn func(repo PlanningRepository) error) error
}
