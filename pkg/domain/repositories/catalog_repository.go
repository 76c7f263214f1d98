package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// CatalogRepository provides the CRUD surface used to maintain master and order data
type CatalogRepository interface {
	CreateItem(ctx context.Context, item *entities.Item) (entities.ItemID, error)
	FindItemByCode(ctx context.Context, code entities.ItemCode) (*entities.Item, error)
	ListItems(ctx context.Context) ([]entities.Item, error)
	SetItemLeadTime(ctx context.Context, code entities.ItemCode, days int) error
	SetItemBatchSize(ctx context.Context, code entities.ItemCode, size decimal.Decimal) error
	// DeleteItem returns entities.ErrInvalidReference while any row still references the item
	DeleteItem(ctx context.Context, code entities.ItemCode) error

	AddInventoryLot(ctx context.Context, code entities.ItemCode, location string, qty decimal.Decimal) (int64, error)
	ListInventory(ctx context.Context) ([]entities.InventoryView, error)

	AddBOMEdge(ctx context.Context, input entities.BOMEdgeInput) (int64, error)
	UpdateBOMEdge(ctx context.Context, id int64, update entities.BOMEdgeUpdate) error
	DeleteBOMEdge(ctx context.Context, id int64) error
	ListBOMEdges(ctx context.Context) ([]entities.BOMEdgeView, error)
	ListBOMEdgesForParent(ctx context.Context, parent entities.ItemCode) ([]entities.BOMEdgeView, error)

	AddPurchaseOrder(ctx context.Context, code entities.ItemCode, qty decimal.Decimal, eta *time.Time) (int64, error)
	SetPurchaseOrderStatus(ctx context.Context, id int64, status entities.OrderStatus) error
	ListPurchaseOrders(ctx context.Context) ([]entities.PurchaseOrderView, error)

	AddProductionOrder(ctx context.Context, code entities.ItemCode, qty decimal.Decimal, due *time.Time) (int64, error)
	SetProductionOrderStatus(ctx context.Context, id int64, status entities.OrderStatus) error
}
