package inventory

import (
	"context"

	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

const (
	MovementAdjustment = "adjustment"
	MovementSale       = "sale"
)

type UseCase interface {
	CreateInventory(ctx context.Context, sellerID string, input *dto.CreateInventoryInput) (*model.Inventory, error)
	GetInventory(ctx context.Context, id string) (*model.Inventory, error)
	ListByProduct(ctx context.Context, productID string) ([]model.Inventory, error)

	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Stock, error)
	// RecordSale takes sold units off the SKU and adds them to units_sold.
	RecordSale(ctx context.Context, sku string, units int, orderID string) (*model.Stock, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	// AuditStock re-evaluates every stock status and returns how many changed.
	AuditStock(ctx context.Context) (int, error)
}
