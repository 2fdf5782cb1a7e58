package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// StockChange mutates the locked stock row and returns the movement to log.
type StockChange func(stock *model.Stock) (*model.StockMovement, error)

type Repository interface {
	// Create inserts the inventory row, its attribute values and an empty
	// stock row in one transaction.
	Create(ctx context.Context, inv *model.Inventory, stock *model.Stock) error
	FindByID(ctx context.Context, id string) (*model.Inventory, error)
	FindBySKU(ctx context.Context, sku string) (*model.Inventory, error)
	ListByProduct(ctx context.Context, productID string) ([]model.Inventory, error)

	// AdjustStock locks the stock row, applies change and writes the stock
	// and the movement in the same transaction.
	AdjustStock(ctx context.Context, inventoryID string, change StockChange) (*model.Stock, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)

	ListStocks(ctx context.Context) ([]model.Stock, error)
	MarkChecked(ctx context.Context, stocks []model.Stock, at time.Time) error
}
