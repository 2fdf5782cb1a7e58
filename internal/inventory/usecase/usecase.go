package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/pkg/cache"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type Config struct {
	CriticalUnits int
	LockTTL       time.Duration
}

type inventoryUseCase struct {
	repo       inventory.Repository
	products   product.UseCase
	attributes attribute.UseCase
	locker     cache.Locker
	cfg        Config
	logger     logger.ZapLogger
	now        func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, products product.UseCase, attributes attribute.UseCase, locker cache.Locker, cfg Config, log logger.ZapLogger) inventory.UseCase {
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 5 * time.Second
	}
	return &inventoryUseCase{
		repo:       repo,
		products:   products,
		attributes: attributes,
		locker:     locker,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *inventoryUseCase) CreateInventory(ctx context.Context, sellerID string, input *dto.CreateInventoryInput) (*model.Inventory, error) {
	fields := map[string]string{}
	if input.RetailPrice.IsNegative() {
		fields["retail_price"] = "must not be negative"
	}
	if input.StorePrice.IsNegative() {
		fields["store_price"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("invalid prices", fields)
	}

	if _, err := uc.ownedProduct(ctx, sellerID, input.ProductID); err != nil {
		return nil, err
	}

	pt, err := uc.attributes.GetProductType(ctx, input.ProductTypeID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.DanglingReference("product type", input.ProductTypeID)
		}
		return nil, err
	}

	values, err := uc.checkAttributeValues(ctx, pt, input.AttributeValueIDs)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	inv := &model.Inventory{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductTypeID:   pt.ID,
		ProductID:       input.ProductID,
		SKU:             input.SKU,
		UPC:             input.UPC,
		MOQ:             input.MOQ,
		RetailPrice:     input.RetailPrice.Round(2),
		StorePrice:      input.StorePrice.Round(2),
		IsActive:        input.IsActive,
		IsDefault:       input.IsDefault,
		IsDigital:       input.IsDigital,
		Weight:          input.Weight,
		AttributeValues: values,
	}
	stock := &model.Stock{
		InventoryID: inv.ID,
		Status:      model.StockStatus(0, uc.cfg.CriticalUnits),
	}
	if err := uc.repo.Create(ctx, inv, stock); err != nil {
		return nil, err
	}
	inv.Stock = stock

	uc.logger.Info("inventory created",
		zap.String("inventory_id", inv.ID),
		zap.String("product_id", inv.ProductID),
		zap.String("sku", inv.SKU),
	)
	return inv, nil
}

// checkAttributeValues resolves ids and requires each value to belong to an
// attribute of the product type.
func (uc *inventoryUseCase) checkAttributeValues(ctx context.Context, pt *model.ProductType, ids []string) ([]model.ProductAttributeValue, error) {
	if len(ids) == 0 {
		return []model.ProductAttributeValue{}, nil
	}
	values, err := uc.attributes.GetAttributeValues(ctx, ids)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(pt.Attributes))
	for _, a := range pt.Attributes {
		allowed[a.ID] = true
	}
	found := make(map[string]model.ProductAttributeValue, len(values))
	for _, v := range values {
		found[v.ID] = v
	}

	out := make([]model.ProductAttributeValue, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		v, ok := found[id]
		if !ok {
			return nil, apperror.FieldInvalid("attribute_value_ids", fmt.Sprintf("attribute value %s does not exist", id))
		}
		if !allowed[v.AttributeID] {
			return nil, apperror.FieldInvalid("attribute_value_ids",
				fmt.Sprintf("attribute value %s does not belong to product type %s", id, pt.Name))
		}
		out = append(out, v)
	}
	return out, nil
}

func (uc *inventoryUseCase) GetInventory(ctx context.Context, id string) (*model.Inventory, error) {
	inv, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("inventory")
	}
	return inv, nil
}

func (uc *inventoryUseCase) ListByProduct(ctx context.Context, productID string) ([]model.Inventory, error) {
	if _, err := uc.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return uc.repo.ListByProduct(ctx, productID)
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Stock, error) {
	inv, err := uc.GetInventory(ctx, input.InventoryID)
	if err != nil {
		return nil, err
	}
	if input.SellerID != "" {
		if _, err := uc.ownedProduct(ctx, input.SellerID, inv.ProductID); err != nil {
			return nil, err
		}
	}
	return uc.adjust(ctx, inv, input)
}

func (uc *inventoryUseCase) RecordSale(ctx context.Context, sku string, units int, orderID string) (*model.Stock, error) {
	if units <= 0 {
		return nil, apperror.FieldInvalid("quantity", "must be positive")
	}
	inv, err := uc.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NotFound("inventory")
	}
	return uc.adjust(ctx, inv, &dto.AdjustStockInput{
		InventoryID:   inv.ID,
		UnitsChange:   -units,
		Notes:         "Order Sale",
		MovementType:  inventory.MovementSale,
		ReferenceType: "order",
		ReferenceID:   orderID,
	})
}

func (uc *inventoryUseCase) adjust(ctx context.Context, inv *model.Inventory, input *dto.AdjustStockInput) (*model.Stock, error) {
	lockKey := "lock:inventory:" + inv.ID
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, uc.cfg.LockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.String("key", lockKey), zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	if !acquired {
		return nil, apperror.Conflict("inventory is being updated, please try again")
	}
	defer func() {
		if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release inventory lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	movementType := input.MovementType
	if movementType == "" {
		movementType = inventory.MovementAdjustment
	}
	now := uc.now()

	stock, err := uc.repo.AdjustStock(ctx, inv.ID, func(s *model.Stock) (*model.StockMovement, error) {
		before := s.Units
		after := before + input.UnitsChange
		if after < 0 {
			return nil, apperror.FieldInvalid("units_change",
				fmt.Sprintf("insufficient stock: %d units available", before))
		}

		s.Units = after
		if movementType == inventory.MovementSale {
			s.UnitsSold -= input.UnitsChange
		}
		s.Status = model.StockStatus(after, uc.cfg.CriticalUnits)

		return &model.StockMovement{
			ID:            uuid.New().String(),
			InventoryID:   inv.ID,
			MovementType:  movementType,
			UnitsChange:   input.UnitsChange,
			UnitsBefore:   before,
			UnitsAfter:    after,
			ReferenceType: optional(input.ReferenceType),
			ReferenceID:   optional(input.ReferenceID),
			Notes:         input.Notes,
			CreatedBy:     optional(input.SellerID),
			CreatedAt:     now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if stock.Status != model.StockStatusInStock {
		uc.logger.Warn("stock running low",
			zap.String("inventory_id", inv.ID),
			zap.String("sku", inv.SKU),
			zap.Int("units", stock.Units),
			zap.String("status", stock.Status),
		)
	}
	return stock, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	inv, err := uc.GetInventory(ctx, filters.InventoryID)
	if err != nil {
		return nil, 0, err
	}
	if filters.SellerID != "" {
		if _, err := uc.ownedProduct(ctx, filters.SellerID, inv.ProductID); err != nil {
			return nil, 0, err
		}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 50
	}
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) AuditStock(ctx context.Context) (int, error) {
	stocks, err := uc.repo.ListStocks(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range stocks {
		status := model.StockStatus(stocks[i].Units, uc.cfg.CriticalUnits)
		if status != stocks[i].Status {
			stocks[i].Status = status
			changed++
		}
	}
	if err := uc.repo.MarkChecked(ctx, stocks, uc.now()); err != nil {
		return 0, err
	}
	return changed, nil
}

// ownedProduct hides products of other sellers behind NotFound.
func (uc *inventoryUseCase) ownedProduct(ctx context.Context, sellerID, productID string) (*model.Product, error) {
	p, err := uc.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SellerID == nil || *p.SellerID != sellerID {
		return nil, apperror.NotFound("product")
	}
	return p, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
