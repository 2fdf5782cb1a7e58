package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items     map[string]model.Inventory
	stocks    map[string]model.Stock
	movements []model.StockMovement
	checkedAt time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]model.Inventory{}, stocks: map[string]model.Stock{}}
}

func (r *memRepo) Create(_ context.Context, inv *model.Inventory, stock *model.Stock) error {
	for _, other := range r.items {
		if other.SKU == inv.SKU {
			return apperror.Conflict("sku is already in use")
		}
	}
	r.items[inv.ID] = *inv
	r.stocks[inv.ID] = *stock
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*model.Inventory, error) {
	inv, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	s := r.stocks[id]
	inv.Stock = &s
	return &inv, nil
}

func (r *memRepo) FindBySKU(ctx context.Context, sku string) (*model.Inventory, error) {
	for id, inv := range r.items {
		if inv.SKU == sku {
			return r.FindByID(ctx, id)
		}
	}
	return nil, nil
}

func (r *memRepo) ListByProduct(_ context.Context, productID string) ([]model.Inventory, error) {
	out := []model.Inventory{}
	for _, inv := range r.items {
		if inv.ProductID == productID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memRepo) AdjustStock(_ context.Context, inventoryID string, change inventory.StockChange) (*model.Stock, error) {
	s, ok := r.stocks[inventoryID]
	if !ok {
		return nil, apperror.NotFound("stock")
	}
	m, err := change(&s)
	if err != nil {
		return nil, err
	}
	r.stocks[inventoryID] = s
	r.movements = append(r.movements, *m)
	return &s, nil
}

func (r *memRepo) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	out := []model.StockMovement{}
	for _, m := range r.movements {
		if m.InventoryID == f.InventoryID && (f.MovementType == "" || m.MovementType == f.MovementType) {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

func (r *memRepo) ListStocks(context.Context) ([]model.Stock, error) {
	out := []model.Stock{}
	for _, s := range r.stocks {
		out = append(out, s)
	}
	return out, nil
}

func (r *memRepo) MarkChecked(_ context.Context, stocks []model.Stock, at time.Time) error {
	for _, s := range stocks {
		s.LastCheckedAt = &at
		r.stocks[s.InventoryID] = s
	}
	r.checkedAt = at
	return nil
}

type stubProducts struct {
	product.UseCase
	products map[string]model.Product
}

func (s *stubProducts) GetProduct(_ context.Context, id string) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, apperror.NotFound("product")
	}
	return &p, nil
}

type stubAttributes struct {
	attribute.UseCase
	types  map[string]model.ProductType
	values map[string]model.ProductAttributeValue
}

func (s *stubAttributes) GetProductType(_ context.Context, id string) (*model.ProductType, error) {
	pt, ok := s.types[id]
	if !ok {
		return nil, apperror.NotFound("product type")
	}
	return &pt, nil
}

func (s *stubAttributes) GetAttributeValues(_ context.Context, ids []string) ([]model.ProductAttributeValue, error) {
	out := []model.ProductAttributeValue{}
	for _, id := range ids {
		if v, ok := s.values[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeLocker struct {
	held     map[string]string
	busy     bool
	acquires int
	releases int
}

func (l *fakeLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	l.acquires++
	if l.busy {
		return false, nil
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, key, value string) error {
	if l.held[key] != value {
		return errors.New("lock not held")
	}
	delete(l.held, key)
	l.releases++
	return nil
}

const (
	sellerID  = "seller-1"
	productID = "product-1"
	shirtID   = "type-shirt"
)

type fixture struct {
	repo   *memRepo
	locker *fakeLocker
	uc     *inventoryUseCase
}

func newFixture() *fixture {
	seller := sellerID
	other := "seller-2"
	products := &stubProducts{products: map[string]model.Product{
		productID:   {BaseModel: model.BaseModel{ID: productID}, SellerID: &seller},
		"product-2": {BaseModel: model.BaseModel{ID: "product-2"}, SellerID: &other},
	}}
	attrs := &stubAttributes{
		types: map[string]model.ProductType{
			shirtID: {ID: shirtID, Name: "Shirt", Attributes: []model.ProductAttribute{{ID: "attr-color", Name: "color"}}},
		},
		values: map[string]model.ProductAttributeValue{
			"val-red":  {ID: "val-red", AttributeID: "attr-color", Value: "red"},
			"val-wood": {ID: "val-wood", AttributeID: "attr-material", Value: "wood"},
		},
	}
	f := &fixture{repo: newMemRepo(), locker: &fakeLocker{held: map[string]string{}}}
	uc := NewInventoryUseCase(f.repo, products, attrs, f.locker, Config{CriticalUnits: 5}, logger.NewNop()).(*inventoryUseCase)
	uc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.uc = uc
	return f
}

func (f *fixture) create(t *testing.T, sku string) *model.Inventory {
	t.Helper()
	inv, err := f.uc.CreateInventory(context.Background(), sellerID, &dto.CreateInventoryInput{
		ProductID:         productID,
		ProductTypeID:     shirtID,
		SKU:               sku,
		UPC:               "012345678905",
		RetailPrice:       decimal.RequireFromString("19.999"),
		StorePrice:        decimal.RequireFromString("15"),
		IsActive:          true,
		AttributeValueIDs: []string{"val-red"},
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInventory(t *testing.T) {
	f := newFixture()
	inv := f.create(t, "SHIRT-RED")

	assert.Equal(t, "20", inv.RetailPrice.String())
	require.Len(t, inv.AttributeValues, 1)
	require.NotNil(t, inv.Stock)
	assert.Equal(t, 0, inv.Stock.Units)
	assert.Equal(t, model.StockStatusOutOfStock, inv.Stock.Status)
}

func TestCreateInventoryRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	base := func() *dto.CreateInventoryInput {
		return &dto.CreateInventoryInput{
			ProductID:     productID,
			ProductTypeID: shirtID,
			SKU:           "SKU-1",
			UPC:           "012345678905",
		}
	}

	in := base()
	in.RetailPrice = decimal.NewFromInt(-1)
	_, err := f.uc.CreateInventory(ctx, sellerID, in)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "retail_price")

	in = base()
	in.ProductID = "product-2"
	_, err = f.uc.CreateInventory(ctx, sellerID, in)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	in = base()
	in.ProductTypeID = "type-missing"
	_, err = f.uc.CreateInventory(ctx, sellerID, in)
	assert.ErrorIs(t, err, apperror.ErrDanglingReference)

	in = base()
	in.AttributeValueIDs = []string{"val-wood"}
	_, err = f.uc.CreateInventory(ctx, sellerID, in)
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields["attribute_value_ids"], "does not belong")

	in = base()
	in.AttributeValueIDs = []string{"val-ghost"}
	_, err = f.uc.CreateInventory(ctx, sellerID, in)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAdjustStockStatusTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.create(t, "SHIRT-RED")

	stock, err := f.uc.AdjustStock(ctx, &dto.AdjustStockInput{InventoryID: inv.ID, SellerID: sellerID, UnitsChange: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, stock.Units)
	assert.Equal(t, model.StockStatusCritical, stock.Status)

	stock, err = f.uc.AdjustStock(ctx, &dto.AdjustStockInput{InventoryID: inv.ID, SellerID: sellerID, UnitsChange: 10})
	require.NoError(t, err)
	assert.Equal(t, 13, stock.Units)
	assert.Equal(t, model.StockStatusInStock, stock.Status)

	_, err = f.uc.AdjustStock(ctx, &dto.AdjustStockInput{InventoryID: inv.ID, SellerID: sellerID, UnitsChange: -14})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields["units_change"], "13 units available")
	assert.Equal(t, 13, f.repo.stocks[inv.ID].Units)

	stock, err = f.uc.AdjustStock(ctx, &dto.AdjustStockInput{InventoryID: inv.ID, UnitsChange: -13})
	require.NoError(t, err)
	assert.Equal(t, model.StockStatusOutOfStock, stock.Status)

	require.Len(t, f.repo.movements, 3)
	m := f.repo.movements[0]
	assert.Equal(t, inventory.MovementAdjustment, m.MovementType)
	assert.Equal(t, 0, m.UnitsBefore)
	assert.Equal(t, 3, m.UnitsAfter)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, sellerID, *m.CreatedBy)

	assert.Empty(t, f.locker.held)
	assert.Equal(t, 4, f.locker.releases)
}

func TestAdjustStockOtherSeller(t *testing.T) {
	f := newFixture()
	inv := f.create(t, "SHIRT-RED")

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{InventoryID: inv.ID, SellerID: "seller-2", UnitsChange: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, f.locker.acquires)
}

func TestAdjustStockLockBusy(t *testing.T) {
	f := newFixture()
	inv := f.create(t, "SHIRT-RED")
	f.locker.busy = true

	_, err := f.uc.AdjustStock(context.Background(), &dto.AdjustStockInput{InventoryID: inv.ID, UnitsChange: 1})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, lockAttempts, f.locker.acquires)
	assert.Empty(t, f.repo.movements)
}

func TestRecordSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.create(t, "SHIRT-RED")
	_, err := f.uc.AdjustStock(ctx, &dto.AdjustStockInput{InventoryID: inv.ID, UnitsChange: 10})
	require.NoError(t, err)

	stock, err := f.uc.RecordSale(ctx, "SHIRT-RED", 4, "order-9")
	require.NoError(t, err)
	assert.Equal(t, 6, stock.Units)
	assert.Equal(t, 4, stock.UnitsSold)

	last := f.repo.movements[len(f.repo.movements)-1]
	assert.Equal(t, inventory.MovementSale, last.MovementType)
	assert.Equal(t, -4, last.UnitsChange)
	require.NotNil(t, last.ReferenceID)
	assert.Equal(t, "order-9", *last.ReferenceID)

	_, err = f.uc.RecordSale(ctx, "NOPE", 1, "order-9")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.uc.RecordSale(ctx, "SHIRT-RED", 0, "order-9")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	sales, total, err := f.uc.ListMovements(ctx, &dto.MovementFilters{InventoryID: inv.ID, MovementType: inventory.MovementSale})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, sales, 1)
}

func TestAuditStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.create(t, "A")
	b := f.create(t, "B")

	// A stale status, as left by an earlier threshold.
	s := f.repo.stocks[a.ID]
	s.Units = 3
	s.Status = model.StockStatusInStock
	f.repo.stocks[a.ID] = s

	changed, err := f.uc.AuditStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, model.StockStatusCritical, f.repo.stocks[a.ID].Status)
	assert.Equal(t, model.StockStatusOutOfStock, f.repo.stocks[b.ID].Status)
	assert.NotNil(t, f.repo.stocks[b.ID].LastCheckedAt)
	assert.False(t, f.repo.checkedAt.IsZero())
}

func TestListMovementsOtherSeller(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	inv := f.create(t, "SHIRT-RED")
	_, err := f.uc.AdjustStock(ctx, &dto.AdjustStockInput{InventoryID: inv.ID, SellerID: sellerID, UnitsChange: 4})
	require.NoError(t, err)

	_, _, err = f.uc.ListMovements(ctx, &dto.MovementFilters{InventoryID: inv.ID, SellerID: "seller-2"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	movements, total, err := f.uc.ListMovements(ctx, &dto.MovementFilters{InventoryID: inv.ID, SellerID: sellerID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, 4, movements[0].UnitsChange)
}
