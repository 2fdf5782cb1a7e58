package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	inventory.UseCase
	createdBy string
	adjusted  *dto.AdjustStockInput
	filters   *dto.MovementFilters
}

func (s *stubUseCase) CreateInventory(_ context.Context, sellerID string, in *dto.CreateInventoryInput) (*model.Inventory, error) {
	s.createdBy = sellerID
	return &model.Inventory{BaseModel: model.BaseModel{ID: "inv-1"}, SKU: in.SKU}, nil
}

func (s *stubUseCase) AdjustStock(_ context.Context, in *dto.AdjustStockInput) (*model.Stock, error) {
	s.adjusted = in
	if in.UnitsChange < -10 {
		return nil, apperror.FieldInvalid("units_change", "insufficient stock: 10 units available")
	}
	return &model.Stock{InventoryID: in.InventoryID, Units: 10 + in.UnitsChange}, nil
}

func (s *stubUseCase) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	s.filters = f
	return []model.StockMovement{{ID: "m-1"}}, 1, nil
}

func setup() (*gin.Engine, *stubUseCase) {
	gin.SetMode(gin.TestMode)
	uc := &stubUseCase{}
	h := NewInventoryHandler(uc, logger.NewNop())

	asSeller := func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, "seller-9")
		c.Set(auth.ContextKeyRole, model.RoleSeller)
	}

	r := gin.New()
	r.POST("/api/inventories", asSeller, h.CreateInventory)
	r.POST("/api/inventories/:id/stock", asSeller, h.AdjustStock)
	r.GET("/api/inventories/:id/movements", asSeller, h.ListMovements)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Envelope) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreateInventory(t *testing.T) {
	r, uc := setup()
	body := `{
		"product_id": "6f1c2a54-3b7e-4c1d-9a0e-2f5b8d7c6a10",
		"product_type_id": "0b9e8d7c-6a5f-4e3d-8c2b-1a0f9e8d7c6b",
		"sku": "SHIRT-RED",
		"upc": "012345678905",
		"retail_price": "19.99",
		"store_price": "15"
	}`

	w, _ := do(r, http.MethodPost, "/api/inventories", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "seller-9", uc.createdBy)

	w, env := do(r, http.MethodPost, "/api/inventories", `{"sku":"X","upc":"12ab"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "product_id")
	assert.Contains(t, env.Errors, "upc")
}

func TestAdjustStock(t *testing.T) {
	r, uc := setup()

	w, env := do(r, http.MethodPost, "/api/inventories/inv-1/stock", `{"units_change":-4,"notes":"damaged"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.adjusted)
	assert.Equal(t, "inv-1", uc.adjusted.InventoryID)
	assert.Equal(t, "seller-9", uc.adjusted.SellerID)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 6, data["units"])

	w, _ = do(r, http.MethodPost, "/api/inventories/inv-1/stock", `{"units_change":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(r, http.MethodPost, "/api/inventories/inv-1/stock", `{"units_change":-11}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors["units_change"], "insufficient stock")
}

func TestListMovements(t *testing.T) {
	r, uc := setup()

	w, env := do(r, http.MethodGet, "/api/inventories/inv-1/movements?movement_type=sale&page=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.filters)
	assert.Equal(t, "inv-1", uc.filters.InventoryID)
	assert.Equal(t, "seller-9", uc.filters.SellerID)
	assert.Equal(t, "sale", uc.filters.MovementType)
	page, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, page["page"])

	w, _ = do(r, http.MethodGet, "/api/inventories/inv-1/movements?movement_type=theft", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
