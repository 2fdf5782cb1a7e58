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
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	createdBy string
	filters   *dto.ProductFilters
}

func (s *stubUseCase) CreateProduct(_ context.Context, sellerID string, in *dto.CreateProductInput) (*model.Product, error) {
	s.createdBy = sellerID
	return &model.Product{BaseModel: model.BaseModel{ID: "p-1"}, WebID: in.WebID, Name: in.Name}, nil
}

func (s *stubUseCase) GetProduct(context.Context, string) (*model.Product, error) {
	return nil, apperror.NotFound("product")
}

func (s *stubUseCase) ListProducts(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	s.filters = f
	f.Page, f.PageSize = 1, 20
	return []model.Product{{Name: "Radio"}}, 1, nil
}

func (s *stubUseCase) UpdateProduct(context.Context, string, *dto.UpdateProductInput) (*model.Product, error) {
	return nil, apperror.NotFound("product")
}

func (s *stubUseCase) DeleteProduct(context.Context, string, string) error { return nil }

func setup() (*gin.Engine, *stubUseCase) {
	gin.SetMode(gin.TestMode)
	uc := &stubUseCase{}
	h := NewProductHandler(uc, logger.NewNop())

	asSeller := func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, "seller-9")
		c.Set(auth.ContextKeyRole, model.RoleSeller)
	}

	r := gin.New()
	r.GET("/api/products", h.ListProducts)
	r.GET("/api/products/:id", h.GetProduct)
	r.POST("/api/products", asSeller, h.CreateProduct)
	r.PUT("/api/products/:id", asSeller, h.UpdateProduct)
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

func TestCreateProductUsesCallerAsSeller(t *testing.T) {
	r, uc := setup()

	w, _ := do(r, http.MethodPost, "/api/products", `{"web_id":"W-1","name":"Radio"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "seller-9", uc.createdBy)

	w, env := do(r, http.MethodPost, "/api/products", `{"name":"Radio","category_id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "web_id")
	assert.Contains(t, env.Errors, "category_id")
}

func TestListProductsBindsQuery(t *testing.T) {
	r, uc := setup()

	w, env := do(r, http.MethodGet, "/api/products?category_id=c-1&include_descendants=true&is_active=false&search=tv", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.filters)
	assert.Equal(t, "c-1", uc.filters.CategoryID)
	assert.True(t, uc.filters.IncludeDescendants)
	require.NotNil(t, uc.filters.IsActive)
	assert.False(t, *uc.filters.IsActive)

	page, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, page["total"])

	w, _ = do(r, http.MethodGet, "/api/products?page_size=1000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductNotFound(t *testing.T) {
	r, _ := setup()

	w, _ := do(r, http.MethodGet, "/api/products/p-x", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(r, http.MethodPut, "/api/products/p-x", `{"name":"Other"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
