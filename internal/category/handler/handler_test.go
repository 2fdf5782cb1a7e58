package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	createIn      *dto.CreateCategoryInput
	deleteConfirm bool
}

func (s *stubUseCase) CreateCategory(_ context.Context, in *dto.CreateCategoryInput) (*model.Category, error) {
	s.createIn = in
	return &model.Category{BaseModel: model.BaseModel{ID: "c-1"}, Name: in.Name, Slug: "tv"}, nil
}

func (s *stubUseCase) GetCategory(_ context.Context, id string) (*dto.CategoryDetail, error) {
	return nil, apperror.NotFound("category")
}

func (s *stubUseCase) ListChildren(context.Context, string) ([]dto.CategoryNode, error) {
	return []dto.CategoryNode{}, nil
}

func (s *stubUseCase) ListTree(context.Context) ([]dto.TreeEntry, error) {
	return []dto.TreeEntry{{ID: "c-1", Name: "TV", CumulativeProductCount: 8}}, nil
}

func (s *stubUseCase) UpdateCategory(context.Context, *dto.UpdateCategoryInput) (*model.Category, error) {
	return nil, apperror.FieldInvalid("parent_id", "cycle")
}

func (s *stubUseCase) DeleteCategory(_ context.Context, id string, confirm bool) ([]string, error) {
	s.deleteConfirm = confirm
	return []string{"child", id}, nil
}

func (s *stubUseCase) Exists(context.Context, string) (bool, error)          { return true, nil }
func (s *stubUseCase) SubtreeIDs(context.Context, string) ([]string, error) { return nil, nil }

func setup() (*gin.Engine, *stubUseCase) {
	gin.SetMode(gin.TestMode)
	uc := &stubUseCase{}
	h := NewCategoryHandler(uc, logger.NewNop())

	r := gin.New()
	r.POST("/api/categories", h.CreateCategory)
	r.GET("/api/categories/tree", h.ListTree)
	r.GET("/api/categories/:id", h.GetCategory)
	r.PUT("/api/categories/:id", h.UpdateCategory)
	r.DELETE("/api/categories/:id", h.DeleteCategory)
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

func TestCreateCategory(t *testing.T) {
	r, uc := setup()

	w, env := do(r, http.MethodPost, "/api/categories", `{"name":"Televisions"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, response.StatusSuccess, env.Status)
	require.NotNil(t, uc.createIn)
	assert.Equal(t, "Televisions", uc.createIn.Name)

	w, env = do(r, http.MethodPost, "/api/categories", `{"parent_id":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "parent_id")
}

func TestGetCategoryNotFound(t *testing.T) {
	r, _ := setup()

	w, env := do(r, http.MethodGet, "/api/categories/x", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "category not found", env.Message)
}

func TestListTree(t *testing.T) {
	r, _ := setup()

	w, env := do(r, http.MethodGet, "/api/categories/tree", "")
	assert.Equal(t, http.StatusOK, w.Code)
	entries, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestUpdateCategoryValidation(t *testing.T) {
	r, _ := setup()

	w, env := do(r, http.MethodPut, "/api/categories/c-1", `{"name":"TV"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cycle", env.Errors["parent_id"])
}

func TestDeleteCategoryPassesConfirm(t *testing.T) {
	r, uc := setup()

	w, _ := do(r, http.MethodDelete, "/api/categories/c-1?confirm=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, uc.deleteConfirm)

	do(r, http.MethodDelete, "/api/categories/c-1", "")
	assert.False(t, uc.deleteConfirm)
}
