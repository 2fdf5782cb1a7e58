package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubUseCase struct {
	attribute.UseCase
	valueFor string
}

func (s *stubUseCase) AddAttributeValue(_ context.Context, in *dto.AddValueInput) (*model.ProductAttributeValue, error) {
	s.valueFor = in.AttributeID
	return nil, apperror.DanglingReference("attribute", in.AttributeID)
}

func (s *stubUseCase) CreateProductType(_ context.Context, in *dto.CreateProductTypeInput) (*model.ProductType, error) {
	return &model.ProductType{ID: "pt-1", Name: in.Name}, nil
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

func TestAttributeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	uc := &stubUseCase{}
	h := NewAttributeHandler(uc, logger.NewNop())
	r := gin.New()
	r.POST("/api/attributes/:id/values", h.AddAttributeValue)
	r.POST("/api/product-types", h.CreateProductType)

	w, env := do(r, http.MethodPost, "/api/attributes/a-1/values", `{"value":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "a-1", uc.valueFor)
	assert.Equal(t, "attribute a-1 does not exist", env.Message)

	w, _ = do(r, http.MethodPost, "/api/product-types", `{"name":"Shirt","attribute_ids":["not-a-uuid"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodPost, "/api/product-types", `{"name":"Shirt","attribute_ids":[]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}
