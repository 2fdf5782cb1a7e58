package handler

import (
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/product/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input dto.CreateProductInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "product created", p)
}

// GetProduct
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "product fetched", p)
}

// ListProducts
// @Summary List products
// @Description Filters by seller and category; search goes through Elasticsearch when it is configured.
// @Tags Products
// @Produce json
// @Param seller_id query string false "Seller ID"
// @Param category_id query string false "Category ID"
// @Param include_descendants query bool false "Include products of descendant categories"
// @Param search query string false "Search text"
// @Param sort_by query string false "name or created_at"
// @Param sort_order query string false "asc or desc"
// @Param page query int false "Page, from 1"
// @Param page_size query int false "Page size, at most 100"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var filters dto.ProductFilters
	if !response.BindQuery(c, h.logger, &filters) {
		return
	}

	products, total, err := h.uc.ListProducts(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "products fetched", response.Page{
		Items:    products,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input dto.UpdateProductInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}
	input.ID = c.Param("id")

	p, err := h.uc.UpdateProduct(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "product updated", p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.DeleteProduct(c.Request.Context(), auth.UserID(c), id); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("product deleted", zap.String("product_id", id), zap.String("seller_id", auth.UserID(c)))
	response.OK(c, "product deleted", nil)
}
