package handler

import (
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	var input dto.CreateInventoryInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	inv, err := h.uc.CreateInventory(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "inventory created", inv)
}

func (h *InventoryHandler) GetInventory(c *gin.Context) {
	inv, err := h.uc.GetInventory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "inventory fetched", inv)
}

// ListByProduct serves /products/:id/inventories.
func (h *InventoryHandler) ListByProduct(c *gin.Context) {
	items, err := h.uc.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "inventories fetched", items)
}

// AdjustStock
// @Summary Adjust stock
// @Tags Inventories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inventory ID"
// @Param body body dto.AdjustStockInput true "Change in units"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /inventories/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var input dto.AdjustStockInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}
	input.InventoryID = c.Param("id")
	input.SellerID = auth.UserID(c)

	stock, err := h.uc.AdjustStock(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("stock adjusted",
		zap.String("inventory_id", input.InventoryID),
		zap.Int("units_change", input.UnitsChange),
		zap.Int("units", stock.Units),
	)
	response.OK(c, "stock adjusted", stock)
}

// ListMovements
// @Summary List stock movements
// @Description Only the seller owning the product may read its movements.
// @Tags Inventories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inventory ID"
// @Param movement_type query string false "adjustment or sale"
// @Param page query int false "Page, from 1"
// @Param page_size query int false "Page size, at most 100"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inventories/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filters dto.MovementFilters
	if !response.BindQuery(c, h.logger, &filters) {
		return
	}
	filters.InventoryID = c.Param("id")
	filters.SellerID = auth.UserID(c)

	movements, total, err := h.uc.ListMovements(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "stock movements fetched", response.Page{
		Items:    movements,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	})
}
