package handler

import (
	"strconv"

	"github.com/fekuna/omnipos-marketplace-service/internal/category"
	"github.com/fekuna/omnipos-marketplace-service/internal/category/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

// CreateCategory
// @Summary Create a category
// @Description Allocates a unique slug from the name when none is given.
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCategoryInput true "Category"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input dto.CreateCategoryInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "category created", cat)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	detail, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "category fetched", detail)
}

func (h *CategoryHandler) ListChildren(c *gin.Context) {
	nodes, err := h.uc.ListChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "children fetched", nodes)
}

// ListTree
// @Summary Category tree
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories/tree [get]
func (h *CategoryHandler) ListTree(c *gin.Context) {
	entries, err := h.uc.ListTree(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "category tree fetched", entries)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var input dto.UpdateCategoryInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}
	input.ID = c.Param("id")

	cat, err := h.uc.UpdateCategory(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "category updated", cat)
}

// DeleteCategory deletes the whole subtree; ?confirm=true is required when
// the category has subcategories.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	id := c.Param("id")

	removed, err := h.uc.DeleteCategory(c.Request.Context(), id, confirm)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("category subtree deleted",
		zap.String("category_id", id),
		zap.Int("deleted", len(removed)),
	)
	response.OK(c, "category deleted", gin.H{"deleted_ids": removed})
}
