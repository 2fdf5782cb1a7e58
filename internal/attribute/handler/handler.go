package handler

import (
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute"
	"github.com/fekuna/omnipos-marketplace-service/internal/attribute/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AttributeHandler struct {
	uc     attribute.UseCase
	logger logger.ZapLogger
}

func NewAttributeHandler(uc attribute.UseCase, log logger.ZapLogger) *AttributeHandler {
	return &AttributeHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var input dto.CreateAttributeInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	a, err := h.uc.CreateAttribute(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "attribute created", a)
}

func (h *AttributeHandler) ListAttributes(c *gin.Context) {
	list, err := h.uc.ListAttributes(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "attributes fetched", list)
}

func (h *AttributeHandler) AddAttributeValue(c *gin.Context) {
	var input dto.AddValueInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}
	input.AttributeID = c.Param("id")

	v, err := h.uc.AddAttributeValue(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "attribute value created", v)
}

func (h *AttributeHandler) ListAttributeValues(c *gin.Context) {
	list, err := h.uc.ListAttributeValues(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "attribute values fetched", list)
}

func (h *AttributeHandler) CreateProductType(c *gin.Context) {
	var input dto.CreateProductTypeInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	pt, err := h.uc.CreateProductType(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "product type created", pt)
}

func (h *AttributeHandler) GetProductType(c *gin.Context) {
	pt, err := h.uc.GetProductType(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "product type fetched", pt)
}

func (h *AttributeHandler) ListProductTypes(c *gin.Context) {
	list, err := h.uc.ListProductTypes(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "product types fetched", list)
}
