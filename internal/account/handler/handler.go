package handler

import (
	"github.com/fekuna/omnipos-marketplace-service/internal/account"
	"github.com/fekuna/omnipos-marketplace-service/internal/account/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	uc     account.UseCase
	logger logger.ZapLogger
}

func NewAccountHandler(uc account.UseCase, log logger.ZapLogger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AccountHandler) RegisterCustomer(c *gin.Context) {
	var input dto.RegisterCustomerInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	res, err := h.uc.RegisterCustomer(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "customer registered", res)
}

func (h *AccountHandler) RegisterSeller(c *gin.Context) {
	var input dto.RegisterSellerInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	res, err := h.uc.RegisterSeller(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "seller registered", res)
}

// Login
// @Summary Log in
// @Description Exchanges e-mail and password for a bearer token.
// @Tags Account
// @Accept json
// @Produce json
// @Param Accept-Language header string false "Language of error messages (en, id)"
// @Param body body dto.LoginInput true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /account/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	res, err := h.uc.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "login successful", res)
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	p, err := h.uc.GetProfile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "profile fetched", p)
}

func (h *AccountHandler) UpdateCustomer(c *gin.Context) {
	var input dto.UpdateCustomerInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	cust, err := h.uc.UpdateCustomer(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "customer updated", cust)
}

func (h *AccountHandler) ListAddresses(c *gin.Context) {
	list, err := h.uc.ListAddresses(c.Request.Context(), auth.UserID(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "addresses fetched", list)
}

func (h *AccountHandler) CreateAddress(c *gin.Context) {
	var input dto.AddressInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	a, err := h.uc.CreateAddress(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, "address created", a)
}

func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	var input dto.AddressInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	a, err := h.uc.UpdateAddress(c.Request.Context(), auth.UserID(c), c.Param("id"), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "address updated", a)
}

func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	if err := h.uc.DeleteAddress(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "address deleted", nil)
}

func (h *AccountHandler) SetDefaultAddress(c *gin.Context) {
	var input dto.SetDefaultAddressInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	cust, err := h.uc.SetDefaultAddress(c.Request.Context(), auth.UserID(c), input.AddressID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "default address updated", cust)
}

func (h *AccountHandler) UpdateSeller(c *gin.Context) {
	var input dto.UpdateSellerInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	s, err := h.uc.UpdateSeller(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "seller updated", s)
}

func (h *AccountHandler) UpdateSellerSlug(c *gin.Context) {
	var input dto.SellerLabelInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	s, err := h.uc.UpdateSellerSlug(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "seller slug updated", s)
}

func (h *AccountHandler) UpdateSellerCode(c *gin.Context) {
	var input dto.SellerLabelInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	s, err := h.uc.UpdateSellerCode(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "seller code updated", s)
}

func (h *AccountHandler) UpdateSellerContact(c *gin.Context) {
	var input dto.SellerContactInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	s, err := h.uc.UpdateSellerContact(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "seller contact updated", s)
}

func (h *AccountHandler) UpdateSellerLocation(c *gin.Context) {
	var input dto.SellerLocationInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	s, err := h.uc.UpdateSellerLocation(c.Request.Context(), auth.UserID(c), &input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "seller location updated", s)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var input dto.ChangePasswordInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	if err := h.uc.ChangePassword(c.Request.Context(), auth.UserID(c), &input); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "password changed", nil)
}

func (h *AccountHandler) RequestPasswordReset(c *gin.Context) {
	var input dto.PasswordResetRequestInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	if err := h.uc.RequestPasswordReset(c.Request.Context(), &input); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "password reset link sent", nil)
}

func (h *AccountHandler) CheckResetToken(c *gin.Context) {
	if err := h.uc.CheckResetToken(c.Request.Context(), c.Param("token")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "reset token is valid", nil)
}

func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var input dto.PasswordResetInput
	if !response.BindJSON(c, h.logger, &input) {
		return
	}

	if err := h.uc.ResetPassword(c.Request.Context(), &input); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, "password has been reset", nil)
}
