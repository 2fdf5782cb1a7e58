package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/account"
	"github.com/fekuna/omnipos-marketplace-service/internal/account/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUseCase overrides the operations under test; the embedded nil
// interface panics on anything else.
type stubUseCase struct {
	account.UseCase
	registered *dto.RegisterSellerInput
	profileFor string
	resetToken string
}

func (s *stubUseCase) RegisterSeller(_ context.Context, in *dto.RegisterSellerInput) (*dto.AuthResult, error) {
	s.registered = in
	return &dto.AuthResult{
		User:        &model.User{ID: "u-1", Username: "acme", IsSeller: true},
		Seller:      &model.Seller{UserID: "u-1", SellerSlug: "acme", Code: "ACME"},
		AccessToken: "token",
	}, nil
}

func (s *stubUseCase) Login(context.Context, *dto.LoginInput) (*dto.AuthResult, error) {
	return nil, apperror.Unauthorized("invalid email or password")
}

func (s *stubUseCase) GetProfile(_ context.Context, userID string) (*dto.Profile, error) {
	s.profileFor = userID
	return &dto.Profile{User: &model.User{ID: userID}}, nil
}

func (s *stubUseCase) CheckResetToken(_ context.Context, token string) error {
	s.resetToken = token
	return apperror.FieldInvalid("token", "the reset link is invalid or has expired")
}

func setup() (*gin.Engine, *stubUseCase, *auth.TokenIssuer) {
	gin.SetMode(gin.TestMode)
	uc := &stubUseCase{}
	log := logger.NewNop()
	h := NewAccountHandler(uc, log)
	issuer := auth.NewTokenIssuer(auth.Config{SecretKey: "test", Issuer: "test", AccessTokenTTL: time.Hour})

	r := gin.New()
	r.POST("/api/account/register/seller", h.RegisterSeller)
	r.POST("/api/account/login", h.Login)
	r.GET("/api/account/password-reset/:token", h.CheckResetToken)
	r.GET("/api/account/profile", auth.JWTAuth(issuer, log), h.GetProfile)
	return r, uc, issuer
}

func do(r *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, response.Envelope) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)

	var env response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestRegisterSeller(t *testing.T) {
	r, uc, _ := setup()

	body := `{"email":"shop@acme.test","password":"s3cret-pass","password2":"s3cret-pass","company_name":"Acme"}`
	w, env := do(r, http.MethodPost, "/api/account/register/seller", body, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, uc.registered)
	assert.Equal(t, "Acme", uc.registered.CompanyName)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "token", data["access_token"])
}

func TestRegisterSellerValidation(t *testing.T) {
	r, uc, _ := setup()

	w, env := do(r, http.MethodPost, "/api/account/register/seller", `{"email":"not-an-email"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, uc.registered)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "company_name")
}

func TestLoginUnauthorized(t *testing.T) {
	r, _, _ := setup()

	w, env := do(r, http.MethodPost, "/api/account/login", `{"email":"a@b.co","password":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", env.Message)
}

func TestProfileRequiresToken(t *testing.T) {
	r, uc, issuer := setup()

	w, _ := do(r, http.MethodGet, "/api/account/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := issuer.Issue("u-42", "ada", model.RoleCustomer)
	require.NoError(t, err)
	w, _ = do(r, http.MethodGet, "/api/account/profile", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-42", uc.profileFor)
}

func TestCheckResetToken(t *testing.T) {
	r, uc, _ := setup()

	w, env := do(r, http.MethodGet, "/api/account/password-reset/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "abc", uc.resetToken)
	assert.Contains(t, env.Errors, "token")
}
