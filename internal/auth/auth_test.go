package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer() *TokenIssuer {
	return NewTokenIssuer(Config{SecretKey: "test-secret", Issuer: "marketplace", AccessTokenTTL: time.Hour})
}

func TestIssueAndParse(t *testing.T) {
	issuer := newIssuer()

	token, expires, err := issuer.Issue("u-1", "acme-corp", model.RoleSeller)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, model.RoleSeller, claims.Role)
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer := newIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := issuer.Issue("u-1", "x", model.RoleCustomer)
	require.NoError(t, err)

	_, err = newIssuer().Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenIssuer(Config{SecretKey: "other", Issuer: "marketplace", AccessTokenTTL: time.Hour})
	foreign, _, err := other.Issue("u-1", "x", model.RoleAdmin)
	require.NoError(t, err)

	_, err = newIssuer().Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := newIssuer()
	log := logger.NewNop()

	r := gin.New()
	r.GET("/admin", JWTAuth(issuer, log), RequireRole(log, model.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	do := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage").Code)

	seller, _, _ := issuer.Issue("s-1", "s", model.RoleSeller)
	assert.Equal(t, http.StatusForbidden, do("Bearer "+seller).Code)

	admin, _, _ := issuer.Issue("a-1", "a", model.RoleAdmin)
	w := do("Bearer " + admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a-1", w.Body.String())
}
