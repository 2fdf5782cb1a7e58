package auth

import (
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/response"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
)

// JWTAuth rejects requests without a valid bearer token and stores the
// claims on the gin context.
func JWTAuth(issuer *TokenIssuer, log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, log, apperror.Unauthorized("missing bearer token"))
			return
		}

		claims, err := issuer.Parse(parts[1])
		if err != nil {
			response.Error(c, log, apperror.Unauthorized("token is invalid or expired"))
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole must run after JWTAuth.
func RequireRole(log logger.ZapLogger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, log, apperror.Forbidden("insufficient role"))
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

func Role(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}
