package handler

import (
	"net/http"

	"github.com/dinelog/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsContextKey = "__auth_claims"

// RequireUser 校验 Bearer 令牌，失败时返回 401。
func (a *API) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := a.tokens.Verify(c.Request.Context(), raw)
		if err != nil {
			a.log.Debug("token rejected", zap.Error(err))
			respondError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireAdmin 必须挂在 RequireUser 之后，非管理员返回 403。
func (a *API) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		if !claims.Admin {
			respondError(c, http.StatusForbidden, "admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*auth.Claims)
	return claims
}
