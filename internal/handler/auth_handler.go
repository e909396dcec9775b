package handler

import (
	"net/http"

	"github.com/dinelog/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IssueToken 使用本地账号密码换取访问令牌
func (a *API) IssueToken(c *gin.Context) {
	if a.credentials == nil {
		respondError(c, http.StatusNotFound, "credential sign-in is disabled")
		return
	}
	var req tokenRequest
	if !bindJSON(c, &req, "username and password are required") {
		return
	}

	result, err := a.credentials.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			a.log.Info("sign-in rejected", zap.String("username", req.Username))
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		a.respondFault(c, err, "sign-in failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"userId":    result.UserID,
		"admin":     result.Admin,
	})
}
