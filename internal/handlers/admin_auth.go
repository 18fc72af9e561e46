package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/logger"
)

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func AdminLogin(creds auth.AdminCredentials, issuer *auth.HMAC, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/login"
		defer handlePanic(c, route)

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		id, err := creds.Authenticate(strings.TrimSpace(req.Email), req.Password)
		if errors.Is(err, auth.ErrAdminDisabled) {
			respondWithError(c, http.StatusServiceUnavailable, route, "admin login disabled")
			return
		}
		if err != nil {
			logger.FromContext(c).Warn("admin login rejected", zap.String("route", route))
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := issuer.Issue(id, accessTTL)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"expiresIn": int(accessTTL.Seconds()),
		})
	}
}
