package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

type UserSyncRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

func GetMe(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/me"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		user, err := store.GetUser(c.Request.Context(), id.UserID)
		if err != nil {
			respondStoreError(c, route, err, "user not found")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// SyncMe is called after sign-in. It returns the stored user, creating it from
// the token identity on first sight.
func SyncMe(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users/me"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		var req UserSyncRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, err)
				return
			}
		}

		ctx := c.Request.Context()
		existing, err := store.GetUser(ctx, id.UserID)
		if err == nil {
			c.JSON(http.StatusOK, existing)
			return
		}
		if !errors.Is(err, storage.ErrNotFound) {
			respondStoreError(c, route, err, "user not found")
			return
		}

		email := strings.ToLower(strings.TrimSpace(id.Email))
		if email == "" {
			email = strings.ToLower(strings.TrimSpace(req.Email))
		}
		if email == "" {
			respondWithError(c, http.StatusBadRequest, route, "email required")
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}

		user, err := store.CreateUser(ctx, models.User{ID: id.UserID, Email: email, Name: name})
		if err != nil {
			// A concurrent sync may have created the row first.
			if again, getErr := store.GetUser(ctx, id.UserID); getErr == nil {
				c.JSON(http.StatusOK, again)
				return
			}
			logger.FromContext(c).Error("user create failed", zap.String("route", route), zap.Error(err))
			respondWithError(c, http.StatusConflict, route, "user could not be created")
			return
		}

		logger.FromContext(c).Info("user created", zap.String("route", route), zap.String("user_id", user.ID))
		c.JSON(http.StatusCreated, user)
	}
}
