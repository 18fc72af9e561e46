package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

func CreateCategory(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/categories"
		defer handlePanic(c, route)

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name required")
			return
		}

		category, err := store.CreateCategory(c.Request.Context(), models.Category{
			Name: name,
			Icon: strings.TrimSpace(req.Icon),
		})
		if err != nil {
			respondStoreError(c, route, err, "category not found")
			return
		}

		logger.FromContext(c).Info("category created", zap.String("route", route), zap.String("category_id", category.ID))
		c.JSON(http.StatusCreated, category)
	}
}
