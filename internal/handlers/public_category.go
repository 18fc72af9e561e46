package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/storage"
)

func GetCategories(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		categories, err := store.GetCategories(c.Request.Context())
		if err != nil {
			respondStoreError(c, route, err, "categories not found")
			return
		}

		logger.FromContext(c).Debug("returning categories", zap.String("route", route), zap.Int("count", len(categories)))
		c.JSON(http.StatusOK, categories)
	}
}
