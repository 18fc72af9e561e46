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

type FarmerCreateRequest struct {
	FarmName string `json:"farmName" binding:"required"`
	Bio      string `json:"bio"`
	Location string `json:"location" binding:"required"`
}

func GetFeaturedFarmers(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/farmers"
		defer handlePanic(c, route)

		farmers, err := store.GetFeaturedFarmers(c.Request.Context())
		if err != nil {
			respondStoreError(c, route, err, "farmers not found")
			return
		}
		c.JSON(http.StatusOK, farmers)
	}
}

func GetFarmer(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/farmers/:id"
		defer handlePanic(c, route)

		farmer, err := store.GetFarmerWithProducts(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err, "farmer not found")
			return
		}
		c.JSON(http.StatusOK, farmer)
	}
}

// CreateFarmer onboards the caller as a farmer. A user owns at most one farm.
// Two concurrent requests can still both pass the check; reads then return
// the older farm.
func CreateFarmer(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/farmers"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		var req FarmerCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx := c.Request.Context()
		existing, err := store.GetFarmerByUserID(ctx, id.UserID)
		switch {
		case err == nil:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":    "farmer profile already exists",
				"farmerId": existing.ID,
			})
			return
		case !errors.Is(err, storage.ErrNotFound):
			respondStoreError(c, route, err, "farmer not found")
			return
		}

		farmer, err := store.CreateFarmer(ctx, models.Farmer{
			UserID:   id.UserID,
			FarmName: strings.TrimSpace(req.FarmName),
			Bio:      strings.TrimSpace(req.Bio),
			Location: strings.TrimSpace(req.Location),
		})
		if err != nil {
			respondStoreError(c, route, err, "farmer not found")
			return
		}

		logger.FromContext(c).Info("farmer onboarded", zap.String("route", route), zap.String("farmer_id", farmer.ID))
		c.JSON(http.StatusCreated, farmer)
	}
}
