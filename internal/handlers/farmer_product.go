package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/logger"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

type ProductCreateRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	CategoryID  string        `json:"categoryId" binding:"required"`
	Price       *models.Price `json:"price" binding:"required"`
	Unit        string        `json:"unit" binding:"required"`
	ImageURL    string        `json:"imageUrl"`
	InStock     *bool         `json:"inStock"`
}

// callerFarm resolves the farm owned by the authenticated user. It writes the
// response itself when there is none.
func callerFarm(c *gin.Context, store storage.Storage, route string, id auth.Identity) (*models.Farmer, bool) {
	farmer, err := store.GetFarmerByUserID(c.Request.Context(), id.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(c, http.StatusForbidden, route, "farmer profile required")
		return nil, false
	}
	if err != nil {
		respondStoreError(c, route, err, "farmer not found")
		return nil, false
	}
	return farmer, true
}

func CreateProduct(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !req.Price.IsPositive() {
			respondWithError(c, http.StatusBadRequest, route, "price must be positive")
			return
		}

		farmer, ok := callerFarm(c, store, route, id)
		if !ok {
			return
		}

		inStock := true
		if req.InStock != nil {
			inStock = *req.InStock
		}

		product, err := store.CreateProduct(c.Request.Context(), models.Product{
			FarmerID:    farmer.ID,
			CategoryID:  strings.TrimSpace(req.CategoryID),
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Price:       *req.Price,
			Unit:        strings.TrimSpace(req.Unit),
			ImageURL:    strings.TrimSpace(req.ImageURL),
			InStock:     inStock,
		})
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		logger.FromContext(c).Info("product created",
			zap.String("route", route),
			zap.String("product_id", product.ID),
			zap.String("farmer_id", farmer.ID),
		)
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct lets the owning farmer edit a listing. Only admins may change
// the featured flag; admins may edit any product.
func UpdateProduct(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/products/:id"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		var update models.ProductUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			respondValidationError(c, err)
			return
		}
		if update.Price != nil && !update.Price.IsPositive() {
			respondWithError(c, http.StatusBadRequest, route, "price must be positive")
			return
		}
		if update.Featured != nil && !id.IsAdmin() {
			respondWithError(c, http.StatusForbidden, route, "only admins can feature products")
			return
		}

		ctx := c.Request.Context()
		productID := c.Param("id")
		current, err := store.GetProduct(ctx, productID)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		if !id.IsAdmin() {
			farmer, ok := callerFarm(c, store, route, id)
			if !ok {
				return
			}
			if current.FarmerID != farmer.ID {
				respondWithError(c, http.StatusForbidden, route, "not your product")
				return
			}
		}

		product, err := store.UpdateProduct(ctx, productID, update)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		logger.FromContext(c).Info("product updated", zap.String("route", route), zap.String("product_id", product.ID))
		c.JSON(http.StatusOK, product)
	}
}
