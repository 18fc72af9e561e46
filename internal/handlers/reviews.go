package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

type ReviewCreateRequest struct {
	Rating  *int   `json:"rating" binding:"required,min=0,max=5"`
	Comment string `json:"comment"`
}

func GetProductReviews(store storage.Storage) gin.HandlerFunc {
	return listReviews("GET /api/products/:id/reviews", store.GetProductReviews)
}

func GetFarmerReviews(store storage.Storage) gin.HandlerFunc {
	return listReviews("GET /api/farmers/:id/reviews", store.GetFarmerReviews)
}

func listReviews(route string, list func(context.Context, string) ([]models.Review, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		reviews, err := list(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err, "reviews not found")
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

// CreateProductReview stores a review for an existing product. Aggregate
// ratings on the product are not recomputed.
func CreateProductReview(store storage.Storage) gin.HandlerFunc {
	return createReview("POST /api/products/:id/reviews", store,
		func(ctx context.Context, id string) error {
			_, err := store.GetProduct(ctx, id)
			return err
		},
		func(r *models.Review, id string) { r.ProductID = &id },
		"product not found",
	)
}

func CreateFarmerReview(store storage.Storage) gin.HandlerFunc {
	return createReview("POST /api/farmers/:id/reviews", store,
		func(ctx context.Context, id string) error {
			_, err := store.GetFarmer(ctx, id)
			return err
		},
		func(r *models.Review, id string) { r.FarmerID = &id },
		"farmer not found",
	)
}

func createReview(
	route string,
	store storage.Storage,
	exists func(context.Context, string) error,
	target func(*models.Review, string),
	notFound string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		var req ReviewCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx := c.Request.Context()
		targetID := c.Param("id")
		if err := exists(ctx, targetID); err != nil {
			respondStoreError(c, route, err, notFound)
			return
		}

		review := models.Review{
			UserID:  id.UserID,
			Rating:  *req.Rating,
			Comment: strings.TrimSpace(req.Comment),
		}
		target(&review, targetID)

		created, err := store.CreateReview(ctx, review)
		if err != nil {
			respondStoreError(c, route, err, notFound)
			return
		}

		logger.FromContext(c).Info("review created", zap.String("route", route), zap.String("review_id", created.ID))
		c.JSON(http.StatusCreated, created)
	}
}
