package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/orders"
	"farmdirect/internal/storage"
)

type createOrderRequest struct {
	Items []orders.Line `json:"items" binding:"required,min=1,dive"`
}

// respondOrderError maps checkout and lifecycle errors to HTTP statuses.
func respondOrderError(c *gin.Context, route string, err error) {
	var (
		validationErr *orders.ValidationError
		notFoundErr   *orders.ProductNotFoundError
		stockErr      *orders.OutOfStockError
		transitionErr *orders.TransitionError
	)
	switch {
	case errors.As(err, &validationErr):
		respondWithError(c, http.StatusBadRequest, route, validationErr.Error())
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "product not found",
			"productId": notFoundErr.ProductID,
		})
	case errors.As(err, &stockErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "product out of stock",
			"productId": stockErr.ProductID,
		})
	case errors.As(err, &transitionErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":  transitionErr.Error(),
			"status": transitionErr.From,
		})
	default:
		respondStoreError(c, route, err, "order not found")
	}
}

func CreateOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := svc.Place(c.Request.Context(), id.UserID, req.Items)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		logger.FromContext(c).Info("order created", zap.String("route", route), zap.String("order_id", order.ID))
		c.JSON(http.StatusCreated, order)
	}
}

func GetOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		list, err := svc.ListForUser(c.Request.Context(), id.UserID)
		if err != nil {
			respondStoreError(c, route, err, "orders not found")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetOrder hides orders of other users behind a 404 unless the caller is an
// admin.
func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err == nil && order.UserID != id.UserID && !id.IsAdmin() {
			err = storage.ErrNotFound
		}
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func CancelOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/:id/cancel"
		defer handlePanic(c, route)

		id, ok := requireIdentity(c, route)
		if !ok {
			return
		}

		order, err := svc.Cancel(c.Request.Context(), c.Param("id"), id.UserID)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
