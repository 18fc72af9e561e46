package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farmdirect/internal/models"
	"farmdirect/internal/orders"
)

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func UpdateOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, err := svc.Transition(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
