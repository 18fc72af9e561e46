package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/orders"
	"farmdirect/internal/payments"
)

type paymentIntentRequest struct {
	// Amount is in minor currency units (cents). With orderId set it may be
	// omitted; the order total is charged.
	Amount   int64  `json:"amount" binding:"omitempty,gt=0"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
	OrderID  string `json:"orderId"`
}

// CreatePaymentIntent charges the client supplied amount, or the stored total
// of a pending order when orderId is given.
func CreatePaymentIntent(svc *orders.Service, processor payments.Processor, defaultCurrency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/create-payment-intent"
		defer handlePanic(c, route)

		var req paymentIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		amount := req.Amount
		if req.OrderID != "" {
			order, err := svc.Get(c.Request.Context(), req.OrderID)
			if err != nil {
				respondStoreError(c, route, err, "order not found")
				return
			}
			if order.Status != models.OrderStatusPending {
				respondWithError(c, http.StatusConflict, route, "order is not awaiting payment")
				return
			}
			total := order.Total.MinorUnits()
			if amount != 0 && amount != total {
				respondWithError(c, http.StatusBadRequest, route, "amount does not match order total")
				return
			}
			amount = total
		}
		if amount <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "amount must be positive")
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		var metadata map[string]string
		if req.OrderID != "" {
			metadata = map[string]string{"order_id": req.OrderID}
		}

		intent, err := processor.CreatePaymentIntent(c.Request.Context(), payments.IntentRequest{
			Amount:   amount,
			Currency: currency,
			Metadata: metadata,
		})
		switch {
		case errors.Is(err, payments.ErrNotConfigured):
			metrics.PaymentIntents.WithLabelValues("disabled").Inc()
			respondWithError(c, http.StatusServiceUnavailable, route, "payments not configured")
			return
		case errors.Is(err, payments.ErrInvalidAmount):
			metrics.PaymentIntents.WithLabelValues("rejected").Inc()
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		case err != nil:
			metrics.PaymentIntents.WithLabelValues("error").Inc()
			logger.FromContext(c).Error("payment intent failed", zap.String("route", route), zap.Error(err))
			respondWithError(c, http.StatusBadGateway, route, "Error creating payment intent")
			return
		}

		metrics.PaymentIntents.WithLabelValues("created").Inc()
		logger.FromContext(c).Info("payment intent created",
			zap.String("route", route),
			zap.String("intent_id", intent.ID),
			zap.Int64("amount", amount),
		)
		c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
	}
}
