package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/logger"
	"farmdirect/internal/middleware"
	"farmdirect/internal/storage"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logger.FromContext(c).Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log := logger.FromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error("returning error", zap.String("route", route), zap.Int("status", status), zap.String("message", message))
	} else {
		log.Debug("returning error", zap.String("route", route), zap.Int("status", status), zap.String("message", message))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondStoreError maps storage.ErrNotFound to a 404 with notFound as the
// message; anything else is logged and reported as a 500.
func respondStoreError(c *gin.Context, route string, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, notFound)
		return
	}
	logger.FromContext(c).Error("storage failure", zap.String("route", route), zap.Error(err))
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min", "max", "gt", "gte", "lte":
				details = append(details, fmt.Sprintf("%s is out of range", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// requireIdentity is for routes behind middleware.UserAuth.
func requireIdentity(c *gin.Context, route string) (auth.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
		return auth.Identity{}, false
	}
	return id, true
}
