package logger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const contextKey = "logger"

// New builds the process logger: JSON for production, console for development.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	return cfg.Build()
}

// WithContext stores a request-scoped logger on the gin context.
func WithContext(c *gin.Context, log *zap.Logger) {
	c.Set(contextKey, log)
}

// FromContext returns the request-scoped logger, or the global one when the
// request id middleware did not run.
func FromContext(c *gin.Context) *zap.Logger {
	if value, ok := c.Get(contextKey); ok {
		if log, ok := value.(*zap.Logger); ok {
			return log
		}
	}
	return zap.L()
}
