package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/logger"
)

const identityKey = "identity"

func bearerToken(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthGuard requires a valid bearer token. With allowedRoles set, the
// identity's role must be one of them.
func AuthGuard(verifier auth.Verifier, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c)

		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		id, err := verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			log.Warn("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if id.Role == r {
					match = true
					break
				}
			}
			if !match {
				log.Warn("role not allowed", zap.String("user_id", id.UserID), zap.String("role", id.Role))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		c.Set(identityKey, id)
		logger.WithContext(c, log.With(zap.String("user_id", id.UserID)))
		c.Next()
	}
}

func AdminAuth(verifier auth.Verifier) gin.HandlerFunc {
	return AuthGuard(verifier, auth.RoleAdmin)
}
