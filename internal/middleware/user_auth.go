package middleware

import (
	"github.com/gin-gonic/gin"

	"farmdirect/internal/auth"
)

// UserAuth accepts any authenticated caller.
func UserAuth(verifier auth.Verifier) gin.HandlerFunc {
	return AuthGuard(verifier)
}

// CurrentIdentity returns the identity stored by AuthGuard.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := value.(auth.Identity)
	return id, ok
}
