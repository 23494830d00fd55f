package api_v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/conf"
)

// AdminAuthMiddleware guards every /api/admin route with the configured API
// key. No key configured means no admin access at all; there is no anonymous
// fallback.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("Authorization")
		if isApiKeyValid(apiKey) {
			c.Set("api_key", apiKey)
			c.Next()
			return
		}
		resp.RespondError(c, http.StatusUnauthorized, "Unauthorized.")
		c.Abort()
	}
}

func isApiKeyValid(key string) bool {
	expected := conf.Conf.Admin.ApiKey
	if expected == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}
