// Package middleware holds the gin middleware shared by the gateway's
// route groups.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth validates the gateway API key. Clients of different dialects
// present it differently, so all four transports are accepted: bearer in
// Authorization, x-api-key, x-goog-api-key, or a ?key= query parameter.
// An empty requiredKey disables authentication.
func APIKeyAuth(requiredKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if requiredKey == "" {
			c.Next()
			return
		}
		for _, candidate := range presentedKeys(c) {
			if subtle.ConstantTimeCompare([]byte(candidate), []byte(requiredKey)) == 1 {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{
				"message": "invalid or missing API key",
				"type":    "authentication_error",
			},
		})
	}
}

func presentedKeys(c *gin.Context) []string {
	var keys []string
	if auth := c.GetHeader("Authorization"); auth != "" {
		keys = append(keys, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	}
	if k := c.GetHeader("x-api-key"); k != "" {
		keys = append(keys, k)
	}
	if k := c.GetHeader("x-goog-api-key"); k != "" {
		keys = append(keys, k)
	}
	if k := c.Query("key"); k != "" {
		keys = append(keys, k)
	}
	return keys
}
