package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"movie-finder-service/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuth protects admin routes with a static API key.
// If apiKey is empty, authentication is disabled.
func AdminAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		// 支持 "Bearer <token>"、"ApiKey <token>" 以及 ?api_key=
		token := c.GetHeader("Authorization")
		if token != "" {
			token = strings.TrimPrefix(token, "Bearer ")
			token = strings.TrimPrefix(token, "ApiKey ")
		} else {
			token = c.Query("api_key")
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.APIResponse{
				Code:  401,
				Error: "unauthorized: missing API key",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, model.APIResponse{
				Code:  403,
				Error: "forbidden: invalid API key",
			})
			return
		}

		c.Next()
	}
}
