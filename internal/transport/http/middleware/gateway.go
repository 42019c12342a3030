package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemcanvas/internal/transport/http/response"
)

// RequireGateway answers 503 while the AI gateway is misconfigured.
func RequireGateway(configErr error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configErr != nil {
			response.Error(c, http.StatusServiceUnavailable, response.CodeGatewayUnavailable, configErr.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
