package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salescrm/backend/internal/interfaces/http/dto"
)

// SwaggerGate answers 404 on the documentation routes when they are disabled
func SwaggerGate(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", c.GetString(RequestIDContextKey)))
			return
		}
		c.Next()
	}
}
