package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"model-serving-service/internal/core/domain"
)

// RequireJSON rejects requests whose body or accepted response type is not application/json
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && c.ContentType() != gin.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": domain.ErrUnsupportedContentType.Error() + ": " + c.GetHeader("Content-Type"),
			})
			return
		}
		if c.NegotiateFormat(gin.MIMEJSON) == "" {
			c.AbortWithStatusJSON(http.StatusNotAcceptable, gin.H{
				"error": domain.ErrNotAcceptable.Error() + ": " + c.GetHeader("Accept"),
			})
			return
		}
		c.Next()
	}
}
