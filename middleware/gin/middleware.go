// Package ginmw adapts shapefix request checking to gin.
package ginmw

import (
	"github.com/gin-gonic/gin"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/middleware"
)

// CheckJSON checks the request body against s, stores the result for GetBody,
// and aborts with middleware.ErrorPayload when the body is rejected.
func CheckJSON(s sf.Schema, opt middleware.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := middleware.Check(c.Request.Body, s, opt)
		if err != nil {
			c.AbortWithStatusJSON(middleware.Status(err), middleware.ErrorPayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithBody(c.Request.Context(), body))
		c.Next()
	}
}

// GetBody fetches the checked body from gin.Context.
func GetBody(c *gin.Context) (middleware.Body, bool) {
	return middleware.BodyFromContext(c.Request.Context())
}
