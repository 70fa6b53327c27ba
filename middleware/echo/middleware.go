// Package echomw adapts shapefix request checking to echo.
package echomw

import (
	"github.com/labstack/echo/v4"

	sf "github.com/reoring/shapefix"
	"github.com/reoring/shapefix/middleware"
)

// CheckJSON checks the request body against s, stores the result for GetBody,
// or answers with middleware.ErrorPayload when the body is rejected.
func CheckJSON(s sf.Schema, opt middleware.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := middleware.Check(c.Request().Body, s, opt)
			if err != nil {
				return c.JSON(middleware.Status(err), middleware.ErrorPayload(err))
			}
			ctx := middleware.ContextWithBody(c.Request().Context(), body)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetBody fetches the checked body from echo.Context.
func GetBody(c echo.Context) (middleware.Body, bool) {
	return middleware.BodyFromContext(c.Request().Context())
}
