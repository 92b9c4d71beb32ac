package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"parts-and-service/internal/models"
)

// JWT returns the auth middleware. On success it copies the token claims
// into the echo context under "userID" and "userRole", which is what every
// handler reads.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		SuccessHandler: func(c echo.Context) {
			token := c.Get("user").(*jwt.Token)
			claims := token.Claims.(jwt.MapClaims)
			if sub, ok := claims["sub"].(string); ok {
				c.Set("userID", sub)
			}
			if role, ok := claims["role"].(string); ok {
				c.Set("userRole", role)
			}
		},
	})
}

// RequireRole rejects requests whose token role is not in the allow list.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(string)
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Insufficient permissions"})
		}
	}
}
