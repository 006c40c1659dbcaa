package auth

import (
	"strings"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/labstack/echo/v4"
)

const contextKeyClaims = "auth_claims"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{authService: authService}
}

// Authenticate requires a valid bearer token and stores its claims in the
// context.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		claims, err := m.authService.Validate(strings.TrimSpace(token))
		if err != nil {
			return errcodes.Unauthorized("Invalid or expired token")
		}

		c.Set(contextKeyClaims, claims)
		return next(c)
	}
}

// RequireRole rejects principals whose token does not carry one of roles.
// Must be used after Authenticate.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return errcodes.Unauthorized("Authentication required")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return errcodes.Forbidden("This action")
		}
	}
}

// ClaimsFromContext returns the claims of the authenticated principal.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(contextKeyClaims).(*Claims)
	return claims, ok
}
