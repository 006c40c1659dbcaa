package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers the unauthenticated credential routes.
func RegisterRoutes(g *echo.Group, authService *Service) {
	h := &handler{authService: authService}

	auth := g.Group("/auth")
	auth.POST("/user/login", h.loginUser)
	auth.POST("/user/verify-otp", h.verifyOTP(AccountUser))
	auth.POST("/user/verify-email", h.verifyEmail(AccountUser))
	auth.POST("/user/update-password", h.updatePassword(AccountUser))
	auth.POST("/librarian/login", h.loginLibrarian)
	auth.POST("/librarian/verify-otp", h.verifyOTP(AccountLibrarian))
	auth.POST("/librarian/verify-email", h.verifyEmail(AccountLibrarian))
	auth.POST("/librarian/update-password", h.updatePassword(AccountLibrarian))
}
