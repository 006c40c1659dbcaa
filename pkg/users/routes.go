package users

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers end user routes on a group that already
// requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	// Password resets for another account are limited to admins.
	adminOnly := authMiddleware.RequireRole(auth.RoleAdmin)

	g.POST("/store", h.store)
	g.GET("/all", h.list)
	g.GET("/all-by-library", h.listByLibrary)
	g.POST("/search", h.search)
	g.GET("/:id", h.retrieve)
	g.POST("/update/:id", h.update)
	g.POST("/reset-password/:id", h.resetPassword, adminOnly)
	g.POST("/delete/:id", h.deleteUser)
	g.POST("/change-status/:id", h.changeStatus)
}
