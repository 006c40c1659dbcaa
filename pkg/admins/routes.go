package admins

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers admin routes on a group that already
// requires authentication. Only admins may manage admins.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	adminService := NewService(db)

	h := &handler{
		adminService: adminService,
	}

	g.Use(authMiddleware.RequireRole(auth.RoleAdmin))

	g.POST("/store", h.store)
	g.GET("/all", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("/update/:id", h.update)
	g.POST("/delete/:id", h.deleteAdmin)
}
