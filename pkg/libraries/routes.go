package libraries

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers library routes. Everything except the
// open listing requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	libraryService := NewService(db)

	h := &handler{
		libraryService: libraryService,
	}

	authn := authMiddleware.Authenticate

	g.GET("/open/all", h.listOpen)
	g.POST("/store", h.store, authn)
	g.GET("/all", h.list, authn)
	g.GET("/:id", h.retrieve, authn)
	g.POST("/update/:id", h.update, authn)
	g.POST("/delete/:id", h.deleteLibrary, authn)
	g.POST("/change-status/:id", h.changeStatus, authn)
}
