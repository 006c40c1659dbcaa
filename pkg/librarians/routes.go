package librarians

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/mailer"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers librarian routes on a group that already
// requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware, mail mailer.Sender) {
	librarianService := NewService(db)

	h := &handler{
		librarianService: librarianService,
		mail:             mail,
	}

	adminOnly := authMiddleware.RequireRole(auth.RoleAdmin)

	g.POST("/store", h.store, adminOnly)
	g.GET("/all", h.list)
	g.GET("/all-by-library", h.listByLibrary)
	g.POST("/search", h.search)
	g.GET("/:id", h.retrieve)
	g.POST("/update/:id", h.update, adminOnly)
	g.POST("/delete/:id", h.deleteLibrarian, adminOnly)
	g.POST("/change-status/:id", h.changeStatus, adminOnly)
}
