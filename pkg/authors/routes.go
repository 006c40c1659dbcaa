package authors

import (
	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers author routes. Everything except the
// open listing requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware, binder *attachments.Binder) {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
		binder:        binder,
	}

	authn := authMiddleware.Authenticate

	g.GET("/open/all", h.listOpen)
	g.POST("/store", h.store, authn)
	g.GET("/all", h.list, authn)
	g.GET("/:id", h.retrieve, authn)
	g.GET("/books/:id", h.listBooks, authn)
	g.GET("/payments/:id", h.listPayments, authn)
	g.POST("/payments/store/:id", h.storePayment, authn)
	g.POST("/update/:id", h.update, authn)
	g.POST("/update-accounts/:id", h.updateAccounts, authn)
	g.POST("/delete/:id", h.deleteAuthor, authn)
	g.POST("/change-status/:id", h.changeStatus, authn)
}
