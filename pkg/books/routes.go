package books

import (
	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, binder *attachments.Binder) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
		binder:      binder,
	}

	g.POST("/store", h.store)
	g.GET("/all", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("/update/:id", h.update)
	g.POST("/delete/:id", h.deleteBook)
	g.POST("/change-status/:id", h.changeStatus)
}
