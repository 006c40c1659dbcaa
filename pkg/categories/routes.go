package categories

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the category tree. Main categories live
// under /main and their children under /sub.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	categoryService := NewService(db)

	h := &handler{
		categoryService: categoryService,
	}

	main := g.Group("/main")
	main.POST("/store", h.store)
	main.GET("/all", h.list)
	main.GET("/search", h.search)
	main.GET("/:id", h.retrieve)
	main.POST("/update/:id", h.update)
	main.POST("/delete/:id", h.deleteCategory)
	main.POST("/change-status/:id", h.changeStatus)

	sub := g.Group("/sub")
	sub.POST("/store", h.storeSub)
	sub.GET("/all", h.listSub)
	sub.GET("/search", h.searchSub)
	sub.GET("/:id", h.retrieveSub)
	sub.POST("/update/:id", h.updateSub)
	sub.POST("/delete/:id", h.deleteSub)
}
