package materialtypes

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers material type routes on a group that
// already requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	materialTypeService := NewService(db)

	h := &handler{
		materialTypeService: materialTypeService,
	}

	g.POST("/store", h.store)
	g.GET("/all", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("/update/:id", h.update)
	g.POST("/delete/:id", h.deleteMaterialType)
}
