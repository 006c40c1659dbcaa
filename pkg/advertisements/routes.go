package advertisements

import (
	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers advertisement routes on a group that
// already requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, binder *attachments.Binder) {
	advertisementService := NewService(db)

	h := &handler{
		advertisementService: advertisementService,
		binder:               binder,
	}

	g.POST("/store", h.store)
	g.GET("/all", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("/update/:id", h.update)
	g.POST("/delete/:id", h.deleteAdvertisement)
}
