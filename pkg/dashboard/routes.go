package dashboard

import (
	"github.com/kusalwijekoon97/ml-be/pkg/authors"
	"github.com/kusalwijekoon97/ml-be/pkg/librarians"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers dashboard routes on a group that already
// requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		authorService:    authors.NewService(db),
		librarianService: librarians.NewService(db),
	}

	g.GET("/counts", h.counts)
}
