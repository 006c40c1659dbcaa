package dashboard

import (
	"github.com/kusalwijekoon97/ml-be/pkg/authors"
	"github.com/kusalwijekoon97/ml-be/pkg/librarians"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type handler struct {
	authorService    *authors.Service
	librarianService *librarians.Service
}

// Counts is the dashboard summary.
type Counts struct {
	AuthorCount    int `json:"authorCount"`
	LibrarianCount int `json:"librarianCount"`
}

func (h *handler) counts(c echo.Context) error {
	g, ctx := errgroup.WithContext(c.Request().Context())

	counts := Counts{}
	g.Go(func() error {
		var err error
		counts.AuthorCount, err = h.authorService.CountActive(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts.LibrarianCount, err = h.librarianService.CountActive(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Dashboard counts retrieved successfully", counts)
}
