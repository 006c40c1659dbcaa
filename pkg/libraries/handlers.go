package libraries

import (
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	libraryService *Service
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library := &models.Library{
		Name:     params.Name,
		IsActive: true,
	}
	if err := h.libraryService.CreateLibrary(ctx, library); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Library created successfully", library)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libraries, total, err := h.libraryService.ListLibrariesWithTotal(ctx, ListLibrariesOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
		Search: pointerutil.String(params.Search),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Libraries retrieved successfully", libraries, params.PageQuery, total)
}

func (h *handler) listOpen(c echo.Context) error {
	ctx := c.Request().Context()

	libraries, err := h.libraryService.ListLibraries(ctx, ListLibrariesOptions{OnlyActive: true})
	if err != nil {
		return errors.WithStack(err)
	}
	for _, library := range libraries {
		library.Librarian = nil
	}

	return respond.OK(c, "Libraries retrieved successfully", libraries)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Library retrieved successfully", library)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateLibraryOptions{Columns: []string{}}
	if params.Name != library.Name {
		library.Name = params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Librarian != nil {
		if *params.Librarian == "" {
			library.LibrarianID = nil
		} else {
			library.LibrarianID = params.Librarian
		}
		opts.Columns = append(opts.Columns, "librarian_id")
	}

	if err := h.libraryService.UpdateLibrary(ctx, library, opts); err != nil {
		return errors.WithStack(err)
	}

	library, err = h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Library updated successfully", library)
}

func (h *handler) deleteLibrary(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.libraryService.DeleteLibrary(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Library deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	active, err := h.libraryService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Library status changed successfully", map[string]interface{}{
		"libraryId": id,
		"is_active": active,
	})
}
