package librarians

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/mailer"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/pointerutil"
)

const codeLength = 6

type handler struct {
	librarianService *Service
	mail             mailer.Sender
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreLibrarianPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	codes := make([]string, 3)
	for i := range codes {
		if codes[i], err = auth.RandomCode(codeLength); err != nil {
			return errors.WithStack(err)
		}
	}

	librarian := &models.Librarian{
		FirstName:             params.FirstName,
		LastName:              params.LastName,
		NIC:                   params.NIC,
		Email:                 params.Email,
		Address:               params.Address,
		Phone:                 params.Phone,
		Status:                models.LibrarianStatusActive,
		Type:                  params.Type,
		Permissions:           params.Permissions,
		PasswordHash:          hash,
		OTPCode:               codes[0],
		EmailCode:             codes[1],
		PasswordRecoveryToken: codes[2],
		IsActive:              true,
	}
	if err := h.librarianService.CreateLibrarian(ctx, librarian, params.Libraries); err != nil {
		return errors.WithStack(err)
	}

	body, err := mailer.LibrarianWelcome{FirstName: librarian.FirstName, EmailCode: librarian.EmailCode}.Render()
	if err != nil {
		logger.FromEchoContext(c).Err(err).Error("failed to render welcome mail")
	} else {
		mailer.Notify(ctx, h.mail, librarian.Email, mailer.LibrarianWelcomeSubject, body)
	}

	librarian, err = h.librarianService.RetrieveLibrarian(ctx, RetrieveLibrarianOptions{ID: &librarian.ID})
	if err != nil {
		return errors.WithStack(err)
	}
	return respond.Created(c, "Librarian Registered Successfully", librarian)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLibrariansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarians, total, err := h.librarianService.ListLibrariansWithTotal(ctx, ListLibrariansOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
		Search: pointerutil.String(params.Search),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Librarians retrieved successfully", librarians, params.PageQuery, total)
}

func (h *handler) listByLibrary(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListByLibraryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarians, err := h.librarianService.ListLibrarians(ctx, ListLibrariansOptions{
		LibraryIDs: params.Libraries,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Librarians retrieved successfully", librarians)
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchLibrariansPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarians, err := h.librarianService.ListLibrarians(ctx, ListLibrariansOptions{
		Search:     pointerutil.String(params.Name),
		LibraryIDs: params.Libraries,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Librarians retrieved successfully", librarians)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	librarian, err := h.librarianService.RetrieveLibrarian(ctx, RetrieveLibrarianOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Librarian retrieved successfully", librarian)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateLibrarianPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarian, err := h.librarianService.RetrieveLibrarian(ctx, RetrieveLibrarianOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateLibrarianOptions{Columns: []string{}, LibraryIDs: params.Libraries}
	setString := func(dst *string, src *string, column string) {
		if src != nil && *src != *dst {
			*dst = *src
			opts.Columns = append(opts.Columns, column)
		}
	}
	setString(&librarian.FirstName, params.FirstName, "first_name")
	setString(&librarian.LastName, params.LastName, "last_name")
	setString(&librarian.NIC, params.NIC, "nic")
	setString(&librarian.Email, params.Email, "email")
	setString(&librarian.Address, params.Address, "address")
	setString(&librarian.Phone, params.Phone, "phone")
	setString(&librarian.Type, params.Type, "type")
	setString(&librarian.Status, params.Status, "status")
	if params.Permissions != nil {
		librarian.Permissions = *params.Permissions
		opts.Columns = append(opts.Columns, "permissions")
	}

	if err := h.librarianService.UpdateLibrarian(ctx, librarian, opts); err != nil {
		return errors.WithStack(err)
	}

	librarian, err = h.librarianService.RetrieveLibrarian(ctx, RetrieveLibrarianOptions{ID: &librarian.ID})
	if err != nil {
		return errors.WithStack(err)
	}
	return respond.OK(c, "Librarian updated successfully", librarian)
}

func (h *handler) deleteLibrarian(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.librarianService.DeleteLibrarian(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Librarian deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	active, err := h.librarianService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Librarian status changed successfully", map[string]interface{}{
		"librarianId": id,
		"is_active":   active,
	})
}
