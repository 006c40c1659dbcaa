package admins

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	adminService *Service
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreAdminPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	admin := &models.Admin{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.adminService.CreateAdmin(ctx, admin); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Admin created successfully", admin)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	admins, err := h.adminService.ListAdmins(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Admins retrieved successfully", admins)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := h.adminService.RetrieveAdmin(ctx, RetrieveAdminOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Admin retrieved successfully", admin)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateAdminPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.adminService.RetrieveAdmin(ctx, RetrieveAdminOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateAdminOptions{Columns: []string{}}
	if params.Name != nil && *params.Name != admin.Name {
		admin.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Email != nil && *params.Email != admin.Email {
		admin.Email = *params.Email
		opts.Columns = append(opts.Columns, "email")
	}
	if params.Password != nil {
		admin.PasswordHash, err = auth.HashPassword(*params.Password)
		if err != nil {
			return errors.WithStack(err)
		}
		opts.Columns = append(opts.Columns, "password_hash")
	}

	if err := h.adminService.UpdateAdmin(ctx, admin, opts); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Admin updated successfully", admin)
}

func (h *handler) deleteAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.adminService.DeleteAdmin(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Admin deleted successfully", nil)
}
