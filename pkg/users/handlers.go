package users

import (
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

const codeLength = 6

type handler struct {
	userService *Service
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	otp, err := auth.RandomCode(codeLength)
	if err != nil {
		return errors.WithStack(err)
	}
	emailCode, err := auth.RandomCode(codeLength)
	if err != nil {
		return errors.WithStack(err)
	}

	user := &models.User{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Phone:        params.Phone,
		Address:      params.Address,
		NIC:          params.NIC,
		Plans:        models.StringList(params.Plans),
		LibraryIDs:   models.StringList(params.Libraries),
		PasswordHash: hash,
		OTPCode:      otp,
		EmailCode:    emailCode,
		IsActive:     true,
	}
	if err := h.userService.CreateUser(ctx, user); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "User created successfully", user)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.ListUsersWithTotal(ctx, ListUsersOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
		Search: pointerutil.String(params.Search),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Users retrieved successfully", users, params.PageQuery, total)
}

func (h *handler) listByLibrary(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListByLibraryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, err := h.userService.ListUsers(ctx, ListUsersOptions{
		LibraryID: pointerutil.String(params.Library),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Users retrieved successfully", users)
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchUsersPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, err := h.userService.ListUsers(ctx, ListUsersOptions{
		Search:    pointerutil.String(params.Name),
		Email:     pointerutil.String(params.Email),
		LibraryID: pointerutil.String(params.Library),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Users retrieved successfully", users)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "User retrieved successfully", user)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateUserOptions{Columns: []string{}}
	setString := func(column string, value *string, field *string) {
		if value != nil && *value != *field {
			*field = *value
			opts.Columns = append(opts.Columns, column)
		}
	}
	setString("first_name", params.FirstName, &user.FirstName)
	setString("last_name", params.LastName, &user.LastName)
	setString("email", params.Email, &user.Email)
	setString("phone", params.Phone, &user.Phone)
	setString("address", params.Address, &user.Address)
	setString("nic", params.NIC, &user.NIC)
	if params.Plans != nil {
		user.Plans = models.StringList(*params.Plans)
		opts.Columns = append(opts.Columns, "plans")
	}
	if params.Libraries != nil {
		user.LibraryIDs = models.StringList(*params.Libraries)
		opts.Columns = append(opts.Columns, "library_ids")
	}

	if err := h.userService.UpdateUser(ctx, user, opts); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "User updated successfully", user)
}

func (h *handler) resetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	params := ResetPasswordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	hash, err := auth.HashPassword(params.NewPassword)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.userService.SetPasswordHash(ctx, c.Param("id"), hash); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Password reset successfully", nil)
}

func (h *handler) deleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.userService.DeleteUser(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "User deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	blocked, err := h.userService.ToggleBlocked(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "User status changed successfully", map[string]interface{}{
		"userId":  id,
		"blocked": blocked,
	})
}
