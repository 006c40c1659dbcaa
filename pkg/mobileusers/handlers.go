package mobileusers

import (
	"context"

	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	mobileUserService *Service
	binder            *attachments.Binder
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreMobileUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	picture, err := attachments.ReadFile(params.FormFiles[profilePictureField])
	if err != nil {
		return errors.WithStack(err)
	}
	blob, err := h.binder.BindOnCreate(ctx, picture, attachments.KindImage)
	if err != nil {
		return errors.WithStack(err)
	}

	user := &models.MobileUser{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Username:     params.Username,
		Email:        params.Email,
		Country:      params.Country,
		MobileNumber: params.MobileNumber,
		Role:         params.Role,
		Status:       params.Status,
		LibraryIDs:   models.StringList(params.Libraries),
		PasswordHash: hash,
		IsActive:     true,
	}
	if blob != nil {
		user.ProfilePictureKey = &blob.Key
	}

	if err := h.mobileUserService.CreateMobileUser(ctx, user); err != nil {
		if blob != nil {
			h.binder.Release(ctx, *blob)
		}
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, user); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Mobile user created successfully", user)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListMobileUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.mobileUserService.ListMobileUsersWithTotal(ctx, ListMobileUsersOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
		Search: pointerutil.String(params.Search),
		Role:   pointerutil.String(params.Role),
		Status: pointerutil.String(params.Status),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	for _, user := range users {
		if err := h.sign(ctx, user); err != nil {
			return errors.WithStack(err)
		}
	}

	return respond.Page(c, "Mobile users retrieved successfully", users, params.PageQuery, total)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.mobileUserService.RetrieveMobileUser(ctx, RetrieveMobileUserOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, user); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Mobile user retrieved successfully", user)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateMobileUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.mobileUserService.RetrieveMobileUser(ctx, RetrieveMobileUserOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateMobileUserOptions{Columns: []string{}}
	setString := func(column string, value *string, field *string) {
		if value != nil && *value != *field {
			*field = *value
			opts.Columns = append(opts.Columns, column)
		}
	}
	setString("first_name", params.FirstName, &user.FirstName)
	setString("last_name", params.LastName, &user.LastName)
	setString("username", params.Username, &user.Username)
	setString("email", params.Email, &user.Email)
	setString("country", params.Country, &user.Country)
	setString("mobile_number", params.MobileNumber, &user.MobileNumber)
	setString("role", params.Role, &user.Role)
	setString("status", params.Status, &user.Status)
	if params.Password != nil {
		user.PasswordHash, err = auth.HashPassword(*params.Password)
		if err != nil {
			return errors.WithStack(err)
		}
		opts.Columns = append(opts.Columns, "password_hash")
	}
	if params.Libraries != nil {
		user.LibraryIDs = models.StringList(*params.Libraries)
		opts.Columns = append(opts.Columns, "library_ids")
	}
	if params.Friends != nil {
		user.FriendIDs = models.StringList(*params.Friends)
		opts.Columns = append(opts.Columns, "friend_ids")
	}

	picture, err := attachments.ReadFile(params.FormFiles[profilePictureField])
	if err != nil {
		return errors.WithStack(err)
	}
	if picture == nil {
		err = h.mobileUserService.UpdateMobileUser(ctx, user, opts)
	} else {
		_, err = h.binder.BindOnUpdate(ctx, attachments.KeyOf(user.ProfilePictureKey), picture, attachments.KindImage, func(blob *attachments.Blob) error {
			user.ProfilePictureKey = &blob.Key
			opts.Columns = append(opts.Columns, "profile_picture_key")
			return h.mobileUserService.UpdateMobileUser(ctx, user, opts)
		})
	}
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, user); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Mobile user updated successfully", user)
}

func (h *handler) deleteMobileUser(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.mobileUserService.RetrieveMobileUser(ctx, RetrieveMobileUserOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.mobileUserService.DeleteMobileUser(ctx, user.ID); err != nil {
		return errors.WithStack(err)
	}
	h.binder.BindOnDelete(ctx, attachments.KeyOf(user.ProfilePictureKey))

	return respond.OK(c, "Mobile user deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	active, err := h.mobileUserService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Mobile user status changed successfully", map[string]interface{}{
		"mobileUserId": id,
		"is_active":    active,
	})
}

func (h *handler) sign(ctx context.Context, user *models.MobileUser) error {
	var err error
	user.ProfilePicture, err = h.binder.SignedURL(ctx, attachments.KeyOf(user.ProfilePictureKey))
	return err
}
