package auth

import (
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	authService *Service
}

func (h *handler) loginUser(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.authService.LoginUser(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	return respond.OK(c, "Logged In Successfully", result)
}

func (h *handler) loginLibrarian(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.authService.LoginLibrarian(ctx, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}
	return respond.OK(c, "Logged In Successfully", result)
}

func (h *handler) verifyOTP(account Account) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := VerifyPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}
		if err := h.authService.VerifyOTP(c.Request().Context(), account, params.User, params.Code); err != nil {
			return errors.WithStack(err)
		}
		return respond.OK(c, "OTP Verified", nil)
	}
}

func (h *handler) verifyEmail(account Account) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := VerifyPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}
		if err := h.authService.VerifyEmail(c.Request().Context(), account, params.User, params.Code); err != nil {
			return errors.WithStack(err)
		}
		return respond.OK(c, "Email Verified", nil)
	}
}

func (h *handler) updatePassword(account Account) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := UpdatePasswordPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}
		if params.NewPassword != params.ConfirmPassword {
			return errcodes.BadRequest("New & Confirm Password Doesn't Match")
		}
		err := h.authService.UpdatePassword(c.Request().Context(), account, params.User, params.OldPassword, params.NewPassword)
		if err != nil {
			return errors.WithStack(err)
		}
		return respond.OK(c, "Password Updated!", nil)
	}
}
