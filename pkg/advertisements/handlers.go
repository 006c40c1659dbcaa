package advertisements

import (
	"context"

	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	advertisementService *Service
	binder               *attachments.Binder
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreAdvertisementPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	image, err := attachments.ReadFile(params.FormFiles[imageField])
	if err != nil {
		return errors.WithStack(err)
	}
	if image == nil {
		return errcodes.FieldValidationError(imageField, "\"advertisement\" image is required")
	}
	blob, err := h.binder.BindOnCreate(ctx, image, attachments.KindImage)
	if err != nil {
		return errors.WithStack(err)
	}

	ad := &models.Advertisement{
		ImageKey: blob.Key,
		IsActive: params.IsActive == nil || *params.IsActive,
	}
	if err := h.advertisementService.CreateAdvertisement(ctx, ad); err != nil {
		h.binder.Release(ctx, *blob)
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, ad); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Advertisement created successfully", ad)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAdvertisementsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	ads, total, err := h.advertisementService.ListAdvertisementsWithTotal(ctx, ListAdvertisementsOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	for _, ad := range ads {
		if err := h.sign(ctx, ad); err != nil {
			return errors.WithStack(err)
		}
	}

	return respond.Page(c, "Advertisements retrieved successfully", ads, params.PageQuery, total)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	ad, err := h.advertisementService.RetrieveAdvertisement(ctx, RetrieveAdvertisementOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, ad); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Advertisement retrieved successfully", ad)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateAdvertisementPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	ad, err := h.advertisementService.RetrieveAdvertisement(ctx, RetrieveAdvertisementOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateAdvertisementOptions{Columns: []string{}}
	if params.IsActive != nil && *params.IsActive != ad.IsActive {
		ad.IsActive = *params.IsActive
		opts.Columns = append(opts.Columns, "is_active")
	}

	image, err := attachments.ReadFile(params.FormFiles[imageField])
	if err != nil {
		return errors.WithStack(err)
	}
	if image == nil {
		err = h.advertisementService.UpdateAdvertisement(ctx, ad, opts)
	} else {
		_, err = h.binder.BindOnUpdate(ctx, ad.ImageKey, image, attachments.KindImage, func(blob *attachments.Blob) error {
			ad.ImageKey = blob.Key
			opts.Columns = append(opts.Columns, "image_key")
			return h.advertisementService.UpdateAdvertisement(ctx, ad, opts)
		})
	}
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, ad); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Advertisement updated successfully", ad)
}

func (h *handler) deleteAdvertisement(c echo.Context) error {
	ctx := c.Request().Context()

	ad, err := h.advertisementService.RetrieveAdvertisement(ctx, RetrieveAdvertisementOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.advertisementService.DeleteAdvertisement(ctx, ad.ID); err != nil {
		return errors.WithStack(err)
	}
	h.binder.BindOnDelete(ctx, ad.ImageKey)

	return respond.OK(c, "Advertisement deleted successfully", nil)
}

func (h *handler) sign(ctx context.Context, ad *models.Advertisement) error {
	var err error
	ad.Image, err = h.binder.SignedURL(ctx, ad.ImageKey)
	return err
}
