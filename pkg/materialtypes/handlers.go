package materialtypes

import (
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	materialTypeService *Service
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreMaterialTypePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	materialType := &models.MaterialType{
		Name:     params.Name,
		IsActive: true,
	}
	if err := h.materialTypeService.CreateMaterialType(ctx, materialType); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Material created successfully", materialType)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListMaterialTypesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	materialTypes, total, err := h.materialTypeService.ListMaterialTypesWithTotal(ctx, ListMaterialTypesOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
		Search: pointerutil.String(params.Search),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Materials retrieved successfully", materialTypes, params.PageQuery, total)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	materialType, err := h.materialTypeService.RetrieveMaterialType(ctx, RetrieveMaterialTypeOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Material retrieved successfully", materialType)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateMaterialTypePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	materialType, err := h.materialTypeService.RetrieveMaterialType(ctx, RetrieveMaterialTypeOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateMaterialTypeOptions{Columns: []string{}}
	if params.Name != nil && *params.Name != materialType.Name {
		materialType.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.IsActive != nil && *params.IsActive != materialType.IsActive {
		materialType.IsActive = *params.IsActive
		opts.Columns = append(opts.Columns, "is_active")
	}

	if err := h.materialTypeService.UpdateMaterialType(ctx, materialType, opts); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Material updated successfully", materialType)
}

func (h *handler) deleteMaterialType(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.materialTypeService.DeleteMaterialType(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Material deleted successfully", nil)
}
