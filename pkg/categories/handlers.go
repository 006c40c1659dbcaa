package categories

import (
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/reconcile"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	categoryService *Service
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreCategoryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	category := &models.Category{
		Name:       params.Name,
		LibraryIDs: models.StringList(params.Library),
		IsActive:   true,
	}
	names := make([]string, 0, len(params.SubCategories))
	for _, sub := range params.SubCategories {
		names = append(names, sub.Name)
	}
	if err := h.categoryService.CreateCategory(ctx, category, names); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Category created successfully", category)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListCategoriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	categories, total, err := h.categoryService.ListCategoriesWithTotal(ctx, ListCategoriesOptions{
		Limit:      pointerutil.Int(params.Limit),
		Offset:     pointerutil.Int(params.Offset()),
		Search:     pointerutil.String(params.Search),
		OnlyActive: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Categories retrieved successfully", categories, params.PageQuery, total)
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchCategoriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	categories, err := h.categoryService.ListCategories(ctx, ListCategoriesOptions{
		Search:    pointerutil.String(params.Name),
		LibraryID: pointerutil.String(params.Library),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Categories retrieved successfully", categories)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	category, err := h.categoryService.RetrieveCategory(ctx, RetrieveCategoryOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Category retrieved successfully", category)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateCategoryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	category, err := h.categoryService.RetrieveCategory(ctx, RetrieveCategoryOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateCategoryOptions{Columns: []string{}}
	if params.Name != nil && *params.Name != category.Name {
		category.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Library != nil {
		category.LibraryIDs = models.StringList(*params.Library)
		opts.Columns = append(opts.Columns, "library_ids")
	}
	if params.IsActive != nil && *params.IsActive != category.IsActive {
		category.IsActive = *params.IsActive
		opts.Columns = append(opts.Columns, "is_active")
	}
	if params.SubCategories != nil {
		opts.SubCategories = make([]reconcile.Child[string], 0, len(*params.SubCategories))
		for _, sub := range *params.SubCategories {
			opts.SubCategories = append(opts.SubCategories, reconcile.Child[string]{
				ID:    reconcile.NewChildID(sub.ID),
				Input: sub.Name,
			})
		}
	}

	if err := h.categoryService.UpdateCategory(ctx, category, opts); err != nil {
		return errors.WithStack(err)
	}

	category, err = h.categoryService.RetrieveCategory(ctx, RetrieveCategoryOptions{ID: &category.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Category updated successfully", category)
}

func (h *handler) deleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.categoryService.DeleteCategory(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Category deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	active, err := h.categoryService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Category status changed successfully", map[string]interface{}{
		"categoryId": id,
		"is_active":  active,
	})
}

func (h *handler) storeSub(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreSubCategoryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	sub := &models.SubCategory{
		CategoryID: params.ParentCategory,
		Name:       params.Name,
	}
	if err := h.categoryService.CreateSubCategory(ctx, sub); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Subcategory created successfully", sub)
}

func (h *handler) listSub(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListCategoriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	subs, total, err := h.categoryService.ListSubCategoriesWithTotal(ctx, ListSubCategoriesOptions{
		Limit:      pointerutil.Int(params.Limit),
		Offset:     pointerutil.Int(params.Offset()),
		Search:     pointerutil.String(params.Search),
		OnlyActive: true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Subcategories retrieved successfully", subs, params.PageQuery, total)
}

func (h *handler) searchSub(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchSubCategoriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	subs, err := h.categoryService.ListSubCategories(ctx, ListSubCategoriesOptions{
		Search:     pointerutil.String(params.Name),
		CategoryID: pointerutil.String(params.Category),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Subcategories retrieved successfully", subs)
}

func (h *handler) retrieveSub(c echo.Context) error {
	ctx := c.Request().Context()

	sub, err := h.categoryService.RetrieveSubCategory(ctx, RetrieveSubCategoryOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Subcategory retrieved successfully", sub)
}

func (h *handler) updateSub(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateSubCategoryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	sub, err := h.categoryService.RetrieveSubCategory(ctx, RetrieveSubCategoryOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	sub.Category = nil

	opts := UpdateSubCategoryOptions{Columns: []string{}}
	if params.Name != sub.Name {
		sub.Name = params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.ParentCategory != nil && *params.ParentCategory != sub.CategoryID {
		sub.CategoryID = *params.ParentCategory
		opts.Columns = append(opts.Columns, "category_id")
	}

	if err := h.categoryService.UpdateSubCategory(ctx, sub, opts); err != nil {
		return errors.WithStack(err)
	}

	sub, err = h.categoryService.RetrieveSubCategory(ctx, RetrieveSubCategoryOptions{ID: &sub.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Subcategory updated successfully", sub)
}

func (h *handler) deleteSub(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.categoryService.DeleteSubCategory(ctx, c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Subcategory deleted successfully", nil)
}
