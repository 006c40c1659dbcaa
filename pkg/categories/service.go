package categories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/reconcile"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveCategoryOptions struct {
	ID *string
}

type ListCategoriesOptions struct {
	Limit  *int
	Offset *int
	// Search matches the category name case-insensitively.
	Search     *string
	LibraryID  *string
	OnlyActive bool

	includeTotal bool
}

type UpdateCategoryOptions struct {
	Columns []string
	// SubCategories replaces the category's children when not nil. Each
	// child carries the submitted name.
	SubCategories []reconcile.Child[string]
}

type RetrieveSubCategoryOptions struct {
	ID *string
}

type ListSubCategoriesOptions struct {
	Limit      *int
	Offset     *int
	Search     *string
	CategoryID *string
	OnlyActive bool

	includeTotal bool
}

type UpdateSubCategoryOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateCategory inserts the category together with the given subcategory
// names, in order.
func (svc *Service) CreateCategory(ctx context.Context, category *models.Category, subNames []string) error {
	if err := validateSubNames(subNames); err != nil {
		return err
	}

	now := time.Now()
	if category.ID == "" {
		category.ID = models.NewID()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUniqueName(ctx, tx, category.Name, ""); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(category).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		category.SubCategories = make([]*models.SubCategory, 0, len(subNames))
		for i, name := range subNames {
			sub, err := insertSubCategory(ctx, tx, category, name, i, now)
			if err != nil {
				return err
			}
			category.SubCategories = append(category.SubCategories, sub)
		}
		return nil
	})
}

func (svc *Service) RetrieveCategory(ctx context.Context, opts RetrieveCategoryOptions) (*models.Category, error) {
	category := &models.Category{}

	q := svc.db.
		NewSelect().
		Model(category).
		Relation("SubCategories", orderSubCategories).
		Where("c.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}

	return category, nil
}

func (svc *Service) ListCategories(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, error) {
	c, _, err := svc.listCategoriesWithTotal(ctx, opts)
	return c, errors.WithStack(err)
}

func (svc *Service) ListCategoriesWithTotal(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, int, error) {
	opts.includeTotal = true
	return svc.listCategoriesWithTotal(ctx, opts)
}

func (svc *Service) listCategoriesWithTotal(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, int, error) {
	categories := []*models.Category{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&categories).
		Relation("SubCategories", orderSubCategories).
		Where("c.deleted = ?", false).
		Order("c.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.OnlyActive {
		q = q.Where("c.is_active = ?", true)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(c.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
	}
	if opts.LibraryID != nil && *opts.LibraryID != "" {
		q = q.Where("c.library_ids LIKE ?", models.ContainsPattern(*opts.LibraryID))
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return categories, total, nil
}

// UpdateCategory writes the given columns and, when opts.SubCategories is
// set, reconciles the children in the same transaction. A change of
// is_active is forced onto every child.
func (svc *Service) UpdateCategory(ctx context.Context, category *models.Category, opts UpdateCategoryOptions) error {
	if len(opts.Columns) == 0 && opts.SubCategories == nil {
		return nil
	}
	now := time.Now()
	category.UpdatedAt = now
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	var plan *reconcile.Plan[string]
	if opts.SubCategories != nil {
		existing := category.SubCategoryIDs()
		var err error
		plan, err = reconcile.Reconcile(existing, opts.SubCategories, validateSubName)
		if err != nil {
			return errors.WithStack(err)
		}
		names := make([]string, 0, len(opts.SubCategories))
		for _, child := range opts.SubCategories {
			names = append(names, child.Input)
		}
		if err := validateSubNames(names); err != nil {
			return err
		}
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col == "name" {
				if err := ensureUniqueName(ctx, tx, category.Name, category.ID); err != nil {
					return err
				}
			}
		}

		res, err := tx.NewUpdate().
			Model(category).
			Column(columns...).
			WherePK().
			Where("deleted = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Category")
		}

		if plan != nil {
			if err := applyPlan(ctx, tx, category, plan, now); err != nil {
				return err
			}
		}

		for _, col := range opts.Columns {
			if col == "is_active" {
				return cascadeStatus(ctx, tx, category.ID, category.IsActive, now)
			}
		}
		return nil
	})
}

// applyPlan writes a subcategory reconciliation plan. Renamed children are
// parked under their own id first so that names can move between siblings.
func applyPlan(ctx context.Context, tx bun.Tx, category *models.Category, plan *reconcile.Plan[string], now time.Time) error {
	if len(plan.ToDelete) > 0 {
		_, err := tx.NewDelete().
			Model((*models.SubCategory)(nil)).
			Where("id IN (?)", bun.In(plan.ToDelete)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	current := make(map[string]string, len(category.SubCategories))
	for _, sub := range category.SubCategories {
		current[sub.ID] = sub.Name
	}
	renamed := []reconcile.Update[string]{}
	for _, u := range plan.ToUpdate {
		if current[u.ID] != u.Input {
			renamed = append(renamed, u)
		}
	}
	for _, u := range renamed {
		_, err := tx.NewUpdate().
			Model((*models.SubCategory)(nil)).
			Set("name = ?", u.ID).
			Set("sub_slug = ?", u.ID).
			Where("id = ?", u.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	for _, u := range renamed {
		subSlug, err := uniqueSlug(ctx, tx, category.Name, u.Input, u.ID)
		if err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.SubCategory)(nil)).
			Set("name = ?", u.Input).
			Set("sub_slug = ?", subSlug).
			Set("updated_at = ?", now).
			Where("id = ?", u.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	createdIDs := make([]string, 0, len(plan.ToCreate))
	for _, name := range plan.ToCreate {
		sub, err := insertSubCategory(ctx, tx, category, name, 0, now)
		if err != nil {
			return err
		}
		createdIDs = append(createdIDs, sub.ID)
	}

	for i, id := range plan.OrderedIDs(createdIDs) {
		_, err := tx.NewUpdate().
			Model((*models.SubCategory)(nil)).
			Set("sort_order = ?", i).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// DeleteCategory hides the category and deactivates it together with its
// children.
func (svc *Service) DeleteCategory(ctx context.Context, id string) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.Category)(nil)).
			Set("deleted = ?", true).
			Set("is_active = ?", false).
			Set("updated_at = ?", now).
			Where("id = ?", id).
			Where("deleted = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Category")
		}
		return cascadeStatus(ctx, tx, id, false, now)
	})
}

// ToggleStatus flips is_active on the category and all of its children and
// returns the new value.
func (svc *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	var active bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		category := &models.Category{}
		err := tx.NewSelect().
			Model(category).
			ColumnExpr("c.id, c.is_active").
			Where("c.id = ?", id).
			Where("c.deleted = ?", false).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Category")
			}
			return errors.WithStack(err)
		}
		active = !category.IsActive
		now := time.Now()
		_, err = tx.NewUpdate().
			Model((*models.Category)(nil)).
			Set("is_active = ?", active).
			Set("updated_at = ?", now).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return cascadeStatus(ctx, tx, id, active, now)
	})
	return active, err
}

// CreateSubCategory appends a subcategory to an existing category.
func (svc *Service) CreateSubCategory(ctx context.Context, sub *models.SubCategory) error {
	now := time.Now()
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		parent, err := retrieveParent(ctx, tx, sub.CategoryID)
		if err != nil {
			return err
		}
		if err := ensureUniqueSubName(ctx, tx, parent.ID, sub.Name, ""); err != nil {
			return err
		}
		next, err := nextSortOrder(ctx, tx, parent.ID)
		if err != nil {
			return err
		}
		created, err := insertSubCategory(ctx, tx, parent, sub.Name, next, now)
		if err != nil {
			return err
		}
		*sub = *created
		return nil
	})
}

func (svc *Service) RetrieveSubCategory(ctx context.Context, opts RetrieveSubCategoryOptions) (*models.SubCategory, error) {
	sub := &models.SubCategory{}

	q := svc.db.
		NewSelect().
		Model(sub).
		Relation("Category")

	if opts.ID != nil {
		q = q.Where("sc.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("SubCategory")
		}
		return nil, errors.WithStack(err)
	}

	return sub, nil
}

func (svc *Service) ListSubCategoriesWithTotal(ctx context.Context, opts ListSubCategoriesOptions) ([]*models.SubCategory, int, error) {
	opts.includeTotal = true
	return svc.listSubCategoriesWithTotal(ctx, opts)
}

func (svc *Service) ListSubCategories(ctx context.Context, opts ListSubCategoriesOptions) ([]*models.SubCategory, error) {
	s, _, err := svc.listSubCategoriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) listSubCategoriesWithTotal(ctx context.Context, opts ListSubCategoriesOptions) ([]*models.SubCategory, int, error) {
	subs := []*models.SubCategory{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&subs).
		Relation("Category").
		Order("category.name ASC", "sc.sort_order ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.OnlyActive {
		q = q.Where("sc.is_active = ?", true)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(sc.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
	}
	if opts.CategoryID != nil && *opts.CategoryID != "" {
		q = q.Where("sc.category_id = ?", *opts.CategoryID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return subs, total, nil
}

// UpdateSubCategory writes the given columns. Moving a subcategory to another
// category appends it to the new parent's list.
func (svc *Service) UpdateSubCategory(ctx context.Context, sub *models.SubCategory, opts UpdateSubCategoryOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	sub.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at", "sub_slug")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		parent, err := retrieveParent(ctx, tx, sub.CategoryID)
		if err != nil {
			return err
		}
		if err := ensureUniqueSubName(ctx, tx, parent.ID, sub.Name, sub.ID); err != nil {
			return err
		}
		for _, col := range opts.Columns {
			if col == "category_id" {
				next, err := nextSortOrder(ctx, tx, parent.ID)
				if err != nil {
					return err
				}
				sub.SortOrder = next
				columns = append(columns, "sort_order")
			}
		}
		sub.SubSlug, err = uniqueSlug(ctx, tx, parent.Name, sub.Name, sub.ID)
		if err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model(sub).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("SubCategory")
		}
		return nil
	})
}

// DeleteSubCategory deactivates the subcategory. It stays in its parent's
// list.
func (svc *Service) DeleteSubCategory(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.SubCategory)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("SubCategory")
	}
	return nil
}

func orderSubCategories(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("sc.sort_order ASC")
}

func insertSubCategory(ctx context.Context, tx bun.IDB, parent *models.Category, name string, sortOrder int, now time.Time) (*models.SubCategory, error) {
	sub := &models.SubCategory{
		ID:         models.NewID(),
		CreatedAt:  now,
		UpdatedAt:  now,
		CategoryID: parent.ID,
		Name:       name,
		SortOrder:  sortOrder,
		IsActive:   parent.IsActive,
	}
	var err error
	sub.SubSlug, err = uniqueSlug(ctx, tx, parent.Name, name, sub.ID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.NewInsert().Model(sub).Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return sub, nil
}

// uniqueSlug derives sub_slug from the parent and child names. When another
// subcategory already holds the slug, the child's id prefix is appended.
func uniqueSlug(ctx context.Context, tx bun.IDB, parentName, name, id string) (string, error) {
	base := slug.Make(parentName + " " + name)
	taken, err := tx.NewSelect().
		Model((*models.SubCategory)(nil)).
		Where("sc.sub_slug = ?", base).
		Where("sc.id != ?", id).
		Exists(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if !taken {
		return base, nil
	}
	return base + "-" + strings.ReplaceAll(id, "-", "")[:8], nil
}

func retrieveParent(ctx context.Context, tx bun.IDB, id string) (*models.Category, error) {
	parent := &models.Category{}
	err := tx.NewSelect().
		Model(parent).
		Where("c.id = ?", id).
		Where("c.deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}
	return parent, nil
}

func nextSortOrder(ctx context.Context, tx bun.IDB, categoryID string) (int, error) {
	var next int
	err := tx.NewSelect().
		Model((*models.SubCategory)(nil)).
		ColumnExpr("COALESCE(MAX(sc.sort_order) + 1, 0)").
		Where("sc.category_id = ?", categoryID).
		Scan(ctx, &next)
	return next, errors.WithStack(err)
}

func cascadeStatus(ctx context.Context, tx bun.IDB, categoryID string, active bool, now time.Time) error {
	_, err := tx.NewUpdate().
		Model((*models.SubCategory)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", now).
		Where("category_id = ?", categoryID).
		Exec(ctx)
	return errors.WithStack(err)
}

func validateSubName(path, name string) error {
	if strings.TrimSpace(name) == "" {
		return errcodes.FieldValidationError("subCategories"+path+".name", "\"name\" is required")
	}
	return nil
}

func validateSubNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		path := fmt.Sprintf("[%d]", i)
		if err := validateSubName(path, name); err != nil {
			return err
		}
		if seen[name] {
			return errcodes.FieldValidationError("subCategories"+path+".name", fmt.Sprintf("%q is submitted more than once", name))
		}
		seen[name] = true
	}
	return nil
}

func ensureUniqueName(ctx context.Context, tx bun.IDB, name, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.Category)(nil)).
		Where("c.name = ?", name)
	if excludeID != "" {
		q = q.Where("c.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("Category", "name")
	}
	return nil
}

func ensureUniqueSubName(ctx context.Context, tx bun.IDB, categoryID, name, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.SubCategory)(nil)).
		Where("sc.category_id = ?", categoryID).
		Where("sc.name = ?", name)
	if excludeID != "" {
		q = q.Where("sc.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("SubCategory", "name")
	}
	return nil
}
