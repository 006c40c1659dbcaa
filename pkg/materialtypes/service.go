package materialtypes

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveMaterialTypeOptions struct {
	ID *string
}

type ListMaterialTypesOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateMaterialTypeOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateMaterialType(ctx context.Context, materialType *models.MaterialType) error {
	now := time.Now()
	if materialType.ID == "" {
		materialType.ID = models.NewID()
	}
	materialType.CreatedAt = now
	materialType.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUniqueName(ctx, tx, materialType.Name, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(materialType).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveMaterialType(ctx context.Context, opts RetrieveMaterialTypeOptions) (*models.MaterialType, error) {
	materialType := &models.MaterialType{}

	q := svc.db.
		NewSelect().
		Model(materialType)

	if opts.ID != nil {
		q = q.Where("mt.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Material")
		}
		return nil, errors.WithStack(err)
	}

	return materialType, nil
}

func (svc *Service) ListMaterialTypes(ctx context.Context, opts ListMaterialTypesOptions) ([]*models.MaterialType, error) {
	m, _, err := svc.listMaterialTypesWithTotal(ctx, opts)
	return m, errors.WithStack(err)
}

func (svc *Service) ListMaterialTypesWithTotal(ctx context.Context, opts ListMaterialTypesOptions) ([]*models.MaterialType, int, error) {
	opts.includeTotal = true
	return svc.listMaterialTypesWithTotal(ctx, opts)
}

func (svc *Service) listMaterialTypesWithTotal(ctx context.Context, opts ListMaterialTypesOptions) ([]*models.MaterialType, int, error) {
	materialTypes := []*models.MaterialType{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&materialTypes).
		Where("mt.is_active = ?", true).
		Order("mt.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(mt.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return materialTypes, total, nil
}

func (svc *Service) UpdateMaterialType(ctx context.Context, materialType *models.MaterialType, opts UpdateMaterialTypeOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	materialType.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col == "name" {
				if err := ensureUniqueName(ctx, tx, materialType.Name, materialType.ID); err != nil {
					return err
				}
			}
		}
		res, err := tx.NewUpdate().
			Model(materialType).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Material")
		}
		return nil
	})
}

// DeleteMaterialType removes the row. Material types carry no references, so
// they are not soft deleted.
func (svc *Service) DeleteMaterialType(ctx context.Context, id string) error {
	res, err := svc.db.NewDelete().
		Model((*models.MaterialType)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Material")
	}
	return nil
}

func ensureUniqueName(ctx context.Context, tx bun.IDB, name, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.MaterialType)(nil)).
		Where("mt.name = ?", name)
	if excludeID != "" {
		q = q.Where("mt.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("Material", "name")
	}
	return nil
}
