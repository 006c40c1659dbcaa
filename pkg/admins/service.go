package admins

import (
	"context"
	"database/sql"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAdminOptions struct {
	ID    *string
	Email *string
}

type UpdateAdminOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	now := time.Now()
	if admin.ID == "" {
		admin.ID = models.NewID()
	}
	admin.CreatedAt = now
	admin.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUniqueEmail(ctx, tx, admin.Email, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(admin).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveAdmin(ctx context.Context, opts RetrieveAdminOptions) (*models.Admin, error) {
	admin := &models.Admin{}

	q := svc.db.
		NewSelect().
		Model(admin).
		Where("adm.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("adm.id = ?", *opts.ID)
	}
	if opts.Email != nil {
		q = q.Where("adm.email = ?", *opts.Email)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Admin")
		}
		return nil, errors.WithStack(err)
	}

	return admin, nil
}

func (svc *Service) ListAdmins(ctx context.Context) ([]*models.Admin, error) {
	admins := []*models.Admin{}
	err := svc.db.
		NewSelect().
		Model(&admins).
		Where("adm.deleted = ?", false).
		Order("adm.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return admins, nil
}

func (svc *Service) UpdateAdmin(ctx context.Context, admin *models.Admin, opts UpdateAdminOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	admin.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col == "email" {
				if err := ensureUniqueEmail(ctx, tx, admin.Email, admin.ID); err != nil {
					return err
				}
			}
		}

		res, err := tx.NewUpdate().
			Model(admin).
			Column(columns...).
			WherePK().
			Where("deleted = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Admin")
		}
		return nil
	})
}

func (svc *Service) DeleteAdmin(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.Admin)(nil)).
		Set("deleted = ?", true).
		Set("is_active = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Admin")
	}
	return nil
}

func ensureUniqueEmail(ctx context.Context, tx bun.IDB, email, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.Admin)(nil)).
		Where("adm.email = ?", email)
	if excludeID != "" {
		q = q.Where("adm.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("Admin", "email")
	}
	return nil
}
