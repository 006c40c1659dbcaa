package mobileusers

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

type RetrieveMobileUserOptions struct {
	ID *string
}

type ListMobileUsersOptions struct {
	Limit  *int
	Offset *int
	// Search matches names, username or email case-insensitively.
	Search *string
	Role   *string
	Status *string

	includeTotal bool
}

type UpdateMobileUserOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateMobileUser(ctx context.Context, user *models.MobileUser) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = models.NewID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.LibraryIDs == nil {
		user.LibraryIDs = models.StringList{}
	}
	if user.FriendIDs == nil {
		user.FriendIDs = models.StringList{}
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUnique(ctx, tx, "username", user.Username, ""); err != nil {
			return err
		}
		if err := ensureUnique(ctx, tx, "email", user.Email, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(user).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveMobileUser(ctx context.Context, opts RetrieveMobileUserOptions) (*models.MobileUser, error) {
	user := &models.MobileUser{}

	q := svc.db.
		NewSelect().
		Model(user).
		Where("mu.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("mu.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Mobile user")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ListMobileUsers(ctx context.Context, opts ListMobileUsersOptions) ([]*models.MobileUser, error) {
	u, _, err := svc.listMobileUsersWithTotal(ctx, opts)
	return u, errors.WithStack(err)
}

func (svc *Service) ListMobileUsersWithTotal(ctx context.Context, opts ListMobileUsersOptions) ([]*models.MobileUser, int, error) {
	opts.includeTotal = true
	return svc.listMobileUsersWithTotal(ctx, opts)
}

func (svc *Service) listMobileUsersWithTotal(ctx context.Context, opts ListMobileUsersOptions) ([]*models.MobileUser, int, error) {
	users := []*models.MobileUser{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&users).
		Where("mu.deleted = ?", false).
		Order("mu.username ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(mu.first_name) LIKE ?", pattern).
				WhereOr("LOWER(mu.last_name) LIKE ?", pattern).
				WhereOr("LOWER(mu.username) LIKE ?", pattern).
				WhereOr("mu.email LIKE ?", pattern)
		})
	}
	if opts.Role != nil && *opts.Role != "" {
		q = q.Where("mu.role = ?", *opts.Role)
	}
	if opts.Status != nil && *opts.Status != "" {
		q = q.Where("mu.status = ?", *opts.Status)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}

func (svc *Service) UpdateMobileUser(ctx context.Context, user *models.MobileUser, opts UpdateMobileUserOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	user.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			switch col {
			case "username":
				if err := ensureUnique(ctx, tx, "username", user.Username, user.ID); err != nil {
					return err
				}
			case "email":
				if err := ensureUnique(ctx, tx, "email", user.Email, user.ID); err != nil {
					return err
				}
			}
		}

		res, err := tx.NewUpdate().
			Model(user).
			Column(columns...).
			WherePK().
			Where("deleted = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Mobile user")
		}
		return nil
	})
}

// DeleteMobileUser soft deletes the user and clears its picture key.
func (svc *Service) DeleteMobileUser(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.MobileUser)(nil)).
		Set("deleted = ?", true).
		Set("is_active = ?", false).
		Set("profile_picture_key = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Mobile user")
	}
	return nil
}

// ToggleStatus flips is_active and returns the new value.
func (svc *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	var active bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user := &models.MobileUser{}
		err := tx.NewSelect().
			Model(user).
			ColumnExpr("mu.id, mu.is_active").
			Where("mu.id = ?", id).
			Where("mu.deleted = ?", false).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Mobile user")
			}
			return errors.WithStack(err)
		}
		active = !user.IsActive
		_, err = tx.NewUpdate().
			Model((*models.MobileUser)(nil)).
			Set("is_active = ?", active).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return active, err
}

func ensureUnique(ctx context.Context, tx bun.IDB, column, value, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.MobileUser)(nil)).
		Where("? = ?", bun.Ident("mu."+column), value)
	if excludeID != "" {
		q = q.Where("mu.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("MobileUser", column)
	}
	return nil
}
