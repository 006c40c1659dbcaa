package users

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

type RetrieveUserOptions struct {
	ID *string
}

type ListUsersOptions struct {
	Limit  *int
	Offset *int
	// Search matches first or last name case-insensitively.
	Search    *string
	Email     *string
	LibraryID *string

	includeTotal bool
}

type UpdateUserOptions struct {
	Columns []string
}

// Service handles end user operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateUser inserts the user. The email must not be taken.
func (svc *Service) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = models.NewID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Plans == nil {
		user.Plans = models.StringList{}
	}
	if user.LibraryIDs == nil {
		user.LibraryIDs = models.StringList{}
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUniqueEmail(ctx, tx, user.Email, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(user).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user).
		Where("u.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, error) {
	u, _, err := svc.listUsersWithTotal(ctx, opts)
	return u, errors.WithStack(err)
}

func (svc *Service) ListUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	opts.includeTotal = true
	return svc.listUsersWithTotal(ctx, opts)
}

func (svc *Service) listUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	users := []*models.User{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&users).
		Where("u.deleted = ?", false).
		Order("u.first_name ASC", "u.last_name ASC")

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
				Where("LOWER(u.first_name) LIKE ?", pattern).
				WhereOr("LOWER(u.last_name) LIKE ?", pattern)
		})
	}
	if opts.Email != nil && *opts.Email != "" {
		q = q.Where("u.email LIKE ?", "%"+*opts.Email+"%")
	}
	if opts.LibraryID != nil && *opts.LibraryID != "" {
		q = q.Where("u.library_ids LIKE ?", models.ContainsPattern(*opts.LibraryID))
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

func (svc *Service) UpdateUser(ctx context.Context, user *models.User, opts UpdateUserOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	user.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col == "email" {
				if err := ensureUniqueEmail(ctx, tx, user.Email, user.ID); err != nil {
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
			return errcodes.NotFound("User")
		}
		return nil
	})
}

// DeleteUser soft deletes the user.
func (svc *Service) DeleteUser(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.User)(nil)).
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
		return errcodes.NotFound("User")
	}
	return nil
}

// ToggleBlocked flips the blocked flag and returns the new value. Users are
// blocked rather than deactivated.
func (svc *Service) ToggleBlocked(ctx context.Context, id string) (bool, error) {
	var blocked bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user := &models.User{}
		err := tx.NewSelect().
			Model(user).
			ColumnExpr("u.id, u.blocked").
			Where("u.id = ?", id).
			Where("u.deleted = ?", false).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("User")
			}
			return errors.WithStack(err)
		}
		blocked = !user.Blocked
		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("blocked = ?", blocked).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return blocked, err
}

// SetPasswordHash replaces the stored password hash.
func (svc *Service) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("User")
	}
	return nil
}

func ensureUniqueEmail(ctx context.Context, tx bun.IDB, email, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.User)(nil)).
		Where("u.email = ?", email)
	if excludeID != "" {
		q = q.Where("u.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("User", "email")
	}
	return nil
}
