package librarians

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/libraries"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveLibrarianOptions struct {
	ID *string
}

type ListLibrariansOptions struct {
	Limit  *int
	Offset *int
	// Search matches first or last name case-insensitively.
	Search     *string
	LibraryIDs []string

	includeTotal bool
}

type UpdateLibrarianOptions struct {
	Columns []string
	// LibraryIDs, when set, replaces the librarian's library assignment.
	LibraryIDs *[]string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateLibrarian inserts the librarian and assigns it to libraryIDs.
func (svc *Service) CreateLibrarian(ctx context.Context, librarian *models.Librarian, libraryIDs []string) error {
	now := time.Now()
	if librarian.ID == "" {
		librarian.ID = models.NewID()
	}
	librarian.CreatedAt = now
	librarian.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUnique(ctx, tx, "email", librarian.Email, ""); err != nil {
			return err
		}
		if err := ensureUnique(ctx, tx, "phone", librarian.Phone, ""); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(librarian).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return libraries.AssignLibrarian(ctx, tx, librarian.ID, libraryIDs)
	})
}

func (svc *Service) RetrieveLibrarian(ctx context.Context, opts RetrieveLibrarianOptions) (*models.Librarian, error) {
	librarian := &models.Librarian{}

	q := svc.db.
		NewSelect().
		Model(librarian).
		Relation("Libraries", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("l.deleted = ?", false).Order("l.name ASC")
		})

	if opts.ID != nil {
		q = q.Where("lib.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Librarian")
		}
		return nil, errors.WithStack(err)
	}

	return librarian, nil
}

func (svc *Service) ListLibrarians(ctx context.Context, opts ListLibrariansOptions) ([]*models.Librarian, error) {
	l, _, err := svc.listLibrariansWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLibrariansWithTotal(ctx context.Context, opts ListLibrariansOptions) ([]*models.Librarian, int, error) {
	opts.includeTotal = true
	return svc.listLibrariansWithTotal(ctx, opts)
}

func (svc *Service) listLibrariansWithTotal(ctx context.Context, opts ListLibrariansOptions) ([]*models.Librarian, int, error) {
	librarians := []*models.Librarian{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&librarians).
		Relation("Libraries", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("l.deleted = ?", false).Order("l.name ASC")
		}).
		Where("lib.is_active = ?", true).
		Order("lib.first_name ASC", "lib.last_name ASC")

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
				Where("LOWER(lib.first_name) LIKE ?", pattern).
				WhereOr("LOWER(lib.last_name) LIKE ?", pattern)
		})
	}
	if len(opts.LibraryIDs) > 0 {
		q = q.Where("lib.id IN (?)", svc.db.NewSelect().
			Model((*models.Library)(nil)).
			Column("librarian_id").
			Where("l.id IN (?)", bun.In(opts.LibraryIDs)))
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return librarians, total, nil
}

func (svc *Service) UpdateLibrarian(ctx context.Context, librarian *models.Librarian, opts UpdateLibrarianOptions) error {
	if len(opts.Columns) == 0 && opts.LibraryIDs == nil {
		return nil
	}
	librarian.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			switch col {
			case "email":
				if err := ensureUnique(ctx, tx, "email", librarian.Email, librarian.ID); err != nil {
					return err
				}
			case "phone":
				if err := ensureUnique(ctx, tx, "phone", librarian.Phone, librarian.ID); err != nil {
					return err
				}
			}
		}

		res, err := tx.NewUpdate().
			Model(librarian).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Librarian")
		}

		if opts.LibraryIDs != nil {
			return libraries.AssignLibrarian(ctx, tx, librarian.ID, *opts.LibraryIDs)
		}
		return nil
	})
}

// DeleteLibrarian soft-deletes the librarian and releases its libraries.
func (svc *Service) DeleteLibrarian(ctx context.Context, id string) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Librarian)(nil)).
			Set("deleted = ?", true).
			Set("is_active = ?", false).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Librarian")
		}
		return libraries.AssignLibrarian(ctx, tx, id, nil)
	})
}

// ToggleStatus flips is_active and returns the new value.
func (svc *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	var active bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		librarian := &models.Librarian{}
		err := tx.NewSelect().Model(librarian).ColumnExpr("lib.id, lib.is_active").Where("lib.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Librarian")
			}
			return errors.WithStack(err)
		}
		active = !librarian.IsActive
		_, err = tx.NewUpdate().
			Model((*models.Librarian)(nil)).
			Set("is_active = ?", active).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return active, err
}

// CountActive counts librarians that are active and not deleted.
func (svc *Service) CountActive(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Librarian)(nil)).
		Where("lib.is_active = ?", true).
		Where("lib.deleted = ?", false).
		Count(ctx)
	return count, errors.WithStack(err)
}

func ensureUnique(ctx context.Context, tx bun.IDB, column, value, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.Librarian)(nil)).
		Where("? = ?", bun.Ident("lib."+column), value)
	if excludeID != "" {
		q = q.Where("lib.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("Librarian", column)
	}
	return nil
}
