package libraries

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

type RetrieveLibraryOptions struct {
	ID   *string
	Name *string
}

type ListLibrariesOptions struct {
	Limit  *int
	Offset *int
	// Search matches the library name case-insensitively.
	Search         *string
	IncludeDeleted bool
	OnlyActive     bool

	includeTotal bool
}

type UpdateLibraryOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLibrary(ctx context.Context, library *models.Library) error {
	now := time.Now()
	if library.ID == "" {
		library.ID = models.NewID()
	}
	library.CreatedAt = now
	library.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureUniqueName(ctx, tx, library.Name, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(library).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveLibrary(ctx context.Context, opts RetrieveLibraryOptions) (*models.Library, error) {
	library := &models.Library{}

	q := svc.db.
		NewSelect().
		Model(library).
		Relation("Librarian")

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("l.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Library")
		}
		return nil, errors.WithStack(err)
	}

	return library, nil
}

func (svc *Service) ListLibraries(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, error) {
	l, _, err := svc.listLibrariesWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	opts.includeTotal = true
	return svc.listLibrariesWithTotal(ctx, opts)
}

func (svc *Service) listLibrariesWithTotal(ctx context.Context, opts ListLibrariesOptions) ([]*models.Library, int, error) {
	libraries := []*models.Library{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&libraries).
		Relation("Librarian").
		Order("l.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if !opts.IncludeDeleted {
		q = q.Where("l.deleted = ?", false)
	}
	if opts.OnlyActive {
		q = q.Where("l.is_active = ?", true)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(l.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return libraries, total, nil
}

// UpdateLibrary writes the given columns. When librarian_id is among them the
// librarian must exist.
func (svc *Service) UpdateLibrary(ctx context.Context, library *models.Library, opts UpdateLibraryOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	library.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			switch col {
			case "name":
				if err := ensureUniqueName(ctx, tx, library.Name, library.ID); err != nil {
					return err
				}
			case "librarian_id":
				if library.LibrarianID == nil {
					continue
				}
				exists, err := tx.NewSelect().
					Model((*models.Librarian)(nil)).
					Where("lib.id = ?", *library.LibrarianID).
					Where("lib.deleted = ?", false).
					Exists(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
				if !exists {
					return errcodes.NotFound("Librarian")
				}
			}
		}

		res, err := tx.NewUpdate().
			Model(library).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Library")
		}
		return nil
	})
}

// AssignLibrarian makes librarianID the librarian of exactly the given
// libraries, clearing it from every other library.
func AssignLibrarian(ctx context.Context, tx bun.IDB, librarianID string, libraryIDs []string) error {
	now := time.Now()
	q := tx.NewUpdate().
		Model((*models.Library)(nil)).
		Set("librarian_id = NULL").
		Set("updated_at = ?", now).
		Where("librarian_id = ?", librarianID)
	if len(libraryIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(libraryIDs))
	}
	if _, err := q.Exec(ctx); err != nil {
		return errors.WithStack(err)
	}
	if len(libraryIDs) == 0 {
		return nil
	}

	res, err := tx.NewUpdate().
		Model((*models.Library)(nil)).
		Set("librarian_id = ?", librarianID).
		Set("updated_at = ?", now).
		Where("id IN (?)", bun.In(libraryIDs)).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); int(n) != len(libraryIDs) {
		return errcodes.FieldValidationError("libraries", "\"libraries\" must reference existing libraries")
	}
	return nil
}

func (svc *Service) DeleteLibrary(ctx context.Context, id string) error {
	return svc.setFlag(ctx, id, "deleted = ?", true)
}

// ToggleStatus flips is_active and returns the new value.
func (svc *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	var active bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		library := &models.Library{}
		err := tx.NewSelect().Model(library).ColumnExpr("l.id, l.is_active").Where("l.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Library")
			}
			return errors.WithStack(err)
		}
		active = !library.IsActive
		_, err = tx.NewUpdate().
			Model((*models.Library)(nil)).
			Set("is_active = ?", active).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return active, err
}

func (svc *Service) setFlag(ctx context.Context, id, set string, value bool) error {
	res, err := svc.db.NewUpdate().
		Model((*models.Library)(nil)).
		Set(set, value).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Library")
	}
	return nil
}

func ensureUniqueName(ctx context.Context, tx bun.IDB, name, excludeID string) error {
	q := tx.NewSelect().
		Model((*models.Library)(nil)).
		Where("l.name = ?", name)
	if excludeID != "" {
		q = q.Where("l.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("Library", "name")
	}
	return nil
}
