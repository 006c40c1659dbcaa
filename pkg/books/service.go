package books

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

type RetrieveBookOptions struct {
	ID *string
}

type ListBooksOptions struct {
	Limit  *int
	Offset *int
	// Search matches the name or the ISBN case-insensitively.
	Search     *string
	CategoryID *string
	AuthorID   *string
	LibraryID  *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.ID == "" {
		book.ID = models.NewID()
	}
	book.CreatedAt = now
	book.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureAuthor(ctx, tx, book.AuthorID); err != nil {
			return err
		}
		if err := EnsureUniqueISBN(ctx, tx, book.ISBN, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(book).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Where("b.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Where("b.deleted = ?", false).
		Order("b.name ASC")

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
				Where("LOWER(b.name) LIKE ?", pattern).
				WhereOr("LOWER(b.isbn) LIKE ?", pattern)
		})
	}
	if opts.CategoryID != nil && *opts.CategoryID != "" {
		q = q.Where("b.category_ids LIKE ?", models.ContainsPattern(*opts.CategoryID))
	}
	if opts.AuthorID != nil && *opts.AuthorID != "" {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.LibraryID != nil && *opts.LibraryID != "" {
		q = q.Where("b.library_ids LIKE ?", models.ContainsPattern(*opts.LibraryID))
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// UpdateBook writes the given columns. A changed author must exist and a
// changed ISBN must stay unique.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	book.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			switch col {
			case "author_id":
				if err := ensureAuthor(ctx, tx, book.AuthorID); err != nil {
					return err
				}
			case "isbn":
				if err := EnsureUniqueISBN(ctx, tx, book.ISBN, book.ID); err != nil {
					return err
				}
			}
		}

		res, err := tx.NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Where("deleted = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}
		return nil
	})
}

func (svc *Service) DeleteBook(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("deleted = ?", true).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

// ToggleStatus flips is_active and returns the new value.
func (svc *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	var active bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		err := tx.NewSelect().
			Model(book).
			ColumnExpr("b.id, b.is_active").
			Where("b.id = ?", id).
			Where("b.deleted = ?", false).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}
		active = !book.IsActive
		_, err = tx.NewUpdate().
			Model((*models.Book)(nil)).
			Set("is_active = ?", active).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return active, err
}

// EnsureUniqueISBN fails with a conflict when another book, deleted or not,
// already carries isbn. A nil or empty ISBN is never checked.
func EnsureUniqueISBN(ctx context.Context, tx bun.IDB, isbn *string, excludeID string) error {
	if isbn == nil || *isbn == "" {
		return nil
	}
	q := tx.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.isbn = ?", *isbn)
	if excludeID != "" {
		q = q.Where("b.id != ?", excludeID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("Book", "isbn")
	}
	return nil
}

func ensureAuthor(ctx context.Context, tx bun.IDB, authorID string) error {
	exists, err := tx.NewSelect().
		Model((*models.Author)(nil)).
		Where("a.id = ?", authorID).
		Where("a.deleted = ?", false).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Author")
	}
	return nil
}
