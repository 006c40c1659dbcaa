package authors

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/books"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/reconcile"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAuthorOptions struct {
	ID *string
}

type ListAuthorsOptions struct {
	Limit  *int
	Offset *int
	// Search matches first name, last name or pen name case-insensitively.
	Search *string

	includeTotal bool
}

type ListAuthorBooksOptions struct {
	AuthorID  string
	Limit     *int
	Offset    *int
	Search    *string
	LibraryID *string
}

type ListPaymentsOptions struct {
	AuthorID string
	Status   *string
}

type UpdateAuthorOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateAuthor inserts the author with its stub books, its accounts and an
// empty social media record in one transaction.
func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author, addedBooks []AddedBookInput, accounts []AccountInput) error {
	now := time.Now()
	if author.ID == "" {
		author.ID = models.NewID()
	}
	author.CreatedAt = now
	author.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(author).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		for _, added := range addedBooks {
			isbn := added.ISBN
			if isbn != nil && *isbn == "" {
				isbn = nil
			}
			if err := books.EnsureUniqueISBN(ctx, tx, isbn, ""); err != nil {
				return err
			}
			book := &models.Book{
				ID:        models.NewID(),
				CreatedAt: now,
				UpdatedAt: now,
				Name:      added.Name,
				AuthorID:  author.ID,
				ISBN:      isbn,
				IsActive:  true,
			}
			if _, err := tx.NewInsert().Model(book).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}

		author.Accounts = make([]*models.AuthorAccount, 0, len(accounts))
		for i, input := range accounts {
			account := newAccount(author.ID, input, i, now)
			if _, err := tx.NewInsert().Model(account).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			author.Accounts = append(author.Accounts, account)
		}

		author.SocialMedia = &models.AuthorSocialMedia{
			ID:         models.NewID(),
			CreatedAt:  now,
			UpdatedAt:  now,
			AuthorID:   author.ID,
			LikedBy:    models.StringList{},
			FollowedBy: models.StringList{},
		}
		_, err := tx.NewInsert().Model(author.SocialMedia).Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author).
		Relation("Accounts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("aa.deleted = ?", false).Order("aa.sort_order ASC")
		}).
		Relation("SocialMedia").
		Relation("LatestIncome").
		Where("a.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

func (svc *Service) ListAuthors(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, error) {
	a, _, err := svc.listAuthorsWithTotal(ctx, opts)
	return a, errors.WithStack(err)
}

func (svc *Service) ListAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	opts.includeTotal = true
	return svc.listAuthorsWithTotal(ctx, opts)
}

func (svc *Service) listAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	authors := []*models.Author{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&authors).
		Where("a.deleted = ?", false).
		Order("a.first_name ASC", "a.last_name ASC")

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
				Where("LOWER(a.first_name) LIKE ?", pattern).
				WhereOr("LOWER(a.last_name) LIKE ?", pattern).
				WhereOr("LOWER(a.pen_name) LIKE ?", pattern)
		})
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return authors, total, nil
}

// ListAuthorBooks returns one page of the author's books together with the
// total.
func (svc *Service) ListAuthorBooks(ctx context.Context, opts ListAuthorBooksOptions) ([]*models.Book, int, error) {
	result := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&result).
		Where("b.author_id = ?", opts.AuthorID).
		Where("b.deleted = ?", false).
		Order("b.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(b.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
	}
	if opts.LibraryID != nil && *opts.LibraryID != "" {
		q = q.Where("b.library_ids LIKE ?", models.ContainsPattern(*opts.LibraryID))
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return result, total, nil
}

// ListPayments returns the author's incomes, newest payment first.
func (svc *Service) ListPayments(ctx context.Context, opts ListPaymentsOptions) ([]*models.AuthorIncome, error) {
	payments := []*models.AuthorIncome{}

	q := svc.db.
		NewSelect().
		Model(&payments).
		Where("ai.author_id = ?", opts.AuthorID).
		Order("ai.payment_date DESC", "ai.created_at DESC")

	if opts.Status != nil && *opts.Status != "" {
		q = q.Where("ai.payment_status = ?", *opts.Status)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return payments, nil
}

// CreatePayment records an income against one of the author's accounts and
// makes it the author's latest income.
func (svc *Service) CreatePayment(ctx context.Context, income *models.AuthorIncome) error {
	now := time.Now()
	if income.ID == "" {
		income.ID = models.NewID()
	}
	income.CreatedAt = now
	income.UpdatedAt = now

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.AuthorAccount)(nil)).
			Where("aa.id = ?", income.AccountID).
			Where("aa.author_id = ?", income.AuthorID).
			Where("aa.deleted = ?", false).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.FieldValidationError("paymentAccountId", "\"paymentAccountId\" must reference an account of this author")
		}

		if _, err := tx.NewInsert().Model(income).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		res, err := tx.NewUpdate().
			Model((*models.Author)(nil)).
			Set("latest_income_id = ?", income.ID).
			Set("updated_at = ?", now).
			Where("id = ?", income.AuthorID).
			Where("deleted = ?", false).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Author")
		}
		return nil
	})
}

func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdateAuthorOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	author.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.NewUpdate().
		Model(author).
		Column(columns...).
		WherePK().
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Author")
	}
	return nil
}

// UpdateAccounts reconciles the author's accounts with the submitted list.
// Accounts left out are soft deleted so incomes that reference them stay
// valid.
func (svc *Service) UpdateAccounts(ctx context.Context, author *models.Author, accounts []reconcile.Child[AccountInput]) error {
	existing := make([]string, 0, len(author.Accounts))
	for _, account := range author.Accounts {
		existing = append(existing, account.ID)
	}
	plan, err := reconcile.Reconcile(existing, accounts, validateAccount)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if len(plan.ToDelete) > 0 {
			_, err := tx.NewUpdate().
				Model((*models.AuthorAccount)(nil)).
				Set("deleted = ?", true).
				Set("is_active = ?", false).
				Set("updated_at = ?", now).
				Where("id IN (?)", bun.In(plan.ToDelete)).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		for _, u := range plan.ToUpdate {
			account := newAccount(author.ID, u.Input, 0, now)
			account.ID = u.ID
			_, err := tx.NewUpdate().
				Model(account).
				Column("name", "bank", "branch", "account_number", "account_type", "currency", "swift_code", "iban", "description", "updated_at").
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		createdIDs := make([]string, 0, len(plan.ToCreate))
		for _, input := range plan.ToCreate {
			account := newAccount(author.ID, input, 0, now)
			if _, err := tx.NewInsert().Model(account).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			createdIDs = append(createdIDs, account.ID)
		}

		for i, id := range plan.OrderedIDs(createdIDs) {
			_, err := tx.NewUpdate().
				Model((*models.AuthorAccount)(nil)).
				Set("sort_order = ?", i).
				Where("id = ?", id).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	})
}

// DeleteAuthor soft deletes the author and clears its profile image key.
func (svc *Service) DeleteAuthor(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.Author)(nil)).
		Set("deleted = ?", true).
		Set("profile_image_key = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Author")
	}
	return nil
}

// ToggleStatus flips is_active and returns the new value.
func (svc *Service) ToggleStatus(ctx context.Context, id string) (bool, error) {
	var active bool
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		author := &models.Author{}
		err := tx.NewSelect().
			Model(author).
			ColumnExpr("a.id, a.is_active").
			Where("a.id = ?", id).
			Where("a.deleted = ?", false).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Author")
			}
			return errors.WithStack(err)
		}
		active = !author.IsActive
		_, err = tx.NewUpdate().
			Model((*models.Author)(nil)).
			Set("is_active = ?", active).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return active, err
}

// CountActive counts authors that are active and not deleted.
func (svc *Service) CountActive(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Author)(nil)).
		Where("a.is_active = ?", true).
		Where("a.deleted = ?", false).
		Count(ctx)
	return count, errors.WithStack(err)
}

func newAccount(authorID string, input AccountInput, sortOrder int, now time.Time) *models.AuthorAccount {
	return &models.AuthorAccount{
		ID:            models.NewID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		AuthorID:      authorID,
		Name:          input.Name,
		Bank:          input.Bank,
		Branch:        input.Branch,
		AccountNumber: input.AccountNumber,
		AccountType:   input.AccountType,
		Currency:      input.Currency,
		SwiftCode:     input.SwiftCode,
		IBAN:          input.IBAN,
		Description:   input.Description,
		SortOrder:     sortOrder,
		IsActive:      true,
	}
}

func validateAccount(path string, input AccountInput) error {
	required := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"bank", input.Bank},
		{"branch", input.Branch},
		{"accountNumber", input.AccountNumber},
		{"accountType", input.AccountType},
		{"currency", input.Currency},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errcodes.FieldValidationError("accounts"+path+"."+r.field, "\""+r.field+"\" is required")
		}
	}
	return nil
}
