package authors

import (
	"context"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/reconcile"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	authorService *Service
	binder        *attachments.Binder
}

// openAuthor is the public projection of an author.
type openAuthor struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// authorDetails is the shape of a single author.
type authorDetails struct {
	GeneralInfo *models.Author            `json:"generalInfo"`
	AddedBooks  []*models.Book            `json:"addedBooks"`
	AccountInfo []*models.AuthorAccount   `json:"accountInfo"`
	IncomeInfo  *models.AuthorIncome      `json:"incomeInfo"`
	SocialMedia *models.AuthorSocialMedia `json:"socialMedia"`
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	image, err := attachments.ReadFile(params.FormFiles[profileImageField])
	if err != nil {
		return errors.WithStack(err)
	}
	blob, err := h.binder.BindOnCreate(ctx, image, attachments.KindImage)
	if err != nil {
		return errors.WithStack(err)
	}

	author := &models.Author{
		FirstName:        params.FirstName,
		LastName:         params.LastName,
		Died:             params.Died,
		PenName:          params.PenName,
		Nationality:      params.Nationality,
		FirstPublishDate: params.FirstPublishDate,
		Description:      params.Description,
		Position:         params.Position,
		IsActive:         true,
	}
	if blob != nil {
		author.ProfileImageKey = &blob.Key
	}

	if err := h.authorService.CreateAuthor(ctx, author, params.AddedBooks, params.Accounts); err != nil {
		if blob != nil {
			h.binder.Release(ctx, *blob)
		}
		return errors.WithStack(err)
	}

	if err := h.sign(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Author created successfully", author)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAuthorsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	authors, total, err := h.authorService.ListAuthorsWithTotal(ctx, ListAuthorsOptions{
		Limit:  pointerutil.Int(params.Limit),
		Offset: pointerutil.Int(params.Offset()),
		Search: pointerutil.String(params.Search),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	for _, author := range authors {
		if err := h.sign(ctx, author); err != nil {
			return errors.WithStack(err)
		}
	}

	return respond.Page(c, "Authors retrieved successfully", authors, params.PageQuery, total)
}

func (h *handler) listOpen(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx, ListAuthorsOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	open := make([]openAuthor, 0, len(authors))
	for _, author := range authors {
		open = append(open, openAuthor{ID: author.ID, FirstName: author.FirstName, LastName: author.LastName})
	}

	return respond.OK(c, "Authors retrieved successfully", open)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	addedBooks, _, err := h.authorService.ListAuthorBooks(ctx, ListAuthorBooksOptions{AuthorID: author.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	details := authorDetails{
		AddedBooks:  addedBooks,
		AccountInfo: author.Accounts,
		IncomeInfo:  author.LatestIncome,
		SocialMedia: author.SocialMedia,
	}
	if details.IncomeInfo != nil {
		if err := h.signInvoice(ctx, details.IncomeInfo); err != nil {
			return errors.WithStack(err)
		}
	}
	author.Accounts = nil
	author.LatestIncome = nil
	author.SocialMedia = nil
	details.GeneralInfo = author

	return respond.OK(c, "Author retrieved successfully", details)
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAuthorBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.authorService.ListAuthorBooks(ctx, ListAuthorBooksOptions{
		AuthorID:  author.ID,
		Limit:     pointerutil.Int(params.Limit),
		Offset:    pointerutil.Int(params.Offset()),
		Search:    pointerutil.String(params.Search),
		LibraryID: pointerutil.String(params.Library),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.Page(c, "Books retrieved successfully", books, params.PageQuery, total)
}

func (h *handler) listPayments(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPaymentsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	payments, err := h.authorService.ListPayments(ctx, ListPaymentsOptions{
		AuthorID: c.Param("id"),
		Status:   pointerutil.String(params.PaymentStatus),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	for _, payment := range payments {
		if err := h.signInvoice(ctx, payment); err != nil {
			return errors.WithStack(err)
		}
	}

	return respond.OK(c, "Payments retrieved successfully", payments)
}

func (h *handler) storePayment(c echo.Context) error {
	ctx := c.Request().Context()

	params := StorePaymentPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	paidAt, err := time.Parse("2006-01-02", params.PaymentDate)
	if err != nil {
		return errcodes.FieldValidationError("paymentDate", "\"paymentDate\" must be a date")
	}

	invoice, err := attachments.ReadFile(params.FormFiles[invoiceField])
	if err != nil {
		return errors.WithStack(err)
	}
	blob, err := h.binder.BindOnCreate(ctx, invoice, attachments.KindDocument)
	if err != nil {
		return errors.WithStack(err)
	}

	income := &models.AuthorIncome{
		AuthorID:           c.Param("id"),
		AccountID:          params.PaymentAccountID,
		PaymentAmount:      params.PaymentAmount,
		PaymentDate:        paidAt,
		PaymentStatus:      params.PaymentStatus,
		PaymentDescription: params.PaymentDescription,
	}
	if blob != nil {
		income.InvoiceKey = &blob.Key
	}

	if err := h.authorService.CreatePayment(ctx, income); err != nil {
		if blob != nil {
			h.binder.Release(ctx, *blob)
		}
		return errors.WithStack(err)
	}
	if err := h.signInvoice(ctx, income); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Author payment created successfully", income)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateAuthorOptions{Columns: []string{}}
	setString := func(column string, value *string, field *string) {
		if value != nil && *value != *field {
			*field = *value
			opts.Columns = append(opts.Columns, column)
		}
	}
	setString("first_name", params.FirstName, &author.FirstName)
	setString("last_name", params.LastName, &author.LastName)
	setString("pen_name", params.PenName, &author.PenName)
	setString("nationality", params.Nationality, &author.Nationality)
	setString("description", params.Description, &author.Description)
	setString("position", params.Position, &author.Position)
	if params.Died != nil {
		author.Died = params.Died
		opts.Columns = append(opts.Columns, "died")
	}
	if params.FirstPublishDate != nil {
		author.FirstPublishDate = params.FirstPublishDate
		opts.Columns = append(opts.Columns, "first_publish_date")
	}

	image, err := attachments.ReadFile(params.FormFiles[profileImageField])
	if err != nil {
		return errors.WithStack(err)
	}
	if image == nil {
		err = h.authorService.UpdateAuthor(ctx, author, opts)
	} else {
		_, err = h.binder.BindOnUpdate(ctx, attachments.KeyOf(author.ProfileImageKey), image, attachments.KindImage, func(blob *attachments.Blob) error {
			author.ProfileImageKey = &blob.Key
			opts.Columns = append(opts.Columns, "profile_image_key")
			return h.authorService.UpdateAuthor(ctx, author, opts)
		})
	}
	if err != nil {
		return errors.WithStack(err)
	}

	author, err = h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Author updated successfully", author)
}

func (h *handler) updateAccounts(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateAccountsPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	accounts := make([]reconcile.Child[AccountInput], 0, len(params.Accounts))
	for _, account := range params.Accounts {
		accounts = append(accounts, reconcile.Child[AccountInput]{
			ID:    reconcile.NewChildID(account.ID),
			Input: account,
		})
	}
	if err := h.authorService.UpdateAccounts(ctx, author, accounts); err != nil {
		return errors.WithStack(err)
	}

	author, err = h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Author's account details updated successfully", author)
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.authorService.DeleteAuthor(ctx, author.ID); err != nil {
		return errors.WithStack(err)
	}
	h.binder.BindOnDelete(ctx, attachments.KeyOf(author.ProfileImageKey))

	return respond.OK(c, "Author deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	active, err := h.authorService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Author status changed successfully", map[string]interface{}{
		"authorId":  id,
		"is_active": active,
	})
}

func (h *handler) sign(ctx context.Context, author *models.Author) error {
	var err error
	author.ProfileImage, err = h.binder.SignedURL(ctx, attachments.KeyOf(author.ProfileImageKey))
	return err
}

func (h *handler) signInvoice(ctx context.Context, income *models.AuthorIncome) error {
	var err error
	income.Invoice, err = h.binder.SignedURL(ctx, attachments.KeyOf(income.InvoiceKey))
	return err
}
