package books

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"

	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/materials"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
)

type handler struct {
	bookService *Service
	binder      *attachments.Binder
}

func (h *handler) store(c echo.Context) error {
	ctx := c.Request().Context()

	params := StoreBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Every material file has to match a declared slot before anything is
	// uploaded.
	slotHeaders := map[string]*multipart.FileHeader{}
	tags := []string{}
	for field := range params.FormFileLists {
		if field == coverImageField || field == additionalImagesField {
			continue
		}
		tags = append(tags, field)
	}
	sort.Strings(tags)
	for _, field := range tags {
		headers := params.FormFileLists[field]
		if len(headers) > 1 {
			return errcodes.FieldValidationError(field, fmt.Sprintf("only one file can be uploaded for %q", field))
		}
		slotHeaders[field] = headers[0]
	}
	plan, err := materials.NewPlan(params.Material, tags)
	if err != nil {
		return errors.WithStack(err)
	}

	cover, err := attachments.ReadFile(params.FormFiles[coverImageField])
	if err != nil {
		return errors.WithStack(err)
	}
	images := map[string]*attachments.File{}
	for i, fh := range params.FormFileLists[additionalImagesField] {
		f, err := attachments.ReadFile(fh)
		if err != nil {
			return errors.WithStack(err)
		}
		images[fmt.Sprintf("%s[%d]", additionalImagesField, i)] = f
	}
	documents := map[string]*attachments.File{}
	for field, fh := range slotHeaders {
		f, err := attachments.ReadFile(fh)
		if err != nil {
			return errors.WithStack(err)
		}
		documents[field] = f
	}

	// Upload everything, then persist. Any failure releases what was stored.
	var bound []attachments.Blob
	coverBlob, err := h.binder.BindOnCreate(ctx, cover, attachments.KindImage)
	if err != nil {
		return errors.WithStack(err)
	}
	if coverBlob != nil {
		bound = append(bound, *coverBlob)
	}
	imageBlobs, err := h.binder.BindMany(ctx, images, attachments.KindImage)
	if err != nil {
		h.binder.Release(ctx, bound...)
		return errors.WithStack(err)
	}
	for _, blob := range imageBlobs {
		bound = append(bound, blob)
	}
	documentBlobs, err := h.binder.BindMany(ctx, documents, attachments.KindDocument)
	if err != nil {
		h.binder.Release(ctx, bound...)
		return errors.WithStack(err)
	}
	uploads := make(map[string]materials.Upload, len(documentBlobs))
	for slot, blob := range documentBlobs {
		bound = append(bound, blob)
		uploads[slot] = materials.Upload{Key: blob.Key, URL: blob.URL}
	}

	book := &models.Book{
		Name:                params.Name,
		AuthorID:            params.Author,
		TranslatorID:        nilIfEmpty(params.Translator),
		CategoryIDs:         models.StringList(params.Category),
		SubCategoryIDs:      models.StringList(params.SubCategory),
		LibraryIDs:          models.StringList(params.Library),
		ISBN:                nilIfEmpty(params.ISBN),
		AdditionalImageKeys: models.StringList{},
		Description:         params.Description,
		Publisher:           params.Publisher,
		PublishDate:         params.PublishDate,
		Language:            params.Language,
		LanguageCode:        params.LanguageCode,
		FirstPublisher:      params.FirstPublisher,
		AccessType:          params.AccessType,
		SeriesNumber:        params.SeriesNumber,
		ViewInLibrary:       params.ViewInLibrary,
		Series:              models.StringList(params.Series),
		Material:            plan.Resolve(uploads),
		IsActive:            true,
	}
	if coverBlob != nil {
		book.CoverImageKey = &coverBlob.Key
	}
	for i := range params.FormFileLists[additionalImagesField] {
		if blob, ok := imageBlobs[fmt.Sprintf("%s[%d]", additionalImagesField, i)]; ok {
			book.AdditionalImageKeys = append(book.AdditionalImageKeys, blob.Key)
		}
	}

	if err := h.bookService.CreateBook(ctx, book); err != nil {
		h.binder.Release(ctx, bound...)
		return errors.WithStack(err)
	}

	if err := h.sign(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	return respond.Created(c, "Book created successfully", book)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:      pointerutil.Int(params.Limit),
		Offset:     pointerutil.Int(params.Offset()),
		Search:     pointerutil.String(params.Search),
		CategoryID: pointerutil.String(params.Category),
		AuthorID:   pointerutil.String(params.Author),
		LibraryID:  pointerutil.String(params.Library),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, book := range books {
		book.CoverImage, err = h.binder.SignedURL(ctx, attachments.KeyOf(book.CoverImageKey))
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return respond.Page(c, "Books retrieved successfully", books, params.PageQuery, total)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.sign(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Book retrieved successfully", book)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	book.Author = nil

	opts := UpdateBookOptions{Columns: []string{}}
	setString := func(column string, value *string, field *string) {
		if value != nil && *value != *field {
			*field = *value
			opts.Columns = append(opts.Columns, column)
		}
	}
	setString("name", params.Name, &book.Name)
	setString("author_id", params.Author, &book.AuthorID)
	setString("description", params.Description, &book.Description)
	setString("publisher", params.Publisher, &book.Publisher)
	setString("language", params.Language, &book.Language)
	setString("language_code", params.LanguageCode, &book.LanguageCode)
	setString("first_publisher", params.FirstPublisher, &book.FirstPublisher)
	setString("access_type", params.AccessType, &book.AccessType)
	if params.Translator != nil {
		book.TranslatorID = nilIfEmpty(params.Translator)
		opts.Columns = append(opts.Columns, "translator_id")
	}
	if params.ISBN != nil {
		book.ISBN = nilIfEmpty(params.ISBN)
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.PublishDate != nil {
		book.PublishDate = nilIfEmpty(params.PublishDate)
		opts.Columns = append(opts.Columns, "publish_date")
	}
	if params.SeriesNumber != nil {
		book.SeriesNumber = params.SeriesNumber
		opts.Columns = append(opts.Columns, "series_number")
	}
	if params.ViewInLibrary != nil {
		book.ViewInLibrary = *params.ViewInLibrary
		opts.Columns = append(opts.Columns, "view_in_library")
	}
	if params.Category != nil {
		book.CategoryIDs = models.StringList(*params.Category)
		opts.Columns = append(opts.Columns, "category_ids")
	}
	if params.SubCategory != nil {
		book.SubCategoryIDs = models.StringList(*params.SubCategory)
		opts.Columns = append(opts.Columns, "subcategory_ids")
	}
	if params.Library != nil {
		book.LibraryIDs = models.StringList(*params.Library)
		opts.Columns = append(opts.Columns, "library_ids")
	}
	if params.Series != nil {
		book.Series = models.StringList(*params.Series)
		opts.Columns = append(opts.Columns, "series")
	}

	cover, err := attachments.ReadFile(params.FormFiles[coverImageField])
	if err != nil {
		return errors.WithStack(err)
	}
	if cover == nil {
		err = h.bookService.UpdateBook(ctx, book, opts)
	} else {
		_, err = h.binder.BindOnUpdate(ctx, attachments.KeyOf(book.CoverImageKey), cover, attachments.KindImage, func(blob *attachments.Blob) error {
			book.CoverImageKey = &blob.Key
			opts.Columns = append(opts.Columns, "cover_image_key")
			return h.bookService.UpdateBook(ctx, book, opts)
		})
	}
	if err != nil {
		return errors.WithStack(err)
	}

	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.sign(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Book updated successfully", book)
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: pointerutil.String(c.Param("id")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.DeleteBook(ctx, book.ID); err != nil {
		return errors.WithStack(err)
	}

	keys := append([]string{attachments.KeyOf(book.CoverImageKey)}, book.AdditionalImageKeys...)
	keys = append(keys, book.Material.Keys()...)
	h.binder.BindOnDelete(ctx, keys...)

	return respond.OK(c, "Book deleted successfully", nil)
}

func (h *handler) changeStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	active, err := h.bookService.ToggleStatus(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return respond.OK(c, "Book status changed successfully", map[string]interface{}{
		"bookId":    id,
		"is_active": active,
	})
}

// sign replaces every stored object reference of the book with a fresh
// signed URL.
func (h *handler) sign(ctx context.Context, book *models.Book) error {
	var err error
	book.CoverImage, err = h.binder.SignedURL(ctx, attachments.KeyOf(book.CoverImageKey))
	if err != nil {
		return err
	}
	book.AdditionalImages = make([]string, 0, len(book.AdditionalImageKeys))
	for _, key := range book.AdditionalImageKeys {
		url, err := h.binder.SignedURL(ctx, key)
		if err != nil {
			return err
		}
		book.AdditionalImages = append(book.AdditionalImages, *url)
	}
	for _, material := range book.Material {
		for _, format := range material.Formats {
			sources := []*models.Source{}
			if format.CompleteSource != nil {
				sources = append(sources, format.CompleteSource)
			}
			for _, chapter := range format.Chapters {
				sources = append(sources, chapter.Source...)
			}
			for _, source := range sources {
				if source.Key == nil {
					continue
				}
				source.URL, err = h.binder.SignedURL(ctx, *source.Key)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
