package advertisements

import (
	"context"
	"database/sql"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAdvertisementOptions struct {
	ID *string
}

type ListAdvertisementsOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type UpdateAdvertisementOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateAdvertisement(ctx context.Context, ad *models.Advertisement) error {
	now := time.Now()
	if ad.ID == "" {
		ad.ID = models.NewID()
	}
	ad.CreatedAt = now
	ad.UpdatedAt = now

	_, err := svc.db.NewInsert().Model(ad).Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveAdvertisement(ctx context.Context, opts RetrieveAdvertisementOptions) (*models.Advertisement, error) {
	ad := &models.Advertisement{}

	q := svc.db.
		NewSelect().
		Model(ad).
		Where("ad.deleted = ?", false)

	if opts.ID != nil {
		q = q.Where("ad.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Advertisement")
		}
		return nil, errors.WithStack(err)
	}

	return ad, nil
}

func (svc *Service) ListAdvertisements(ctx context.Context, opts ListAdvertisementsOptions) ([]*models.Advertisement, error) {
	a, _, err := svc.listAdvertisementsWithTotal(ctx, opts)
	return a, errors.WithStack(err)
}

func (svc *Service) ListAdvertisementsWithTotal(ctx context.Context, opts ListAdvertisementsOptions) ([]*models.Advertisement, int, error) {
	opts.includeTotal = true
	return svc.listAdvertisementsWithTotal(ctx, opts)
}

func (svc *Service) listAdvertisementsWithTotal(ctx context.Context, opts ListAdvertisementsOptions) ([]*models.Advertisement, int, error) {
	ads := []*models.Advertisement{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&ads).
		Where("ad.deleted = ?", false).
		Order("ad.created_at DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return ads, total, nil
}

func (svc *Service) UpdateAdvertisement(ctx context.Context, ad *models.Advertisement, opts UpdateAdvertisementOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}
	ad.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.NewUpdate().
		Model(ad).
		Column(columns...).
		WherePK().
		Where("deleted = ?", false).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Advertisement")
	}
	return nil
}

func (svc *Service) DeleteAdvertisement(ctx context.Context, id string) error {
	res, err := svc.db.NewUpdate().
		Model((*models.Advertisement)(nil)).
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
		return errcodes.NotFound("Advertisement")
	}
	return nil
}
