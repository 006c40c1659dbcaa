package attachments

import (
	"context"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/robinjoseph08/golib/logger"
)

const sweepBatchSize = 100

// Sweeper retries the blob deletions that failed while releasing objects.
type Sweeper struct {
	binder *Binder
	log    logger.Logger
	cron   *cron.Cron
}

func NewSweeper(binder *Binder) *Sweeper {
	return &Sweeper{binder: binder, log: logger.New()}
}

// Sweep retries one batch of pending deletions and returns how many were
// completed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	db := s.binder.db
	var pending []*models.PendingBlobDeletion
	err := db.NewSelect().
		Model(&pending).
		Order("pbd.created_at ASC").
		Limit(sweepBatchSize).
		Scan(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	done := 0
	for _, p := range pending {
		if err := s.binder.store.Delete(ctx, p.BlobKey); err != nil {
			p.Attempts++
			p.LastError = err.Error()
			p.UpdatedAt = s.binder.now()
			_, uerr := db.NewUpdate().
				Model(p).
				Column("attempts", "last_error", "updated_at").
				WherePK().
				Exec(ctx)
			if uerr != nil {
				return done, errors.WithStack(uerr)
			}
			continue
		}
		_, err := db.NewDelete().Model(p).WherePK().Exec(ctx)
		if err != nil {
			return done, errors.WithStack(err)
		}
		done++
	}
	return done, nil
}

// Start runs Sweep on the given cron schedule until Stop is called.
func (s *Sweeper) Start(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := s.Sweep(ctx)
		if err != nil {
			s.log.Err(err).Error("blob sweep failed")
			return
		}
		if n > 0 {
			s.log.Info("swept pending blob deletions", logger.Data{"count": n})
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid cleanup schedule %q", schedule)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
