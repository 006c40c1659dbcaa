package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/blobstore"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/database"
	"github.com/kusalwijekoon97/ml-be/pkg/mailer"
	"github.com/kusalwijekoon97/ml-be/pkg/migrations"
	"github.com/kusalwijekoon97/ml-be/pkg/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting ml-be")

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := blobstore.New(ctx, cfg, reg)
	if err != nil {
		log.Err(err).Fatal("blob store error")
	}
	log.Info("blob store initialized", logger.Data{"driver": cfg.BlobDriver})

	mail := mailer.New(cfg)

	srv, err := server.New(cfg, db, store, mail, reg)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	sweeper := attachments.NewSweeper(attachments.NewBinder(store, db, cfg.SignedURLTTL))
	if err := sweeper.Start(cfg.BlobCleanupSchedule); err != nil {
		log.Err(err).Fatal("sweeper error")
	}
	log.Info("blob sweeper started", logger.Data{"schedule": cfg.BlobCleanupSchedule})

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	sweeper.Stop()
	log.Info("blob sweeper stopped")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
