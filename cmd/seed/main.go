package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kusalwijekoon97/ml-be/pkg/admins"
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/database"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

func main() {
	log := logger.New()
	ctx := context.Background()

	var opts struct {
		Email    string `short:"e" long:"email" description:"Admin email" required:"true"`
		Password string `short:"p" long:"password" description:"Admin password" required:"true"`
		Name     string `short:"n" long:"name" description:"Admin display name" default:"Administrator"`
	}

	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.Err(err).Fatal("flags parse error")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		log.Err(err).Fatal("hash error")
	}

	svc := admins.NewService(db)
	admin := &models.Admin{
		Name:         opts.Name,
		Email:        opts.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := svc.CreateAdmin(ctx, admin); err != nil {
		var ecerr *errcodes.Error
		if errors.As(err, &ecerr) && ecerr.Code == "conflict" {
			fmt.Printf("Admin %s already exists\n", opts.Email)
			return
		}
		log.Err(err).Fatal("create admin error")
	}

	fmt.Printf("Created admin %s (%s)\n", admin.Email, admin.ID)
}
