package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/admins"
	"github.com/kusalwijekoon97/ml-be/pkg/advertisements"
	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/auth"
	"github.com/kusalwijekoon97/ml-be/pkg/authors"
	"github.com/kusalwijekoon97/ml-be/pkg/binder"
	"github.com/kusalwijekoon97/ml-be/pkg/blobstore"
	"github.com/kusalwijekoon97/ml-be/pkg/books"
	"github.com/kusalwijekoon97/ml-be/pkg/categories"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/dashboard"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/librarians"
	"github.com/kusalwijekoon97/ml-be/pkg/libraries"
	"github.com/kusalwijekoon97/ml-be/pkg/mailer"
	"github.com/kusalwijekoon97/ml-be/pkg/materialtypes"
	"github.com/kusalwijekoon97/ml-be/pkg/mobileusers"
	"github.com/kusalwijekoon97/ml-be/pkg/users"
	"github.com/kusalwijekoon97/ml-be/pkg/version"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// New builds the HTTP server. gatherer may be nil, in which case /metrics is
// not served.
func New(cfg *config.Config, db *bun.DB, store blobstore.Store, mail mailer.Sender, gatherer prometheus.Gatherer) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"version": version.Version})
	})

	if cfg.MetricsEnabled && gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Signed local blob URLs are served by the API itself.
	if local, ok := blobstore.LocalFrom(store); ok {
		blobstore.RegisterRoutes(e, local)
	}

	attachmentBinder := attachments.NewBinder(store, db, cfg.SignedURLTTL)

	api := e.Group("/api")

	authService := auth.NewService(db, cfg)
	authMiddleware := auth.NewMiddleware(authService)
	auth.RegisterRoutes(api, authService)

	registerProtectedRoutes(api, db, authMiddleware, attachmentBinder, mail)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// registerProtectedRoutes registers the resource routes. Libraries and
// authors expose an open listing, so they authenticate per route.
func registerProtectedRoutes(api *echo.Group, db *bun.DB, authMiddleware *auth.Middleware, binder *attachments.Binder, mail mailer.Sender) {
	authn := authMiddleware.Authenticate

	libraries.RegisterRoutesWithGroup(api.Group("/libraries"), db, authMiddleware)
	authors.RegisterRoutesWithGroup(api.Group("/authors"), db, authMiddleware, binder)

	librarians.RegisterRoutesWithGroup(api.Group("/librarians", authn), db, authMiddleware, mail)
	categories.RegisterRoutesWithGroup(api.Group("/categories", authn), db)
	books.RegisterRoutesWithGroup(api.Group("/books", authn), db, binder)
	materialtypes.RegisterRoutesWithGroup(api.Group("/materials", authn), db)
	mobileusers.RegisterRoutesWithGroup(api.Group("/mobile-users", authn), db, binder)
	advertisements.RegisterRoutesWithGroup(api.Group("/advertisements", authn), db, binder)
	users.RegisterRoutesWithGroup(api.Group("/users", authn), db, authMiddleware)
	admins.RegisterRoutesWithGroup(api.Group("/admins", authn), db, authMiddleware)
	dashboard.RegisterRoutesWithGroup(api.Group("/dashboard", authn), db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
