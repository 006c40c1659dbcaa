package blobstore

import (
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	store *LocalStore
}

// RegisterRoutes serves objects of a LocalStore through their signed URLs.
func RegisterRoutes(e *echo.Echo, store *LocalStore) {
	h := &handler{store: store}
	e.GET("/blobs/:key", h.retrieve)
}

func (h *handler) retrieve(c echo.Context) error {
	path, contentType, err := h.store.open(c.Param("key"), c.QueryParam("token"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errcodes.NotFound("File")
		}
		return errcodes.Forbidden("Reading this file")
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	return errors.WithStack(c.File(path))
}
