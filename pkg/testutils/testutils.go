// Package testutils holds helpers shared by package tests: an in-memory
// database with every migration applied and echo plumbing that matches the
// server's.
package testutils

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kusalwijekoon97/ml-be/pkg/attachments"
	"github.com/kusalwijekoon97/ml-be/pkg/binder"
	"github.com/kusalwijekoon97/ml-be/pkg/blobstore"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/migrations"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// SetupTestDB returns a migrated in-memory database that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// NewEcho returns an echo instance with the server's binder and error
// handler.
func NewEcho(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	return e
}

// NewBinder returns an attachments binder over a fresh memory store.
func NewBinder(db *bun.DB) (*attachments.Binder, *blobstore.MemoryStore) {
	store := blobstore.NewMemoryStore()
	return attachments.NewBinder(store, db, time.Hour), store
}

// Response is a decoded response envelope.
type Response struct {
	Code       int             `json:"-"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		TotalItems  int `json:"totalItems"`
		TotalPages  int `json:"totalPages"`
		CurrentPage int `json:"currentPage"`
		Limit       int `json:"limit"`
	} `json:"pagination"`
	Error *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

// Decode unmarshals the response data into v.
func (r *Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v), string(r.Data))
}

// Do serves req through e and decodes the envelope.
func Do(t *testing.T, e *echo.Echo, req *http.Request) *Response {
	t.Helper()
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	resp := &Response{Code: rr.Code}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), resp), rr.Body.String())
	return resp
}

// JSON serves a request with a JSON body. A nil body sends no body.
func JSON(t *testing.T, e *echo.Echo, method, path string, body interface{}) *Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return Do(t, e, req)
}

// Upload is a file sent in a multipart request.
type Upload struct {
	Field    string
	Filename string
	Data     []byte
}

// Multipart serves a multipart request whose JSON document is sent in the
// payload field alongside files.
func Multipart(t *testing.T, e *echo.Echo, path string, payload interface{}, files ...Upload) *Response {
	t.Helper()
	return Do(t, e, multipartRequest(t, path, payload, files))
}

// MultipartWithToken serves a multipart request carrying a bearer token.
func MultipartWithToken(t *testing.T, e *echo.Echo, path, token string, payload interface{}, files ...Upload) *Response {
	t.Helper()
	req := multipartRequest(t, path, payload, files)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return Do(t, e, req)
}

func multipartRequest(t *testing.T, path string, payload interface{}, files []Upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		require.NoError(t, w.WriteField(binder.PayloadField, string(b)))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// PNG returns an encoded w by h image.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// JSONWithToken serves a JSON request carrying a bearer token.
func JSONWithToken(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) *Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return Do(t, e, req)
}
