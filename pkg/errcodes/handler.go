package errcodes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

const pgUniqueViolation = "23505"

var sqliteUniqueRE = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)

// Handler renders every error returned by a handler in the response
// envelope. Errors that carry no HTTP meaning become a 500 whose details are
// only logged.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}

	status, body := h.envelope(err)
	if status == http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	if err := c.JSON(status, body); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func (h *Handler) envelope(err error) (int, map[string]interface{}) {
	e := classify(err)
	if e.HTTPCode == http.StatusInternalServerError {
		e = &Error{
			HTTPCode: http.StatusInternalServerError,
			Message:  "Internal Server Error",
			Code:     "internal_server_error",
		}
	}

	return e.HTTPCode, map[string]interface{}{
		"success": false,
		"message": e.Message,
		"error": map[string]interface{}{
			"code":    e.Code,
			"details": e.Details,
		},
	}
}

// classify turns err into an *Error. A unique index violation that slipped
// past a service's own uniqueness check is still reported as a conflict.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return &Error{HTTPCode: he.Code, Message: msg, Code: strcase.ToSnake(msg)}
	}

	if field, ok := uniqueViolation(err); ok {
		return Conflict("Record", field).(*Error)
	}

	return &Error{HTTPCode: http.StatusInternalServerError}
}

// uniqueViolation reports the column of a violated unique index, for both
// sqlite and postgres.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		parts := strings.Split(pgErr.ConstraintName, "_")
		return strcase.ToLowerCamel(parts[len(parts)-1]), true
	}

	m := sqliteUniqueRE.FindStringSubmatch(err.Error())
	if m == nil {
		return "", false
	}
	return strcase.ToLowerCamel(m[1]), true
}
