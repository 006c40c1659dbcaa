// Package respond writes the success envelope shared by every endpoint.
package respond

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// PageQuery is embedded in the query params of every paginated listing.
type PageQuery struct {
	Page   int    `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	Limit  int    `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Search string `query:"search" json:"search,omitempty" mod:"trim"`
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func OK(c echo.Context, msg string, data interface{}) error {
	return errors.WithStack(c.JSON(http.StatusOK, Envelope{Success: true, Message: msg, Data: data}))
}

func Created(c echo.Context, msg string, data interface{}) error {
	return errors.WithStack(c.JSON(http.StatusCreated, Envelope{Success: true, Message: msg, Data: data}))
}

// Page writes one page of a listing along with its pagination summary.
func Page(c echo.Context, msg string, data interface{}, q PageQuery, total int) error {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return errors.WithStack(c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: msg,
		Data:    data,
		Pagination: &Pagination{
			TotalItems:  total,
			TotalPages:  pages,
			CurrentPage: q.Page,
			Limit:       q.Limit,
		},
	}))
}

// Pattern returns a case-insensitive substring pattern for the search term,
// to be compared against a LOWER() column with LIKE.
func (q PageQuery) Pattern() string {
	return "%" + strings.ToLower(q.Search) + "%"
}
