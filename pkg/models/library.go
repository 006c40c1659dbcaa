package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:l"`

	ID          string     `bun:",pk" json:"_id"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Name        string     `json:"name"`
	LibrarianID *string    `json:"librarianId"`
	Librarian   *Librarian `bun:"rel:belongs-to,join:librarian_id=id" json:"librarian,omitempty"`
	IsActive    bool       `json:"is_active"`
	Deleted     bool       `json:"deleted"`
}
