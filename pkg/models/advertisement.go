package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Advertisement struct {
	bun.BaseModel `bun:"table:advertisements,alias:ad"`

	ID        string    `bun:",pk" json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ImageKey  string    `json:"-"`
	Image     *string   `bun:"-" json:"advertisement"`
	IsActive  bool      `json:"is_active"`
	Deleted   bool      `json:"deleted"`
}
