package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MaterialType is a named kind of material offered by the libraries.
type MaterialType struct {
	bun.BaseModel `bun:"table:material_types,alias:mt"`

	ID        string    `bun:",pk" json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
}
