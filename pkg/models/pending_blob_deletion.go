package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PendingBlobDeletion records a blob whose delete failed and must be retried.
type PendingBlobDeletion struct {
	bun.BaseModel `bun:"table:pending_blob_deletions,alias:pbd"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BlobKey   string    `json:"blob_key"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
}
