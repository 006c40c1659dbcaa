package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MobileUserRoleReader = "READER"
	MobileUserRoleAuthor = "AUTHOR"
	MobileUserRoleAdmin  = "ADMIN"
)

const (
	MobileUserStatusActive   = "ACTIVE"
	MobileUserStatusInactive = "INACTIVE"
	MobileUserStatusBanned   = "BANNED"
)

type MobileUser struct {
	bun.BaseModel `bun:"table:mobile_users,alias:mu"`

	ID                string     `bun:",pk" json:"_id"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	FirstName         string     `json:"firstname"`
	LastName          string     `json:"lastname"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Country           string     `json:"country"`
	MobileNumber      string     `json:"mobileNumber"`
	Role              string     `json:"role"`
	Status            string     `json:"status"`
	LibraryIDs        StringList `bun:"library_ids" json:"libraries"`
	FriendIDs         StringList `bun:"friend_ids" json:"friends"`
	PasswordHash      string     `json:"-"`
	ProfilePictureKey *string    `json:"-"`
	ProfilePicture    *string    `bun:"-" json:"profilePicture"`
	IsActive          bool       `json:"is_active"`
	Deleted           bool       `json:"deleted"`
}
