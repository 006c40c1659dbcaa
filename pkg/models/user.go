package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an end user of a library.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            string     `bun:",pk" json:"_id"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	Email         string     `json:"email"`
	NIC           string     `bun:"nic" json:"nic"`
	Blocked       bool       `json:"blocked"`
	Plans         StringList `json:"plans"`
	LibraryIDs    StringList `bun:"library_ids" json:"libraries"`
	PasswordHash  string     `json:"-"`
	OTPCode       string     `bun:"otp_code" json:"-"`
	EmailCode     string     `json:"-"`
	OTPVerified   bool       `bun:"otp_verified" json:"otpVerified"`
	EmailVerified bool       `json:"emailVerified"`
	IsActive      bool       `json:"is_active"`
	Deleted       bool       `json:"deleted"`
}
