package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID               string     `bun:",pk" json:"_id"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	FirstName        string     `json:"firstname"`
	LastName         string     `json:"lastname"`
	Died             *string    `json:"died"`
	PenName          string     `json:"penName"`
	Nationality      string     `json:"nationality"`
	Description      string     `json:"description"`
	FirstPublishDate *string    `json:"firstPublishDate"`
	ProfileImageKey  *string    `json:"-"`
	ProfileImage     *string    `bun:"-" json:"profileImage"`
	Position         string     `json:"position"`
	LatestIncomeID   *string    `json:"income"`
	IsActive         bool       `json:"isActive"`
	Deleted          bool       `json:"isDeleted"`

	Accounts     []*AuthorAccount   `bun:"rel:has-many,join:id=author_id" json:"accountDetails,omitempty"`
	SocialMedia  *AuthorSocialMedia `bun:"rel:has-one,join:id=author_id" json:"socialMedia,omitempty"`
	LatestIncome *AuthorIncome      `bun:"rel:belongs-to,join:latest_income_id=id" json:"latestIncome,omitempty"`
}

type AuthorAccount struct {
	bun.BaseModel `bun:"table:author_accounts,alias:aa"`

	ID            string    `bun:",pk" json:"_id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	AuthorID      string    `json:"authorId"`
	Name          string    `json:"name"`
	Bank          string    `json:"bank"`
	Branch        string    `json:"branch"`
	AccountNumber string    `json:"accountNumber"`
	AccountType   string    `json:"accountType"`
	Currency      string    `json:"currency"`
	SwiftCode     string    `json:"swiftCode"`
	IBAN          string    `bun:"iban" json:"iban"`
	Description   string    `json:"description"`
	SortOrder     int       `json:"-"`
	IsActive      bool      `json:"isActive"`
	Deleted       bool      `json:"isDeleted"`
}

type AuthorIncome struct {
	bun.BaseModel `bun:"table:author_incomes,alias:ai"`

	ID                 string    `bun:",pk" json:"_id"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	AuthorID           string    `json:"authorId"`
	AccountID          string    `json:"paymentAccountId"`
	PaymentAmount      float64   `json:"paymentAmount"`
	PaymentDate        time.Time `json:"paymentDate"`
	PaymentStatus      string    `json:"paymentStatus"`
	PaymentDescription string    `json:"paymentDescription"`
	InvoiceKey         *string   `json:"-"`
	Invoice            *string   `bun:"-" json:"invoice"`
}

type AuthorSocialMedia struct {
	bun.BaseModel `bun:"table:author_social_media,alias:asm"`

	ID             string     `bun:",pk" json:"_id"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	AuthorID       string     `json:"authorId"`
	TotalLikes     int        `json:"totalLikes"`
	LikedBy        StringList `json:"likedBy"`
	TotalFollowers int        `json:"totalFollowers"`
	FollowedBy     StringList `json:"followedBy"`
}
