package authors

import (
	"mime/multipart"

	"github.com/kusalwijekoon97/ml-be/pkg/respond"
)

const (
	profileImageField = "profileImage"
	invoiceField      = "invoice"
)

// AccountInput is one bank account of an author. An account submitted with
// an _id replaces every field of the stored account.
type AccountInput struct {
	ID            *string `json:"_id"`
	Name          string  `json:"name" validate:"required" mod:"trim"`
	Bank          string  `json:"bank" validate:"required" mod:"trim"`
	Branch        string  `json:"branch" validate:"required" mod:"trim"`
	AccountNumber string  `json:"accountNumber" validate:"required" mod:"trim"`
	AccountType   string  `json:"accountType" validate:"required" mod:"trim"`
	Currency      string  `json:"currency" validate:"required" mod:"trim"`
	SwiftCode     string  `json:"swiftCode" mod:"trim"`
	IBAN          string  `json:"iban" mod:"trim"`
	Description   string  `json:"description"`
}

// AddedBookInput creates a stub book for the author.
type AddedBookInput struct {
	Name string  `json:"added_book_name" validate:"required" mod:"trim"`
	ISBN *string `json:"added_book_isbn" mod:"trim"`
}

type StoreAuthorPayload struct {
	FirstName        string           `json:"firstname" validate:"required,max=100" mod:"trim"`
	LastName         string           `json:"lastname" validate:"max=100" mod:"trim"`
	Died             *string          `json:"died" mod:"trim"`
	PenName          string           `json:"penName" mod:"trim"`
	Nationality      string           `json:"nationality" mod:"trim"`
	FirstPublishDate *string          `json:"firstPublishDate" mod:"trim"`
	Description      string           `json:"description"`
	Position         string           `json:"position" mod:"trim"`
	AddedBooks       []AddedBookInput `json:"addedBooks" validate:"dive"`
	Accounts         []AccountInput   `json:"accounts" validate:"dive"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type UpdateAuthorPayload struct {
	FirstName        *string `json:"firstname" validate:"omitempty,notblank,max=100" mod:"trim"`
	LastName         *string `json:"lastname" validate:"omitempty,max=100" mod:"trim"`
	Died             *string `json:"died" mod:"trim"`
	PenName          *string `json:"penName" mod:"trim"`
	Nationality      *string `json:"nationality" mod:"trim"`
	FirstPublishDate *string `json:"firstPublishDate" mod:"trim"`
	Description      *string `json:"description"`
	Position         *string `json:"position" mod:"trim"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type UpdateAccountsPayload struct {
	Accounts []AccountInput `json:"accounts" validate:"required,dive"`
}

type ListAuthorsQuery struct {
	respond.PageQuery
}

type ListAuthorBooksQuery struct {
	respond.PageQuery
	Library string `query:"library" mod:"trim"`
}

type ListPaymentsQuery struct {
	PaymentStatus string `query:"paymentStatus" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
}

type StorePaymentPayload struct {
	PaymentAmount      float64 `json:"paymentAmount" validate:"gt=0"`
	PaymentDate        string  `json:"paymentDate" validate:"required,date"`
	PaymentAccountID   string  `json:"paymentAccountId" validate:"required" mod:"trim"`
	PaymentStatus      string  `json:"paymentStatus" default:"PENDING" validate:"oneof=PENDING COMPLETED FAILED"`
	PaymentDescription string  `json:"paymentDescription"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
