package models

import (
	"database/sql/driver"
	"time"

	"github.com/uptrace/bun"
)

const (
	LibrarianStatusActive   = "ACTIVE"
	LibrarianStatusInactive = "INACTIVE"
)

type Librarian struct {
	bun.BaseModel `bun:"table:librarians,alias:lib"`

	ID                    string      `bun:",pk" json:"_id"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
	FirstName             string      `json:"firstName"`
	LastName              string      `json:"lastName"`
	NIC                   string      `bun:"nic" json:"nic"`
	Email                 string      `json:"email"`
	Address               string      `json:"address"`
	Phone                 string      `json:"phone"`
	Status                string      `json:"status"`
	Type                  string      `json:"type"`
	Permissions           Permissions `json:"permissions"`
	PasswordHash          string      `json:"-"`
	OTPCode               string      `bun:"otp_code" json:"-"`
	EmailCode             string      `json:"-"`
	PasswordRecoveryToken string      `json:"-"`
	OTPVerified           bool        `bun:"otp_verified" json:"otpVerified"`
	EmailVerified         bool        `json:"emailVerified"`
	IsActive              bool        `json:"is_active"`
	Deleted               bool        `json:"deleted"`

	Libraries []*Library `bun:"rel:has-many,join:id=librarian_id" json:"libraries"`
}

// LibraryIDs returns the ids of the libraries this librarian is assigned to.
func (l *Librarian) LibraryIDs() []string {
	ids := make([]string, 0, len(l.Libraries))
	for _, library := range l.Libraries {
		ids = append(ids, library.ID)
	}
	return ids
}

// Permissions are the sections of the management console a librarian may use.
type Permissions struct {
	Users         bool `json:"users"`
	Readers       bool `json:"readers"`
	Categories    bool `json:"categories"`
	Books         bool `json:"books"`
	Authors       bool `json:"authors"`
	Statics       bool `json:"statics"`
	Sales         bool `json:"sales"`
	Packages      bool `json:"packages"`
	Notifications bool `json:"notifications"`
	Settings      bool `json:"settings"`
}

func (p Permissions) Value() (driver.Value, error) {
	return valueJSON(p)
}

func (p *Permissions) Scan(src interface{}) error {
	*p = Permissions{}
	return scanJSON(src, p)
}
