package librarians

import (
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/kusalwijekoon97/ml-be/pkg/respond"
)

type StoreLibrarianPayload struct {
	FirstName   string             `json:"firstName" validate:"required,max=100" mod:"trim"`
	LastName    string             `json:"lastName" validate:"max=100" mod:"trim"`
	NIC         string             `json:"nic" mod:"trim"`
	Email       string             `json:"email" validate:"required,email" mod:"trim,lcase"`
	Address     string             `json:"address" mod:"trim"`
	Phone       string             `json:"phone" validate:"required" mod:"trim"`
	Password    string             `json:"password" validate:"required,min=8"`
	Type        string             `json:"type" default:"librarian" mod:"trim"`
	Permissions models.Permissions `json:"permissions"`
	Libraries   []string           `json:"libraries" validate:"dive,required"`
}

type UpdateLibrarianPayload struct {
	FirstName   *string             `json:"firstName" validate:"omitempty,max=100" mod:"trim"`
	LastName    *string             `json:"lastName" validate:"omitempty,max=100" mod:"trim"`
	NIC         *string             `json:"nic" mod:"trim"`
	Email       *string             `json:"email" validate:"omitempty,email" mod:"trim,lcase"`
	Address     *string             `json:"address" mod:"trim"`
	Phone       *string             `json:"phone" validate:"omitempty,min=1" mod:"trim"`
	Type        *string             `json:"type" mod:"trim"`
	Status      *string             `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Permissions *models.Permissions `json:"permissions"`
	Libraries   *[]string           `json:"libraries" validate:"omitempty,dive,required"`
}

type ListLibrariansQuery struct {
	respond.PageQuery
}

type ListByLibraryQuery struct {
	Libraries []string `query:"libraries" validate:"required,min=1,dive,required"`
}

type SearchLibrariansPayload struct {
	Name      string   `json:"name" mod:"trim"`
	Libraries []string `json:"libraries"`
}
