package users

import "github.com/kusalwijekoon97/ml-be/pkg/respond"

type StoreUserPayload struct {
	FirstName string   `json:"firstName" validate:"required,max=100" mod:"trim"`
	LastName  string   `json:"lastName" validate:"required,max=100" mod:"trim"`
	Email     string   `json:"email" validate:"required,email" mod:"trim,lcase"`
	Password  string   `json:"password" validate:"required,min=8"`
	Phone     string   `json:"phone" mod:"trim"`
	Address   string   `json:"address" mod:"trim"`
	NIC       string   `json:"nic" mod:"trim"`
	Plans     []string `json:"plans" validate:"dive,required"`
	Libraries []string `json:"libraries" validate:"dive,required"`
}

type UpdateUserPayload struct {
	FirstName *string   `json:"firstName" validate:"omitempty,notblank,max=100" mod:"trim"`
	LastName  *string   `json:"lastName" validate:"omitempty,notblank,max=100" mod:"trim"`
	Email     *string   `json:"email" validate:"omitempty,email" mod:"trim,lcase"`
	Phone     *string   `json:"phone" mod:"trim"`
	Address   *string   `json:"address" mod:"trim"`
	NIC       *string   `json:"nic" mod:"trim"`
	Plans     *[]string `json:"plans" validate:"omitempty,dive,required"`
	Libraries *[]string `json:"libraries" validate:"omitempty,dive,required"`
}

// ResetPasswordPayload sets a new password for a user without the current
// one.
type ResetPasswordPayload struct {
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type ListUsersQuery struct {
	respond.PageQuery
}

type ListByLibraryQuery struct {
	Library string `query:"library" validate:"required" mod:"trim"`
}

type SearchUsersPayload struct {
	Name    string `json:"name" mod:"trim"`
	Email   string `json:"email" mod:"trim,lcase"`
	Library string `json:"library" mod:"trim"`
}
