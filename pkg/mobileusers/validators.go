package mobileusers

import (
	"mime/multipart"

	"github.com/kusalwijekoon97/ml-be/pkg/respond"
)

const profilePictureField = "profilePicture"

type StoreMobileUserPayload struct {
	FirstName    string   `json:"firstname" validate:"required,max=100" mod:"trim"`
	LastName     string   `json:"lastname" validate:"max=100" mod:"trim"`
	Username     string   `json:"username" validate:"required,max=50" mod:"trim"`
	Email        string   `json:"email" validate:"required,email" mod:"trim,lcase"`
	Password     string   `json:"password" validate:"required,min=8"`
	Country      string   `json:"country" mod:"trim"`
	MobileNumber string   `json:"mobileNumber" mod:"trim"`
	Role         string   `json:"role" default:"READER" validate:"oneof=READER AUTHOR ADMIN"`
	Status       string   `json:"status" default:"ACTIVE" validate:"oneof=ACTIVE INACTIVE BANNED"`
	Libraries    []string `json:"libraries" validate:"dive,required"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type UpdateMobileUserPayload struct {
	FirstName    *string   `json:"firstname" validate:"omitempty,notblank,max=100" mod:"trim"`
	LastName     *string   `json:"lastname" validate:"omitempty,max=100" mod:"trim"`
	Username     *string   `json:"username" validate:"omitempty,notblank,max=50" mod:"trim"`
	Email        *string   `json:"email" validate:"omitempty,email" mod:"trim,lcase"`
	Password     *string   `json:"password" validate:"omitempty,min=8"`
	Country      *string   `json:"country" mod:"trim"`
	MobileNumber *string   `json:"mobileNumber" mod:"trim"`
	Role         *string   `json:"role" validate:"omitempty,oneof=READER AUTHOR ADMIN"`
	Status       *string   `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
	Libraries    *[]string `json:"libraries" validate:"omitempty,dive,required"`
	Friends      *[]string `json:"friends" validate:"omitempty,dive,required"`

	FormFiles map[string]*multipart.FileHeader `json:"-"`
}

type ListMobileUsersQuery struct {
	respond.PageQuery
	Role   string `query:"role" validate:"omitempty,oneof=READER AUTHOR ADMIN"`
	Status string `query:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
}
