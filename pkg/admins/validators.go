package admins

type StoreAdminPayload struct {
	Name     string `json:"name" validate:"required,max=100" mod:"trim"`
	Email    string `json:"email" validate:"required,email" mod:"trim,lcase"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateAdminPayload struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=100" mod:"trim"`
	Email    *string `json:"email" validate:"omitempty,email" mod:"trim,lcase"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}
