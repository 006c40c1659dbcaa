package auth

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email" mod:"trim,lcase"`
	Password string `json:"password" validate:"required"`
}

type VerifyPayload struct {
	User string `json:"user" validate:"required"`
	Code string `json:"code" validate:"required" mod:"trim"`
}

type UpdatePasswordPayload struct {
	User        string `json:"user" validate:"required"`
	OldPassword string `json:"oldPass" validate:"required"`
	NewPassword string `json:"newPass" validate:"required,min=8"`
	// ConfirmPass keeps the capitalized name existing clients send.
	ConfirmPassword string `json:"ConfirmPass" validate:"required"`
}
