package user

// UpdateProfileRequest for PUT /users/me
type UpdateProfileRequest struct {
	FirstName string   `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string   `json:"last_name" validate:"required,min=1,max=100"`
	Phone     string   `json:"phone,omitempty" validate:"omitempty,e164"`
	Bio       string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Interests []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,required"`
}

// ChangePasswordRequest for POST /users/me/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// UpdateStatusRequest for PATCH /admin/users/{id}/status
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=active banned"`
}
