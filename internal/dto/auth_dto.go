package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150" example:"newuser"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// AccountResponse is returned by login, registration and profile updates.
type AccountResponse struct {
	Success bool     `json:"success" example:"true"`
	Message string   `json:"message,omitempty" example:"Login successful."`
	User    *UserDTO `json:"user,omitempty"`
}

type RegisterEmailRequest struct {
	Email string `json:"email" binding:"required,max=254" example:"new@user.com"`
}

type RegisterCompleteRequest struct {
	Username        string `json:"username" binding:"required,max=150" example:"newuser"`
	OTP             string `json:"otp" binding:"required,max=6" example:"123456"`
	Password        string `json:"password" binding:"required" example:"s3cret-pass"`
	ConfirmPassword string `json:"confirm_password" binding:"required" example:"s3cret-pass"`
}

type RegistrationStepResponse struct {
	Step  string `json:"step" example:"details"`
	Email string `json:"email,omitempty" example:"new@user.com"`
}

type PasswordResetRequest struct {
	Username string `json:"username" binding:"required,max=150" example:"newuser"`
}

type PasswordResetVerifyRequest struct {
	OTP             string `json:"otp" binding:"required,max=6" example:"123456"`
	NewPassword     string `json:"new_password" binding:"required" example:"p1"`
	ConfirmPassword string `json:"confirm_password" binding:"required" example:"p1"`
}
