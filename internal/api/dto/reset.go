package dto

// SendResetEmailRequest starts the password reset flow
type SendResetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest submits a new password for a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// FinalizeResetRequest completes the reset by authenticating the account
type FinalizeResetRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
}

// CheckResetPasswordRequest probes whether a credential pair authenticates
type CheckResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CheckResetPasswordResponse reports the probe outcome
type CheckResetPasswordResponse struct {
	Valid bool `json:"valid"`
}
