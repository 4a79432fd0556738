package domain

// SigninRequest is the credentials payload relayed to the backend.
type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SigninResponse carries the bearer token issued by the backend.
type SigninResponse struct {
	Token string `json:"token"`
}

// SignupRequest is the registration payload relayed to the backend.
type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest carries the one-time code for email verification.
type VerifyEmailRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}
