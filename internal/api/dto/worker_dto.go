package dto

import "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"

// OtpRequest asks for a one-time code. Email syntax is checked by the service.
type OtpRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
}

// OtpVerifyRequest submits a one-time code.
type OtpVerifyRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
	Code  string `json:"code" form:"code" validate:"required"`
}

// WorkerRegisterRequest carries the multipart profile fields; the id card
// image travels as the id_card_image file part.
type WorkerRegisterRequest struct {
	Name         string `form:"name" validate:"required,max=120"`
	Email        string `form:"email" validate:"required,email"`
	Phone        string `form:"phone" validate:"required,max=20"`
	Region       string `form:"region" validate:"required,max=80"`
	Username     string `form:"username" validate:"required,max=60"`
	Password     string `form:"password" validate:"required,min=6,max=72"`
	IDCardNumber string `form:"id_card_number" validate:"required,max=60"`
}

// WorkerLoginRequest checks worker credentials; identifier is an email or username.
type WorkerLoginRequest struct {
	Identifier string `json:"identifier" form:"identifier" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
}

// ChangePasswordRequest sets a new password after a verified reset code.
type ChangePasswordRequest struct {
	Email       string `json:"email" form:"email" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=6,max=72"`
}

// MessageResponse wraps a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// UsernameAvailabilityResponse answers an availability probe.
type UsernameAvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// LoginResponse mirrors domain.AuthResult; status is only set for matched
// accounts that may not sign in.
type LoginResponse struct {
	Valid    bool   `json:"valid"`
	Status   string `json:"status,omitempty"`
	Username string `json:"username,omitempty"`
	Region   string `json:"region,omitempty"`
}

func NewLoginResponse(result domain.AuthResult) LoginResponse {
	return LoginResponse{
		Valid:    result.Valid,
		Status:   result.Status,
		Username: result.Username,
		Region:   result.Region,
	}
}
