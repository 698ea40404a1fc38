package dto

import (
	"time"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

// AdminSessionRequest exchanges the console access code for a token.
type AdminSessionRequest struct {
	AccessCode string `json:"access_code" validate:"required"`
}

// SessionResponse standard response for session endpoints.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ApprovalRequest carries an admin decision.
type ApprovalRequest struct {
	Action string `json:"action" validate:"required"`
}

// AccountResponse is the admin view of a worker account. Password hashes are
// never serialized.
type AccountResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Region         string               `json:"region"`
	Username       string               `json:"username"`
	IDCardNumber   string               `json:"id_card_number"`
	IDCardImageURL string               `json:"id_card_image_url"`
	Status         domain.AccountStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
}

func NewAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Phone:          a.Phone,
		Region:         a.Region,
		Username:       a.Username,
		IDCardNumber:   a.IDCardNumber,
		IDCardImageURL: a.IDCardImageURL,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
	}
}

func NewAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewAccountResponse(a))
	}
	return out
}
