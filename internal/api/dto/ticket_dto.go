package dto

import (
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

// RaiseIssueRequest carries the multipart report fields; the photo travels
// as the image file part. Description length is enforced by the service so
// the client sees its exact message.
type RaiseIssueRequest struct {
	Name        string `form:"name" validate:"required,max=120"`
	Email       string `form:"email" validate:"required,email"`
	Mobile      string `form:"mobile" validate:"required,max=20"`
	Region      string `form:"region" validate:"required,max=80"`
	Latitude    string `form:"latitude" validate:"omitempty,latitude"`
	Longitude   string `form:"longitude" validate:"omitempty,longitude"`
	Description string `form:"description"`
}

// RaiseIssueResponse returns the allocated ticket id with the outcome message.
type RaiseIssueResponse struct {
	TicketID string `json:"ticket_id"`
	Message  string `json:"message"`
}

// FeedbackRequest rates the handling of a ticket.
type FeedbackRequest struct {
	Rating   int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" form:"feedback" validate:"max=1000"`
}

// TicketResponse is the full projection of a ticket.
type TicketResponse struct {
	TicketID           string              `json:"ticket_id"`
	CreatedAt          string              `json:"created_at"`
	ReporterName       string              `json:"reporter_name"`
	ReporterEmail      string              `json:"reporter_email"`
	ReporterPhone      string              `json:"reporter_phone"`
	Region             string              `json:"region"`
	Latitude           string              `json:"latitude"`
	Longitude          string              `json:"longitude"`
	ImageURL           string              `json:"image_url"`
	Description        string              `json:"description"`
	Status             domain.TicketStatus `json:"status"`
	CompletionImageURL *string             `json:"completion_image_url"`
	WorkersInvolved    *string             `json:"workers_involved"`
	CompletedAt        *string             `json:"completed_at"`
	Rating             *int                `json:"rating"`
	RatingFeedback     *string             `json:"rating_feedback"`
}

func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		TicketID:           t.TicketID,
		CreatedAt:          domain.FormatTimestamp(t.CreatedAt),
		ReporterName:       t.ReporterName,
		ReporterEmail:      t.ReporterEmail,
		ReporterPhone:      t.ReporterPhone,
		Region:             t.Region,
		Latitude:           t.Latitude,
		Longitude:          t.Longitude,
		ImageURL:           t.ImageURL,
		Description:        t.Description,
		Status:             t.Status,
		CompletionImageURL: t.CompletionImageURL,
		WorkersInvolved:    t.WorkersInvolved,
		Rating:             t.Rating,
		RatingFeedback:     t.RatingFeedback,
	}
	if t.CompletedAt != nil {
		completed := domain.FormatTimestamp(*t.CompletedAt)
		resp.CompletedAt = &completed
	}
	return resp
}
