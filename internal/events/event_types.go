package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationOtpIssued  EventType = "registration_otp_issued"
	EventPasswordResetOtpIssued EventType = "password_reset_otp_issued"
	EventAccountStatusChanged   EventType = "account_status_changed"
	EventTicketCreated          EventType = "ticket_created"
)

// Event represents a domain event emitted by services. Subject is the
// aggregate the event is about: an email address, a username or a ticket id.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subject string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OtpIssuedPayload carries a freshly issued one-time code. Username is only
// known for password resets.
type OtpIssuedPayload struct {
	Email    string `json:"email"`
	Code     string `json:"-"`
	Username string `json:"username,omitempty"`
}

// AccountStatusChangedPayload payload.
type AccountStatusChangedPayload struct {
	Username  string               `json:"username"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	OldStatus domain.AccountStatus `json:"old_status"`
	NewStatus domain.AccountStatus `json:"new_status"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID      string `json:"ticket_id"`
	ReporterEmail string `json:"reporter_email"`
	Region        string `json:"region"`
	ImageURL      string `json:"image_url"`
}
