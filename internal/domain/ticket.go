package domain

import "time"

// TicketStatus enumerates lifecycle states for issue tickets. Only OPEN is
// assigned here; the rest are written by the municipal completion workflow.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
)

const (
	TicketIDLength        = 8
	TicketIDAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxDescriptionLength  = 300
	TicketTimestampLayout = "02/01/2006 15:04:05"
)

// ReportingZone is the civil timezone (UTC+05:30) every ticket timestamp is rendered in.
var ReportingZone = time.FixedZone("GMT+5:30", 5*60*60+30*60)

// Ticket is a citizen-submitted waste issue.
type Ticket struct {
	TicketID           string
	CreatedAt          time.Time
	ReporterName       string
	ReporterEmail      string
	ReporterPhone      string
	Region             string
	Latitude           string
	Longitude          string
	ImageURL           string
	Description        string
	Status             TicketStatus
	CompletionImageURL *string
	WorkersInvolved    *string
	CompletedAt        *time.Time
	Rating             *int
	RatingFeedback     *string
}

// FormatTimestamp renders t as DD/MM/YYYY HH:MM:SS in the reporting zone.
func FormatTimestamp(t time.Time) string {
	return t.In(ReportingZone).Format(TicketTimestampLayout)
}
