package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/events"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/repository"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/storage"
	apperrors "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/pkg/util/errorutil"
)

const (
	msgImageMissing        = "Invalid request. Image data missing."
	msgImageNotImage       = "Invalid request. Uploaded file must be an image."
	msgInvalidDescription  = "Invalid description (max 300 characters)."
	msgTicketIDMissing     = "No Ticket ID provided."
	msgTicketIDNotFound    = "Ticket ID not found."
	msgFeedbackInvalidID   = "Error: Invalid Ticket ID."
	msgFeedbackNotFound    = "Error: Ticket not found."
	msgFeedbackThanks      = "Thank you for your valuable feedback!"
	msgTicketIDsExhausted  = "Could not allocate a unique Ticket ID."
	maxTicketInsertAttempt = 16
)

// TicketReport is a citizen issue submission.
type TicketReport struct {
	ReporterName  string
	ReporterEmail string
	ReporterPhone string
	Region        string
	Latitude      string
	Longitude     string
	Description   string
	Image         Upload
}

// TicketService coordinates the citizen ticket workflow.
type TicketService struct {
	tickets    repository.TicketRepository
	blobs      storage.BlobStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	entropy    io.Reader
	now        func() time.Time

	// allocMu serializes id sampling with the insert that claims the id.
	allocMu sync.Mutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Blobs      storage.BlobStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Entropy    io.Reader
	Clock      func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		blobs:      deps.Blobs,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		entropy:    deps.Entropy,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.entropy == nil {
		svc.entropy = rand.Reader
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// RaiseIssue validates a report, stores its image and opens a ticket.
func (s *TicketService) RaiseIssue(ctx context.Context, report TicketReport) (*domain.Ticket, string, error) {
	if report.Image.missing() {
		return nil, "", apperrors.NewValidationError(msgImageMissing, nil)
	}
	if report.Description == "" || utf8.RuneCountInString(report.Description) > domain.MaxDescriptionLength {
		return nil, "", apperrors.NewValidationError(msgInvalidDescription, map[string]any{
			"max_length": domain.MaxDescriptionLength,
		})
	}

	imageURL, err := s.blobs.Upload(ctx, report.Image.Name, report.Image.Data)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, "", apperrors.NewValidationError(msgImageNotImage, nil)
		}
		return nil, "", err
	}

	ticket := &domain.Ticket{
		CreatedAt:     s.now().In(domain.ReportingZone),
		ReporterName:  report.ReporterName,
		ReporterEmail: report.ReporterEmail,
		ReporterPhone: report.ReporterPhone,
		Region:        report.Region,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		ImageURL:      imageURL,
		Description:   report.Description,
		Status:        domain.TicketStatusOpen,
	}

	if err := s.insertWithFreshID(ctx, ticket); err != nil {
		discardBlob(ctx, s.blobs, imageURL, s.logger)
		return nil, "", err
	}

	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket.TicketID, events.TicketCreatedPayload{
		TicketID:      ticket.TicketID,
		ReporterEmail: ticket.ReporterEmail,
		Region:        ticket.Region,
		ImageURL:      ticket.ImageURL,
	}))
	return ticket, "Issue raised successfully. Ticket ID: " + ticket.TicketID, nil
}

// insertWithFreshID samples an unused id and inserts ticket under it,
// resampling when a concurrent writer claims the id first.
func (s *TicketService) insertWithFreshID(ctx context.Context, ticket *domain.Ticket) error {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	for attempt := 1; ; attempt++ {
		ticketID, err := s.unusedTicketID(ctx)
		if err != nil {
			return err
		}
		ticket.TicketID = ticketID
		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if _, dup := repository.AsDuplicate(err); !dup {
			return err
		}
		if attempt >= maxTicketInsertAttempt {
			return apperrors.NewConflict(msgTicketIDsExhausted, map[string]any{"attempts": attempt})
		}
		s.logger.Warn("ticket id collided on insert", zap.String("ticket_id", ticketID), zap.Int("attempt", attempt))
	}
}

// GetTicket returns the full record for ticketID.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError(msgTicketIDMissing, nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(msgTicketIDNotFound, map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// SubmitFeedback overwrites the rating fields of a ticket in any status.
func (s *TicketService) SubmitFeedback(ctx context.Context, ticketID string, rating int, feedback string) (string, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return "", apperrors.NewValidationError(msgFeedbackInvalidID, nil)
	}

	if err := s.tickets.UpdateFeedback(ctx, ticketID, rating, feedback); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound(msgFeedbackNotFound, map[string]any{"ticket_id": ticketID})
		}
		return "", err
	}
	return msgFeedbackThanks, nil
}

// unusedTicketID draws candidates until one is not present in the store.
func (s *TicketService) unusedTicketID(ctx context.Context) (string, error) {
	for {
		candidate, err := s.randomTicketID()
		if err != nil {
			return "", err
		}
		exists, err := s.tickets.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		s.logger.Debug("ticket id already taken", zap.String("ticket_id", candidate))
	}
}

func (s *TicketService) randomTicketID() (string, error) {
	alphabet := big.NewInt(int64(len(domain.TicketIDAlphabet)))
	buf := make([]byte, domain.TicketIDLength)
	for i := range buf {
		n, err := rand.Int(s.entropy, alphabet)
		if err != nil {
			return "", fmt.Errorf("generate ticket id: %w", err)
		}
		buf[i] = domain.TicketIDAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
