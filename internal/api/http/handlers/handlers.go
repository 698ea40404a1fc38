package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/service"
)

// IdentityAPI is the worker and admin surface of the identity service.
type IdentityAPI interface {
	RequestRegistrationOtp(ctx context.Context, email string) (string, error)
	VerifyRegistrationOtp(ctx context.Context, email, code string) (string, error)
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, input service.RegistrationInput) (string, error)
	Authenticate(ctx context.Context, identifier, password string) (domain.AuthResult, error)
	RequestPasswordResetOtp(ctx context.Context, email string) (string, error)
	VerifyPasswordResetOtp(ctx context.Context, email, code string) (string, error)
	ChangePassword(ctx context.Context, email, newPassword string) (string, error)
	ListPendingAccounts(ctx context.Context) ([]domain.Account, error)
	ListAllAccounts(ctx context.Context) ([]domain.Account, error)
	SetApprovalStatus(ctx context.Context, username, action string) (string, error)
}

// TicketAPI is the citizen surface of the ticket service.
type TicketAPI interface {
	RaiseIssue(ctx context.Context, report service.TicketReport) (*domain.Ticket, string, error)
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	SubmitFeedback(ctx context.Context, ticketID string, rating int, feedback string) (string, error)
}

// SessionOpener exchanges an access code for a session token.
type SessionOpener interface {
	OpenSession(candidate string) (string, time.Time, error)
}

var (
	_ IdentityAPI = (*service.IdentityService)(nil)
	_ TicketAPI   = (*service.TicketService)(nil)
)

// readUpload loads a multipart file part. A missing part yields an empty
// upload so the service reports it with its own message.
func readUpload(c *fiber.Ctx, field string) (service.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return service.Upload{}, nil
	}
	file, err := header.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, err
	}
	return service.Upload{Name: header.Filename, Data: data}, nil
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"data": fiber.Map{"message": message}})
}
