package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Exists(ctx context.Context, ticketID string) (bool, error)
	GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	UpdateFeedback(ctx context.Context, ticketID string, rating int, feedback string) error
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, created_at, reporter_name, reporter_email, reporter_phone, region,
            latitude, longitude, image_url, description, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.db.Exec(ctx, query,
		ticket.TicketID,
		ticket.CreatedAt,
		ticket.ReporterName,
		ticket.ReporterEmail,
		ticket.ReporterPhone,
		ticket.Region,
		ticket.Latitude,
		ticket.Longitude,
		ticket.ImageURL,
		ticket.Description,
		ticket.Status,
	)
	return wrapUniqueViolation(err)
}

func (r *ticketRepository) Exists(ctx context.Context, ticketID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_id=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `
        SELECT ticket_id, created_at, reporter_name, reporter_email, reporter_phone, region,
               latitude, longitude, image_url, description, status,
               completion_image_url, workers_involved, completed_at, rating, rating_feedback
        FROM tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&ticket.TicketID,
		&ticket.CreatedAt,
		&ticket.ReporterName,
		&ticket.ReporterEmail,
		&ticket.ReporterPhone,
		&ticket.Region,
		&ticket.Latitude,
		&ticket.Longitude,
		&ticket.ImageURL,
		&ticket.Description,
		&ticket.Status,
		&ticket.CompletionImageURL,
		&ticket.WorkersInvolved,
		&ticket.CompletedAt,
		&ticket.Rating,
		&ticket.RatingFeedback,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateFeedback overwrites the rating columns. Returns pgx.ErrNoRows when the ticket is missing.
func (r *ticketRepository) UpdateFeedback(ctx context.Context, ticketID string, rating int, feedback string) error {
	const query = `UPDATE tickets SET rating=$1, rating_feedback=$2 WHERE ticket_id=$3`
	cmd, err := r.db.Exec(ctx, query, rating, feedback, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
