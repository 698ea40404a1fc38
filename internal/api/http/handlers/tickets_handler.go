package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/dto"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/service"
)

// TicketsHandler manages citizen ticket endpoints.
type TicketsHandler struct {
	tickets   TicketAPI
	validator *dto.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets TicketAPI, validator *dto.Validator) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, validator: validator}
}

// RaiseIssue POST /tickets.
func (h *TicketsHandler) RaiseIssue(c *fiber.Ctx) error {
	var req dto.RaiseIssueRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	image, err := readUpload(c, "image")
	if err != nil {
		return err
	}

	ticket, msg, err := h.tickets.RaiseIssue(c.UserContext(), service.TicketReport{
		ReporterName:  strings.TrimSpace(req.Name),
		ReporterEmail: strings.TrimSpace(req.Email),
		ReporterPhone: strings.TrimSpace(req.Mobile),
		Region:        strings.TrimSpace(req.Region),
		Latitude:      strings.TrimSpace(req.Latitude),
		Longitude:     strings.TrimSpace(req.Longitude),
		Description:   req.Description,
		Image:         image,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.RaiseIssueResponse{TicketID: ticket.TicketID, Message: msg}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// SubmitFeedback POST /tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.tickets.SubmitFeedback(c.UserContext(), c.Params("id"), req.Rating, strings.TrimSpace(req.Feedback))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}
