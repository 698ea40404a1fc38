package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/dto"
)

// AdminHandler exposes the approval console endpoints.
type AdminHandler struct {
	identity  IdentityAPI
	sessions  SessionOpener
	validator *dto.Validator
}

// NewAdminHandler constructs handler.
func NewAdminHandler(identity IdentityAPI, sessions SessionOpener, validator *dto.Validator) *AdminHandler {
	return &AdminHandler{identity: identity, sessions: sessions, validator: validator}
}

// OpenSession handles POST /admin/session.
func (h *AdminHandler) OpenSession(c *fiber.Ctx) error {
	var req dto.AdminSessionRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	token, expiresAt, err := h.sessions.OpenSession(req.AccessCode)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{Token: token, ExpiresAt: expiresAt}})
}

// ListPending handles GET /admin/workers/pending.
func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	accounts, err := h.identity.ListPendingAccounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponses(accounts)})
}

// ListAll handles GET /admin/workers.
func (h *AdminHandler) ListAll(c *fiber.Ctx) error {
	accounts, err := h.identity.ListAllAccounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponses(accounts)})
}

// SetStatus handles POST /admin/workers/:username/status.
func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.ApprovalRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.identity.SetApprovalStatus(c.UserContext(), c.Params("username"), req.Action)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}
