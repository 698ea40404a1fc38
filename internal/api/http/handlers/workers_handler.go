package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/api/dto"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/service"
	apperrors "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/pkg/util/errorutil"
)

// WorkersHandler exposes worker onboarding and credential endpoints.
type WorkersHandler struct {
	identity  IdentityAPI
	validator *dto.Validator
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(identity IdentityAPI, validator *dto.Validator) *WorkersHandler {
	return &WorkersHandler{identity: identity, validator: validator}
}

// RequestOtp handles POST /workers/otp.
func (h *WorkersHandler) RequestOtp(c *fiber.Ctx) error {
	var req dto.OtpRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.identity.RequestRegistrationOtp(c.UserContext(), strings.TrimSpace(req.Email))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}

// VerifyOtp handles POST /workers/otp/verify.
func (h *WorkersHandler) VerifyOtp(c *fiber.Ctx) error {
	var req dto.OtpVerifyRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.identity.VerifyRegistrationOtp(c.UserContext(), strings.TrimSpace(req.Email), req.Code)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}

// UsernameAvailable handles GET /workers/username-available.
func (h *WorkersHandler) UsernameAvailable(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		return apperrors.NewValidationError("invalid request", map[string]any{"username": "is required"})
	}
	available, err := h.identity.CheckUsernameAvailable(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsernameAvailabilityResponse{Username: username, Available: available}})
}

// Register handles POST /workers.
func (h *WorkersHandler) Register(c *fiber.Ctx) error {
	var req dto.WorkerRegisterRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	image, err := readUpload(c, "id_card_image")
	if err != nil {
		return err
	}

	msg, err := h.identity.CreateAccount(c.UserContext(), service.RegistrationInput{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Region:       strings.TrimSpace(req.Region),
		Username:     strings.TrimSpace(req.Username),
		Password:     req.Password,
		IDCardNumber: strings.TrimSpace(req.IDCardNumber),
		IDCardImage:  image,
	})
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusCreated, msg)
}

// Login handles POST /workers/login.
func (h *WorkersHandler) Login(c *fiber.Ctx) error {
	var req dto.WorkerLoginRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.identity.Authenticate(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewLoginResponse(result)})
}

// RequestPasswordOtp handles POST /workers/password/otp.
func (h *WorkersHandler) RequestPasswordOtp(c *fiber.Ctx) error {
	var req dto.OtpRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.identity.RequestPasswordResetOtp(c.UserContext(), strings.TrimSpace(req.Email))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}

// VerifyPasswordOtp handles POST /workers/password/otp/verify.
func (h *WorkersHandler) VerifyPasswordOtp(c *fiber.Ctx) error {
	var req dto.OtpVerifyRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.identity.VerifyPasswordResetOtp(c.UserContext(), strings.TrimSpace(req.Email), req.Code)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}

// ChangePassword handles POST /workers/password.
func (h *WorkersHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	msg, err := h.identity.ChangePassword(c.UserContext(), strings.TrimSpace(req.Email), req.NewPassword)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, msg)
}
