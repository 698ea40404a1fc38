package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	apperrors "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/pkg/util/errorutil"
)

// RequireSubject ensures the principal was issued to the given subject type.
func RequireSubject(subjectType domain.SubjectType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.SubjectType != subjectType {
			return apperrors.NewForbidden("insufficient privileges")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds an admin console session.
func RequireAdmin() fiber.Handler {
	return RequireSubject(domain.SubjectTypeAdmin)
}
