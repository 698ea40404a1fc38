package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	apperrors "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/pkg/util/errorutil"
)

const adminSubjectID = "admin"

// AdminGate exchanges the shared console access code for a session token.
type AdminGate struct {
	code   string
	tokens *TokenManager
}

func NewAdminGate(code string, tokens *TokenManager) *AdminGate {
	return &AdminGate{code: code, tokens: tokens}
}

// OpenSession returns a signed admin token when candidate equals the access
// code. An unconfigured code never opens a session.
func (g *AdminGate) OpenSession(candidate string) (string, time.Time, error) {
	candidate = strings.TrimSpace(candidate)
	if g.code == "" || subtle.ConstantTimeCompare([]byte(candidate), []byte(g.code)) != 1 {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid access code")
	}
	token, expiresAt, err := g.tokens.GenerateToken(adminSubjectID, domain.SubjectTypeAdmin)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, expiresAt, nil
}
