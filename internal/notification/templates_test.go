package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

var renderer = Renderer{
	WorkerSender:  "Waste Reporting & Redressal System",
	CitizenSender: "Smart Waste Report Management App",
	AdminContact:  "admin@city.gov",
	OtpValidity:   10,
}

func TestRegistrationOtp(t *testing.T) {
	msg, err := renderer.RegistrationOtp("a@x.com", "482913")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, "OTP Verification – Waste Reporting & Redressal System", msg.Subject)
	assert.Contains(t, msg.Body, "\n\n482913\n\n")
	assert.Contains(t, msg.Body, "valid for 10 minutes")
	assert.Equal(t, renderer.WorkerSender, msg.FromName)
}

func TestPasswordResetOtpGreetsUsername(t *testing.T) {
	msg, err := renderer.PasswordResetOtp("a@x.com", "alice", "123456")
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "Hello alice,")
	assert.Contains(t, msg.Body, "123456")
	assert.Equal(t, "Password Reset OTP – Waste Reporting & Redressal System", msg.Subject)
}

func TestApprovalDecision(t *testing.T) {
	approved, err := renderer.ApprovalDecision("a@x.com", "Alice", domain.AccountStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "Worker Profile Approved – Waste Reporting & Redressal System", approved.Subject)
	assert.Contains(t, approved.Body, "Hello Alice,")
	assert.Contains(t, approved.Body, "APPROVED")
	assert.NotContains(t, approved.Body, "admin@city.gov")

	rejected, err := renderer.ApprovalDecision("a@x.com", "Alice", domain.AccountStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, "Worker Profile Rejected – Waste Reporting & Redressal System", rejected.Subject)
	assert.Contains(t, rejected.Body, "Email: admin@city.gov")

	_, err = renderer.ApprovalDecision("a@x.com", "Alice", domain.AccountStatusPending)
	assert.Error(t, err)
}

func TestRejectedWithoutAdminContact(t *testing.T) {
	r := renderer
	r.AdminContact = ""

	msg, err := r.ApprovalDecision("a@x.com", "Alice", domain.AccountStatusRejected)
	require.NoError(t, err)
	assert.NotContains(t, msg.Body, "Email:")
}

func TestTicketAcknowledgment(t *testing.T) {
	msg, err := renderer.TicketAcknowledgment("c@x.com", "AB12CD34", "North", "http://files/a.png")
	require.NoError(t, err)

	assert.Equal(t, "Waste Issue Registered – Ticket ID: AB12CD34", msg.Subject)
	assert.Contains(t, msg.Body, "Ticket ID: AB12CD34\nRegion: North\nSubmitted Image: http://files/a.png")
	assert.Equal(t, renderer.CitizenSender, msg.FromName)
}

func TestTemplatesDoNotEscape(t *testing.T) {
	msg, err := renderer.TicketAcknowledgment("c@x.com", "AB12CD34", "R&D <block>", "http://files/a.png?x=1&y=2")
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Region: R&D <block>")
	assert.Contains(t, msg.Body, "x=1&y=2")
}
