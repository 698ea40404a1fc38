package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

// Message is a rendered plain-text email.
type Message struct {
	To       string
	FromName string
	Subject  string
	Body     string
}

const signatureWorkers = "Regards,\nWaste Reporting & Redressal System\nWorker Registration Department & Team"

const signatureOperations = "Regards,\nWaste Reporting & Redressal System\nKolkata Municipal Operations Team"

var (
	registrationOtpBody = template.Must(template.New("registration_otp").Parse(
		"Hello,\n\n" +
			"You have initiated worker registration for the Waste Reporting & Redressal System.\n\n" +
			"Your One-Time Password (OTP) is:\n\n" +
			"{{.Code}}\n\n" +
			"This OTP is valid for {{.ValidMinutes}} minutes. Please do not share it with anyone.\n\n" +
			"If you did not initiate this request, you can safely ignore this email.\n\n" +
			signatureWorkers))

	passwordResetOtpBody = template.Must(template.New("password_reset_otp").Parse(
		"Hello {{.Username}},\n\n" +
			"A password reset request was initiated for your worker account on the Waste Reporting & Redressal System.\n\n" +
			"Your One-Time Password (OTP) is:\n\n" +
			"{{.Code}}\n\n" +
			"This OTP is valid for {{.ValidMinutes}} minutes. Please do not share it with anyone.\n\n" +
			"If you did not request a password reset, you can safely ignore this email.\n\n" +
			signatureWorkers))

	approvedBody = template.Must(template.New("account_approved").Parse(
		"Hello {{.Name}},\n\n" +
			"We are pleased to inform you that your worker profile has been APPROVED after verification.\n\n" +
			"You are now authorized to participate in municipal waste reporting and redressal operations.\n\n" +
			"Please ensure compliance with operational guidelines and maintain service integrity at all times.\n\n" +
			signatureOperations))

	rejectedBody = template.Must(template.New("account_rejected").Parse(
		"Hello {{.Name}},\n\n" +
			"After careful review, your worker profile has been REJECTED.\n\n" +
			"This may be due to incomplete or unverifiable information provided during registration.\n\n" +
			"{{if .AdminContact}}For clarification or further assistance, you may contact the administrator directly:\n\n" +
			"Email: {{.AdminContact}}\n\n{{end}}" +
			signatureOperations))

	ticketAckBody = template.Must(template.New("ticket_ack").Parse(
		"Hello,\n\n" +
			"Your waste issue has been successfully registered in the Smart Waste Report Management App.\n\n" +
			"Ticket Details:\n" +
			"Ticket ID: {{.TicketID}}\n" +
			"Region: {{.Region}}\n" +
			"Submitted Image: {{.ImageURL}}\n\n" +
			"Our team will review the issue and take appropriate action at the earliest.\n" +
			"You can use the Ticket ID to track the status of your complaint.\n\n" +
			"Regards,\nSmart Waste Report Management App\nCitizen Support Team"))
)

// Renderer turns lifecycle facts into messages. It performs no I/O.
type Renderer struct {
	WorkerSender  string
	CitizenSender string
	AdminContact  string
	OtpValidity   int
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// RegistrationOtp renders the worker registration code email.
func (r Renderer) RegistrationOtp(email, code string) (Message, error) {
	body, err := execute(registrationOtpBody, map[string]any{
		"Code":         code,
		"ValidMinutes": r.OtpValidity,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       email,
		FromName: r.WorkerSender,
		Subject:  "OTP Verification – Waste Reporting & Redressal System",
		Body:     body,
	}, nil
}

// PasswordResetOtp renders the password reset code email.
func (r Renderer) PasswordResetOtp(email, username, code string) (Message, error) {
	body, err := execute(passwordResetOtpBody, map[string]any{
		"Username":     username,
		"Code":         code,
		"ValidMinutes": r.OtpValidity,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       email,
		FromName: r.WorkerSender,
		Subject:  "Password Reset OTP – Waste Reporting & Redressal System",
		Body:     body,
	}, nil
}

// ApprovalDecision renders the decision email for an APPROVED or REJECTED account.
func (r Renderer) ApprovalDecision(email, name string, status domain.AccountStatus) (Message, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch status {
	case domain.AccountStatusApproved:
		tmpl = approvedBody
		subject = "Worker Profile Approved – Waste Reporting & Redressal System"
	case domain.AccountStatusRejected:
		tmpl = rejectedBody
		subject = "Worker Profile Rejected – Waste Reporting & Redressal System"
	default:
		return Message{}, fmt.Errorf("no decision template for status %q", status)
	}

	body, err := execute(tmpl, map[string]any{
		"Name":         name,
		"AdminContact": r.AdminContact,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: email, FromName: r.WorkerSender, Subject: subject, Body: body}, nil
}

// TicketAcknowledgment renders the citizen receipt for a new ticket.
func (r Renderer) TicketAcknowledgment(email, ticketID, region, imageURL string) (Message, error) {
	body, err := execute(ticketAckBody, map[string]any{
		"TicketID": ticketID,
		"Region":   region,
		"ImageURL": imageURL,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       email,
		FromName: r.CitizenSender,
		Subject:  "Waste Issue Registered – Ticket ID: " + ticketID,
		Body:     body,
	}, nil
}
