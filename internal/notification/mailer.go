package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/config"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the mailer selected by NOTIFY_PROVIDER.
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) (Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "log":
		logger.Warn("NOTIFY_PROVIDER is log; emails are logged, not delivered")
		return NewLogMailer(logger), nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.EmailFrom == "" {
			return nil, fmt.Errorf("smtp mailer requires SMTP_HOST and NOTIFY_EMAIL_FROM")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" || cfg.EmailFrom == "" {
			return nil, fmt.Errorf("sendgrid mailer requires SENDGRID_API_KEY and NOTIFY_EMAIL_FROM")
		}
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.SendGridSandbox), nil
	default:
		return nil, fmt.Errorf("unknown notification provider %q", cfg.Provider)
	}
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from, msg.FromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    string
	sandbox bool
}

func NewSendGridMailer(apiKey, from string, sandbox bool) *SendGridMailer {
	return &SendGridMailer{
		client:  sendgrid.NewSendClient(apiKey),
		from:    from,
		sandbox: sandbox,
	}
}

func (m *SendGridMailer) build(msg Message) *mail.SGMailV3 {
	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail(msg.FromName, m.from))
	v3.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	v3.AddPersonalizations(p)
	v3.AddContent(mail.NewContent("text/plain", msg.Body))

	if m.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		v3.MailSettings = ms
	}
	return v3
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.SendWithContext(ctx, m.build(msg))
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", msg.To, resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Bodies
// carry one-time codes, so they are only written at debug level.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("from_name", msg.FromName),
		zap.String("subject", msg.Subject),
	}
	m.logger.Info("email", fields...)
	m.logger.Debug("email body", append(fields, zap.String("body", msg.Body))...)
	return nil
}
