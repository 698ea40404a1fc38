package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/events"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/notification"
)

// NotificationService turns domain events into emails. Delivery failures are
// logged and never surfaced to the operation that published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	renderer   notification.Renderer
	mailer     notification.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, renderer notification.Renderer, mailer notification.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		renderer:   renderer,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationOtpIssued, n.handleRegistrationOtp)
	n.dispatcher.Subscribe(events.EventPasswordResetOtpIssued, n.handlePasswordResetOtp)
	n.dispatcher.Subscribe(events.EventAccountStatusChanged, n.handleAccountStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
}

func (n *NotificationService) handleRegistrationOtp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OtpIssuedPayload)
	if !ok {
		return n.unexpectedPayload(event)
	}
	msg, err := n.renderer.RegistrationOtp(payload.Email, payload.Code)
	n.deliver(ctx, event, msg, err)
	return nil
}

func (n *NotificationService) handlePasswordResetOtp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OtpIssuedPayload)
	if !ok {
		return n.unexpectedPayload(event)
	}
	msg, err := n.renderer.PasswordResetOtp(payload.Email, payload.Username, payload.Code)
	n.deliver(ctx, event, msg, err)
	return nil
}

func (n *NotificationService) handleAccountStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountStatusChangedPayload)
	if !ok {
		return n.unexpectedPayload(event)
	}
	msg, err := n.renderer.ApprovalDecision(payload.Email, payload.Name, payload.NewStatus)
	n.deliver(ctx, event, msg, err)
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return n.unexpectedPayload(event)
	}
	msg, err := n.renderer.TicketAcknowledgment(payload.ReporterEmail, payload.TicketID, payload.Region, payload.ImageURL)
	n.deliver(ctx, event, msg, err)
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, msg notification.Message, renderErr error) {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject),
	}
	if renderErr != nil {
		n.logger.Warn("notification render failed", append(fields, zap.Error(renderErr))...)
		return
	}
	if msg.To == "" {
		n.logger.Warn("notification skipped: no recipient", fields...)
		return
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Warn("notification delivery failed", append(fields, zap.String("to", msg.To), zap.Error(err))...)
		return
	}
	n.logger.Debug("notification sent", append(fields, zap.String("to", msg.To))...)
}

func (n *NotificationService) unexpectedPayload(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}
