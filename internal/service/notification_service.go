package service

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/events"
	"github.com/zetsuserv/support-portal/internal/notify"
)

// NotificationService turns domain events into outbound email. Delivery is
// best-effort; a failed send is logged and never propagated back into the
// ticket flow that published the event.
type NotificationService struct {
	sender  notify.Sender
	adminTo string
	logger  *zap.Logger
}

// NewNotificationService constructs the service. adminTo may be empty, in
// which case the new-ticket operator notification is skipped.
func NewNotificationService(sender notify.Sender, adminTo string, logger *zap.Logger) *NotificationService {
	return &NotificationService{sender: sender, adminTo: adminTo, logger: logger}
}

// Register subscribes the email handlers on the event bus.
func (s *NotificationService) Register(bus events.Dispatcher) {
	bus.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	bus.Subscribe(events.EventTicketReplied, s.onTicketReplied)
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}

	if s.adminTo != "" {
		subject := fmt.Sprintf("New support ticket: %s", payload.IssueType)
		body := fmt.Sprintf(`<p>A new ticket was submitted.</p>
<p><b>From:</b> %s (%s)<br>
<b>Issue:</b> %s<br>
<b>Priority:</b> %s</p>
<p>%s</p>`,
			html.EscapeString(payload.RequesterName),
			html.EscapeString(payload.RequesterEmail),
			html.EscapeString(string(payload.IssueType)),
			html.EscapeString(string(payload.Priority)),
			html.EscapeString(payload.MessagePreview))
		if err := s.sender.Send(ctx, s.adminTo, subject, body); err != nil {
			s.logger.Warn("admin notification failed",
				zap.String("ticket_id", event.TicketID), zap.Error(err))
		}
	}

	confirmBody := fmt.Sprintf(`<p>Dear %s,</p>
<p>We received your request and our team will get back to you shortly.</p>
<p><b>Issue:</b> %s</p>`,
		html.EscapeString(payload.RequesterName),
		html.EscapeString(string(payload.IssueType)))
	if err := s.sender.Send(ctx, payload.RequesterEmail, "We received your support request", confirmBody); err != nil {
		s.logger.Warn("requester confirmation failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
	return nil
}

func (s *NotificationService) onTicketReplied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRepliedPayload)
	if !ok {
		return nil
	}
	body := fmt.Sprintf(`<p>Dear %s,</p>
<p>Our support team replied to your ticket:</p>
<blockquote>%s</blockquote>
<p>Sign in to the portal to view the full conversation.</p>`,
		html.EscapeString(payload.RequesterName),
		html.EscapeString(payload.BodyPreview))
	if err := s.sender.Send(ctx, payload.RequesterEmail, "Your support ticket has a new reply", body); err != nil {
		s.logger.Warn("reply notification failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
	return nil
}
