package service

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/events"
	"github.com/zetsuserv/support-portal/internal/notify"
	"github.com/zetsuserv/support-portal/internal/observability"
	"github.com/zetsuserv/support-portal/internal/repository"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// BroadcastService manages the newsletter list and batch sends.
type BroadcastService struct {
	subscribers repository.SubscriberRepository
	dispatcher  *notify.BatchDispatcher
	sender      notify.Sender
	bus         events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// BroadcastDependencies bundles collaborators for BroadcastService.
type BroadcastDependencies struct {
	SubscriberRepo repository.SubscriberRepository
	Dispatcher     *notify.BatchDispatcher
	Sender         notify.Sender
	Bus            events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewBroadcastService constructs the service.
func NewBroadcastService(deps BroadcastDependencies) *BroadcastService {
	return &BroadcastService{
		subscribers: deps.SubscriberRepo,
		dispatcher:  deps.Dispatcher,
		sender:      deps.Sender,
		bus:         deps.Bus,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// Subscribe adds an address to the newsletter list. Re-subscribing an existing
// address is a no-op rather than an error.
func (s *BroadcastService) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}
	subscriber := &domain.Subscriber{Email: email}
	if err := s.subscribers.Create(ctx, subscriber); err != nil {
		return nil, err
	}
	return subscriber, nil
}

// SendNewsletter delivers the message to every subscriber in paced batches and
// returns per-run counts. Individual delivery failures are counted, not fatal.
func (s *BroadcastService) SendNewsletter(ctx context.Context, adminID, subject, body string) (notify.BroadcastSummary, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return notify.BroadcastSummary{}, apperrors.NewValidationError("subject required", nil)
	}
	if strings.TrimSpace(body) == "" {
		return notify.BroadcastSummary{}, apperrors.NewValidationError("body required", nil)
	}

	recipients, err := s.subscribers.ListEmails(ctx)
	if err != nil {
		return notify.BroadcastSummary{}, err
	}

	htmlBody := newsletterBody(body)
	summary := s.dispatcher.Dispatch(ctx, recipients, func(ctx context.Context, recipient string) error {
		return s.sender.Send(ctx, recipient, subject, htmlBody)
	})
	s.metrics.RecordBroadcastSends(summary.Succeeded)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBroadcastCompleted,
			Actor:     adminActor(adminID),
			Timestamp: time.Now(),
			Payload: events.BroadcastCompletedPayload{
				Subject:   subject,
				Attempted: summary.Attempted,
				Succeeded: summary.Succeeded,
				Failed:    summary.Failed,
			},
		})
	}
	return summary, nil
}

func newsletterBody(body string) string {
	paragraphs := strings.Split(body, "\n")
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	b.WriteString(`<hr><p style="font-size: 12px; color: #666;">ZetsuServ Support Portal</p></body></html>`)
	return b.String()
}
