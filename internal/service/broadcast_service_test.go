package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/events"
	"github.com/zetsuserv/support-portal/internal/notify"
	"github.com/zetsuserv/support-portal/internal/observability"
)

type fakeSubscriberRepo struct {
	emails []string
	err    error
}

func (r *fakeSubscriberRepo) Create(_ context.Context, subscriber *domain.Subscriber) error {
	subscriber.ID = "s-1"
	r.emails = append(r.emails, subscriber.Email)
	return nil
}

func (r *fakeSubscriberRepo) ListEmails(context.Context) ([]string, error) {
	return r.emails, r.err
}

func newBroadcastFixture(subscribers *fakeSubscriberRepo, sender *fakeSender, bus *recordingBus) *BroadcastService {
	logger := zap.NewNop()
	return NewBroadcastService(BroadcastDependencies{
		SubscriberRepo: subscribers,
		Dispatcher:     notify.NewBatchDispatcher(2, time.Duration(0), logger),
		Sender:         sender,
		Bus:            bus,
		Metrics:        observability.NewMetrics(),
		Logger:         logger,
	})
}

func TestSubscribeValidatesEmail(t *testing.T) {
	svc := newBroadcastFixture(&fakeSubscriberRepo{}, &fakeSender{}, &recordingBus{})

	_, err := svc.Subscribe(context.Background(), "not-an-email")
	assert.Error(t, err)

	sub, err := svc.Subscribe(context.Background(), "  Reader@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)
}

func TestSendNewsletterValidation(t *testing.T) {
	svc := newBroadcastFixture(&fakeSubscriberRepo{}, &fakeSender{}, &recordingBus{})

	_, err := svc.SendNewsletter(context.Background(), "a-1", "  ", "body")
	assert.Error(t, err)

	_, err = svc.SendNewsletter(context.Background(), "a-1", "subject", "")
	assert.Error(t, err)
}

func TestSendNewsletterReportsCountsAndEvent(t *testing.T) {
	subscribers := &fakeSubscriberRepo{
		emails: []string{"a@example.com", "b@example.com", "c@example.com"},
	}
	sender := &fakeSender{}
	bus := &recordingBus{}
	svc := newBroadcastFixture(subscribers, sender, bus)

	summary, err := svc.SendNewsletter(context.Background(), "a-1", "News", "Hello\n\nWorld")

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[0].body, "<p>Hello</p>")

	completed := bus.byType(events.EventBroadcastCompleted)
	require.Len(t, completed, 1)
	payload := completed[0].Payload.(events.BroadcastCompletedPayload)
	assert.Equal(t, "News", payload.Subject)
	assert.Equal(t, 3, payload.Succeeded)
}

func TestSendNewsletterCountsFailures(t *testing.T) {
	subscribers := &fakeSubscriberRepo{
		emails: []string{"a@example.com", "b@example.com"},
	}
	sender := &fakeSender{err: errors.New("smtp refused")}
	svc := newBroadcastFixture(subscribers, sender, &recordingBus{})

	summary, err := svc.SendNewsletter(context.Background(), "a-1", "News", "body")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
}

func TestSendNewsletterListFailure(t *testing.T) {
	subscribers := &fakeSubscriberRepo{err: errors.New("db down")}
	svc := newBroadcastFixture(subscribers, &fakeSender{}, &recordingBus{})

	_, err := svc.SendNewsletter(context.Background(), "a-1", "News", "body")
	assert.Error(t, err)
}
