package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t-1"})

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "t-1", got[0].TicketID)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	d.Subscribe(EventTicketClosed, func(context.Context, Event) error {
		t.Fatal("handler for other type must not fire")
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventTicketReplied, func(context.Context, Event) error {
		calls++
		return errors.New("handler failed")
	})
	d.Subscribe(EventTicketReplied, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketReplied})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}
