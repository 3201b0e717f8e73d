package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversInSubscriptionOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var order []string
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 1}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	called := false
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketResolved, TicketID: 1}))
	assert.True(t, called)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketApproved, TicketID: 1}))
}
