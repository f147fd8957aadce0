package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-ticket-service/internal/events"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	ctx := context.Background()
	d := events.NewInMemoryDispatcher()
	first := errors.New("first failed")

	var calls []string
	d.Subscribe(events.EventNotificationCreated, func(context.Context, events.Event) error {
		calls = append(calls, "a")
		return first
	})
	d.Subscribe(events.EventNotificationCreated, func(context.Context, events.Event) error {
		calls = append(calls, "b")
		return nil
	})

	err := d.Publish(ctx, events.Event{Type: events.EventNotificationCreated})
	require.ErrorIs(t, err, first)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), events.Event{Type: "unknown"}))
}
