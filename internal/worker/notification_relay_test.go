package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-ticket-service/internal/config"
	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/events"
	"github.com/spec-kit/support-ticket-service/internal/observability"
	"github.com/spec-kit/support-ticket-service/internal/worker"
)

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{channel: channel, payload: payload})
	return nil
}

func notificationEvent() events.Event {
	ticketID := "t-1"
	return events.Event{
		ID:        "evt-1",
		Type:      events.EventNotificationCreated,
		TicketID:  ticketID,
		Timestamp: time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC),
		Payload: events.NotificationCreatedPayload{
			NotificationID: "n-1",
			UserID:         "u-1",
			Message:        "ticket opened and awaiting attention",
			Type:           domain.NotificationTypeSystem,
			TicketID:       &ticketID,
		},
	}
}

func TestNotificationRelayPublishesJSON(t *testing.T) {
	publisher := &fakePublisher{}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.NewNotificationRelay(publisher, config.NotificationConfig{RelayChannel: "support:notifications"}, nil, metrics).Register(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), notificationEvent()))
	require.Len(t, publisher.sent, 1)
	assert.Equal(t, "support:notifications", publisher.sent[0].channel)

	var decoded struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Payload struct {
			NotificationID string `json:"notification_id"`
			UserID         string `json:"user_id"`
			Type           string `json:"type"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(publisher.sent[0].payload, &decoded))
	assert.Equal(t, "evt-1", decoded.ID)
	assert.Equal(t, "notification_created", decoded.Type)
	assert.Equal(t, "n-1", decoded.Payload.NotificationID)
	assert.Equal(t, "u-1", decoded.Payload.UserID)
	assert.Equal(t, "System", decoded.Payload.Type)
	assert.EqualValues(t, 1, metrics.EventCount(worker.EventRelayed))
}

func TestNotificationRelayReportsPublishFailure(t *testing.T) {
	boom := errors.New("redis unreachable")
	relay := worker.NewNotificationRelay(&fakePublisher{err: boom}, config.NotificationConfig{RelayChannel: "ch"}, nil, nil)

	err := relay.Handle(context.Background(), notificationEvent())
	require.ErrorIs(t, err, boom)
}

// stalledPublisher blocks until its context ends, like a dial to a dead Redis.
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotificationRelayBoundsPublish(t *testing.T) {
	relay := worker.NewNotificationRelay(stalledPublisher{}, config.NotificationConfig{
		RelayChannel: "ch",
		RelayTimeout: 20 * time.Millisecond,
	}, nil, nil)

	start := time.Now()
	err := relay.Handle(context.Background(), notificationEvent())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
