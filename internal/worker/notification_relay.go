// Package worker hands persisted notifications to downstream transports.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-ticket-service/internal/config"
	"github.com/spec-kit/support-ticket-service/internal/events"
	"github.com/spec-kit/support-ticket-service/internal/observability"
)

// EventRelayed is the metrics event counted per relayed notification.
const EventRelayed = "notification_relayed"

// Publisher sends a payload on a named channel. persistence.Redis satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationRelay forwards notification events to a pub/sub channel
// where email and push transports consume them. Events are handled on the
// caller's goroutine, so each publish is capped by timeout.
type NotificationRelay struct {
	publisher Publisher
	channel   string
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewNotificationRelay constructs the relay from the notification settings.
// A zero RelayTimeout leaves the caller's deadline in charge.
func NewNotificationRelay(publisher Publisher, cfg config.NotificationConfig, logger *zap.Logger, metrics *observability.Metrics) *NotificationRelay {
	return &NotificationRelay{
		publisher: publisher,
		channel:   cfg.RelayChannel,
		timeout:   cfg.RelayTimeout,
		logger:    observability.OrNop(logger),
		metrics:   metrics,
	}
}

// Register subscribes the relay to notification events.
func (r *NotificationRelay) Register(dispatcher events.Dispatcher) {
	if r == nil || dispatcher == nil || r.publisher == nil {
		return
	}
	dispatcher.Subscribe(events.EventNotificationCreated, r.Handle)
}

// Handle publishes one event as JSON.
func (r *NotificationRelay) Handle(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.publisher.Publish(ctx, r.channel, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	r.metrics.RecordEvent(EventRelayed)
	r.logger.Debug("notification relayed",
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("channel", r.channel))
	return nil
}
