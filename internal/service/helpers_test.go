package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-ticket-service/internal/classifier"
	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/events"
	"github.com/spec-kit/support-ticket-service/internal/observability"
	"github.com/spec-kit/support-ticket-service/internal/repository/memory"
	"github.com/spec-kit/support-ticket-service/internal/service"
	"github.com/spec-kit/support-ticket-service/pkg/util/clock"
)

var t0 = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by a test and the services it drives.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	ctx           context.Context
	clock         *testClock
	store         *memory.Store
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logs          *observer.ObservedLogs
	tickets       *service.TicketService
	notifications *service.NotificationService
}

type fixtureOption func(*service.TicketDependencies)

func withNotifier(n service.Notifier) fixtureOption {
	return func(d *service.TicketDependencies) { d.Notifier = n }
}

func withClassifier(c service.Classifier) fixtureOption {
	return func(d *service.TicketDependencies) { d.Classifier = c }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	store := memory.New()
	store.PutUser(domain.User{ID: "requester-1", FullName: "Ana Souza", Role: domain.UserRoleCustomer})
	store.PutUser(domain.User{ID: "tech-1", FullName: "Bruno Lima", Role: domain.UserRoleTechnician})

	clk := &testClock{now: t0}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	repos := store.Repositories()

	notifications := service.NewNotificationService(service.NotificationDependencies{
		UnitOfWork: store,
		Repos:      repos,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	deps := service.TicketDependencies{
		UnitOfWork: store,
		Repos:      repos,
		Classifier: classifier.NewRuleBased(repos.Articles),
		Notifier:   notifications,
		Logger:     logger,
		Metrics:    metrics,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &fixture{
		ctx:           clock.With(context.Background(), clk.Now),
		clock:         clk,
		store:         store,
		dispatcher:    dispatcher,
		metrics:       metrics,
		logs:          logs,
		tickets:       service.NewTicketService(deps),
		notifications: notifications,
	}
}

func (f *fixture) createTicket(t *testing.T, input service.TicketCreateInput) *domain.Ticket {
	t.Helper()
	if input.RequesterID == "" {
		input.RequesterID = "requester-1"
	}
	if input.Title == "" {
		input.Title = "Monitor piscando"
	}
	ticket, err := f.tickets.CreateTicket(f.ctx, input)
	require.NoError(t, err)
	return ticket
}

func (f *fixture) history(t *testing.T, ticketID string) []domain.TicketHistory {
	t.Helper()
	entries, err := f.tickets.GetTicketHistory(f.ctx, ticketID)
	require.NoError(t, err)
	return entries
}

func (f *fixture) allNotifications(t *testing.T, userID string) []domain.Notification {
	t.Helper()
	list, err := f.notifications.ListUserNotifications(f.ctx, userID, true)
	require.NoError(t, err)
	return list
}

func ptr[T any](v T) *T {
	return &v
}
