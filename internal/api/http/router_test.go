package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-ticket-service/internal/api/http"
	"github.com/spec-kit/support-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/support-ticket-service/internal/auth"
	"github.com/spec-kit/support-ticket-service/internal/classifier"
	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/events"
	"github.com/spec-kit/support-ticket-service/internal/observability"
	"github.com/spec-kit/support-ticket-service/internal/repository/memory"
	"github.com/spec-kit/support-ticket-service/internal/service"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	app    *fiber.App
	tokens map[string]string
}

func newTestServer(t *testing.T, readiness map[string]handlers.Pinger) *testServer {
	t.Helper()

	store := memory.New()
	users := []domain.User{
		{ID: "cust-1", FullName: "Carla", Role: domain.UserRoleCustomer},
		{ID: "cust-2", FullName: "Diego", Role: domain.UserRoleCustomer},
		{ID: "tech-1", FullName: "Elisa", Role: domain.UserRoleTechnician},
	}
	tm := auth.NewTokenManager("test-secret", time.Hour)
	tokens := make(map[string]string, len(users))
	for _, u := range users {
		store.PutUser(u)
		token, _, err := tm.GenerateToken(u.ID, u.Role)
		require.NoError(t, err)
		tokens[u.ID] = token
	}

	repos := store.Repositories()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	notifications := service.NewNotificationService(service.NotificationDependencies{
		UnitOfWork: store,
		Repos:      repos,
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     logger,
		Metrics:    metrics,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		UnitOfWork: store,
		Repos:      repos,
		Classifier: classifier.NewRuleBased(repos.Articles),
		Notifier:   notifications,
		Logger:     logger,
		Metrics:    metrics,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("support-ticket-service", "test", readiness),
		Tickets:        handlers.NewTicketsHandler(tickets),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		AuthMiddleware: auth.NewAuthMiddleware(tm, repos.Users),
	})
	return &testServer{app: app, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+s.tokens[userID])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	out, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data object in %v", body)
	return out
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		srv := newTestServer(t, nil)
		status, body := srv.do(t, fiber.MethodGet, "/health/live", "", nil)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "alive", body["status"])
	})

	t.Run("ready reports failing dependency", func(t *testing.T) {
		srv := newTestServer(t, map[string]handlers.Pinger{
			"redis":    pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
			"postgres": pingerFunc(func(context.Context) error { return nil }),
			"skipped":  nil,
		})
		status, body := srv.do(t, fiber.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, status)
		details := body["error"].(map[string]any)["details"].(map[string]any)
		assert.Equal(t, "ok", details["postgres"])
		assert.Equal(t, "dial tcp: refused", details["redis"])
		assert.NotContains(t, details, "skipped")
	})
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, nil)
	status, body := srv.do(t, fiber.MethodGet, "/api/tickets", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	status, body := srv.do(t, fiber.MethodGet, "/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := srv.do(t, fiber.MethodPost, "/api/tickets", "cust-1", map[string]any{
		"title":       "VPN down, urgent",
		"description": "cannot reach the office network",
		"attachments": []string{"trace.log"},
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	created := data(t, body)
	id := created["id"].(string)
	assert.Equal(t, "Network", created["category"])
	assert.Equal(t, "Critical", created["priority"])
	assert.Equal(t, "Open", created["status"])
	assert.Equal(t, "cust-1", created["requester_id"])

	status, body = srv.do(t, fiber.MethodGet, "/api/tickets/"+id, "cust-2", nil)
	assert.Equal(t, fiber.StatusNotFound, status, "other customers cannot see the ticket")
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, fiber.MethodPut, "/api/tickets/"+id, "cust-1", map[string]any{"status": "Resolved"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = srv.do(t, fiber.MethodPut, "/api/tickets/"+id, "tech-1", map[string]any{
		"status":      "Resolved",
		"assignee_id": "tech-1",
		"note":        "tunnel restarted",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	resolved := data(t, body)
	assert.Equal(t, "Resolved", resolved["status"])
	assert.NotNil(t, resolved["closed_at"])

	status, body = srv.do(t, fiber.MethodPost, "/api/tickets/"+id+"/reopen", "tech-1", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "REOPEN_NOT_ALLOWED", errorCode(body))

	status, body = srv.do(t, fiber.MethodPost, "/api/tickets/"+id+"/reopen", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status, body)
	reopened := data(t, body)
	assert.Equal(t, "Reopened", reopened["status"])
	assert.NotNil(t, reopened["closed_at"])

	status, body = srv.do(t, fiber.MethodGet, "/api/tickets/"+id+"/history", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	history := body["data"].([]any)
	require.Len(t, history, 3)
	assert.Equal(t, "Reopened", history[0].(map[string]any)["status_snapshot"])
	assert.Equal(t, "Open", history[2].(map[string]any)["status_snapshot"])

	status, body = srv.do(t, fiber.MethodGet, "/api/tickets/"+id+"/attachments", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	attachments := body["data"].([]any)
	require.Len(t, attachments, 1)
	assert.Equal(t, "/attachments/"+id+"/trace.log", attachments[0].(map[string]any)["storage_path"])

	status, body = srv.do(t, fiber.MethodGet, "/api/tickets/unknown/history", "tech-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestListTicketsScopesCustomers(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, user := range []string{"cust-1", "cust-2"} {
		status, _ := srv.do(t, fiber.MethodPost, "/api/tickets", user, map[string]any{"title": "Impressora", "description": "sem toner"})
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body := srv.do(t, fiber.MethodGet, "/api/tickets", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	page := data(t, body)
	assert.EqualValues(t, 1, page["total"])

	status, body = srv.do(t, fiber.MethodGet, "/api/tickets?page_size=1", "tech-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	page = data(t, body)
	assert.EqualValues(t, 2, page["total"])
	assert.Len(t, page["items"], 1)
}

func TestNotificationsOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := srv.do(t, fiber.MethodPost, "/api/notifications", "cust-1", map[string]any{
		"user_id": "cust-2", "message": "hi", "type": "Email",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = srv.do(t, fiber.MethodPost, "/api/notifications", "tech-1", map[string]any{
		"user_id": "cust-1", "message": "maintenance tonight", "type": "Push",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	id := data(t, body)["id"].(string)

	status, body = srv.do(t, fiber.MethodPost, "/api/notifications", "tech-1", map[string]any{
		"user_id": "cust-1", "message": "x", "type": "Pigeon",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = srv.do(t, fiber.MethodGet, "/api/notifications", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	for i := 0; i < 2; i++ {
		status, _ = srv.do(t, fiber.MethodPost, "/api/notifications/"+id+"/read", "cust-1", nil)
		assert.Equal(t, fiber.StatusOK, status)
	}

	status, body = srv.do(t, fiber.MethodGet, "/api/notifications", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])

	status, body = srv.do(t, fiber.MethodGet, "/api/notifications?include_read=true", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = srv.do(t, fiber.MethodPost, "/api/notifications/missing/read", "cust-1", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := srv.do(t, fiber.MethodPost, "/api/notifications", "tech-1", map[string]any{
		"user_id": "cust-1", "message": "your ticket was answered", "type": "Email",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	id := data(t, body)["id"].(string)

	status, body = srv.do(t, fiber.MethodPost, "/api/notifications/"+id+"/read", "cust-2", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = srv.do(t, fiber.MethodGet, "/api/notifications", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1, "still unread for its owner")

	status, _ = srv.do(t, fiber.MethodPost, "/api/notifications/"+id+"/read", "tech-1", nil)
	assert.Equal(t, fiber.StatusOK, status, "staff may mark any notification")

	status, body = srv.do(t, fiber.MethodGet, "/api/notifications", "cust-1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestCreateTicketWithTitleOnly(t *testing.T) {
	srv := newTestServer(t, nil)

	status, body := srv.do(t, fiber.MethodPost, "/api/tickets", "cust-1", map[string]any{"title": "VPN down, urgent"})
	require.Equal(t, fiber.StatusCreated, status, body)
	created := data(t, body)
	assert.Equal(t, "Network", created["category"])
	assert.Equal(t, "Critical", created["priority"])
	assert.Equal(t, "", created["description"])

	status, body = srv.do(t, fiber.MethodPost, "/api/tickets", "cust-1", map[string]any{"title": "  ", "description": "no title"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}
