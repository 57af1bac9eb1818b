package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/notifications"
)

func TestLiveFeedDeliversEvents(t *testing.T) {
	m := NewManager(zap.NewNop(), nil)
	defer m.Close()

	// no subscribers yet
	err := m.Deliver(context.Background(), notifications.ModerationEvent{ProjectID: uuid.New()})
	assert.ErrorIs(t, err, notifications.ErrSkipped)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := m.HandleConnection(w, r, "admin-1")
		require.NoError(t, err)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var hello notifications.WebSocketMessage
	require.NoError(t, client.ReadJSON(&hello))
	assert.Equal(t, notifications.WSMessageTypeConnected, hello.Type)
	assert.Equal(t, 1, m.GetConnectionCount())

	projectID := uuid.New()
	require.NoError(t, m.Deliver(context.Background(), notifications.ModerationEvent{
		Type:      notifications.EventStatusChanged,
		ProjectID: projectID,
		Status:    "approved",
	}))

	var msg notifications.WebSocketMessage
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, notifications.WSMessageTypeModeration, msg.Type)
	assert.Contains(t, string(msg.Data), projectID.String())
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://admin.example"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://admin.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))
}

func TestOriginCheckerWithoutAllowList(t *testing.T) {
	check := originChecker(nil)

	r := httptest.NewRequest(http.MethodGet, "http://portal.example/api/v1/admin/events", nil)
	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r), "cross-origin upgrades need an allow-list")

	r.Header.Set("Origin", "http://portal.example")
	assert.True(t, check(r))

	r.Header.Del("Origin")
	assert.True(t, check(r))
}
