package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/notifications"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Manager runs the admin live moderation feed.
type Manager struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID          string
	UserID      string
	Conn        *websocket.Conn
	Send        chan notifications.WebSocketMessage
	ConnectedAt time.Time
}

// Hub owns the set of connections. Only the hub goroutine closes Send.
type Hub struct {
	connections map[*Connection]bool
	broadcast   chan notifications.WebSocketMessage
	register    chan *Connection
	unregister  chan *Connection
	stop        chan struct{}
	count       atomic.Int64
	logger      *zap.Logger
}

// NewManager creates a new WebSocket manager. Browsers may connect from the
// API's own origin or from one of allowedOrigins.
func NewManager(logger *zap.Logger, allowedOrigins []string) *Manager {
	hub := &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan notifications.WebSocketMessage, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		stop:        make(chan struct{}),
		logger:      logger,
	}

	go hub.run()

	return &Manager{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker accepts same-origin upgrades, listed origins, and clients
// that send no Origin at all (browsers always do).
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// HandleConnection upgrades the request and subscribes it to the feed.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		Conn:        conn,
		Send:        make(chan notifications.WebSocketMessage, 64),
		ConnectedAt: time.Now(),
	}

	select {
	case m.hub.register <- connection:
	case <-m.hub.stop:
		conn.Close()
		return nil, fmt.Errorf("live feed is shut down")
	}

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// readPump only drains control frames; the feed is one-way.
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		select {
		case m.hub.unregister <- conn:
		case <-m.hub.stop:
		}
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("Live feed connection closed", zap.String("connection_id", conn.ID), zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// run runs the hub in its own goroutine
func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.connections[conn] = true
			h.count.Add(1)
			conn.Send <- notifications.WebSocketMessage{
				Type:      notifications.WSMessageTypeConnected,
				Data:      json.RawMessage(fmt.Sprintf(`{"connection_id":%q}`, conn.ID)),
				Timestamp: time.Now(),
			}
			h.logger.Debug("Live feed connection registered",
				zap.String("connection_id", conn.ID), zap.String("user_id", conn.UserID))

		case conn := <-h.unregister:
			h.remove(conn)

		case message := <-h.broadcast:
			for conn := range h.connections {
				select {
				case conn.Send <- message:
				default:
					// slow consumer
					h.remove(conn)
				}
			}

		case <-h.stop:
			for conn := range h.connections {
				h.remove(conn)
			}
			return
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	if _, ok := h.connections[conn]; !ok {
		return
	}
	delete(h.connections, conn)
	close(conn.Send)
	h.count.Add(-1)
}

// Broadcast sends a message to all connected users
func (m *Manager) Broadcast(message notifications.WebSocketMessage) error {
	select {
	case m.hub.broadcast <- message:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// GetConnectionCount returns the number of active connections
func (m *Manager) GetConnectionCount() int {
	return int(m.hub.count.Load())
}

// Name identifies the feed as a notification channel.
func (m *Manager) Name() string { return "live_feed" }

// Deliver pushes a moderation event to every connected administrator.
func (m *Manager) Deliver(ctx context.Context, event notifications.ModerationEvent) error {
	if m.GetConnectionCount() == 0 {
		return notifications.ErrSkipped
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return m.Broadcast(notifications.WebSocketMessage{
		Type:      notifications.WSMessageTypeModeration,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Close closes the WebSocket manager and all connections
func (m *Manager) Close() {
	close(m.hub.stop)
}
