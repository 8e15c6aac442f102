package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

type CloseReason string

const (
	ReasonWriteError     CloseReason = "write_error"
	ReasonPingError      CloseReason = "ping_error"
	ReasonReadError      CloseReason = "read_error"
	ReasonSendChanClosed CloseReason = "send_channel_closed"
	ReasonReplaced       CloseReason = "replaced_by_new_connection"
	ReasonShutdown       CloseReason = "server_shutdown"
	ReasonBufferFull     CloseReason = "buffer_full"
	ReasonTimeout        CloseReason = "timeout"
)

// Connection represents a WebSocket connection
type Connection struct {
	UserID    int64
	Conn      *websocket.Conn
	Send      chan []byte
	manager   *Manager
	closeOnce sync.Once
}

// Options tunes connection keepalive and flow control. Zero values
// fall back to the defaults below.
type Options struct {
	PingInterval   time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

const (
	defaultPingInterval   = 54 * time.Second
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 4096
)

// Manager manages WebSocket connections and their game group
// membership. A group holds everyone watching one game: seated
// players and viewers alike.
type Manager struct {
	opts       Options
	clients    map[int64]*Connection
	groups     map[string]map[int64]struct{}
	register   chan *Connection
	unregister chan *Connection
	mu         sync.RWMutex
}

// NewManager creates a new connection manager
func NewManager(opts Options) *Manager {
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = defaultWriteWait
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaultPongWait
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaultMaxMessageSize
	}
	return &Manager{
		opts:       opts,
		clients:    make(map[int64]*Connection),
		groups:     make(map[string]map[int64]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
	}
}

// Register registers a new connection
func (m *Manager) Register(conn *websocket.Conn, userID int64) *Connection {
	c := &Connection{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 1024),
		manager: m,
	}
	m.register <- c
	return c
}

// Run starts the manager loop
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			// If user already connected, close old connection. Group
			// membership survives; the new socket resumes the watch.
			if old, ok := m.clients[client.UserID]; ok {
				old.CloseWithReason(ReasonReplaced, nil)
			}
			m.clients[client.UserID] = client
			m.mu.Unlock()

		case client := <-m.unregister:
			m.mu.Lock()
			if current, ok := m.clients[client.UserID]; ok && current == client {
				delete(m.clients, client.UserID)
				m.dropFromGroups(client.UserID)
				client.CloseWithReason(ReasonShutdown, nil)
			}
			m.mu.Unlock()
		}
	}
}

// JoinGroup adds a user to a group.
func (m *Manager) JoinGroup(group string, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members, ok := m.groups[group]
	if !ok {
		members = make(map[int64]struct{})
		m.groups[group] = members
	}
	members[userID] = struct{}{}
}

// LeaveGroup removes a user from a group.
func (m *Manager) LeaveGroup(group string, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.groups[group]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.groups, group)
		}
	}
}

// dropFromGroups removes a user from every group. Caller holds the lock.
func (m *Manager) dropFromGroups(userID int64) {
	for group, members := range m.groups {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.groups, group)
		}
	}
}

// BroadcastGroup sends a message to every connected member of a group.
func (m *Manager) BroadcastGroup(group string, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for userID := range m.groups[group] {
		client, ok := m.clients[userID]
		if !ok {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Buffer full, drop client. Unregister cleans up membership.
			client.CloseWithReason(ReasonBufferFull, nil)
		}
	}
}

// Broadcast sends a message to all connected local clients
func (m *Manager) Broadcast(message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.Send <- message:
		default:
			client.CloseWithReason(ReasonBufferFull, nil)
		}
	}
}

// SendToUser sends a message to a specific user
func (m *Manager) SendToUser(userID int64, message []byte) {
	m.mu.RLock()
	client, ok := m.clients[userID]
	m.mu.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
		return
	default:
		// Buffer full, wait briefly before giving up on the client.
	}

	select {
	case client.Send <- message:
	case <-time.After(time.Second * 5):
		// Client too slow, close to avoid blocking the server.
		client.CloseWithReason(ReasonTimeout, nil)
	}
}

// Shutdown closes all connections
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		client.CloseWithReason(ReasonShutdown, nil)
	}
}

// CloseWithReason closes the connection with a reason
func (c *Connection) CloseWithReason(r CloseReason, err error) {
	c.closeOnce.Do(func() {
		logger.Warn(context.Background()).
			Int64("user_id", c.UserID).
			Str("reason", string(r)).
			Err(err).
			Msg("ws connection closed")
		c.Conn.Close()
	})
}

// WritePump pumps messages from the manager to the websocket connection
func (c *Connection) WritePump() {
	opts := c.manager.opts
	ticker := time.NewTicker(opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				c.CloseWithReason(ReasonWriteError, err)
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				c.CloseWithReason(ReasonWriteError, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.CloseWithReason(ReasonPingError, err)
				return
			}
		}
	}
}

// ReadPump pumps messages from the websocket connection to the handler
func (c *Connection) ReadPump(handleMessage func(int64, []byte)) {
	var readErr error
	defer func() {
		c.manager.unregister <- c
		c.CloseWithReason(ReasonReadError, readErr)
	}()

	opts := c.manager.opts
	c.Conn.SetReadLimit(opts.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(opts.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				readErr = err
			}
			break
		}

		handleMessage(c.UserID, message)
	}
}
