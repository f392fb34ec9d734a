package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one live-panel WebSocket subscriber
type Client struct {
	ID       string
	Wallet   string
	Duration time.Duration
	Demo     bool

	conn   *websocket.Conn
	sendMu sync.Mutex // protect concurrent writes to the same connection
	done   chan struct{}
	once   sync.Once
}

// NewClient wraps an upgraded connection
func NewClient(conn *websocket.Conn, wallet string, duration time.Duration, demo bool) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Wallet:   wallet,
		Duration: duration,
		Demo:     demo,
		conn:     conn,
		done:     make(chan struct{}),
	}
}

// SendJSON writes v as one text frame
func (c *Client) SendJSON(v interface{}) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Ping writes a ping control frame
func (c *Client) Ping() error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Done is closed once the client is closed
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection; safe to call more than once
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Registry tracks connected clients
type Registry struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// NewRegistry creates an empty client registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Add registers a client
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Remove unregisters and closes a client
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	c, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// Count returns the number of registered clients
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll closes every registered client
func (r *Registry) CloseAll() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
