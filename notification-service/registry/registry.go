package registry

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is the subset of *websocket.Conn the registry needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Registry tracks live websocket connections by channel. A channel is a
// delivery target such as "admins" or "order:42"; one connection may sit in
// several channels. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[Conn]struct{}
	logger   *zap.Logger
}

// New creates a new Registry
func New(logger *zap.Logger) *Registry {
	return &Registry{
		channels: make(map[string]map[Conn]struct{}),
		logger:   logger.Named("ws-registry"),
	}
}

// Register adds a connection to a channel.
func (r *Registry) Register(channel string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channels[channel] == nil {
		r.channels[channel] = make(map[Conn]struct{})
	}
	r.channels[channel][conn] = struct{}{}
}

// Unregister removes a connection from a channel. The connection itself is
// not closed; the read loop that owns it does that.
func (r *Registry) Unregister(channel string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.channels[channel]
	delete(conns, conn)
	if len(conns) == 0 {
		delete(r.channels, channel)
	}
}

// Notify sends a text message to every connection in the channel and returns
// how many deliveries succeeded. A connection that fails to write is closed
// and dropped from the channel: the client reconnects, the registry does not
// retry.
func (r *Registry) Notify(channel string, message []byte) int {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.channels[channel]))
	for conn := range r.channels[channel] {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			r.logger.Info("dropping dead websocket connection",
				zap.String("channel", channel),
				zap.Error(err),
			)
			conn.Close()
			r.Unregister(channel, conn)
			continue
		}
		delivered++
	}

	return delivered
}

// Broadcast sends a text message to every connection in a group channel. It
// is Notify under a name that reads better at call sites addressing a group
// rather than a single order's watchers.
func (r *Registry) Broadcast(group string, message []byte) int {
	return r.Notify(group, message)
}

// Size returns the number of connections in the channel.
func (r *Registry) Size(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}
