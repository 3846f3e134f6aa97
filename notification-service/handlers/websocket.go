package handlers

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/notification-service/registry"
)

// AdminChannel receives every notification intent.
const AdminChannel = "admins"

// OrderChannel returns the channel a single order's updates go to.
func OrderChannel(orderID string) string {
	return "order:" + orderID
}

// WebsocketHandlers upgrades HTTP requests into registered websocket
// connections.
type WebsocketHandlers struct {
	registry *registry.Registry
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebsocketHandlers creates new websocket handlers
func NewWebsocketHandlers(reg *registry.Registry, logger *zap.Logger) *WebsocketHandlers {
	return &WebsocketHandlers{
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.Named("ws-handlers"),
	}
}

// RegisterRoutes registers websocket routes
func (h *WebsocketHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/ws/admin", h.SubscribeAdmin)
	r.Get("/ws/orders/{id}", h.SubscribeOrder)
}

// SubscribeAdmin attaches the caller to the admin channel
func (h *WebsocketHandlers) SubscribeAdmin(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, AdminChannel)
}

// SubscribeOrder attaches the caller to a single order's channel
func (h *WebsocketHandlers) SubscribeOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}
	h.subscribe(w, r, OrderChannel(orderID))
}

func (h *WebsocketHandlers) subscribe(w http.ResponseWriter, r *http.Request, channel string) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &syncConn{Conn: wsConn}
	h.registry.Register(channel, conn)

	h.logger.Info("websocket client connected", zap.String("channel", channel))

	// Inbound messages are ignored; the read loop only exists to notice the
	// peer going away.
	go func() {
		defer func() {
			h.registry.Unregister(channel, conn)
			conn.Close()
			h.logger.Info("websocket client disconnected", zap.String("channel", channel))
		}()

		for {
			if _, _, err := wsConn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// syncConn serializes writes; gorilla connections do not allow concurrent
// writers and notifications may arrive from several subscriber workers.
type syncConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *syncConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}
