package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/notification-service/registry"
	"github.com/partsnet/order-system/shared/events"
)

// NotificationEventHandlers consumes notification intents from the bus and
// fans them out to connected websocket clients. Delivery is best effort: a
// client that is not connected simply misses the message, the intent is
// acknowledged either way.
type NotificationEventHandlers struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// NewNotificationEventHandlers creates new notification event handlers
func NewNotificationEventHandlers(reg *registry.Registry, logger *zap.Logger) *NotificationEventHandlers {
	return &NotificationEventHandlers{
		registry: reg,
		logger:   logger.Named("notification-events"),
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *NotificationEventHandlers) HandlerID() string {
	return "notification-service-event-handler"
}

// Handle implements the events.EventHandler interface
func (h *NotificationEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	if event.EventType != events.NotificationEvent {
		return nil
	}

	var data events.NotificationData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse notification data")
	}

	message, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode notification message")
	}

	admins := h.registry.Broadcast(AdminChannel, message)
	watchers := h.registry.Notify(OrderChannel(strconv.FormatInt(data.OrderID, 10)), message)

	h.logger.Info("notification delivered",
		zap.String("category", data.Category),
		zap.Int64("order_id", data.OrderID),
		zap.Int("admins", admins),
		zap.Int("watchers", watchers),
	)

	return nil
}
