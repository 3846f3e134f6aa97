package notification

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/events"
	"github.com/partsnet/order-system/shared/saga"
)

// EventNotifier publishes notification intents on the bus for the
// notification service to deliver. The contract is fire-and-forget,
// at-most-once, best-effort: a failed publish is logged and swallowed so it
// can never fail the transition that produced the intent.
type EventNotifier struct {
	publisher events.Publisher
	logger    *zap.Logger
}

// NewEventNotifier creates a new EventNotifier
func NewEventNotifier(publisher events.Publisher, logger *zap.Logger) *EventNotifier {
	return &EventNotifier{
		publisher: publisher,
		logger:    logger.Named("notifier"),
	}
}

// Notify emits one notification intent for the order.
func (n *EventNotifier) Notify(ctx context.Context, order *domain.Order, category, message string, step saga.Step) {
	event := events.NewEvent(strconv.FormatInt(order.ID, 10), events.NotificationEvent, events.NotificationData{
		Category:    category,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Message:     message,
		Step:        step.String(),
	})

	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Error("failed to publish notification intent",
			zap.Int64("order_id", order.ID),
			zap.String("category", category),
			zap.Error(err),
		)
	}
}
