package application

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/events"
)

// newOrderEvent builds a saga event keyed by the order id so the bus keeps
// per-order ordering.
func newOrderEvent(order *domain.Order, eventType string, data interface{}) *events.Event {
	return events.NewEvent(strconv.FormatInt(order.ID, 10), eventType, data)
}

// publishLogged publishes fire-and-forget. Delivery is the bus's concern; an
// undelivered request event is caught later by the timeout reaper, so the
// failure is logged at error level and never propagated.
func publishLogged(ctx context.Context, logger *zap.Logger, publisher events.Publisher, event *events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("failed to publish saga event",
			zap.String("topic", event.Topic.String()),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err),
		)
	}
}

// stockItems converts order line items to the wire representation.
func stockItems(order *domain.Order) []events.StockItem {
	items := make([]events.StockItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = events.StockItem{PartID: item.PartID, Amount: item.Amount}
	}
	return items
}
