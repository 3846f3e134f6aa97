package handlers

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/events"
)

// OrderEventHandlers consumes the worker replies of the order saga. Delivery
// is at least once, so every branch must tolerate duplicates: a reply that no
// longer applies to the current state is acknowledged, not retried.
type OrderEventHandlers struct {
	processPaymentResult         *application.ProcessPaymentResult
	processStockDeductionSuccess *application.ProcessStockDeductionSuccess
	processStockDeductionFailure *application.ProcessStockDeductionFailure
	processReceivingSuccess      *application.ProcessReceivingSuccess
	processReceivingFailure      *application.ProcessReceivingFailure
	processCancelFailed          *application.ProcessCancelFailed
	logger                       *zap.Logger
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(
	processPaymentResult *application.ProcessPaymentResult,
	processStockDeductionSuccess *application.ProcessStockDeductionSuccess,
	processStockDeductionFailure *application.ProcessStockDeductionFailure,
	processReceivingSuccess *application.ProcessReceivingSuccess,
	processReceivingFailure *application.ProcessReceivingFailure,
	processCancelFailed *application.ProcessCancelFailed,
	logger *zap.Logger,
) *OrderEventHandlers {
	return &OrderEventHandlers{
		processPaymentResult:         processPaymentResult,
		processStockDeductionSuccess: processStockDeductionSuccess,
		processStockDeductionFailure: processStockDeductionFailure,
		processReceivingSuccess:      processReceivingSuccess,
		processReceivingFailure:      processReceivingFailure,
		processCancelFailed:          processCancelFailed,
		logger:                       logger.Named("order-events"),
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// Handle implements the events.EventHandler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.PayCompletedEvent, events.PayFailedEvent:
		return h.handlePaymentResult(ctx, event)
	case events.StockDeductionSucceededEvent:
		return h.handleStockDeductionSucceeded(ctx, event)
	case events.StockDeductionFailedEvent:
		return h.handleStockDeductionFailed(ctx, event)
	case events.ReceivingCompletedEvent:
		return h.handleReceivingCompleted(ctx, event)
	case events.ReceivingFailedEvent:
		return h.handleReceivingFailed(ctx, event)
	case events.CancelFailedEvent:
		return h.handleCancelFailed(ctx, event)
	default:
		// Not a reply this service consumes.
		return nil
	}
}

func (h *OrderEventHandlers) handlePaymentResult(ctx context.Context, event *events.Event) error {
	var data events.PayResultData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse payment result data")
	}

	err := h.processPaymentResult.Execute(ctx, &application.ProcessPaymentResultCommand{
		OrderID: data.OrderID,
		Success: event.EventType == events.PayCompletedEvent,
		Message: data.Message,
	})
	return h.settle(event, data.OrderID, err)
}

func (h *OrderEventHandlers) handleStockDeductionSucceeded(ctx context.Context, event *events.Event) error {
	var data events.StockDeductionSucceededData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse stock deduction success data")
	}

	err := h.processStockDeductionSuccess.Execute(ctx, &application.ProcessStockDeductionSuccessCommand{
		OrderID: data.OrderID,
	})
	return h.settle(event, data.OrderID, err)
}

func (h *OrderEventHandlers) handleStockDeductionFailed(ctx context.Context, event *events.Event) error {
	var data events.StockDeductionFailedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse stock deduction failure data")
	}

	err := h.processStockDeductionFailure.Execute(ctx, &application.ProcessStockDeductionFailureCommand{
		OrderID:       data.OrderID,
		AttemptID:     data.AttemptID,
		Reason:        data.Reason,
		ReservedItems: reservedItems(data.Data),
	})
	return h.settle(event, data.OrderID, err)
}

func (h *OrderEventHandlers) handleReceivingCompleted(ctx context.Context, event *events.Event) error {
	var data events.ReceivingCompletedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse receiving completed data")
	}

	err := h.processReceivingSuccess.Execute(ctx, &application.ProcessReceivingSuccessCommand{
		OrderID:   data.OrderID,
		AttemptID: data.AttemptID,
	})
	return h.settle(event, data.OrderID, err)
}

func (h *OrderEventHandlers) handleReceivingFailed(ctx context.Context, event *events.Event) error {
	var data events.ReceivingFailedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse receiving failed data")
	}

	err := h.processReceivingFailure.Execute(ctx, &application.ProcessReceivingFailureCommand{
		OrderID:      data.OrderID,
		ErrorMessage: data.ErrorMessage,
	})
	return h.settle(event, data.OrderID, err)
}

func (h *OrderEventHandlers) handleCancelFailed(ctx context.Context, event *events.Event) error {
	var data events.CancelFailedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse cancel failed data")
	}

	err := h.processCancelFailed.Execute(ctx, &application.ProcessCancelFailedCommand{
		OrderID: data.OrderID,
		Reason:  data.Reason,
	})
	return h.settle(event, data.OrderID, err)
}

// settle decides whether a failed reply should be redelivered. An illegal
// transition, a lost optimistic-lock race or a vanished order means the reply
// is stale or duplicated: the message is acknowledged so the queue does not
// loop on it forever. Anything else (database down, timeout) is transient and
// comes back for another attempt.
func (h *OrderEventHandlers) settle(event *events.Event, orderID int64, err error) error {
	if err == nil {
		return nil
	}

	if domain.IsInvalidState(err) ||
		errors.Is(err, domain.ErrVersionConflict) ||
		errors.Is(err, domain.ErrOrderNotFound) {
		h.logger.Info("dropping stale saga reply",
			zap.String("event_type", event.EventType),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil
	}

	return err
}

// reservedItems extracts the partially reserved lines an inventory failure
// reply may carry in its opaque data blob.
func reservedItems(raw json.RawMessage) []events.StockItem {
	if len(raw) == 0 {
		return nil
	}

	var payload struct {
		ReservedItems []events.StockItem `json:"reserved_items"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload.ReservedItems
}
