package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/telemetry"
)

// OrderTransactions executes exactly one state transition per call as an
// independently committed unit of work, decoupled from whatever triggered it
// (HTTP request, event handler or the reaper). It is a distinct component and
// is never invoked from inside the order domain itself: a caller that needs a
// transition always goes through here, so a downstream failure after the
// transition never rolls the state change back.
//
// Every operation loads the order, applies the transition (which validates
// the current status) and persists with an optimistic version check. A lost
// race surfaces as domain.ErrVersionConflict and the caller decides whether
// that is an error or a no-op.
type OrderTransactions struct {
	orders domain.OrderRepository
	logger *zap.Logger
}

// NewOrderTransactions creates a new OrderTransactions unit
func NewOrderTransactions(orders domain.OrderRepository, logger *zap.Logger) *OrderTransactions {
	return &OrderTransactions{
		orders: orders,
		logger: logger.Named("order-tx"),
	}
}

// CompletePayment transitions the order to PAY_COMPLETED.
func (t *OrderTransactions) CompletePayment(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.apply(ctx, orderID, "complete_payment", func(o *domain.Order) error {
		return o.CompletePayment()
	})
}

// FailPayment settles the order as FAILED with the given reason.
func (t *OrderTransactions) FailPayment(ctx context.Context, orderID int64, reason string) (*domain.Order, error) {
	return t.apply(ctx, orderID, "fail_payment", func(o *domain.Order) error {
		return o.FailPayment(reason)
	})
}

// StartApproval enters PENDING_APPROVAL with the given attempt id.
func (t *OrderTransactions) StartApproval(ctx context.Context, orderID int64, attemptID string) (*domain.Order, error) {
	return t.apply(ctx, orderID, "start_approval", func(o *domain.Order) error {
		return o.StartApproval(attemptID)
	})
}

// Approve resolves the approval step to APPROVAL_ORDER.
func (t *OrderTransactions) Approve(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.apply(ctx, orderID, "approve", func(o *domain.Order) error {
		return o.Approve()
	})
}

// RollbackToOrderCompleted compensates the approval step. Idempotent: when
// the order already left PENDING_APPROVAL the call logs and returns the
// current snapshot without touching the record, because it may legitimately
// run twice (failure event plus reaper).
func (t *OrderTransactions) RollbackToOrderCompleted(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.applyRollback(ctx, orderID, "rollback_to_order_completed", func(o *domain.Order) (bool, error) {
		return o.RollbackToOrderCompleted()
	})
}

// PendingShipping transitions the approved order to PENDING_SHIPPING.
func (t *OrderTransactions) PendingShipping(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.apply(ctx, orderID, "pending_shipping", func(o *domain.Order) error {
		return o.PendingShipping()
	})
}

// RegisterShipping records the carrier handoff.
func (t *OrderTransactions) RegisterShipping(ctx context.Context, orderID int64, carrier, trackingNumber string) (*domain.Order, error) {
	return t.apply(ctx, orderID, "register_shipping", func(o *domain.Order) error {
		return o.RegisterShipping(carrier, trackingNumber)
	})
}

// StartReceiving enters PENDING_RECEIVING with the given attempt id.
func (t *OrderTransactions) StartReceiving(ctx context.Context, orderID int64, attemptID string) (*domain.Order, error) {
	return t.apply(ctx, orderID, "start_receiving", func(o *domain.Order) error {
		return o.StartReceiving(attemptID)
	})
}

// CompleteReceiving settles the order as RECEIVED.
func (t *OrderTransactions) CompleteReceiving(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.apply(ctx, orderID, "complete_receiving", func(o *domain.Order) error {
		return o.CompleteReceiving()
	})
}

// RollbackToShipping compensates the receiving step. Idempotent like
// RollbackToOrderCompleted.
func (t *OrderTransactions) RollbackToShipping(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.applyRollback(ctx, orderID, "rollback_to_shipping", func(o *domain.Order) (bool, error) {
		return o.RollbackToShipping()
	})
}

// Reject settles the order as REJECTED with the given reason.
func (t *OrderTransactions) Reject(ctx context.Context, orderID int64, reason string) (*domain.Order, error) {
	return t.apply(ctx, orderID, "reject", func(o *domain.Order) error {
		return o.Reject(reason)
	})
}

// Cancel settles the order as CANCELLED.
func (t *OrderTransactions) Cancel(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.apply(ctx, orderID, "cancel", func(o *domain.Order) error {
		return o.Cancel()
	})
}

// RefundRejected records a failed refund of a cancelled order.
func (t *OrderTransactions) RefundRejected(ctx context.Context, orderID int64) (*domain.Order, error) {
	return t.apply(ctx, orderID, "refund_rejected", func(o *domain.Order) error {
		return o.RefundRejected()
	})
}

func (t *OrderTransactions) apply(ctx context.Context, orderID int64, name string, transition func(*domain.Order) error) (*domain.Order, error) {
	order, err := t.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := transition(order); err != nil {
		return nil, err
	}

	if err := t.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrapf(err, "failed to persist %s for order %d", name, orderID)
	}

	t.record(ctx, name, order)
	return order, nil
}

func (t *OrderTransactions) applyRollback(ctx context.Context, orderID int64, name string, rollback func(*domain.Order) (bool, error)) (*domain.Order, error) {
	order, err := t.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	applied, err := rollback(order)
	if err != nil {
		return nil, err
	}

	if !applied {
		t.logger.Info("rollback skipped, order already settled",
			zap.Int64("order_id", orderID),
			zap.String("status", order.Status.String()),
			zap.String("transition", name),
		)
		return order, nil
	}

	if err := t.orders.Update(ctx, order); err != nil {
		return nil, errors.Wrapf(err, "failed to persist %s for order %d", name, orderID)
	}

	t.record(ctx, name, order)
	return order, nil
}

func (t *OrderTransactions) load(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := t.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order %d", orderID)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (t *OrderTransactions) record(ctx context.Context, name string, order *domain.Order) {
	telemetry.RecordCounter(ctx, "order_transitions_total", "Applied order state transitions", 1,
		attribute.String("transition", name),
		attribute.String("status", order.Status.String()),
	)
}
