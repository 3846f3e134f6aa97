package application

import (
	"context"
	"fmt"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/saga"
)

// CancelOrderCommand represents the command to cancel an order
type CancelOrderCommand struct {
	OrderID int64
}

// CancelOrder use case
type CancelOrder struct {
	tx *OrderTransactions
}

// NewCancelOrder creates a new CancelOrder use case
func NewCancelOrder(tx *OrderTransactions) *CancelOrder {
	return &CancelOrder{tx: tx}
}

// Execute cancels the order.
func (uc *CancelOrder) Execute(ctx context.Context, cmd *CancelOrderCommand) (*domain.Order, error) {
	return uc.tx.Cancel(ctx, cmd.OrderID)
}

// RejectOrderCommand represents the command to reject an order
type RejectOrderCommand struct {
	OrderID int64  `json:"-"`
	Reason  string `json:"reason"`
}

// RejectOrder use case
type RejectOrder struct {
	tx *OrderTransactions
}

// NewRejectOrder creates a new RejectOrder use case
func NewRejectOrder(tx *OrderTransactions) *RejectOrder {
	return &RejectOrder{tx: tx}
}

// Execute rejects the order with a reason.
func (uc *RejectOrder) Execute(ctx context.Context, cmd *RejectOrderCommand) (*domain.Order, error) {
	return uc.tx.Reject(ctx, cmd.OrderID, cmd.Reason)
}

// ProcessCancelFailedCommand carries the refund worker failure reply for a
// cancellation in flight.
type ProcessCancelFailedCommand struct {
	OrderID int64
	Reason  string
}

// ProcessCancelFailed use case: marks the cancelled order as REFUND_REJECTED.
type ProcessCancelFailed struct {
	tx       *OrderTransactions
	notifier Notifier
}

// NewProcessCancelFailed creates a new use case instance
func NewProcessCancelFailed(tx *OrderTransactions, notifier Notifier) *ProcessCancelFailed {
	return &ProcessCancelFailed{tx: tx, notifier: notifier}
}

// Execute records the failed refund.
func (uc *ProcessCancelFailed) Execute(ctx context.Context, cmd *ProcessCancelFailedCommand) error {
	order, err := uc.tx.RefundRejected(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	uc.notifier.Notify(ctx, order,
		"REFUND_REJECTED",
		fmt.Sprintf("refund for cancelled order %s failed: %s", order.OrderNumber, cmd.Reason),
		saga.StepFailed,
	)

	return nil
}
