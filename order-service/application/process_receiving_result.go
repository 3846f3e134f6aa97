package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/saga"
)

// ProcessReceivingSuccessCommand carries the receiving worker success reply.
type ProcessReceivingSuccessCommand struct {
	OrderID   int64
	AttemptID string
}

// ProcessReceivingSuccess use case: settles the order as RECEIVED.
type ProcessReceivingSuccess struct {
	orders   domain.OrderRepository
	tx       *OrderTransactions
	notifier Notifier
	logger   *zap.Logger
}

// NewProcessReceivingSuccess creates a new use case instance
func NewProcessReceivingSuccess(orders domain.OrderRepository, tx *OrderTransactions, notifier Notifier, logger *zap.Logger) *ProcessReceivingSuccess {
	return &ProcessReceivingSuccess{
		orders:   orders,
		tx:       tx,
		notifier: notifier,
		logger:   logger.Named("receiving-success"),
	}
}

// Execute completes the receiving step.
func (uc *ProcessReceivingSuccess) Execute(ctx context.Context, cmd *ProcessReceivingSuccessCommand) error {
	order, err := uc.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return errors.Wrap(err, "failed to find order")
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	if cmd.AttemptID != "" && !order.AttemptMatches(cmd.AttemptID) {
		uc.logger.Info("dropping stale receiving reply",
			zap.Int64("order_id", cmd.OrderID),
			zap.String("attempt_id", cmd.AttemptID),
			zap.String("status", order.Status.String()),
		)
		return nil
	}

	order, err = uc.tx.CompleteReceiving(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	uc.notifier.Notify(ctx, order,
		"ORDER_RECEIVED",
		fmt.Sprintf("order %s was received", order.OrderNumber),
		saga.StepCompleted,
	)

	return nil
}

// ProcessReceivingFailureCommand carries the receiving worker failure reply.
type ProcessReceivingFailureCommand struct {
	OrderID      int64
	ErrorMessage string
}

// ProcessReceivingFailure use case: compensates a failed receiving step by
// rolling the order back to SHIPPING.
type ProcessReceivingFailure struct {
	tx       *OrderTransactions
	notifier Notifier
}

// NewProcessReceivingFailure creates a new use case instance
func NewProcessReceivingFailure(tx *OrderTransactions, notifier Notifier) *ProcessReceivingFailure {
	return &ProcessReceivingFailure{tx: tx, notifier: notifier}
}

// Execute rolls the order back and emits a failure notification intent.
func (uc *ProcessReceivingFailure) Execute(ctx context.Context, cmd *ProcessReceivingFailureCommand) error {
	order, err := uc.tx.RollbackToShipping(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	uc.notifier.Notify(ctx, order,
		"RECEIVING_FAILED",
		fmt.Sprintf("receiving for order %s failed: %s", order.OrderNumber, cmd.ErrorMessage),
		saga.StepReceiving,
	)

	return nil
}
