package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/events"
	"github.com/partsnet/order-system/shared/saga"
)

// ProcessStockDeductionSuccessCommand carries the inventory success reply.
type ProcessStockDeductionSuccessCommand struct {
	OrderID int64
}

// ProcessStockDeductionSuccess use case: resolves the approval step.
type ProcessStockDeductionSuccess struct {
	tx       *OrderTransactions
	notifier Notifier
}

// NewProcessStockDeductionSuccess creates a new use case instance
func NewProcessStockDeductionSuccess(tx *OrderTransactions, notifier Notifier) *ProcessStockDeductionSuccess {
	return &ProcessStockDeductionSuccess{tx: tx, notifier: notifier}
}

// Execute approves the order and notifies the admins.
func (uc *ProcessStockDeductionSuccess) Execute(ctx context.Context, cmd *ProcessStockDeductionSuccessCommand) error {
	order, err := uc.tx.Approve(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	uc.notifier.Notify(ctx, order,
		"ORDER_APPROVED",
		fmt.Sprintf("order %s passed the stock check", order.OrderNumber),
		saga.StepStockCheck,
	)

	return nil
}

// ProcessStockDeductionFailureCommand carries the inventory failure reply.
// ReservedItems lists the stock that was partially reserved before the
// failure and must be restored.
type ProcessStockDeductionFailureCommand struct {
	OrderID       int64
	AttemptID     string
	Reason        string
	ReservedItems []events.StockItem
}

// ProcessStockDeductionFailure use case: compensates a failed approval step.
// Rolls the order back to ORDER_COMPLETED, requests a stock restore for any
// partially reserved lines and emits a failure notification intent.
type ProcessStockDeductionFailure struct {
	orders    domain.OrderRepository
	tx        *OrderTransactions
	publisher events.Publisher
	notifier  Notifier
	logger    *zap.Logger
}

// NewProcessStockDeductionFailure creates a new use case instance
func NewProcessStockDeductionFailure(
	orders domain.OrderRepository,
	tx *OrderTransactions,
	publisher events.Publisher,
	notifier Notifier,
	logger *zap.Logger,
) *ProcessStockDeductionFailure {
	return &ProcessStockDeductionFailure{
		orders:    orders,
		tx:        tx,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger.Named("stock-deduction-failure"),
	}
}

// Execute compensates the approval attempt identified by the command.
func (uc *ProcessStockDeductionFailure) Execute(ctx context.Context, cmd *ProcessStockDeductionFailureCommand) error {
	order, err := uc.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return errors.Wrap(err, "failed to find order")
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	// A reply tagged with an attempt id that is no longer active belongs to
	// an attempt that already settled (reaper or duplicate delivery).
	if cmd.AttemptID != "" && !order.AttemptMatches(cmd.AttemptID) {
		uc.logger.Info("dropping stale stock deduction failure",
			zap.Int64("order_id", cmd.OrderID),
			zap.String("attempt_id", cmd.AttemptID),
			zap.String("status", order.Status.String()),
		)
		return nil
	}

	order, err = uc.tx.RollbackToOrderCompleted(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	if len(cmd.ReservedItems) > 0 {
		publishLogged(ctx, uc.logger, uc.publisher, newOrderEvent(order, events.StockRestoreRequestedEvent, events.StockRestoreRequestData{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Items:       cmd.ReservedItems,
			Reason:      cmd.Reason,
		}))
	}

	uc.notifier.Notify(ctx, order,
		"APPROVAL_FAILED",
		fmt.Sprintf("stock check for order %s failed: %s", order.OrderNumber, cmd.Reason),
		saga.StepFailed,
	)

	return nil
}
