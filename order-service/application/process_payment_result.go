package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/partsnet/order-system/shared/saga"
)

// ProcessPaymentResultCommand carries the payment worker reply.
type ProcessPaymentResultCommand struct {
	OrderID int64
	Success bool
	Message string
}

// ProcessPaymentResult use case: settles the payment step of the saga.
type ProcessPaymentResult struct {
	tx       *OrderTransactions
	notifier Notifier
	logger   *zap.Logger
}

// NewProcessPaymentResult creates a new ProcessPaymentResult use case
func NewProcessPaymentResult(tx *OrderTransactions, notifier Notifier, logger *zap.Logger) *ProcessPaymentResult {
	return &ProcessPaymentResult{
		tx:       tx,
		notifier: notifier,
		logger:   logger.Named("process-payment-result"),
	}
}

// Execute applies the payment outcome to the order.
func (uc *ProcessPaymentResult) Execute(ctx context.Context, cmd *ProcessPaymentResultCommand) error {
	if cmd.Success {
		_, err := uc.tx.CompletePayment(ctx, cmd.OrderID)
		return err
	}

	order, err := uc.tx.FailPayment(ctx, cmd.OrderID, cmd.Message)
	if err != nil {
		return err
	}

	uc.notifier.Notify(ctx, order,
		"PAYMENT_FAILED",
		fmt.Sprintf("payment for order %s failed: %s", order.OrderNumber, cmd.Message),
		saga.StepFailed,
	)

	return nil
}
