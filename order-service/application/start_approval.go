package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/events"
)

// StartApprovalCommand represents the command to start the approval step
type StartApprovalCommand struct {
	OrderID int64
}

// StartApproval use case: mints a correlation token, moves the order into
// PENDING_APPROVAL and asks inventory to reserve the stock.
type StartApproval struct {
	tx        *OrderTransactions
	publisher events.Publisher
	logger    *zap.Logger
}

// NewStartApproval creates a new StartApproval use case
func NewStartApproval(tx *OrderTransactions, publisher events.Publisher, logger *zap.Logger) *StartApproval {
	return &StartApproval{
		tx:        tx,
		publisher: publisher,
		logger:    logger.Named("start-approval"),
	}
}

// Execute starts the approval step. The state transition commits before the
// request event goes out: if publishing fails the order stays in
// PENDING_APPROVAL and the reaper rolls it back at the deadline.
func (uc *StartApproval) Execute(ctx context.Context, cmd *StartApprovalCommand) (*domain.Order, error) {
	attemptID := uuid.New().String()

	order, err := uc.tx.StartApproval(ctx, cmd.OrderID, attemptID)
	if err != nil {
		return nil, err
	}

	publishLogged(ctx, uc.logger, uc.publisher, newOrderEvent(order, events.StockDeductionRequestedEvent, events.StockDeductionRequestData{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AttemptID:   attemptID,
		Items:       stockItems(order),
	}))

	return order, nil
}
