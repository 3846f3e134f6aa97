package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/events"
)

// StartReceivingCommand represents the command to start the receiving step
type StartReceivingCommand struct {
	OrderID int64
}

// StartReceiving use case: mints a correlation token, moves the order into
// PENDING_RECEIVING and asks the receiving worker to register the delivery.
type StartReceiving struct {
	tx        *OrderTransactions
	publisher events.Publisher
	logger    *zap.Logger
}

// NewStartReceiving creates a new StartReceiving use case
func NewStartReceiving(tx *OrderTransactions, publisher events.Publisher, logger *zap.Logger) *StartReceiving {
	return &StartReceiving{
		tx:        tx,
		publisher: publisher,
		logger:    logger.Named("start-receiving"),
	}
}

// Execute starts the receiving step. Mirrors StartApproval: the transition
// commits first, the reaper covers a lost request event.
func (uc *StartReceiving) Execute(ctx context.Context, cmd *StartReceivingCommand) (*domain.Order, error) {
	attemptID := uuid.New().String()

	order, err := uc.tx.StartReceiving(ctx, cmd.OrderID, attemptID)
	if err != nil {
		return nil, err
	}

	publishLogged(ctx, uc.logger, uc.publisher, newOrderEvent(order, events.ReceivingRequestedEvent, events.ReceivingRequestData{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AttemptID:   attemptID,
		MemberID:    order.MemberID,
		Items:       stockItems(order),
	}))

	return order, nil
}
