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

// CreateOrderItem is one requested line of a new order.
type CreateOrderItem struct {
	PartID int64 `json:"part_id"`
	Amount int64 `json:"amount"`
}

// CreateOrderCommand represents the command to create an order
type CreateOrderCommand struct {
	MemberID              int64             `json:"member_id"`
	PaymentType           string            `json:"payment_type"`
	Etc                   string            `json:"etc,omitempty"`
	RequestedShippingDate string            `json:"requested_shipping_date,omitempty"`
	Items                 []CreateOrderItem `json:"items"`
}

// CreateOrderResponse is the snapshot returned to the caller.
type CreateOrderResponse struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	TotalPrice  int64  `json:"total_price"`
}

// CreateOrder use case: snapshots the requested parts from inventory,
// persists the order and kicks off the payment step of the saga.
type CreateOrder struct {
	orders    domain.OrderRepository
	inventory InventoryClient
	users     UserClient
	publisher events.Publisher
	notifier  Notifier
	logger    *zap.Logger
}

// NewCreateOrder creates a new CreateOrder use case
func NewCreateOrder(
	orders domain.OrderRepository,
	inventory InventoryClient,
	users UserClient,
	publisher events.Publisher,
	notifier Notifier,
	logger *zap.Logger,
) *CreateOrder {
	return &CreateOrder{
		orders:    orders,
		inventory: inventory,
		users:     users,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger.Named("create-order"),
	}
}

// Execute creates the order and publishes the payment request.
func (uc *CreateOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*CreateOrderResponse, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, invalidInput(errors.Wrap(err, "invalid command"))
	}

	member, err := uc.users.GetMember(ctx, cmd.MemberID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up member")
	}
	if member == nil {
		return nil, invalidInput(errors.Errorf("member %d not found", cmd.MemberID))
	}

	partIDs := make([]int64, len(cmd.Items))
	for i, item := range cmd.Items {
		partIDs[i] = item.PartID
	}

	parts, err := uc.inventory.GetParts(ctx, partIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot parts")
	}

	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		part, ok := parts[item.PartID]
		if !ok {
			return nil, invalidInput(errors.Errorf("part %d not found", item.PartID))
		}
		items[i] = domain.OrderItem{
			PartID:   item.PartID,
			Amount:   item.Amount,
			Price:    part.Price,
			Cost:     part.Cost,
			Category: part.Category,
			Location: part.Location,
		}
	}

	order, err := domain.CreateOrder(cmd.MemberID, cmd.PaymentType, cmd.Etc, cmd.RequestedShippingDate, items)
	if err != nil {
		return nil, invalidInput(errors.Wrap(err, "invalid order"))
	}

	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to persist order")
	}

	publishLogged(ctx, uc.logger, uc.publisher, newOrderEvent(order, events.PayRequestedEvent, events.PayRequestData{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PaymentType: order.PaymentType,
		TotalPrice:  order.TotalPrice,
	}))

	uc.notifier.Notify(ctx, order,
		"ORDER_CREATED",
		fmt.Sprintf("order %s created, total %d", order.OrderNumber, order.TotalPrice),
		saga.StepPayment,
	)

	return &CreateOrderResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status.String(),
		TotalPrice:  order.TotalPrice,
	}, nil
}

func (uc *CreateOrder) validateCommand(cmd *CreateOrderCommand) error {
	if cmd.MemberID <= 0 {
		return errors.New("member id is required")
	}

	if cmd.PaymentType == "" {
		return errors.New("payment type is required")
	}

	if len(cmd.Items) == 0 {
		return errors.New("at least one item is required")
	}

	for _, item := range cmd.Items {
		if item.PartID <= 0 {
			return errors.New("part id is required")
		}
		if item.Amount <= 0 {
			return errors.Errorf("part %d: amount must be positive", item.PartID)
		}
	}

	return nil
}
