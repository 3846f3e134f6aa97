package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/partsnet/order-system/order-service/domain"
)

// GetOrderQuery represents the query to get an order
type GetOrderQuery struct {
	OrderID int64
}

// OrderItemView is the read model of one order line.
type OrderItemView struct {
	PartID   int64  `json:"part_id"`
	Amount   int64  `json:"amount"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Location string `json:"location"`
}

// OrderView is the read model returned to HTTP callers.
type OrderView struct {
	OrderID               int64           `json:"order_id"`
	OrderNumber           string          `json:"order_number"`
	MemberID              int64           `json:"member_id"`
	Status                string          `json:"status"`
	TotalPrice            int64           `json:"total_price"`
	PaymentType           string          `json:"payment_type"`
	RejectedMessage       string          `json:"rejected_message,omitempty"`
	Carrier               string          `json:"carrier,omitempty"`
	TrackingNumber        string          `json:"tracking_number,omitempty"`
	RequestedShippingDate string          `json:"requested_shipping_date,omitempty"`
	ShippingDate          *time.Time      `json:"shipping_date,omitempty"`
	Items                 []OrderItemView `json:"items"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// GetOrder use case
type GetOrder struct {
	orders domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orders domain.OrderRepository) *GetOrder {
	return &GetOrder{orders: orders}
}

// Execute returns the order snapshot.
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*OrderView, error) {
	order, err := uc.orders.FindByID(ctx, query.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	items := make([]OrderItemView, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemView{
			PartID:   item.PartID,
			Amount:   item.Amount,
			Price:    item.Price,
			Category: item.Category,
			Location: item.Location,
		}
	}

	return &OrderView{
		OrderID:               order.ID,
		OrderNumber:           order.OrderNumber,
		MemberID:              order.MemberID,
		Status:                order.Status.String(),
		TotalPrice:            order.TotalPrice,
		PaymentType:           order.PaymentType,
		RejectedMessage:       order.RejectedMessage,
		Carrier:               order.Carrier,
		TrackingNumber:        order.TrackingNumber,
		RequestedShippingDate: order.RequestedShippingDate,
		ShippingDate:          order.ShippingDate,
		Items:                 items,
		CreatedAt:             order.Timestamps.CreatedAt,
		UpdatedAt:             order.Timestamps.UpdatedAt,
	}, nil
}
