package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/partsnet/order-system/order-service/domain"
)

// PendingShippingCommand queues an approved order for shipping.
type PendingShippingCommand struct {
	OrderID int64
}

// PendingShipping use case
type PendingShipping struct {
	tx *OrderTransactions
}

// NewPendingShipping creates a new PendingShipping use case
func NewPendingShipping(tx *OrderTransactions) *PendingShipping {
	return &PendingShipping{tx: tx}
}

// Execute transitions the order to PENDING_SHIPPING.
func (uc *PendingShipping) Execute(ctx context.Context, cmd *PendingShippingCommand) (*domain.Order, error) {
	return uc.tx.PendingShipping(ctx, cmd.OrderID)
}

// RegisterShippingCommand records the carrier handoff.
type RegisterShippingCommand struct {
	OrderID        int64  `json:"-"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

// RegisterShipping use case: synchronous single-step transition, no saga
// round trip involved.
type RegisterShipping struct {
	tx *OrderTransactions
}

// NewRegisterShipping creates a new RegisterShipping use case
func NewRegisterShipping(tx *OrderTransactions) *RegisterShipping {
	return &RegisterShipping{tx: tx}
}

// Execute transitions the order to SHIPPING and stamps the shipping date.
func (uc *RegisterShipping) Execute(ctx context.Context, cmd *RegisterShippingCommand) (*domain.Order, error) {
	if cmd.Carrier == "" || cmd.TrackingNumber == "" {
		return nil, invalidInput(errors.New("carrier and tracking number are required"))
	}
	return uc.tx.RegisterShipping(ctx, cmd.OrderID, cmd.Carrier, cmd.TrackingNumber)
}
