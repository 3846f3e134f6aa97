package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/partsnet/order-system/shared/models"
)

// OrderItem is a snapshot of one part line taken from the inventory service
// at order-creation time. Line items are immutable once created.
type OrderItem struct {
	PartID   int64
	Amount   int64
	Price    int64
	Cost     int64
	Category string
	Location string
}

// Order is the aggregate root of the order saga. Status changes only through
// the transition methods below; each validates the current status against the
// state machine before mutating, and mutates nothing else but this record.
// Publishing events and notifications is the caller's responsibility.
type Order struct {
	ID          int64
	OrderNumber string
	MemberID    int64
	Status      Status

	// Correlation token and timestamp for the in-flight asynchronous step.
	// Non-nil exactly while Status.InFlight().
	ApprovalAttemptID *string
	ApprovalStartedAt *time.Time

	TotalPrice            int64
	PaymentType           string
	Etc                   string
	RejectedMessage       string
	Carrier               string
	TrackingNumber        string
	RequestedShippingDate string
	ShippingDate          *time.Time

	Items []OrderItem

	Timestamps models.Timestamps
	Version    models.Version
}

// CreateOrder factory method. The order number is a placeholder until the
// numeric id exists; StampOrderNumber replaces it after the first insert.
func CreateOrder(memberID int64, paymentType, etc, requestedShippingDate string, items []OrderItem) (*Order, error) {
	if memberID <= 0 {
		return nil, errors.New("member id is required")
	}
	if len(items) == 0 {
		return nil, errors.New("order needs at least one item")
	}

	var total int64
	for _, item := range items {
		if item.Amount <= 0 {
			return nil, errors.Errorf("part %d: amount must be positive", item.PartID)
		}
		if item.Price < 0 || item.Cost < 0 {
			return nil, errors.Errorf("part %d: price must not be negative", item.PartID)
		}
		total += item.Price * item.Amount
	}

	return &Order{
		OrderNumber:           "TMP-" + uuid.New().String(),
		MemberID:              memberID,
		Status:                StatusOrderCompleted,
		TotalPrice:            total,
		PaymentType:           paymentType,
		Etc:                   etc,
		RequestedShippingDate: requestedShippingDate,
		Items:                 items,
		Timestamps:            models.NewTimestamps(),
		Version:               models.NewVersion(),
	}, nil
}

// StampOrderNumber replaces the placeholder number once the numeric id is
// known. Format: ORD-YYYYMMDD-<id>.
func (o *Order) StampOrderNumber(now time.Time) {
	o.OrderNumber = fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), o.ID)
	o.touch()
}

// CompletePayment marks the payment step as settled.
func (o *Order) CompletePayment() error {
	if err := o.transition(StatusPayCompleted, "complete payment"); err != nil {
		return err
	}
	return nil
}

// FailPayment settles the order as FAILED, recording the reason.
func (o *Order) FailPayment(reason string) error {
	if err := o.transition(StatusFailed, "fail payment"); err != nil {
		return err
	}
	o.RejectedMessage = reason
	return nil
}

// StartApproval enters the asynchronous stock-deduction step. The attempt id
// tags the outbound request so the reply can be matched, and the timestamp
// lets the reaper compute staleness. Rejects duplicate or stale triggers.
func (o *Order) StartApproval(attemptID string) error {
	if o.Status != StatusOrderCompleted && o.Status != StatusPayCompleted {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: "start approval"}
	}
	o.Status = StatusPendingApproval
	now := time.Now()
	o.ApprovalAttemptID = &attemptID
	o.ApprovalStartedAt = &now
	o.touch()
	return nil
}

// Approve resolves the approval step.
func (o *Order) Approve() error {
	if o.Status != StatusPendingApproval {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: "approve"}
	}
	o.Status = StatusApprovalOrder
	o.clearAttempt()
	o.touch()
	return nil
}

// RollbackToOrderCompleted compensates a failed or timed-out approval step.
// Reentrant: returns false without error when the order already left
// PENDING_APPROVAL, so the failure handler and the reaper may both call it.
func (o *Order) RollbackToOrderCompleted() (bool, error) {
	if o.Status != StatusPendingApproval {
		return false, nil
	}
	o.Status = StatusOrderCompleted
	o.clearAttempt()
	o.touch()
	return true, nil
}

// PendingShipping queues the approved order for shipping.
func (o *Order) PendingShipping() error {
	if o.Status != StatusApprovalOrder {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: "pending shipping"}
	}
	o.Status = StatusPendingShipping
	o.touch()
	return nil
}

// RegisterShipping records the carrier handoff and stamps today's date.
func (o *Order) RegisterShipping(carrier, trackingNumber string) error {
	if o.Status != StatusPendingShipping {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: "register shipping"}
	}
	if carrier == "" || trackingNumber == "" {
		return errors.New("carrier and tracking number are required")
	}
	o.Status = StatusShipping
	o.Carrier = carrier
	o.TrackingNumber = trackingNumber
	now := time.Now()
	o.ShippingDate = &now
	o.touch()
	return nil
}

// StartReceiving enters the asynchronous receiving step. Mirrors
// StartApproval.
func (o *Order) StartReceiving(attemptID string) error {
	if o.Status != StatusShipping {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: "start receiving"}
	}
	o.Status = StatusPendingReceiving
	now := time.Now()
	o.ApprovalAttemptID = &attemptID
	o.ApprovalStartedAt = &now
	o.touch()
	return nil
}

// CompleteReceiving settles the order as RECEIVED.
func (o *Order) CompleteReceiving() error {
	if o.Status != StatusPendingReceiving {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: "complete receiving"}
	}
	o.Status = StatusReceived
	o.clearAttempt()
	o.touch()
	return nil
}

// RollbackToShipping compensates a failed or timed-out receiving step.
// Reentrant like RollbackToOrderCompleted.
func (o *Order) RollbackToShipping() (bool, error) {
	if o.Status != StatusPendingReceiving {
		return false, nil
	}
	o.Status = StatusShipping
	o.clearAttempt()
	o.touch()
	return true, nil
}

// Reject settles the order as REJECTED, recording the reason.
func (o *Order) Reject(reason string) error {
	if err := o.transition(StatusRejected, "reject"); err != nil {
		return err
	}
	o.RejectedMessage = reason
	return nil
}

// Cancel settles the order as CANCELLED.
func (o *Order) Cancel() error {
	return o.transition(StatusCancelled, "cancel")
}

// RefundRejected records that the refund of a cancelled order failed.
func (o *Order) RefundRejected() error {
	return o.transition(StatusRefundRejected, "reject refund")
}

// AttemptMatches reports whether the given correlation token belongs to the
// currently in-flight step. An empty stored token matches nothing.
func (o *Order) AttemptMatches(attemptID string) bool {
	return o.ApprovalAttemptID != nil && *o.ApprovalAttemptID == attemptID
}

func (o *Order) transition(next Status, name string) error {
	if !o.Status.CanTransitionTo(next) {
		return &InvalidStateError{OrderID: o.ID, Current: o.Status, Transition: name}
	}
	o.Status = next
	o.touch()
	return nil
}

func (o *Order) clearAttempt() {
	o.ApprovalAttemptID = nil
	o.ApprovalStartedAt = nil
}

func (o *Order) touch() {
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()
}

// OrderRepository interface
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	// Update persists a mutated order with an optimistic version check and
	// returns ErrVersionConflict when a concurrent writer won.
	Update(ctx context.Context, order *Order) error
	// FindStuck returns orders sitting in the given in-flight status whose
	// step started before the deadline.
	FindStuck(ctx context.Context, status Status, before time.Time) ([]*Order, error)
}
