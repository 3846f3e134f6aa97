package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := CreateOrder(7, "CARD", "", "2026-09-15", []OrderItem{
		{PartID: 101, Amount: 2, Price: 50000, Cost: 30000, Category: "ENGINE", Location: "A-03"},
	})
	require.NoError(t, err)
	order.ID = 42
	return order
}

func TestCreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		memberID      int64
		items         []OrderItem
		expectedTotal int64
		expectedError string
	}{
		{
			name:     "computes total price from item snapshots",
			memberID: 7,
			items: []OrderItem{
				{PartID: 101, Amount: 2, Price: 50000},
			},
			expectedTotal: 100000,
		},
		{
			name:     "sums multiple lines",
			memberID: 7,
			items: []OrderItem{
				{PartID: 101, Amount: 2, Price: 50000},
				{PartID: 202, Amount: 1, Price: 15000},
			},
			expectedTotal: 115000,
		},
		{
			name:          "rejects empty items",
			memberID:      7,
			items:         nil,
			expectedError: "at least one item",
		},
		{
			name:     "rejects non-positive amount",
			memberID: 7,
			items: []OrderItem{
				{PartID: 101, Amount: 0, Price: 50000},
			},
			expectedError: "amount must be positive",
		},
		{
			name:     "rejects negative price",
			memberID: 7,
			items: []OrderItem{
				{PartID: 101, Amount: 1, Price: -1},
			},
			expectedError: "price must not be negative",
		},
		{
			name:          "rejects missing member",
			memberID:      0,
			items:         []OrderItem{{PartID: 101, Amount: 1, Price: 1}},
			expectedError: "member id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := CreateOrder(tt.memberID, "CARD", "", "", tt.items)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, StatusOrderCompleted, order.Status)
			assert.Equal(t, tt.expectedTotal, order.TotalPrice)
			assert.Contains(t, order.OrderNumber, "TMP-")
			assert.Nil(t, order.ApprovalAttemptID)
			assert.Equal(t, 1, order.Version.Value)
		})
	}
}

func TestOrder_StampOrderNumber(t *testing.T) {
	order := newTestOrder(t)

	order.StampOrderNumber(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, "ORD-20260831-000042", order.OrderNumber)
}

func TestOrder_StartApproval(t *testing.T) {
	order := newTestOrder(t)

	err := order.StartApproval("ATTEMPT-1")

	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, order.Status)
	require.NotNil(t, order.ApprovalAttemptID)
	assert.Equal(t, "ATTEMPT-1", *order.ApprovalAttemptID)
	assert.NotNil(t, order.ApprovalStartedAt)
	assert.True(t, order.AttemptMatches("ATTEMPT-1"))

	// A duplicate trigger must not mint a second attempt.
	err = order.StartApproval("ATTEMPT-2")
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, StatusPendingApproval, order.Status)
	assert.Equal(t, "ATTEMPT-1", *order.ApprovalAttemptID)
}

func TestOrder_StartApprovalAfterPayment(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.CompletePayment())

	err := order.StartApproval("ATTEMPT-1")

	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, order.Status)
}

func TestOrder_RollbackToOrderCompleted(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.StartApproval("ATTEMPT-1"))

	applied, err := order.RollbackToOrderCompleted()
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StatusOrderCompleted, order.Status)
	assert.Nil(t, order.ApprovalAttemptID)
	assert.Nil(t, order.ApprovalStartedAt)

	// Second invocation is a no-op, not an error: the failure handler and
	// the reaper may both call it.
	applied, err = order.RollbackToOrderCompleted()
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, StatusOrderCompleted, order.Status)
}

func TestOrder_RegisterShipping(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.StartApproval("ATTEMPT-1"))
	require.NoError(t, order.Approve())
	require.NoError(t, order.PendingShipping())

	err := order.RegisterShipping("현대글로비스", "1234567890123")

	require.NoError(t, err)
	assert.Equal(t, StatusShipping, order.Status)
	assert.Equal(t, "현대글로비스", order.Carrier)
	assert.Equal(t, "1234567890123", order.TrackingNumber)
	require.NotNil(t, order.ShippingDate)
	assert.WithinDuration(t, time.Now(), *order.ShippingDate, time.Minute)
}

func TestOrder_RegisterShippingRequiresCarrier(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.StartApproval("ATTEMPT-1"))
	require.NoError(t, order.Approve())
	require.NoError(t, order.PendingShipping())

	err := order.RegisterShipping("", "1234567890123")

	require.Error(t, err)
	assert.Equal(t, StatusPendingShipping, order.Status)
}

func TestOrder_ReceivingPhase(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.StartApproval("ATTEMPT-1"))
	require.NoError(t, order.Approve())
	require.NoError(t, order.PendingShipping())
	require.NoError(t, order.RegisterShipping("CJ대한통운", "9876543210"))

	require.NoError(t, order.StartReceiving("ATTEMPT-2"))
	assert.Equal(t, StatusPendingReceiving, order.Status)
	assert.True(t, order.AttemptMatches("ATTEMPT-2"))

	applied, err := order.RollbackToShipping()
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StatusShipping, order.Status)
	assert.Nil(t, order.ApprovalAttemptID)

	applied, err = order.RollbackToShipping()
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestOrder_HappyPath(t *testing.T) {
	order := newTestOrder(t)

	expected := []Status{
		StatusPendingApproval,
		StatusApprovalOrder,
		StatusPendingShipping,
		StatusShipping,
		StatusPendingReceiving,
		StatusReceived,
	}

	steps := []func() error{
		func() error { return order.StartApproval("ATTEMPT-1") },
		order.Approve,
		order.PendingShipping,
		func() error { return order.RegisterShipping("현대글로비스", "1234567890123") },
		func() error { return order.StartReceiving("ATTEMPT-2") },
		order.CompleteReceiving,
	}

	for i, step := range steps {
		require.NoError(t, step())
		assert.Equal(t, expected[i], order.Status)
	}

	assert.Nil(t, order.ApprovalAttemptID)
	assert.True(t, order.Status.Terminal())
}

func TestOrder_PaymentFailure(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.FailPayment("card declined"))

	assert.Equal(t, StatusFailed, order.Status)
	assert.Equal(t, "card declined", order.RejectedMessage)
	assert.True(t, order.Status.Terminal())
}

func TestOrder_CancelAndRefundRejected(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.CompletePayment())

	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)

	require.NoError(t, order.RefundRejected())
	assert.Equal(t, StatusRefundRejected, order.Status)
}

func TestOrder_IllegalTransitionsLeaveRecordUnmodified(t *testing.T) {
	order := newTestOrder(t)
	require.NoError(t, order.StartApproval("ATTEMPT-1"))
	versionBefore := order.Version.Value

	var ise *InvalidStateError

	require.ErrorAs(t, order.PendingShipping(), &ise)
	require.ErrorAs(t, order.CompleteReceiving(), &ise)
	require.ErrorAs(t, order.RegisterShipping("A", "B"), &ise)
	require.ErrorAs(t, order.StartReceiving("ATTEMPT-X"), &ise)
	require.ErrorAs(t, order.Cancel(), &ise)

	assert.Equal(t, StatusPendingApproval, order.Status)
	assert.Equal(t, versionBefore, order.Version.Value)
	assert.True(t, order.AttemptMatches("ATTEMPT-1"))
}

func TestStatus_InFlight(t *testing.T) {
	assert.True(t, StatusPendingApproval.InFlight())
	assert.True(t, StatusPendingReceiving.InFlight())
	assert.False(t, StatusShipping.InFlight())
	assert.False(t, StatusOrderCompleted.InFlight())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusOrderCompleted.CanTransitionTo(StatusPendingApproval))
	assert.True(t, StatusPendingReceiving.CanTransitionTo(StatusShipping))
	assert.False(t, StatusOrderCompleted.CanTransitionTo(StatusShipping))
	assert.False(t, StatusReceived.CanTransitionTo(StatusOrderCompleted))
}
