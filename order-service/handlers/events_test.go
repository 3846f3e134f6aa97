package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/order-service/mocks"
	"github.com/partsnet/order-system/shared/events"
)

func newTestHandlers(repo *mocks.MockOrderRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) *OrderEventHandlers {
	logger := zap.NewNop()
	tx := application.NewOrderTransactions(repo, logger)

	return NewOrderEventHandlers(
		application.NewProcessPaymentResult(tx, notifier, logger),
		application.NewProcessStockDeductionSuccess(tx, notifier),
		application.NewProcessStockDeductionFailure(repo, tx, publisher, notifier, logger),
		application.NewProcessReceivingSuccess(repo, tx, notifier, logger),
		application.NewProcessReceivingFailure(tx, notifier),
		application.NewProcessCancelFailed(tx, notifier),
		logger,
	)
}

func testOrder(t *testing.T, status domain.Status) *domain.Order {
	t.Helper()

	order, err := domain.CreateOrder(1, "CARD", "", "", []domain.OrderItem{
		{PartID: 101, Amount: 2, Price: 50000},
	})
	assert.NoError(t, err)

	order.ID = 7
	order.OrderNumber = "ORD-20260831-000007"
	order.Status = status
	return order
}

func TestOrderEventHandlers_Handle_PaymentCompleted(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	publisher := mocks.NewMockPublisher(t)
	notifier := mocks.NewMockNotifier(t)

	repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrder(t, domain.StatusOrderCompleted), nil).Once()
	repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.StatusPayCompleted
	})).Return(nil).Once()

	h := newTestHandlers(repo, publisher, notifier)

	event := events.NewEvent("7", events.PayCompletedEvent, events.PayResultData{
		OrderID: 7,
		Success: true,
	})

	assert.NoError(t, h.Handle(context.Background(), event))
}

func TestOrderEventHandlers_Handle_StaleReplyIsAcknowledged(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	publisher := mocks.NewMockPublisher(t)
	notifier := mocks.NewMockNotifier(t)

	// A payment reply for an order that already moved on: illegal transition,
	// but the message must not be redelivered.
	repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrder(t, domain.StatusShipping), nil).Once()

	h := newTestHandlers(repo, publisher, notifier)

	event := events.NewEvent("7", events.PayCompletedEvent, events.PayResultData{
		OrderID: 7,
		Success: true,
	})

	assert.NoError(t, h.Handle(context.Background(), event))
}

func TestOrderEventHandlers_Handle_TransientFailureIsRetried(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	publisher := mocks.NewMockPublisher(t)
	notifier := mocks.NewMockNotifier(t)

	repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(nil, errors.New("connection refused")).Once()

	h := newTestHandlers(repo, publisher, notifier)

	event := events.NewEvent("7", events.PayCompletedEvent, events.PayResultData{
		OrderID: 7,
		Success: true,
	})

	err := h.Handle(context.Background(), event)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOrderEventHandlers_Handle_UnknownEventIsIgnored(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	publisher := mocks.NewMockPublisher(t)
	notifier := mocks.NewMockNotifier(t)

	h := newTestHandlers(repo, publisher, notifier)

	event := events.NewEvent("7", events.PayRequestedEvent, events.PayRequestData{OrderID: 7})
	assert.NoError(t, h.Handle(context.Background(), event))
}

func TestReservedItems(t *testing.T) {
	tests := []struct {
		name     string
		raw      json.RawMessage
		expected []events.StockItem
	}{
		{
			name:     "empty blob",
			raw:      nil,
			expected: nil,
		},
		{
			name:     "blob without reserved lines",
			raw:      json.RawMessage(`{"warehouse":"A"}`),
			expected: nil,
		},
		{
			name: "reserved lines present",
			raw:  json.RawMessage(`{"reserved_items":[{"part_id":102,"amount":1}]}`),
			expected: []events.StockItem{
				{PartID: 102, Amount: 1},
			},
		},
		{
			name:     "malformed blob is tolerated",
			raw:      json.RawMessage(`not json`),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, reservedItems(tt.raw))
		})
	}
}
