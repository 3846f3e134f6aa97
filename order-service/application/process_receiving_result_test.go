package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/order-service/mocks"
	"github.com/partsnet/order-system/shared/saga"
)

func testOrderInReceiving(t *testing.T, attemptID string) *domain.Order {
	t.Helper()

	order := testOrder(t, domain.StatusPendingReceiving)
	startedAt := time.Now().Add(-time.Minute)
	order.ApprovalAttemptID = &attemptID
	order.ApprovalStartedAt = &startedAt
	order.Carrier = "HYUNDAI GLOVIS"
	order.TrackingNumber = "1234567890123"
	return order
}

func TestProcessReceivingSuccess_Execute(t *testing.T) {
	tests := []struct {
		name       string
		command    *application.ProcessReceivingSuccessCommand
		setupMocks func(*mocks.MockOrderRepository, *mocks.MockNotifier)
	}{
		{
			name:    "settles the order as received",
			command: &application.ProcessReceivingSuccessCommand{OrderID: 7, AttemptID: "ATTEMPT-1"},
			setupMocks: func(repo *mocks.MockOrderRepository, notifier *mocks.MockNotifier) {
				repo.EXPECT().FindByID(mock.Anything, int64(7)).
					RunAndReturn(func(ctx context.Context, id int64) (*domain.Order, error) {
						return testOrderInReceiving(t, "ATTEMPT-1"), nil
					}).Times(2)
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.Status == domain.StatusReceived && o.ApprovalAttemptID == nil
				})).Return(nil).Once()
				notifier.EXPECT().Notify(mock.Anything, mock.Anything, "ORDER_RECEIVED", mock.Anything, saga.StepCompleted).Return().Once()
			},
		},
		{
			name:    "stale attempt id is dropped",
			command: &application.ProcessReceivingSuccessCommand{OrderID: 7, AttemptID: "ATTEMPT-OLD"},
			setupMocks: func(repo *mocks.MockOrderRepository, notifier *mocks.MockNotifier) {
				repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrderInReceiving(t, "ATTEMPT-2"), nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockOrderRepository(t)
			notifier := mocks.NewMockNotifier(t)
			tt.setupMocks(repo, notifier)

			tx := application.NewOrderTransactions(repo, zap.NewNop())
			useCase := application.NewProcessReceivingSuccess(repo, tx, notifier, zap.NewNop())

			err := useCase.Execute(context.Background(), tt.command)
			assert.NoError(t, err)
		})
	}
}

func TestProcessReceivingFailure_Execute(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	notifier := mocks.NewMockNotifier(t)

	repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrderInReceiving(t, "ATTEMPT-1"), nil).Once()
	repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.StatusShipping && o.ApprovalAttemptID == nil
	})).Return(nil).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything, "RECEIVING_FAILED", mock.Anything, saga.StepReceiving).Return().Once()

	tx := application.NewOrderTransactions(repo, zap.NewNop())
	useCase := application.NewProcessReceivingFailure(tx, notifier)

	err := useCase.Execute(context.Background(), &application.ProcessReceivingFailureCommand{
		OrderID:      7,
		ErrorMessage: "recipient absent",
	})
	assert.NoError(t, err)
}

func TestProcessPaymentResult_Execute(t *testing.T) {
	t.Run("success settles the payment step", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		notifier := mocks.NewMockNotifier(t)

		repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrder(t, domain.StatusOrderCompleted), nil).Once()
		repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.StatusPayCompleted
		})).Return(nil).Once()

		tx := application.NewOrderTransactions(repo, zap.NewNop())
		useCase := application.NewProcessPaymentResult(tx, notifier, zap.NewNop())

		err := useCase.Execute(context.Background(), &application.ProcessPaymentResultCommand{OrderID: 7, Success: true})
		assert.NoError(t, err)
	})

	t.Run("failure settles the order as failed and notifies", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)
		notifier := mocks.NewMockNotifier(t)

		repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrder(t, domain.StatusOrderCompleted), nil).Once()
		repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.StatusFailed && o.RejectedMessage == "card declined"
		})).Return(nil).Once()
		notifier.EXPECT().Notify(mock.Anything, mock.Anything, "PAYMENT_FAILED", mock.Anything, saga.StepFailed).Return().Once()

		tx := application.NewOrderTransactions(repo, zap.NewNop())
		useCase := application.NewProcessPaymentResult(tx, notifier, zap.NewNop())

		err := useCase.Execute(context.Background(), &application.ProcessPaymentResultCommand{
			OrderID: 7,
			Success: false,
			Message: "card declined",
		})
		assert.NoError(t, err)
	})
}
