package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/order-service/mocks"
	"github.com/partsnet/order-system/shared/events"
	"github.com/partsnet/order-system/shared/saga"
)

func TestProcessStockDeductionSuccess_Execute(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	notifier := mocks.NewMockNotifier(t)

	order := testOrderInApproval(t, "ATTEMPT-1")
	repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(order, nil).Once()
	repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.StatusApprovalOrder && o.ApprovalAttemptID == nil
	})).Return(nil).Once()
	notifier.EXPECT().Notify(mock.Anything, mock.Anything, "ORDER_APPROVED", mock.Anything, saga.StepStockCheck).Return().Once()

	tx := application.NewOrderTransactions(repo, zap.NewNop())
	useCase := application.NewProcessStockDeductionSuccess(tx, notifier)

	err := useCase.Execute(context.Background(), &application.ProcessStockDeductionSuccessCommand{OrderID: 7})
	assert.NoError(t, err)
}

func TestProcessStockDeductionFailure_Execute(t *testing.T) {
	tests := []struct {
		name       string
		command    *application.ProcessStockDeductionFailureCommand
		setupMocks func(*mocks.MockOrderRepository, *mocks.MockPublisher, *mocks.MockNotifier)
	}{
		{
			name: "rolls back and requests a stock restore for reserved lines",
			command: &application.ProcessStockDeductionFailureCommand{
				OrderID:       7,
				AttemptID:     "ATTEMPT-1",
				Reason:        "part 101 out of stock",
				ReservedItems: []events.StockItem{{PartID: 102, Amount: 1}},
			},
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				// Loaded once for the staleness check, once by the rollback.
				repo.EXPECT().FindByID(mock.Anything, int64(7)).
					RunAndReturn(func(ctx context.Context, id int64) (*domain.Order, error) {
						return testOrderInApproval(t, "ATTEMPT-1"), nil
					}).Times(2)
				repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.Status == domain.StatusOrderCompleted && o.ApprovalAttemptID == nil
				})).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
					return evt.EventType == events.StockRestoreRequestedEvent
				})).Return(nil).Once()
				notifier.EXPECT().Notify(mock.Anything, mock.Anything, "APPROVAL_FAILED", mock.Anything, saga.StepFailed).Return().Once()
			},
		},
		{
			name: "nothing reserved, no restore request goes out",
			command: &application.ProcessStockDeductionFailureCommand{
				OrderID:   7,
				AttemptID: "ATTEMPT-1",
				Reason:    "part 101 out of stock",
			},
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().FindByID(mock.Anything, int64(7)).
					RunAndReturn(func(ctx context.Context, id int64) (*domain.Order, error) {
						return testOrderInApproval(t, "ATTEMPT-1"), nil
					}).Times(2)
				repo.EXPECT().Update(mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
				notifier.EXPECT().Notify(mock.Anything, mock.Anything, "APPROVAL_FAILED", mock.Anything, saga.StepFailed).Return().Once()
			},
		},
		{
			name: "stale attempt id is dropped without touching the order",
			command: &application.ProcessStockDeductionFailureCommand{
				OrderID:   7,
				AttemptID: "ATTEMPT-OLD",
				Reason:    "part 101 out of stock",
			},
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrderInApproval(t, "ATTEMPT-2"), nil).Once()
			},
		},
		{
			name: "duplicate delivery after the attempt settled is dropped",
			command: &application.ProcessStockDeductionFailureCommand{
				OrderID:   7,
				AttemptID: "ATTEMPT-1",
				Reason:    "part 101 out of stock",
			},
			setupMocks: func(repo *mocks.MockOrderRepository, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(testOrder(t, domain.StatusOrderCompleted), nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockOrderRepository(t)
			publisher := mocks.NewMockPublisher(t)
			notifier := mocks.NewMockNotifier(t)

			tt.setupMocks(repo, publisher, notifier)

			tx := application.NewOrderTransactions(repo, zap.NewNop())
			useCase := application.NewProcessStockDeductionFailure(repo, tx, publisher, notifier, zap.NewNop())

			err := useCase.Execute(context.Background(), tt.command)
			assert.NoError(t, err)
		})
	}
}
