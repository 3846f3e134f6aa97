package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/order-service/mocks"
	"github.com/partsnet/order-system/shared/events"
	"github.com/partsnet/order-system/shared/saga"
)

func TestCreateOrder_Execute(t *testing.T) {
	validCommand := func() *application.CreateOrderCommand {
		return &application.CreateOrderCommand{
			MemberID:    5,
			PaymentType: "CARD",
			Items: []application.CreateOrderItem{
				{PartID: 101, Amount: 2},
			},
		}
	}

	tests := []struct {
		name          string
		command       *application.CreateOrderCommand
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockInventoryClient, *mocks.MockUserClient, *mocks.MockPublisher, *mocks.MockNotifier)
		expectedError string
		expectedTotal int64
	}{
		{
			name:    "creates the order and kicks off the payment step",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				users.EXPECT().GetMember(mock.Anything, int64(5)).Return(&application.MemberInfo{ID: 5, Name: "Kim"}, nil).Once()
				inventory.EXPECT().GetParts(mock.Anything, []int64{101}).Return(map[int64]application.PartInfo{
					101: {PartID: 101, Price: 50000, Cost: 30000, Category: "ENGINE", Location: "A-1"},
				}, nil).Once()
				repo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*domain.Order")).
					Run(func(ctx context.Context, order *domain.Order) {
						order.ID = 42
						order.StampOrderNumber(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
					}).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(evt *events.Event) bool {
					return evt.EventType == events.PayRequestedEvent && evt.AggregateID == "42"
				})).Return(nil).Once()
				notifier.EXPECT().Notify(mock.Anything, mock.Anything, "ORDER_CREATED", mock.Anything, saga.StepPayment).Return().Once()
			},
			expectedTotal: 100000,
		},
		{
			name:    "publish failure does not fail the creation",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				users.EXPECT().GetMember(mock.Anything, int64(5)).Return(&application.MemberInfo{ID: 5, Name: "Kim"}, nil).Once()
				inventory.EXPECT().GetParts(mock.Anything, []int64{101}).Return(map[int64]application.PartInfo{
					101: {PartID: 101, Price: 50000},
				}, nil).Once()
				repo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*domain.Order")).
					Run(func(ctx context.Context, order *domain.Order) {
						order.ID = 42
						order.StampOrderNumber(time.Now())
					}).Return(nil).Once()
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).
					Return(errors.New("sns unreachable")).Once()
				notifier.EXPECT().Notify(mock.Anything, mock.Anything, "ORDER_CREATED", mock.Anything, saga.StepPayment).Return().Once()
			},
			expectedTotal: 100000,
		},
		{
			name:    "unknown member",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				users.EXPECT().GetMember(mock.Anything, int64(5)).Return(nil, nil).Once()
			},
			expectedError: "member 5 not found",
		},
		{
			name:    "inventory unavailable",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				users.EXPECT().GetMember(mock.Anything, int64(5)).Return(&application.MemberInfo{ID: 5}, nil).Once()
				inventory.EXPECT().GetParts(mock.Anything, []int64{101}).
					Return(nil, errors.Wrap(application.ErrCollaboratorUnavailable, "inventory circuit open")).Once()
			},
			expectedError: "failed to snapshot parts",
		},
		{
			name: "no items",
			command: &application.CreateOrderCommand{
				MemberID:    5,
				PaymentType: "CARD",
			},
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				// Fails validation before any collaborator call.
			},
			expectedError: "at least one item is required",
		},
		{
			name: "non-positive amount",
			command: &application.CreateOrderCommand{
				MemberID:    5,
				PaymentType: "CARD",
				Items:       []application.CreateOrderItem{{PartID: 101, Amount: 0}},
			},
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
			},
			expectedError: "amount must be positive",
		},
		{
			name:    "repository create error",
			command: validCommand(),
			setupMocks: func(repo *mocks.MockOrderRepository, inventory *mocks.MockInventoryClient, users *mocks.MockUserClient, publisher *mocks.MockPublisher, notifier *mocks.MockNotifier) {
				users.EXPECT().GetMember(mock.Anything, int64(5)).Return(&application.MemberInfo{ID: 5}, nil).Once()
				inventory.EXPECT().GetParts(mock.Anything, []int64{101}).Return(map[int64]application.PartInfo{
					101: {PartID: 101, Price: 50000},
				}, nil).Once()
				repo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*domain.Order")).
					Return(errors.New("database error")).Once()
			},
			expectedError: "failed to persist order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockOrderRepository(t)
			inventory := mocks.NewMockInventoryClient(t)
			users := mocks.NewMockUserClient(t)
			publisher := mocks.NewMockPublisher(t)
			notifier := mocks.NewMockNotifier(t)

			tt.setupMocks(repo, inventory, users, publisher, notifier)

			useCase := application.NewCreateOrder(repo, inventory, users, publisher, notifier, zap.NewNop())
			result, err := useCase.Execute(context.Background(), tt.command)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, result)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, result)
			assert.Equal(t, int64(42), result.OrderID)
			assert.Equal(t, tt.expectedTotal, result.TotalPrice)
			assert.Equal(t, domain.StatusOrderCompleted.String(), result.Status)
			assert.NotContains(t, result.OrderNumber, "TMP-")
		})
	}
}
