package reaper

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
)

func stuckOrder(t *testing.T, id int64, status domain.Status, startedAt time.Time) *domain.Order {
	t.Helper()

	order, err := domain.CreateOrder(1, "CARD", "", "", []domain.OrderItem{
		{PartID: 101, Amount: 1, Price: 1000},
	})
	assert.NoError(t, err)

	order.ID = id
	attemptID := "ATTEMPT-1"
	order.Status = status
	order.ApprovalAttemptID = &attemptID
	order.ApprovalStartedAt = &startedAt
	return order
}

func TestReaper_Sweep(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	expiry := 10 * time.Minute
	deadline := now.Add(-expiry)

	t.Run("rolls back expired orders in both in-flight statuses", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)

		approval := stuckOrder(t, 7, domain.StatusPendingApproval, deadline.Add(-time.Minute))
		receiving := stuckOrder(t, 8, domain.StatusPendingReceiving, deadline.Add(-time.Minute))

		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingApproval, deadline).
			Return([]*domain.Order{approval}, nil).Once()
		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingReceiving, deadline).
			Return([]*domain.Order{receiving}, nil).Once()

		// The rollbacks reload through the repository.
		repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(approval, nil).Once()
		repo.EXPECT().FindByID(mock.Anything, int64(8)).Return(receiving, nil).Once()
		repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.ID == 7 && o.Status == domain.StatusOrderCompleted && o.ApprovalAttemptID == nil
		})).Return(nil).Once()
		repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.ID == 8 && o.Status == domain.StatusShipping && o.ApprovalAttemptID == nil
		})).Return(nil).Once()

		tx := application.NewOrderTransactions(repo, zap.NewNop())
		r := New(repo, tx, time.Minute, expiry, zap.NewNop(), WithClock(func() time.Time { return now }))

		r.Sweep(context.Background())
	})

	t.Run("nothing expired", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)

		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingApproval, deadline).
			Return(nil, nil).Once()
		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingReceiving, deadline).
			Return(nil, nil).Once()

		tx := application.NewOrderTransactions(repo, zap.NewNop())
		r := New(repo, tx, time.Minute, expiry, zap.NewNop(), WithClock(func() time.Time { return now }))

		r.Sweep(context.Background())
	})

	t.Run("a failing candidate does not abort the sweep", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)

		first := stuckOrder(t, 7, domain.StatusPendingApproval, deadline.Add(-time.Minute))
		second := stuckOrder(t, 9, domain.StatusPendingApproval, deadline.Add(-time.Minute))

		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingApproval, deadline).
			Return([]*domain.Order{first, second}, nil).Once()
		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingReceiving, deadline).
			Return(nil, nil).Once()

		// First candidate loses the optimistic-lock race, second one still runs.
		repo.EXPECT().FindByID(mock.Anything, int64(7)).Return(first, nil).Once()
		repo.EXPECT().FindByID(mock.Anything, int64(9)).Return(second, nil).Once()
		repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.ID == 7
		})).Return(domain.ErrVersionConflict).Once()
		repo.EXPECT().Update(mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
			return o.ID == 9
		})).Return(nil).Once()

		tx := application.NewOrderTransactions(repo, zap.NewNop())
		r := New(repo, tx, time.Minute, expiry, zap.NewNop(), WithClock(func() time.Time { return now }))

		r.Sweep(context.Background())

		assert.Equal(t, domain.StatusOrderCompleted, second.Status)
	})

	t.Run("scan failure is logged and skipped", func(t *testing.T) {
		repo := mocks.NewMockOrderRepository(t)

		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingApproval, deadline).
			Return(nil, errors.New("connection refused")).Once()
		repo.EXPECT().FindStuck(mock.Anything, domain.StatusPendingReceiving, deadline).
			Return(nil, nil).Once()

		tx := application.NewOrderTransactions(repo, zap.NewNop())
		r := New(repo, tx, time.Minute, expiry, zap.NewNop(), WithClock(func() time.Time { return now }))

		r.Sweep(context.Background())
	})
}

func TestReaper_RunStopsOnCancel(t *testing.T) {
	repo := mocks.NewMockOrderRepository(t)
	tx := application.NewOrderTransactions(repo, zap.NewNop())
	r := New(repo, tx, time.Hour, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on context cancellation")
	}
}
