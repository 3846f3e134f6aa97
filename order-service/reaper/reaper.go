package reaper

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/telemetry"
)

// Reaper is the backstop for lost saga replies. Orders sitting in an
// in-flight status past the expiry deadline are rolled back to the state the
// step started from, exactly as if the failure reply had arrived. Running it
// concurrently with a late reply is safe: both paths go through the same
// idempotent rollback and the optimistic version check, so one of them wins
// and the other is a no-op.
type Reaper struct {
	orders   domain.OrderRepository
	tx       *application.OrderTransactions
	interval time.Duration
	expiry   time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures the reaper
type Option func(*Reaper)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(r *Reaper) {
		r.now = now
	}
}

// New creates a new Reaper
func New(orders domain.OrderRepository, tx *application.OrderTransactions, interval, expiry time.Duration, logger *zap.Logger, opts ...Option) *Reaper {
	r := &Reaper{
		orders:   orders,
		tx:       tx,
		interval: interval,
		expiry:   expiry,
		now:      time.Now,
		logger:   logger.Named("reaper"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sweeps on every tick until the context is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started",
		zap.Duration("interval", r.interval),
		zap.Duration("expiry", r.expiry),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep rolls back every expired in-flight order. A failure on one candidate
// is logged and the sweep moves on; the order stays for the next tick.
func (r *Reaper) Sweep(ctx context.Context) {
	deadline := r.now().Add(-r.expiry)

	r.sweepStatus(ctx, domain.StatusPendingApproval, deadline, func(orderID int64) error {
		_, err := r.tx.RollbackToOrderCompleted(ctx, orderID)
		return err
	})

	r.sweepStatus(ctx, domain.StatusPendingReceiving, deadline, func(orderID int64) error {
		_, err := r.tx.RollbackToShipping(ctx, orderID)
		return err
	})
}

func (r *Reaper) sweepStatus(ctx context.Context, status domain.Status, deadline time.Time, rollback func(orderID int64) error) {
	stuck, err := r.orders.FindStuck(ctx, status, deadline)
	if err != nil {
		r.logger.Error("failed to scan for stuck orders",
			zap.String("status", status.String()),
			zap.Error(err),
		)
		return
	}

	for _, order := range stuck {
		if err := rollback(order.ID); err != nil {
			r.logger.Error("failed to reap stuck order",
				zap.Int64("order_id", order.ID),
				zap.String("status", status.String()),
				zap.Error(err),
			)
			continue
		}

		r.logger.Warn("reaped stuck order",
			zap.Int64("order_id", order.ID),
			zap.String("status", status.String()),
			zap.Timep("started_at", order.ApprovalStartedAt),
		)

		telemetry.RecordCounter(ctx, "order_reaped_total", "Stuck orders rolled back by the reaper", 1,
			attribute.String("status", status.String()),
		)
	}
}
