package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/models"
)

// PostgresOrderRepository implements domain.OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

type postgresOrder struct {
	ID                    int64      `db:"id"`
	OrderNumber           string     `db:"order_number"`
	MemberID              int64      `db:"member_id"`
	Status                string     `db:"status"`
	ApprovalAttemptID     *string    `db:"approval_attempt_id"`
	ApprovalStartedAt     *time.Time `db:"approval_started_at"`
	TotalPrice            int64      `db:"total_price"`
	PaymentType           string     `db:"payment_type"`
	Etc                   string     `db:"etc"`
	RejectedMessage       string     `db:"rejected_message"`
	Carrier               string     `db:"carrier"`
	TrackingNumber        string     `db:"tracking_number"`
	RequestedShippingDate string     `db:"requested_shipping_date"`
	ShippingDate          *time.Time `db:"shipping_date"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
	Version               int        `db:"version"`
}

type postgresOrderItem struct {
	OrderID  int64  `db:"order_id"`
	PartID   int64  `db:"part_id"`
	Amount   int64  `db:"amount"`
	Price    int64  `db:"price"`
	Cost     int64  `db:"cost"`
	Category string `db:"category"`
	Location string `db:"location"`
}

// Create inserts the order and its line items in one transaction. The
// numeric id comes from the database, after which the placeholder order
// number is replaced by the final one.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	pg := toPostgres(order)

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO orders (
			order_number, member_id, status, approval_attempt_id,
			approval_started_at, total_price, payment_type, etc,
			rejected_message, carrier, tracking_number,
			requested_shipping_date, shipping_date, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		pg.OrderNumber, pg.MemberID, pg.Status, pg.ApprovalAttemptID,
		pg.ApprovalStartedAt, pg.TotalPrice, pg.PaymentType, pg.Etc,
		pg.RejectedMessage, pg.Carrier, pg.TrackingNumber,
		pg.RequestedShippingDate, pg.ShippingDate, pg.CreatedAt, pg.UpdatedAt, pg.Version,
	)

	if err := row.Scan(&order.ID); err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	order.StampOrderNumber(time.Now())

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET order_number = $1, updated_at = $2, version = $3 WHERE id = $4`,
		order.OrderNumber, order.Timestamps.UpdatedAt, order.Version.Value, order.ID,
	); err != nil {
		return errors.Wrap(err, "failed to stamp order number")
	}

	for _, item := range order.Items {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO order_items (order_id, part_id, amount, price, cost, category, location)
			VALUES (:order_id, :part_id, :amount, :price, :cost, :category, :location)`,
			&postgresOrderItem{
				OrderID:  order.ID,
				PartID:   item.PartID,
				Amount:   item.Amount,
				Price:    item.Price,
				Cost:     item.Cost,
				Category: item.Category,
				Location: item.Location,
			},
		); err != nil {
			return errors.Wrap(err, "failed to insert order item")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit order")
	}

	return nil
}

// Update persists a mutated order with an optimistic version check.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE orders
		SET status = :status,
			approval_attempt_id = :approval_attempt_id,
			approval_started_at = :approval_started_at,
			rejected_message = :rejected_message,
			carrier = :carrier,
			tracking_number = :tracking_number,
			shipping_date = :shipping_date,
			updated_at = :updated_at,
			version = :version
		WHERE id = :id AND version = :old_version`,
		map[string]interface{}{
			"id":                  order.ID,
			"status":              string(order.Status),
			"approval_attempt_id": order.ApprovalAttemptID,
			"approval_started_at": order.ApprovalStartedAt,
			"rejected_message":    order.RejectedMessage,
			"carrier":             order.Carrier,
			"tracking_number":     order.TrackingNumber,
			"shipping_date":       order.ShippingDate,
			"updated_at":          order.Timestamps.UpdatedAt,
			"version":             order.Version.Value,
			"old_version":         order.Version.Value - 1,
		})
	if err != nil {
		return errors.Wrap(err, "failed to update order")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		// Either the row is gone or a concurrent writer bumped the version
		// first. Both mean this writer lost the race.
		return domain.ErrVersionConflict
	}

	return nil
}

// FindByID finds an order with its line items.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var pg postgresOrder
	err := r.db.GetContext(ctx, &pg, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return toDomain(&pg, items), nil
}

// FindByOrderNumber finds an order by its unique order number.
func (r *PostgresOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var pg postgresOrder
	err := r.db.GetContext(ctx, &pg, `SELECT * FROM orders WHERE order_number = $1`, orderNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find order by number")
	}

	items, err := r.findItems(ctx, pg.ID)
	if err != nil {
		return nil, err
	}

	return toDomain(&pg, items), nil
}

// FindStuck returns orders in the given in-flight status whose step started
// before the deadline. Line items are not loaded; the reaper only needs the
// order identity and the rollback runs through its own load.
func (r *PostgresOrderRepository) FindStuck(ctx context.Context, status domain.Status, before time.Time) ([]*domain.Order, error) {
	var pgs []postgresOrder
	err := r.db.SelectContext(ctx, &pgs, `
		SELECT * FROM orders
		WHERE status = $1 AND approval_started_at IS NOT NULL AND approval_started_at < $2
		ORDER BY approval_started_at`,
		string(status), before,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find stuck orders")
	}

	orders := make([]*domain.Order, len(pgs))
	for i := range pgs {
		orders[i] = toDomain(&pgs[i], nil)
	}

	return orders, nil
}

func (r *PostgresOrderRepository) findItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var pgItems []postgresOrderItem
	err := r.db.SelectContext(ctx, &pgItems, `
		SELECT order_id, part_id, amount, price, cost, category, location
		FROM order_items WHERE order_id = $1 ORDER BY part_id`,
		orderID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order items")
	}

	items := make([]domain.OrderItem, len(pgItems))
	for i, pgItem := range pgItems {
		items[i] = domain.OrderItem{
			PartID:   pgItem.PartID,
			Amount:   pgItem.Amount,
			Price:    pgItem.Price,
			Cost:     pgItem.Cost,
			Category: pgItem.Category,
			Location: pgItem.Location,
		}
	}

	return items, nil
}

func toPostgres(order *domain.Order) *postgresOrder {
	return &postgresOrder{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		MemberID:              order.MemberID,
		Status:                string(order.Status),
		ApprovalAttemptID:     order.ApprovalAttemptID,
		ApprovalStartedAt:     order.ApprovalStartedAt,
		TotalPrice:            order.TotalPrice,
		PaymentType:           order.PaymentType,
		Etc:                   order.Etc,
		RejectedMessage:       order.RejectedMessage,
		Carrier:               order.Carrier,
		TrackingNumber:        order.TrackingNumber,
		RequestedShippingDate: order.RequestedShippingDate,
		ShippingDate:          order.ShippingDate,
		CreatedAt:             order.Timestamps.CreatedAt,
		UpdatedAt:             order.Timestamps.UpdatedAt,
		Version:               order.Version.Value,
	}
}

func toDomain(pg *postgresOrder, items []domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:                    pg.ID,
		OrderNumber:           pg.OrderNumber,
		MemberID:              pg.MemberID,
		Status:                domain.Status(pg.Status),
		ApprovalAttemptID:     pg.ApprovalAttemptID,
		ApprovalStartedAt:     pg.ApprovalStartedAt,
		TotalPrice:            pg.TotalPrice,
		PaymentType:           pg.PaymentType,
		Etc:                   pg.Etc,
		RejectedMessage:       pg.RejectedMessage,
		Carrier:               pg.Carrier,
		TrackingNumber:        pg.TrackingNumber,
		RequestedShippingDate: pg.RequestedShippingDate,
		ShippingDate:          pg.ShippingDate,
		Items:                 items,
		Timestamps: models.Timestamps{
			CreatedAt: pg.CreatedAt,
			UpdatedAt: pg.UpdatedAt,
		},
		Version: models.Version{Value: pg.Version},
	}
}
