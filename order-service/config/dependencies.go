package config

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/handlers"
	"github.com/partsnet/order-system/order-service/infrastructure"
	"github.com/partsnet/order-system/order-service/notification"
	"github.com/partsnet/order-system/order-service/reaper"
	sharedinfra "github.com/partsnet/order-system/shared/infrastructure"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Repositories
	OrderRepository *infrastructure.PostgresOrderRepository

	// Transaction unit
	OrderTransactions *application.OrderTransactions

	// Collaborator clients
	InventoryClient *infrastructure.HTTPInventoryClient
	UserClient      *infrastructure.HTTPUserClient

	// Use Cases
	CreateOrder                  *application.CreateOrder
	GetOrder                     *application.GetOrder
	StartApproval                *application.StartApproval
	PendingShipping              *application.PendingShipping
	RegisterShipping             *application.RegisterShipping
	StartReceiving               *application.StartReceiving
	CancelOrder                  *application.CancelOrder
	RejectOrder                  *application.RejectOrder
	ProcessPaymentResult         *application.ProcessPaymentResult
	ProcessStockDeductionSuccess *application.ProcessStockDeductionSuccess
	ProcessStockDeductionFailure *application.ProcessStockDeductionFailure
	ProcessReceivingSuccess      *application.ProcessReceivingSuccess
	ProcessReceivingFailure      *application.ProcessReceivingFailure
	ProcessCancelFailed          *application.ProcessCancelFailed

	// HTTP Handlers
	OrderHandlers *handlers.OrderHandlers

	// Event Handlers
	OrderEventHandlers *handlers.OrderEventHandlers

	// Background jobs
	Reaper *reaper.Reaper

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	EventSubscriber *sharedinfra.SQSSubscriberAdapter
}

func BuildDependencies(ctx context.Context, config *Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.DB = db

	if err := runMigrations(db, config.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(ctx, config.AWS.SNSTopicArn, config.AWS.EndpointSNS, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	deps.EventSubscriber = sharedinfra.NewSQSSubscriberAdapter(
		config.AWS.SQSQueueURL,
		config.AWS.EndpointSQS,
		logger,
		sharedinfra.WithWorkers(config.Subscriber.Workers),
	)

	// Initialize repositories and the transaction unit
	deps.OrderRepository = infrastructure.NewPostgresOrderRepository(db)
	deps.OrderTransactions = application.NewOrderTransactions(deps.OrderRepository, logger)

	// Initialize collaborator clients
	deps.InventoryClient = infrastructure.NewHTTPInventoryClient(collaboratorConfig(config.Collaborators.Inventory), logger)
	deps.UserClient = infrastructure.NewHTTPUserClient(collaboratorConfig(config.Collaborators.User), logger)

	notifier := notification.NewEventNotifier(eventPublisher, logger)

	// Initialize use cases
	deps.CreateOrder = application.NewCreateOrder(deps.OrderRepository, deps.InventoryClient, deps.UserClient, eventPublisher, notifier, logger)
	deps.GetOrder = application.NewGetOrder(deps.OrderRepository)
	deps.StartApproval = application.NewStartApproval(deps.OrderTransactions, eventPublisher, logger)
	deps.PendingShipping = application.NewPendingShipping(deps.OrderTransactions)
	deps.RegisterShipping = application.NewRegisterShipping(deps.OrderTransactions)
	deps.StartReceiving = application.NewStartReceiving(deps.OrderTransactions, eventPublisher, logger)
	deps.CancelOrder = application.NewCancelOrder(deps.OrderTransactions)
	deps.RejectOrder = application.NewRejectOrder(deps.OrderTransactions)
	deps.ProcessPaymentResult = application.NewProcessPaymentResult(deps.OrderTransactions, notifier, logger)
	deps.ProcessStockDeductionSuccess = application.NewProcessStockDeductionSuccess(deps.OrderTransactions, notifier)
	deps.ProcessStockDeductionFailure = application.NewProcessStockDeductionFailure(deps.OrderRepository, deps.OrderTransactions, eventPublisher, notifier, logger)
	deps.ProcessReceivingSuccess = application.NewProcessReceivingSuccess(deps.OrderRepository, deps.OrderTransactions, notifier, logger)
	deps.ProcessReceivingFailure = application.NewProcessReceivingFailure(deps.OrderTransactions, notifier)
	deps.ProcessCancelFailed = application.NewProcessCancelFailed(deps.OrderTransactions, notifier)

	// Initialize handlers
	deps.OrderHandlers = handlers.NewOrderHandlers(
		deps.CreateOrder,
		deps.GetOrder,
		deps.StartApproval,
		deps.PendingShipping,
		deps.RegisterShipping,
		deps.StartReceiving,
		deps.CancelOrder,
		deps.RejectOrder,
	)
	deps.OrderEventHandlers = handlers.NewOrderEventHandlers(
		deps.ProcessPaymentResult,
		deps.ProcessStockDeductionSuccess,
		deps.ProcessStockDeductionFailure,
		deps.ProcessReceivingSuccess,
		deps.ProcessReceivingFailure,
		deps.ProcessCancelFailed,
		logger,
	)

	// Initialize the timeout reaper
	deps.Reaper = reaper.New(
		deps.OrderRepository,
		deps.OrderTransactions,
		config.ReaperInterval(),
		config.ReaperExpiry(),
		logger,
	)

	return deps, nil
}

func collaboratorConfig(c Collaborator) infrastructure.CollaboratorConfig {
	return infrastructure.CollaboratorConfig{
		BaseURL:             c.BaseURL,
		Timeout:             time.Duration(c.TimeoutSeconds) * time.Second,
		BreakerMaxFailures:  c.BreakerMaxFailures,
		BreakerOpenInterval: time.Duration(c.BreakerOpenSeconds) * time.Second,
	}
}

func runMigrations(db *sqlx.DB, migrationsPath string) error {
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs *multierror.Error

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errs.ErrorOrNil()
}
