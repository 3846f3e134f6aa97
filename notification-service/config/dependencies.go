package config

import (
	"go.uber.org/zap"

	"github.com/partsnet/order-system/notification-service/handlers"
	"github.com/partsnet/order-system/notification-service/registry"
	sharedinfra "github.com/partsnet/order-system/shared/infrastructure"
)

type Dependencies struct {
	// Connection registry
	Registry *registry.Registry

	// HTTP Handlers
	WebsocketHandlers *handlers.WebsocketHandlers

	// Event Handlers
	NotificationEventHandlers *handlers.NotificationEventHandlers

	// Infrastructure
	EventSubscriber *sharedinfra.SQSSubscriberAdapter
}

func BuildDependencies(config *Config, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{}

	deps.EventSubscriber = sharedinfra.NewSQSSubscriberAdapter(
		config.AWS.SQSQueueURL,
		config.AWS.EndpointSQS,
		logger,
	)

	deps.Registry = registry.New(logger)
	deps.WebsocketHandlers = handlers.NewWebsocketHandlers(deps.Registry, logger)
	deps.NotificationEventHandlers = handlers.NewNotificationEventHandlers(deps.Registry, logger)

	return deps
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	if d.EventSubscriber != nil {
		return d.EventSubscriber.Close()
	}
	return nil
}
