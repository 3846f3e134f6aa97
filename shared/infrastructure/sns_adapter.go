package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/shared/events"
)

// SNSPublisherAdapter wires an SNSEventPublisher into the events.Publisher
// interface and owns the AWS client setup.
type SNSPublisherAdapter struct {
	snsPublisher *SNSEventPublisher
}

// NewSNSPublisherAdapter creates a publisher for the given topic. An empty
// endpoint uses the default AWS resolution; a non-empty one points the client
// at LocalStack or a compatible emulator.
func NewSNSPublisherAdapter(ctx context.Context, topicArn, endpoint string, logger *zap.Logger) (*SNSPublisherAdapter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	})

	return &SNSPublisherAdapter{
		snsPublisher: NewSNSEventPublisher(client, topicArn, logger),
	}, nil
}

// Publish implements events.Publisher
func (p *SNSPublisherAdapter) Publish(ctx context.Context, evts ...*events.Event) error {
	return p.snsPublisher.Publish(ctx, evts...)
}

// Close closes the publisher
func (p *SNSPublisherAdapter) Close() error {
	// SNS client doesn't need explicit closing
	return nil
}
