package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/shared/events"
)

// SQSSubscriberAdapter wires an SQSEventSubscriber into the events.Subscriber
// interface and owns the AWS client setup.
type SQSSubscriberAdapter struct {
	sqsSubscriber *SQSEventSubscriber
	queueURL      string
	endpoint      string
	logger        *zap.Logger
	opts          []SQSSubscriberOption
}

// NewSQSSubscriberAdapter creates a subscriber for the given queue.
func NewSQSSubscriberAdapter(queueURL, endpoint string, logger *zap.Logger, opts ...SQSSubscriberOption) *SQSSubscriberAdapter {
	return &SQSSubscriberAdapter{
		queueURL: queueURL,
		endpoint: endpoint,
		logger:   logger,
		opts:     opts,
	}
}

// Subscribe implements events.Subscriber. It blocks until the subscriber has
// started; consumption itself runs on background goroutines.
func (s *SQSSubscriberAdapter) Subscribe(ctx context.Context, handler events.EventHandler) error {
	if s.sqsSubscriber != nil {
		return errors.New("subscriber is already running")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = &s.endpoint
		}
	})

	s.sqsSubscriber = NewSQSEventSubscriber(client, s.queueURL, handler, s.logger, s.opts...)

	if err := s.sqsSubscriber.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start SQS subscriber")
	}

	return nil
}

// Close stops the subscriber
func (s *SQSSubscriberAdapter) Close() error {
	if s.sqsSubscriber == nil {
		return nil
	}

	if err := s.sqsSubscriber.Stop(context.Background()); err != nil {
		return errors.Wrap(err, "failed to stop SQS subscriber")
	}

	s.sqsSubscriber = nil
	return nil
}
