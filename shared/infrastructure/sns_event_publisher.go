package infrastructure

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/partsnet/order-system/shared/events"
)

var _ events.Publisher = (*SNSEventPublisher)(nil)

const maxBatchSize = 10

type snsMessage struct {
	ID        string          `json:"id"`
	Metadata  events.Metadata `json:"metadata"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// SNSEventPublisher publishes saga events to an SNS topic. On FIFO topics the
// order id becomes the message group, which keeps replies for one order in
// order on the subscribing queues.
type SNSEventPublisher struct {
	client   *sns.Client
	topicArn string
	fifo     bool
	logger   *zap.Logger
}

// NewSNSEventPublisher creates a new SNSEventPublisher
func NewSNSEventPublisher(client *sns.Client, topicArn string, logger *zap.Logger) *SNSEventPublisher {
	return &SNSEventPublisher{
		client:   client,
		topicArn: topicArn,
		fifo:     strings.HasSuffix(topicArn, ".fifo"),
		logger:   logger,
	}
}

// Publish publishes events to SNS in batches of at most ten entries.
func (p *SNSEventPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	batches := splitToChunks(evts, maxBatchSize)

	gr, ctx := errgroup.WithContext(ctx)
	for _, batch := range batches {
		batch := batch
		gr.Go(func() error {
			return p.batchPublish(ctx, batch)
		})
	}

	return gr.Wait()
}

func (p *SNSEventPublisher) batchPublish(ctx context.Context, evts []*events.Event) error {
	requests := make([]types.PublishBatchRequestEntry, len(evts))

	for i, event := range evts {
		msgJSON, err := encodeEvent(event)
		if err != nil {
			return err
		}

		attrs := map[string]types.MessageAttributeValue{
			"topic": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Topic)),
			},
			aggregateIDKey: {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.AggregateID),
			},
		}

		for k, v := range event.Metadata {
			if k == SQSMessageIDKey || k == SQSReceiptHandleKey {
				continue
			}

			attrs[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}

		entry := types.PublishBatchRequestEntry{
			Id:                aws.String(event.ID.String()),
			Message:           aws.String(msgJSON),
			MessageAttributes: attrs,
		}

		if p.fifo {
			entry.MessageGroupId = aws.String(event.AggregateID)
			entry.MessageDeduplicationId = aws.String(event.ID.String())
		}

		requests[i] = entry
	}

	res, err := p.client.PublishBatch(
		ctx,
		&sns.PublishBatchInput{
			TopicArn:                   &p.topicArn,
			PublishBatchRequestEntries: requests,
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	for _, entry := range res.Failed {
		p.logger.Error("event rejected by SNS",
			zap.Stringp("event_id", entry.Id),
			zap.Stringp("code", entry.Code),
			zap.Stringp("message", entry.Message),
		)
	}

	return nil
}

// encodeEvent serializes the bus envelope. The aggregate id travels inside
// the envelope metadata so decodeEvent can restore the partition key on the
// consuming side.
func encodeEvent(event *events.Event) (string, error) {
	payload, err := event.MarshalPayload()
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal payload")
	}

	metadata := event.Metadata.Clone()
	metadata.Set(aggregateIDKey, event.AggregateID)

	msgJSON, err := json.Marshal(&snsMessage{
		ID:        event.ID.String(),
		Metadata:  metadata,
		Topic:     string(event.Topic),
		Payload:   payload,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal message")
	}

	return string(msgJSON), nil
}

// splitToChunks splits slice into chunks of specified size
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
