package infrastructure

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/shared/events"
	"github.com/partsnet/order-system/shared/models"
)

const (
	SQSMessageIDKey     = "sqs_message_id"
	SQSReceiptHandleKey = "sqs_receipt_handle"

	// aggregateIDKey is the metadata entry carrying the partition key across
	// the wire; encodeEvent writes it, decodeEvent reads it back.
	aggregateIDKey = "aggregate_id"
)

type sqsMessage struct {
	Message types.Message
	Event   *events.Event
	Err     error
}

// SQSEventSubscriber consumes saga events from an SQS queue. Messages are
// dispatched to workers by a hash of the aggregate id, so events for one
// order are handled sequentially while different orders run in parallel.
// Acknowledgment is manual: a message is deleted only after its handler
// returned without error, otherwise the visibility timeout is extended and
// the queue redelivers it (at-least-once).
type SQSEventSubscriber struct {
	mux      sync.Mutex
	inbound  []chan *sqsMessage
	outbound chan *sqsMessage
	cancel   context.CancelFunc
	running  atomic.Bool
	options  *sqsSubscriberOptions

	client   *sqs.Client
	queueURL string
	handler  events.EventHandler
	logger   *zap.Logger
}

type sqsSubscriberOptions struct {
	workers                    int32
	readers                    int32
	cleaners                   int32
	maxNumberOfMessages        int32
	waitTimeSeconds            int32
	visibilityTimeout          int32
	sleepTimeAfterEmptyReceive time.Duration
	sleepTimeAfterError        time.Duration
	receiveCountRange          int32
	visibilityTimeoutOffset    int32
	maxVisibilityTimeout       int32
}

type SQSSubscriberOption func(*sqsSubscriberOptions)

func WithWorkers(workers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.workers = workers
	}
}

func WithReaders(readers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.readers = readers
	}
}

func WithVisibilityTimeout(timeout int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.visibilityTimeout = timeout
	}
}

// NewSQSEventSubscriber creates a new SQS event subscriber
func NewSQSEventSubscriber(
	client *sqs.Client,
	queueURL string,
	handler events.EventHandler,
	logger *zap.Logger,
	opts ...SQSSubscriberOption,
) *SQSEventSubscriber {
	options := &sqsSubscriberOptions{
		workers:                    8,
		readers:                    1,
		cleaners:                   2,
		maxNumberOfMessages:        5,
		waitTimeSeconds:            15,
		visibilityTimeout:          30,
		sleepTimeAfterEmptyReceive: 10 * time.Second,
		sleepTimeAfterError:        20 * time.Second,
		receiveCountRange:          3,
		visibilityTimeoutOffset:    30,
		maxVisibilityTimeout:       900, // 15 minutes
	}

	for _, opt := range opts {
		opt(options)
	}

	return &SQSEventSubscriber{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
		logger:   logger.With(zap.String("handler_id", handler.HandlerID())),
		options:  options,
	}
}

// Start starts the reader, worker and cleaner goroutines.
func (s *SQSEventSubscriber) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.running.Load() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.inbound = make([]chan *sqsMessage, s.options.workers)
	for i := range s.inbound {
		s.inbound[i] = make(chan *sqsMessage, 10)
	}
	s.outbound = make(chan *sqsMessage, 10)

	for _, ch := range s.inbound {
		go s.startWorker(ctx, ch)
	}

	for i := 0; i < int(s.options.readers); i++ {
		go s.startReader(ctx)
	}

	for i := 0; i < int(s.options.cleaners); i++ {
		go s.startCleaner(ctx)
	}

	s.running.Store(true)

	return nil
}

// Stop stops the SQS subscriber
func (s *SQSEventSubscriber) Stop(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.running.Load() {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.running.Store(false)

	return nil
}

// partition picks the worker channel for an aggregate id. Events without an
// aggregate id land on worker zero.
func (s *SQSEventSubscriber) partition(aggregateID string) int {
	h := fnv.New32a()
	h.Write([]byte(aggregateID))
	return int(h.Sum32() % uint32(len(s.inbound)))
}

func (s *SQSEventSubscriber) startWorker(ctx context.Context, inbound <-chan *sqsMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-inbound:
			if message == nil {
				continue
			}
			s.handle(ctx, message)
		}
	}
}

func (s *SQSEventSubscriber) startReader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := s.read(ctx); err != nil {
				s.logger.Error("failed to read from SQS", zap.Error(err))
				time.Sleep(s.options.sleepTimeAfterError)
			}
		}
	}
}

func (s *SQSEventSubscriber) startCleaner(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.outbound:
			if message == nil {
				continue
			}
			if err := s.clean(ctx, message); err != nil {
				s.logger.Error("failed to settle SQS message", zap.Error(err))
			}
		}
	}
}

func (s *SQSEventSubscriber) read(ctx context.Context) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.options.maxNumberOfMessages,
		WaitTimeSeconds:     s.options.waitTimeSeconds,
		VisibilityTimeout:   s.options.visibilityTimeout,
		AttributeNames: []types.QueueAttributeName{
			"ApproximateReceiveCount",
			"ApproximateFirstReceiveTimestamp",
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to receive message from SQS")
	}

	if len(output.Messages) == 0 {
		time.Sleep(s.options.sleepTimeAfterEmptyReceive)
		return nil
	}

	for _, message := range output.Messages {
		event, err := decodeEvent(*message.Body)
		if err != nil {
			s.logger.Warn("skipping malformed message",
				zap.Stringp("message_id", message.MessageId),
				zap.Error(err),
			)
			continue
		}

		event.Metadata.Set(SQSMessageIDKey, *message.MessageId)
		if message.ReceiptHandle != nil {
			event.Metadata.Set(SQSReceiptHandleKey, *message.ReceiptHandle)
		}

		for k, v := range message.MessageAttributes {
			if v.StringValue != nil {
				event.Metadata.Set(k, *v.StringValue)
			}
		}

		select {
		case s.inbound[s.partition(event.AggregateID)] <- &sqsMessage{
			Message: message,
			Event:   event,
		}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// decodeEvent unwraps an SNS envelope delivered to the queue into an Event.
func decodeEvent(body string) (*events.Event, error) {
	var envelope struct {
		ID        string          `json:"id"`
		Metadata  events.Metadata `json:"metadata"`
		Topic     string          `json:"topic"`
		Payload   json.RawMessage `json:"payload"`
		Timestamp time.Time       `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode message body")
	}

	if envelope.Topic == "" {
		// Raw message delivery disabled: the payload is nested inside the
		// SNS notification JSON.
		var notification struct {
			Message string `json:"Message"`
		}
		if err := json.Unmarshal([]byte(body), &notification); err != nil || notification.Message == "" {
			return nil, errors.New("message has no topic")
		}
		return decodeEvent(notification.Message)
	}

	metadata := envelope.Metadata
	if metadata == nil {
		metadata = make(events.Metadata)
	}

	aggregateID, _ := metadata.Get(aggregateIDKey)

	return &events.Event{
		ID:          models.ID(envelope.ID),
		AggregateID: aggregateID,
		Topic:       events.Topic(envelope.Topic),
		EventType:   envelope.Topic,
		Data:        envelope.Payload,
		Metadata:    metadata,
		Timestamp:   envelope.Timestamp,
	}, nil
}

func (s *SQSEventSubscriber) handle(ctx context.Context, message *sqsMessage) {
	message.Err = s.handler.Handle(ctx, message.Event)

	select {
	case s.outbound <- message:
	case <-ctx.Done():
	}
}

func (s *SQSEventSubscriber) clean(ctx context.Context, message *sqsMessage) error {
	if message.Err != nil {
		// Back off redelivery: the more often the message was received, the
		// longer it stays invisible.
		receiveCount, err := strconv.Atoi(message.Message.Attributes["ApproximateReceiveCount"])
		if err != nil {
			receiveCount = 1
		}

		visibilityTimeout := s.options.visibilityTimeout
		visibilityTimeout += (int32(receiveCount) / s.options.receiveCountRange) * s.options.visibilityTimeoutOffset

		if visibilityTimeout > s.options.maxVisibilityTimeout {
			visibilityTimeout = s.options.maxVisibilityTimeout
		}

		_, err = s.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          &s.queueURL,
			ReceiptHandle:     message.Message.ReceiptHandle,
			VisibilityTimeout: visibilityTimeout,
		})
		if err != nil {
			return errors.Wrap(err, "failed to extend visibility timeout")
		}
		return nil
	}

	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &s.queueURL,
		ReceiptHandle: message.Message.ReceiptHandle,
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete message from SQS")
	}

	return nil
}
