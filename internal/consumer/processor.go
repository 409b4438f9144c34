// Package consumer pulls activity events from Kafka and drives
// recommendation generation.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/saurabhpund/fitness-webapp/internal/events"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded activity events.
type Handler interface {
	Handle(context.Context, Message) error
}

// Message is the decoded representation of a Kafka record on the activity topic.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	EventType string
	Event     events.ActivityTracked
}

// Backoff bounds for re-handling a failed message.
const (
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultRetryBackoffMax = 30 * time.Second
)

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithRetryBackoff overrides the backoff bounds between handler attempts.
func WithRetryBackoff(base, max time.Duration) Option {
	return func(p *Processor) {
		p.retryBackoff = base
		p.retryBackoffMax = max
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader          Reader
	handler         Handler
	logger          *log.Logger
	retryBackoff    time.Duration
	retryBackoffMax time.Duration
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:          reader,
		handler:         handler,
		logger:          log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
		retryBackoff:    defaultRetryBackoff,
		retryBackoffMax: defaultRetryBackoffMax,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes messages until the context is
// cancelled. Each message is driven to completion before the next fetch:
// group offsets commit cumulatively per partition, so fetching past a failed
// message and committing a later one would acknowledge the failure too.
// Undecodable messages are committed and dropped: retrying a poison message
// can never succeed.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			continue
		}

		event, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.logger.Printf("poison message dropped (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, decodeErr)
			recordPoison(msg.Topic)
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.Printf("commit error after decode failure: %v", commitErr)
			}
			continue
		}

		if handleErr := p.handleToCompletion(ctx, event); handleErr != nil {
			return handleErr
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Printf("commit error: %v", commitErr)
		} else {
			recordProcessed(event)
		}
	}
}

// handleToCompletion retries the handler with backoff until it succeeds or
// the context is cancelled. The partition blocks on the failed message; its
// offset is never skipped over.
func (p *Processor) handleToCompletion(ctx context.Context, msg Message) error {
	backoff := p.retryBackoff
	for attempt := 1; ; attempt++ {
		err := p.handler.Handle(ctx, msg)
		if err == nil {
			return nil
		}
		p.logger.Printf("handler error (activity_id=%s, attempt=%d): %v", msg.Event.ActivityID, attempt, err)
		recordHandlerError(msg)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > p.retryBackoffMax {
			backoff = p.retryBackoffMax
		}
	}
}

func decodeMessage(msg kafka.Message) (Message, error) {
	var event events.ActivityTracked
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return Message{}, err
	}
	if event.ActivityID == "" {
		return Message{}, fmt.Errorf("event is missing activity_id")
	}

	eventType, _ := headerValue(msg, "event_type")

	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		EventType: string(eventType),
		Event:     event,
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
