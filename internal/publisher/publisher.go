// Package publisher emits activity events onto the Kafka topic that feeds
// the recommendation pipeline.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/saurabhpund/fitness-webapp/internal/domain"
	"github.com/saurabhpund/fitness-webapp/internal/events"
)

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
}

// Publisher serializes activities into ActivityTracked events. Delivery is
// at-least-once; the partition key is the activity id.
type Publisher struct {
	writer messageWriter
}

// NewPublisher constructs a Publisher on top of a Kafka writer.
func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// PublishActivityTracked writes one event for the persisted activity.
func (p *Publisher) PublishActivityTracked(ctx context.Context, activity domain.Activity) error {
	event := events.ActivityTracked{
		ActivityID:     activity.ID,
		UserID:         activity.UserID,
		ActivityType:   string(activity.Type),
		DurationMin:    activity.DurationMin,
		CaloriesBurned: activity.CaloriesBurned,
		StartedAt:      activity.StartedAt,
		Metrics:        activity.Metrics,
		RecordedAt:     activity.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(activity.ID),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(events.EventTypeActivityTracked)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		publishFailedCounter.Inc()
		return err
	}

	publishedCounter.Inc()
	return nil
}
