// Package events defines the payloads exchanged over the activity event topic.
package events

import "time"

// EventTypeActivityTracked is the event_type header set on tracked-activity records.
const EventTypeActivityTracked = "activity.tracked"

// ActivityTracked is the message emitted after an activity is persisted. It
// carries the full activity snapshot, including the assigned id and the open
// metrics map, so consumers never need to read the activity store.
type ActivityTracked struct {
	ActivityID     string         `json:"activity_id"`
	UserID         string         `json:"user_id"`
	ActivityType   string         `json:"activity_type"`
	DurationMin    int            `json:"duration_min"`
	CaloriesBurned int            `json:"calories_burned"`
	StartedAt      time.Time      `json:"started_at"`
	Metrics        map[string]any `json:"metrics,omitempty"`
	RecordedAt     time.Time      `json:"recorded_at"`
}
