package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActivityType enumerates the supported workout categories.
type ActivityType string

const (
	ActivityRunning        ActivityType = "RUNNING"
	ActivityWalking        ActivityType = "WALKING"
	ActivityCycling        ActivityType = "CYCLING"
	ActivitySwimming       ActivityType = "SWIMMING"
	ActivityWeightTraining ActivityType = "WEIGHT_TRAINING"
	ActivityYoga           ActivityType = "YOGA"
	ActivityCardio         ActivityType = "CARDIO"
	ActivityStretching     ActivityType = "STRETCHING"
	ActivityOther          ActivityType = "OTHER"
)

var activityTypes = map[ActivityType]struct{}{
	ActivityRunning:        {},
	ActivityWalking:        {},
	ActivityCycling:        {},
	ActivitySwimming:       {},
	ActivityWeightTraining: {},
	ActivityYoga:           {},
	ActivityCardio:         {},
	ActivityStretching:     {},
	ActivityOther:          {},
}

// ParseActivityType normalizes and validates a raw activity type string.
func ParseActivityType(raw string) (ActivityType, error) {
	candidate := ActivityType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := activityTypes[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownActivityType, raw)
	}
	return candidate, nil
}

// Activity is the canonical workout record. Immutable once persisted.
type Activity struct {
	ID             string
	UserID         string
	Type           ActivityType
	DurationMin    int
	CaloriesBurned int
	StartedAt      time.Time
	// Metrics holds free-form measurements reported by the client
	// (distance, average heart rate, elevation and so on).
	Metrics   map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}
