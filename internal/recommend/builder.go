package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/saurabhpund/fitness-webapp/internal/domain"
)

// TextCompleter is the external generative-model collaborator. Complete
// returns the raw response envelope; transport, auth, quota and timeout
// failures all surface as errors.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) ([]byte, error)
}

// Builder produces a recommendation for an activity. Build is total: model
// and parse failures degrade to a fixed default recommendation and are never
// surfaced to the caller.
type Builder struct {
	model  TextCompleter
	logger *log.Logger
}

// BuilderOption configures optional builder behaviour.
type BuilderOption func(*Builder)

// WithBuilderLogger overrides the logger used for degraded outcomes.
func WithBuilderLogger(logger *log.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder constructs a Builder around the model collaborator.
func NewBuilder(model TextCompleter, opts ...BuilderOption) *Builder {
	b := &Builder{
		model:  model,
		logger: log.New(log.Writer(), "[recommend] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build generates a recommendation for the activity. The degradation policy
// is deliberate: a failed model call or unparsable response yields the
// default recommendation, logged and counted but never returned as an error,
// so pipeline failures stay invisible to users.
func (b *Builder) Build(ctx context.Context, activity domain.Activity) domain.Recommendation {
	prompt := buildPrompt(activity)

	raw, err := b.model.Complete(ctx, prompt)
	if err != nil {
		b.logger.Printf("model call failed (activity_id=%s): %v", activity.ID, err)
		recordFallback("model_call")
		return defaultRecommendation(activity)
	}

	extraction, err := Extract(raw)
	if err != nil {
		b.logger.Printf("extraction failed (activity_id=%s): %v", activity.ID, err)
		recordFallback("parse")
		return defaultRecommendation(activity)
	}

	recordGenerated()
	return domain.Recommendation{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityType: activity.Type,
		Analysis:     extraction.Analysis,
		Improvements: extraction.Improvements,
		Suggestions:  extraction.Suggestions,
		Safety:       extraction.Safety,
		CreatedAt:    time.Now().UTC(),
	}
}

// defaultRecommendation is the fixed fallback used when generation or
// extraction fails. It is a first-class recommendation, not an error signal.
func defaultRecommendation(activity domain.Activity) domain.Recommendation {
	return domain.Recommendation{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityType: activity.Type,
		Analysis:     "Unable to generate detailed analysis",
		Improvements: []string{"Continue with the current routine"},
		Suggestions:  []string{"Consider consulting a fitness professional"},
		Safety: []string{
			"Always warmup before exercise",
			"Stay hydrated",
			"Listen to your body",
		},
		CreatedAt: time.Now().UTC(),
	}
}

// buildPrompt embeds the activity data and mandates the exact JSON shape the
// extractor expects back.
func buildPrompt(activity domain.Activity) string {
	metrics, err := json.Marshal(activity.Metrics)
	if err != nil || activity.Metrics == nil {
		metrics = []byte("{}")
	}

	return fmt.Sprintf(`Analyze this fitness activity and provide detailed recommendations in the following format
{
  "analysis": {
    "overall": "Overall analysis here",
    "pace": "Pace analysis here",
    "heartrate": "Heartrate analysis here",
    "caloriesBurned": "Calories analysis here"
  },
  "improvements": [
    {
      "areas": "Area name",
      "recommendation": "Detailed recommendation"
    }
  ],
  "suggestions": [
    {
      "workout": "Workout name",
      "description": "Detailed workout description"
    }
  ],
  "safety": [
    "Safety point 1",
    "Safety point 2"
  ]
}

Analyze this activity:
Activity Type : %s
Duration: %d minutes
Calories Burned: %d
Additional Metrics: %s

Provide detailed analysis focusing on performance, improvements, next workout suggestions and safety guidelines.
Ensure the response follows the EXACT JSON format shown above
`,
		activity.Type,
		activity.DurationMin,
		activity.CaloriesBurned,
		metrics,
	)
}
