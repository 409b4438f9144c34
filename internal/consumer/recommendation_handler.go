package consumer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saurabhpund/fitness-webapp/internal/domain"
	"github.com/saurabhpund/fitness-webapp/internal/observability"
)

// RecommendationBuilder produces a recommendation for an activity. It is a
// total function; failures inside generation degrade to a default result.
type RecommendationBuilder interface {
	Build(ctx context.Context, activity domain.Activity) domain.Recommendation
}

// RecommendationHandler generates and stores one recommendation per consumed
// activity event. Its only failure path is the store write, which surfaces to
// the processor so the channel redelivers the message.
type RecommendationHandler struct {
	builder RecommendationBuilder
	repo    domain.RecommendationRepository
}

// NewRecommendationHandler constructs the handler.
func NewRecommendationHandler(builder RecommendationBuilder, repo domain.RecommendationRepository) *RecommendationHandler {
	return &RecommendationHandler{builder: builder, repo: repo}
}

// Handle rebuilds the activity from the event snapshot, runs the builder and
// persists the result. Redelivered events produce duplicate recommendations;
// the channel is at-least-once and this pipeline does not deduplicate.
func (h *RecommendationHandler) Handle(ctx context.Context, msg Message) error {
	event := msg.Event

	activityType, err := domain.ParseActivityType(event.ActivityType)
	if err != nil {
		activityType = domain.ActivityOther
	}

	activity := domain.Activity{
		ID:             event.ActivityID,
		UserID:         event.UserID,
		Type:           activityType,
		DurationMin:    event.DurationMin,
		CaloriesBurned: event.CaloriesBurned,
		StartedAt:      event.StartedAt,
		Metrics:        event.Metrics,
		CreatedAt:      event.RecordedAt,
	}

	rec := h.builder.Build(ctx, activity)
	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := h.repo.CreateRecommendation(ctx, rec); err != nil {
		return err
	}

	observability.RecordRecommendationStored(rec.CreatedAt)
	return nil
}
