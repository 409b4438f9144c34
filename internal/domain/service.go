// Package domain defines the business logic for activity tracking and
// recommendation queries.
package domain

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUser indicates the user validation collaborator rejected the caller.
	ErrInvalidUser = errors.New("invalid user")
	// ErrUnknownActivityType is returned for activity types outside the enumeration.
	ErrUnknownActivityType = errors.New("unknown activity type")
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrRecommendationNotFound is returned when no recommendation exists for an activity.
	ErrRecommendationNotFound = errors.New("recommendation not found")
)

// ActivityRepository captures persistence operations for activities.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity Activity) error
	GetActivity(ctx context.Context, activityID string) (*Activity, error)
	ListActivitiesByUser(ctx context.Context, userID string) ([]Activity, error)
}

// RecommendationRepository captures persistence operations for recommendations.
type RecommendationRepository interface {
	CreateRecommendation(ctx context.Context, rec Recommendation) error
	ListRecommendationsByUser(ctx context.Context, userID string) ([]Recommendation, error)
	FindRecommendationByActivity(ctx context.Context, activityID string) (*Recommendation, error)
}

// UserValidator checks that a user id refers to a registered user.
type UserValidator interface {
	ValidateUser(ctx context.Context, userID string) (bool, error)
}

// ActivityPublisher emits an event for each persisted activity.
type ActivityPublisher interface {
	PublishActivityTracked(ctx context.Context, activity Activity) error
}

// Service orchestrates activity tracking and recommendation lookups.
type Service struct {
	activities      ActivityRepository
	recommendations RecommendationRepository
	validator       UserValidator
	publisher       ActivityPublisher
	logger          *log.Logger
}

// ServiceOption configures optional service behaviour.
type ServiceOption func(*Service)

// WithLogger overrides the logger used for swallowed publish failures.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs a Service.
func NewService(activities ActivityRepository, recommendations RecommendationRepository, validator UserValidator, publisher ActivityPublisher, opts ...ServiceOption) *Service {
	s := &Service{
		activities:      activities,
		recommendations: recommendations,
		validator:       validator,
		publisher:       publisher,
		logger:          log.New(log.Writer(), "[tracker] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrackActivityInput captures the payload from the API layer. UserID comes
// from the authenticated caller, never from the request body.
type TrackActivityInput struct {
	UserID         string
	Type           ActivityType
	DurationMin    int
	CaloriesBurned int
	StartedAt      time.Time
	Metrics        map[string]any
}

// TrackActivity validates the caller, persists the activity and emits a
// tracking event. Publish failures are logged and swallowed: the stored
// activity is the source of truth and recommendation generation is
// best-effort, so a degraded event channel must never fail the request.
func (s *Service) TrackActivity(ctx context.Context, input TrackActivityInput) (*Activity, error) {
	valid, err := s.validator.ValidateUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidUser
	}

	now := time.Now().UTC()
	activity := Activity{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		Type:           input.Type,
		DurationMin:    input.DurationMin,
		CaloriesBurned: input.CaloriesBurned,
		StartedAt:      input.StartedAt.UTC(),
		Metrics:        input.Metrics,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishActivityTracked(ctx, activity); err != nil {
		s.logger.Printf("publish failure (activity_id=%s): %v", activity.ID, err)
	}

	return &activity, nil
}

// GetActivity fetches a single activity by id.
func (s *Service) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	activity, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ListUserActivities fetches all activities recorded by a user.
func (s *Service) ListUserActivities(ctx context.Context, userID string) ([]Activity, error) {
	return s.activities.ListActivitiesByUser(ctx, userID)
}

// ListUserRecommendations fetches all recommendations generated for a user.
func (s *Service) ListUserRecommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	return s.recommendations.ListRecommendationsByUser(ctx, userID)
}

// GetActivityRecommendation fetches the recommendation generated for an activity.
func (s *Service) GetActivityRecommendation(ctx context.Context, activityID string) (*Recommendation, error) {
	rec, err := s.recommendations.FindRecommendationByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecommendationNotFound
	}
	return rec, nil
}
