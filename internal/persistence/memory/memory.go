// Package memory provides an in-memory repository for local development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/saurabhpund/fitness-webapp/internal/domain"
)

// Repository stores activities and recommendations in memory.
type Repository struct {
	mu              sync.RWMutex
	activities      map[string]domain.Activity
	recommendations map[string]domain.Recommendation
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{
		activities:      make(map[string]domain.Activity),
		recommendations: make(map[string]domain.Recommendation),
	}
}

// CreateActivity implements domain.ActivityRepository.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(activity.ID) == "" {
		activity.ID = uuid.NewString()
	}
	r.activities[activity.ID] = activity
	return nil
}

// GetActivity implements domain.ActivityRepository.
func (r *Repository) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[activityID]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

// ListActivitiesByUser implements domain.ActivityRepository.
func (r *Repository) ListActivitiesByUser(ctx context.Context, userID string) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, activity := range r.activities {
		if activity.UserID == userID {
			out = append(out, activity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// CreateRecommendation implements domain.RecommendationRepository.
func (r *Repository) CreateRecommendation(ctx context.Context, rec domain.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	r.recommendations[rec.ID] = rec
	return nil
}

// ListRecommendationsByUser implements domain.RecommendationRepository.
func (r *Repository) ListRecommendationsByUser(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Recommendation, 0)
	for _, rec := range r.recommendations {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindRecommendationByActivity implements domain.RecommendationRepository.
func (r *Repository) FindRecommendationByActivity(ctx context.Context, activityID string) (*domain.Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Recommendation
	for id := range r.recommendations {
		rec := r.recommendations[id]
		if rec.ActivityID != activityID {
			continue
		}
		if found == nil || rec.CreatedAt.After(found.CreatedAt) {
			found = &rec
		}
	}
	if found == nil {
		return nil, nil
	}
	out := *found
	return &out, nil
}
