// Package postgres provides pgx-backed persistence for activities and
// recommendations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurabhpund/fitness-webapp/internal/domain"
	"github.com/saurabhpund/fitness-webapp/internal/observability"
)

// Repository persists both pipeline entities. Open-ended fields (the metrics
// map and the recommendation lists) are stored as JSONB.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateActivity inserts the activity row.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	metrics, err := json.Marshal(activity.Metrics)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO activities (activity_id, user_id, activity_type, duration_min, calories_burned, started_at, metrics, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = r.pool.Exec(ctx, stmt,
		activity.ID,
		activity.UserID,
		string(activity.Type),
		activity.DurationMin,
		activity.CaloriesBurned,
		activity.StartedAt,
		metrics,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return err
	}

	observability.RecordActivityPersisted(activity.CreatedAt)
	return nil
}

// GetActivity fetches an activity by id. A missing row returns (nil, nil).
func (r *Repository) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	const query = `SELECT activity_id, user_id, activity_type, duration_min, calories_burned, started_at, metrics, created_at, updated_at
        FROM activities WHERE activity_id=$1`

	row := r.pool.QueryRow(ctx, query, activityID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// ListActivitiesByUser fetches a user's activities, most recent first.
func (r *Repository) ListActivitiesByUser(ctx context.Context, userID string) ([]domain.Activity, error) {
	const query = `SELECT activity_id, user_id, activity_type, duration_min, calories_burned, started_at, metrics, created_at, updated_at
        FROM activities WHERE user_id=$1 ORDER BY started_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}
	return activities, rows.Err()
}

// CreateRecommendation inserts the recommendation row.
func (r *Repository) CreateRecommendation(ctx context.Context, rec domain.Recommendation) error {
	improvements, err := json.Marshal(rec.Improvements)
	if err != nil {
		return err
	}
	suggestions, err := json.Marshal(rec.Suggestions)
	if err != nil {
		return err
	}
	safety, err := json.Marshal(rec.Safety)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO recommendations (recommendation_id, activity_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = r.pool.Exec(ctx, stmt,
		rec.ID,
		rec.ActivityID,
		rec.UserID,
		string(rec.ActivityType),
		rec.Analysis,
		improvements,
		suggestions,
		safety,
		rec.CreatedAt,
	)
	return err
}

// ListRecommendationsByUser fetches a user's recommendations, most recent first.
func (r *Repository) ListRecommendationsByUser(ctx context.Context, userID string) ([]domain.Recommendation, error) {
	const query = `SELECT recommendation_id, activity_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at
        FROM recommendations WHERE user_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recommendations := make([]domain.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, *rec)
	}
	return recommendations, rows.Err()
}

// FindRecommendationByActivity fetches the recommendation for an activity. A
// missing row returns (nil, nil). Redelivery can produce duplicates; the most
// recent one wins.
func (r *Repository) FindRecommendationByActivity(ctx context.Context, activityID string) (*domain.Recommendation, error) {
	const query = `SELECT recommendation_id, activity_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at
        FROM recommendations WHERE activity_id=$1 ORDER BY created_at DESC LIMIT 1`

	row := r.pool.QueryRow(ctx, query, activityID)
	rec, err := scanRecommendation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		activity     domain.Activity
		activityType string
		metrics      []byte
	)
	if err := row.Scan(&activity.ID, &activity.UserID, &activityType, &activity.DurationMin, &activity.CaloriesBurned, &activity.StartedAt, &metrics, &activity.CreatedAt, &activity.UpdatedAt); err != nil {
		return nil, err
	}
	activity.Type = domain.ActivityType(activityType)
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &activity.Metrics); err != nil {
			return nil, err
		}
	}
	return &activity, nil
}

func scanRecommendation(row pgx.Row) (*domain.Recommendation, error) {
	var (
		rec          domain.Recommendation
		activityType string
		improvements []byte
		suggestions  []byte
		safety       []byte
	)
	if err := row.Scan(&rec.ID, &rec.ActivityID, &rec.UserID, &activityType, &rec.Analysis, &improvements, &suggestions, &safety, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.ActivityType = domain.ActivityType(activityType)
	if err := json.Unmarshal(improvements, &rec.Improvements); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(suggestions, &rec.Suggestions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(safety, &rec.Safety); err != nil {
		return nil, err
	}
	return &rec, nil
}
