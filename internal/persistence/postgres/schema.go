package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS activities (
    activity_id      TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    activity_type    TEXT NOT NULL,
    duration_min     INT NOT NULL,
    calories_burned  INT NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    metrics          JSONB,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_user ON activities (user_id, started_at DESC);

CREATE TABLE IF NOT EXISTS recommendations (
    recommendation_id TEXT PRIMARY KEY,
    activity_id       TEXT NOT NULL,
    user_id           TEXT NOT NULL,
    activity_type     TEXT NOT NULL,
    analysis          TEXT NOT NULL,
    improvements      JSONB NOT NULL,
    suggestions       JSONB NOT NULL,
    safety            JSONB NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_recommendations_activity ON recommendations (activity_id, created_at DESC);
`

// EnsureSchema creates the pipeline tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
