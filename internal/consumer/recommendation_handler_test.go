package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saurabhpund/fitness-webapp/internal/domain"
	"github.com/saurabhpund/fitness-webapp/internal/events"
	"github.com/saurabhpund/fitness-webapp/internal/persistence/memory"
	"github.com/saurabhpund/fitness-webapp/internal/recommend"
)

type stubModel struct {
	raw []byte
	err error
}

func (m *stubModel) Complete(context.Context, string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.raw, nil
}

func cannedEnvelope(t *testing.T) []byte {
	t.Helper()

	inner := `{
	  "analysis": {
	    "overall": "Strong run",
	    "pace": "Consistent 6:00/km",
	    "heartrate": "Zone 3 average",
	    "caloriesBurned": "On target"
	  },
	  "improvements": [{"areas": "Cadence", "recommendation": "Aim for 175 spm"}],
	  "suggestions": [{"workout": "Intervals", "description": "6x400m with rest"}],
	  "safety": ["Warm up before starting"]
	}`

	raw, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": inner}},
				},
			},
		},
	})
	require.NoError(t, err)
	return raw
}

func trackedEvent() Message {
	return Message{
		Topic:     "fitness.activity.events",
		Timestamp: time.Now().UTC(),
		EventType: events.EventTypeActivityTracked,
		Event: events.ActivityTracked{
			ActivityID:     "act-1",
			UserID:         "user-1",
			ActivityType:   "RUNNING",
			DurationMin:    30,
			CaloriesBurned: 250,
			StartedAt:      time.Now().UTC().Add(-time.Hour),
			Metrics:        map[string]any{"distance_km": 5.2},
			RecordedAt:     time.Now().UTC(),
		},
	}
}

func quietBuilder(t *testing.T, model recommend.TextCompleter) *recommend.Builder {
	t.Helper()
	return recommend.NewBuilder(model, recommend.WithBuilderLogger(log.New(testWriter{t}, "", 0)))
}

func TestHandlerPersistsGeneratedRecommendation(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewRecommendationHandler(quietBuilder(t, &stubModel{raw: cannedEnvelope(t)}), repo)

	err := handler.Handle(context.Background(), trackedEvent())
	require.NoError(t, err)

	rec, err := repo.FindRecommendationByActivity(context.Background(), "act-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, "act-1", rec.ActivityID)
	require.Equal(t, "user-1", rec.UserID)
	require.Equal(t, domain.ActivityRunning, rec.ActivityType)
	require.Contains(t, rec.Analysis, "Pace:")
	require.NotEmpty(t, rec.Improvements)
	require.NotEmpty(t, rec.Suggestions)
	require.NotEmpty(t, rec.Safety)
}

func TestHandlerPersistsDefaultOnModelTimeout(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewRecommendationHandler(quietBuilder(t, &stubModel{err: context.DeadlineExceeded}), repo)

	// A model failure degrades to the default recommendation; the handler
	// still succeeds so the message is acknowledged, not retried forever.
	err := handler.Handle(context.Background(), trackedEvent())
	require.NoError(t, err)

	rec, err := repo.FindRecommendationByActivity(context.Background(), "act-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "Unable to generate detailed analysis", rec.Analysis)
	require.Equal(t, []string{"Continue with the current routine"}, rec.Improvements)
}

func TestHandlerMapsUnknownActivityTypeToOther(t *testing.T) {
	repo := memory.NewRepository()
	handler := NewRecommendationHandler(quietBuilder(t, &stubModel{raw: cannedEnvelope(t)}), repo)

	msg := trackedEvent()
	msg.Event.ActivityType = "PARKOUR"

	require.NoError(t, handler.Handle(context.Background(), msg))

	rec, err := repo.FindRecommendationByActivity(context.Background(), "act-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, domain.ActivityOther, rec.ActivityType)
}

func TestHandlerSurfacesStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	handler := NewRecommendationHandler(quietBuilder(t, &stubModel{raw: cannedEnvelope(t)}), failingRepo{err: storeErr})

	err := handler.Handle(context.Background(), trackedEvent())
	require.ErrorIs(t, err, storeErr)
}

type failingRepo struct {
	err error
}

func (r failingRepo) CreateRecommendation(context.Context, domain.Recommendation) error {
	return r.err
}

func (r failingRepo) ListRecommendationsByUser(context.Context, string) ([]domain.Recommendation, error) {
	return nil, r.err
}

func (r failingRepo) FindRecommendationByActivity(context.Context, string) (*domain.Recommendation, error) {
	return nil, r.err
}
