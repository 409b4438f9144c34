package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saurabhpund/fitness-webapp/internal/auth"
	"github.com/saurabhpund/fitness-webapp/internal/domain"
	"github.com/saurabhpund/fitness-webapp/internal/persistence/memory"
)

type stubValidator struct {
	valid bool
}

func (v stubValidator) ValidateUser(context.Context, string) (bool, error) {
	return v.valid, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishActivityTracked(context.Context, domain.Activity) error {
	return nil
}

func newTestHandler(repo *memory.Repository, validUser bool) *Handler {
	service := domain.NewService(repo, repo, stubValidator{valid: validUser}, stubPublisher{})
	return NewHandler(service)
}

func withClaims(req *http.Request, subject string, scopes ...string) *http.Request {
	claims := &auth.Claims{
		Subject:   subject,
		Scopes:    make(map[string]struct{}, len(scopes)),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	for _, scope := range scopes {
		claims.Scopes[scope] = struct{}{}
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestTrackActivitySuccess(t *testing.T) {
	repo := memory.NewRepository()
	handler := newTestHandler(repo, true)

	body := `{"activity_type":"running","duration_min":30,"calories_burned":250,"started_at":"2025-11-03T07:00:00Z","metrics":{"distance_km":5.2}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(body))
	req = withClaims(req, "user-1", auth.ScopeActivitiesWrite)

	rr := httptest.NewRecorder()
	handler.trackActivity(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ActivityView
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ActivityID == "" {
		t.Fatal("expected assigned activity id")
	}
	if resp.UserID != "user-1" {
		t.Fatalf("expected caller user id, got %q", resp.UserID)
	}
	if resp.ActivityType != "RUNNING" {
		t.Fatalf("unexpected activity type %q", resp.ActivityType)
	}

	stored, err := repo.GetActivity(req.Context(), resp.ActivityID)
	if err != nil || stored == nil {
		t.Fatalf("expected activity persisted, err=%v", err)
	}
}

func TestTrackActivityRejectsUnknownType(t *testing.T) {
	handler := newTestHandler(memory.NewRepository(), true)

	body := `{"activity_type":"parkour","duration_min":30,"calories_burned":250,"started_at":"2025-11-03T07:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(body))
	req = withClaims(req, "user-1", auth.ScopeActivitiesWrite)

	rr := httptest.NewRecorder()
	handler.trackActivity(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestTrackActivityRejectsInvalidUser(t *testing.T) {
	handler := newTestHandler(memory.NewRepository(), false)

	body := `{"activity_type":"RUNNING","duration_min":30,"calories_burned":250,"started_at":"2025-11-03T07:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(body))
	req = withClaims(req, "user-unknown", auth.ScopeActivitiesWrite)

	rr := httptest.NewRecorder()
	handler.trackActivity(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "invalid_user") {
		t.Fatalf("expected invalid_user error, got %s", rr.Body.String())
	}
}

func TestTrackActivityRequiresWriteScope(t *testing.T) {
	handler := newTestHandler(memory.NewRepository(), true)

	body := `{"activity_type":"RUNNING","duration_min":30,"calories_burned":250,"started_at":"2025-11-03T07:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(body))
	req = withClaims(req, "user-1", auth.ScopeActivitiesRead)

	rr := httptest.NewRecorder()
	handler.trackActivity(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestListActivitiesReturnsOwnOnly(t *testing.T) {
	repo := memory.NewRepository()
	seedActivity(t, repo, "act-1", "user-1")
	seedActivity(t, repo, "act-2", "user-2")

	handler := newTestHandler(repo, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req = withClaims(req, "user-1", auth.ScopeActivitiesRead)

	rr := httptest.NewRecorder()
	handler.listActivities(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var resp ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 activity got %d", len(resp.Items))
	}
	if resp.Items[0].ActivityID != "act-1" {
		t.Fatalf("unexpected activity %q", resp.Items[0].ActivityID)
	}
}

func TestGetActivityRecommendation(t *testing.T) {
	repo := memory.NewRepository()
	rec := domain.Recommendation{
		ID:           "rec-1",
		ActivityID:   "act-1",
		UserID:       "user-1",
		ActivityType: domain.ActivityRunning,
		Analysis:     "Overall:Great effort",
		Improvements: []string{"Cadence : Aim for 175 spm"},
		Suggestions:  []string{"Intervals : 6x400m"},
		Safety:       []string{"Warm up first"},
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateRecommendation(context.Background(), rec); err != nil {
		t.Fatalf("seed recommendation: %v", err)
	}

	handler := newTestHandler(repo, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/activities/act-1/recommendation", nil)
	req = withClaims(req, "user-1", auth.ScopeRecommendationsRead)

	rr := httptest.NewRecorder()
	handler.activitySubtree(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp RecommendationView
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ActivityID != "act-1" {
		t.Fatalf("unexpected activity id %q", resp.ActivityID)
	}
	if len(resp.Safety) == 0 {
		t.Fatal("expected non-empty safety list")
	}
}

func TestGetActivityRecommendationNotFound(t *testing.T) {
	handler := newTestHandler(memory.NewRepository(), true)

	req := httptest.NewRequest(http.MethodGet, "/v1/activities/act-missing/recommendation", nil)
	req = withClaims(req, "user-1", auth.ScopeRecommendationsRead)

	rr := httptest.NewRecorder()
	handler.activitySubtree(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestListRecommendationsRequiresScope(t *testing.T) {
	handler := newTestHandler(memory.NewRepository(), true)

	req := httptest.NewRequest(http.MethodGet, "/v1/recommendations", nil)
	req = withClaims(req, "user-1", auth.ScopeActivitiesWrite)

	rr := httptest.NewRecorder()
	handler.listRecommendations(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func seedActivity(t *testing.T, repo *memory.Repository, id, userID string) {
	t.Helper()

	err := repo.CreateActivity(context.Background(), domain.Activity{
		ID:             id,
		UserID:         userID,
		Type:           domain.ActivityRunning,
		DurationMin:    30,
		CaloriesBurned: 250,
		StartedAt:      time.Now().UTC(),
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed activity: %v", err)
	}
}
