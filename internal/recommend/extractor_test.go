package recommend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func wrapEnvelope(t *testing.T, generated string) []byte {
	t.Helper()

	env := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{
						map[string]any{"text": generated},
					},
				},
			},
		},
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

const fullInner = `{
  "analysis": {
    "overall": "Solid aerobic session",
    "pace": "Steady throughout",
    "heartrate": "Mostly zone 2",
    "caloriesBurned": "Efficient burn rate"
  },
  "improvements": [
    {"areas": "Endurance", "recommendation": "Add a weekly long run"},
    {"areas": "Form", "recommendation": "Shorten your stride"}
  ],
  "suggestions": [
    {"workout": "Tempo run", "description": "20 minutes at threshold pace"}
  ],
  "safety": ["Warm up first", "Hydrate well"]
}`

func TestExtractFullResponse(t *testing.T) {
	out, err := Extract(wrapEnvelope(t, fullInner))
	require.NoError(t, err)

	require.Equal(t,
		"Overall:Solid aerobic session\n\nPace:Steady throughout\n\nHeart Rate:Mostly zone 2\n\nCalories Burned:Efficient burn rate",
		out.Analysis)
	require.Equal(t, []string{
		"Endurance : Add a weekly long run",
		"Form : Shorten your stride",
	}, out.Improvements)
	require.Equal(t, []string{"Tempo run : 20 minutes at threshold pace"}, out.Suggestions)
	require.Equal(t, []string{"Warm up first", "Hydrate well"}, out.Safety)
}

func TestExtractStripsCodeFencing(t *testing.T) {
	fenced := "```json\n" + fullInner + "\n```"
	out, err := Extract(wrapEnvelope(t, fenced))
	require.NoError(t, err)
	require.Contains(t, out.Analysis, "Pace:Steady throughout")
}

func TestExtractMissingAnalysisNode(t *testing.T) {
	inner := `{
	  "improvements": [{"areas": "Recovery", "recommendation": "Sleep more"}],
	  "suggestions": [{"workout": "Walk", "description": "Easy 30 minutes"}],
	  "safety": ["Listen to your body"]
	}`

	out, err := Extract(wrapEnvelope(t, inner))
	require.NoError(t, err)

	// Field independence: a missing analysis node empties the narrative but
	// leaves the other sections intact.
	require.Empty(t, out.Analysis)
	require.Equal(t, []string{"Recovery : Sleep more"}, out.Improvements)
	require.Equal(t, []string{"Walk : Easy 30 minutes"}, out.Suggestions)
	require.Equal(t, []string{"Listen to your body"}, out.Safety)
}

func TestExtractMissingAnalysisSubKeyKeepsLabel(t *testing.T) {
	inner := `{"analysis": {"overall": "Good", "heartrate": "High", "caloriesBurned": "Low"}}`

	out, err := Extract(wrapEnvelope(t, inner))
	require.NoError(t, err)

	// The pace label is emitted with an empty value rather than skipped.
	require.Equal(t, "Overall:Good\n\nPace:\n\nHeart Rate:High\n\nCalories Burned:Low", out.Analysis)
}

func TestExtractEmptyImprovements(t *testing.T) {
	inner := `{"improvements": [], "suggestions": [], "safety": []}`

	out, err := Extract(wrapEnvelope(t, inner))
	require.NoError(t, err)
	require.Equal(t, []string{"No specific improvement provided"}, out.Improvements)
	require.Equal(t, []string{"No Suggestion provided"}, out.Suggestions)
	require.Equal(t, []string{"Follow general safety guidelines"}, out.Safety)
}

func TestExtractDefaultsWhenSectionsAbsent(t *testing.T) {
	out, err := Extract(wrapEnvelope(t, `{}`))
	require.NoError(t, err)
	require.Empty(t, out.Analysis)
	require.Equal(t, []string{"No specific improvement provided"}, out.Improvements)
	require.Equal(t, []string{"No Suggestion provided"}, out.Suggestions)
	require.Equal(t, []string{"Follow general safety guidelines"}, out.Safety)
}

func TestExtractMissingPairFieldsRenderEmpty(t *testing.T) {
	inner := `{"improvements": [{"recommendation": "Stretch daily"}], "suggestions": [{"workout": "Yoga"}]}`

	out, err := Extract(wrapEnvelope(t, inner))
	require.NoError(t, err)
	require.Equal(t, []string{" : Stretch daily"}, out.Improvements)
	require.Equal(t, []string{"Yoga : "}, out.Suggestions)
}

func TestExtractCoercesScalarValues(t *testing.T) {
	inner := `{"analysis": {"overall": "ok", "pace": 5.5, "heartrate": true, "caloriesBurned": "fine"}}`

	out, err := Extract(wrapEnvelope(t, inner))
	require.NoError(t, err)
	require.Equal(t, "Overall:ok\n\nPace:5.5\n\nHeart Rate:true\n\nCalories Burned:fine", out.Analysis)
}

func TestExtractTruncatedInnerJSON(t *testing.T) {
	_, err := Extract(wrapEnvelope(t, `{"analysis": {"overall": "cut off`))
	require.Error(t, err)
}

func TestExtractEnvelopeWithoutCandidates(t *testing.T) {
	_, err := Extract([]byte(`{"candidates": []}`))
	require.Error(t, err)

	_, err = Extract([]byte(`{"candidates": [{"content": {"parts": []}}]}`))
	require.Error(t, err)
}

func TestExtractInvalidEnvelope(t *testing.T) {
	_, err := Extract([]byte(`not json at all`))
	require.Error(t, err)
}

func TestExtractIsDeterministic(t *testing.T) {
	raw := wrapEnvelope(t, fullInner)

	first, err := Extract(raw)
	require.NoError(t, err)
	second, err := Extract(raw)
	require.NoError(t, err)

	require.Equal(t, first, second)
}
