// Package recommend turns raw generative-model output into recommendation
// records, falling back to a fixed default when the model or the parse fails.
package recommend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extraction holds the structured fields recovered from a model response.
type Extraction struct {
	Analysis     string
	Improvements []string
	Suggestions  []string
	Safety       []string
}

// Default list values substituted when the model response lacks content.
const (
	defaultImprovement = "No specific improvement provided"
	defaultSuggestion  = "No Suggestion provided"
	defaultSafety      = "Follow general safety guidelines"
)

// envelope mirrors the Gemini generateContent response down to the generated text.
type envelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// analysisLabels fixes the section order of the consolidated narrative.
var analysisLabels = []struct {
	key   string
	label string
}{
	{"overall", "Overall:"},
	{"pace", "Pace:"},
	{"heartrate", "Heart Rate:"},
	{"caloriesBurned", "Calories Burned:"},
}

// Extract navigates the raw model envelope to the generated text, parses the
// JSON the prompt mandated and assembles the structured fields. It is pure:
// the same input always yields the same result. An error is returned only
// when the envelope cannot be navigated or the inner JSON does not parse;
// once the inner document parses, missing fields degrade to defaults instead
// of failing.
func Extract(raw []byte) (Extraction, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Extraction{}, fmt.Errorf("decode model envelope: %w", err)
	}
	if len(env.Candidates) == 0 || len(env.Candidates[0].Content.Parts) == 0 {
		return Extraction{}, fmt.Errorf("model envelope has no generated text")
	}

	text := stripFencing(env.Candidates[0].Content.Parts[0].Text)

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Extraction{}, fmt.Errorf("decode generated content: %w", err)
	}

	return Extraction{
		Analysis:     buildAnalysis(doc),
		Improvements: extractPairs(doc, "improvements", "areas", "recommendation", defaultImprovement),
		Suggestions:  extractPairs(doc, "suggestions", "workout", "description", defaultSuggestion),
		Safety:       extractSafety(doc),
	}, nil
}

// stripFencing removes an optional markdown code-block wrapper around the
// generated JSON.
func stripFencing(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// buildAnalysis renders the labeled narrative in fixed section order. When
// the analysis node is absent every section is skipped; when only a sub-key
// is absent its label is still emitted with an empty value.
func buildAnalysis(doc map[string]any) string {
	node, present := doc["analysis"]
	if !present {
		return ""
	}

	fields, _ := node.(map[string]any)

	var sb strings.Builder
	for _, section := range analysisLabels {
		sb.WriteString(section.label)
		sb.WriteString(asText(fields[section.key]))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// extractPairs reads an array of two-field objects and formats each element
// as "<first> : <second>". Missing fields render as empty strings; an absent
// or empty array yields the single fallback entry.
func extractPairs(doc map[string]any, key, firstField, secondField, fallback string) []string {
	items, _ := doc[key].([]any)

	out := make([]string, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		out = append(out, fmt.Sprintf("%s : %s", asText(fields[firstField]), asText(fields[secondField])))
	}

	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}

func extractSafety(doc map[string]any) []string {
	items, _ := doc["safety"].([]any)

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asText(item))
	}

	if len(out) == 0 {
		return []string{defaultSafety}
	}
	return out
}

// asText coerces a decoded JSON scalar to its textual form. Objects and
// arrays have no scalar text and render empty, matching the tolerance the
// extractor owes to loosely structured model output.
func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
