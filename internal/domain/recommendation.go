package domain

import "time"

// Recommendation is the coaching output generated for a single activity.
// The list fields are never empty: extraction substitutes fixed defaults
// when the model response lacks content.
type Recommendation struct {
	ID           string
	ActivityID   string
	UserID       string
	ActivityType ActivityType
	// Analysis is the consolidated narrative built from the labeled
	// overall/pace/heart-rate/calories sections.
	Analysis     string
	Improvements []string
	Suggestions  []string
	Safety       []string
	CreatedAt    time.Time
}
