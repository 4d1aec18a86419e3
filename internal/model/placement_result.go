package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PlacementLevel is the ordinal recommendation outcome of a scored attempt.
// The three tokens below are the closed serialization set; consumers must
// treat anything else as a data-integrity error rather than defaulting.
type PlacementLevel string

const (
	LevelBeginner             PlacementLevel = "beginner"
	LevelIntermediateBeginner PlacementLevel = "intermediate_beginner"
	LevelAdvancedBeginner     PlacementLevel = "advanced_beginner"
)

// ErrUnknownLevel reports a placement level token outside the closed enum.
var ErrUnknownLevel = errors.New("unknown placement level token")

// ParsePlacementLevel validates a serialized level token.
func ParsePlacementLevel(s string) (PlacementLevel, error) {
	switch PlacementLevel(s) {
	case LevelBeginner, LevelIntermediateBeginner, LevelAdvancedBeginner:
		return PlacementLevel(s), nil
	}
	return "", ErrUnknownLevel
}

// DifficultyScore is the per-bucket correctness tally. Total counts every
// question in the bucket, answered or not.
type DifficultyScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// PlacementResult is the immutable outcome of one test attempt. Exactly one
// exists per (test_id, session_token); it is never mutated after creation.
type PlacementResult struct {
	ID           uuid.UUID `json:"id"`
	TestID       uuid.UUID `json:"test_id"`
	SessionToken string    `json:"session_token"`
	LearnerID    int       `json:"learner_id"`

	// Answers maps question index to selected choice index. Skipped
	// questions are simply absent.
	Answers map[int]int `json:"answers"`

	DifficultyScores   map[Difficulty]DifficultyScore `json:"difficulty_scores"`
	Percentages        map[Difficulty]float64         `json:"percentage_scores"`
	Level              PlacementLevel                 `json:"recommended_level"`
	RecommendedModules string                         `json:"recommended_modules"`
	Feedback           string                         `json:"detailed_feedback"`
	Skipped            bool                           `json:"skipped"`

	CreatedAt time.Time `json:"created_at"`
}
