package model

import (
	"github.com/google/uuid"
)

// Difficulty is the fixed partition used by the scoring engine. It is
// distinct from PlacementLevel: difficulty tags questions, levels tag
// outcomes.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Authoring constraints for question choices.
const (
	MinChoices       = 2
	MaxChoices       = 6
	MaxChoiceTextLen = 200
	DefaultPoints    = 1
)

// Choice is one selectable answer. Choices have no identity of their own;
// the 0-based position is the stable identifier and is rendered as a
// letter (A–Z) in client UIs.
type Choice struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// ChoiceLabel converts a 0-based choice index to its display letter.
func ChoiceLabel(index int) string {
	if index < 0 || index >= 26 {
		return ""
	}
	return string(rune('A' + index))
}

// Question is a single placement question.
type Question struct {
	ID           uuid.UUID  `json:"id"`
	TestID       uuid.UUID  `json:"test_id"`
	Position     int        `json:"position"`
	Difficulty   Difficulty `json:"difficulty"`
	Points       int        `json:"points"`
	QuestionText string     `json:"question_text"`
	Choices      []Choice   `json:"choices"`
}

// CorrectChoice returns the index of the choice marked correct, or -1 if
// none is marked. A question without a correct choice grades as always
// incorrect rather than failing the scoring engine.
func (q *Question) CorrectChoice() int {
	for i, c := range q.Choices {
		if c.IsCorrect {
			return i
		}
	}
	return -1
}

// ChoicePayload mirrors Choice in authoring requests.
type ChoicePayload struct {
	Text      string `json:"text" binding:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

// AddQuestionRequest is the payload for adding a question to a test.
type AddQuestionRequest struct {
	QuestionText string          `json:"question_text" binding:"required,min=1,max=2000"`
	Difficulty   string          `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Points       int             `json:"points" binding:"omitempty,min=1"`
	Choices      []ChoicePayload `json:"choices" binding:"required,min=2,max=6,dive"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	QuestionText string          `json:"question_text" binding:"required,min=1,max=2000"`
	Difficulty   string          `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Points       int             `json:"points" binding:"omitempty,min=1"`
	Choices      []ChoicePayload `json:"choices" binding:"required,min=2,max=6,dive"`
}
