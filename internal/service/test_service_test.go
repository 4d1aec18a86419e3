package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/lingodesk/placement-backend/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from model.TestStatus
		to   model.TestStatus
		want bool
	}{
		{"draft to published", model.TestStatusDraft, model.TestStatusPublished, true},
		{"draft to archived", model.TestStatusDraft, model.TestStatusArchived, true},
		{"published to draft", model.TestStatusPublished, model.TestStatusDraft, true},
		{"archived to draft", model.TestStatusArchived, model.TestStatusDraft, true},
		{"published to archived", model.TestStatusPublished, model.TestStatusArchived, false},
		{"archived to published", model.TestStatusArchived, model.TestStatusPublished, false},
		{"draft to draft", model.TestStatusDraft, model.TestStatusDraft, false},
		{"published to published", model.TestStatusPublished, model.TestStatusPublished, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := canTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("canTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestValidateChoices(t *testing.T) {
	valid := []model.Choice{
		{Text: "am", IsCorrect: true},
		{Text: "is"},
		{Text: "are"},
	}
	if err := validateChoices(valid); err != nil {
		t.Fatalf("valid choices rejected: %v", err)
	}

	cases := []struct {
		name    string
		choices []model.Choice
	}{
		{"too few", []model.Choice{{Text: "only", IsCorrect: true}}},
		{"too many", []model.Choice{
			{Text: "a", IsCorrect: true}, {Text: "b"}, {Text: "c"},
			{Text: "d"}, {Text: "e"}, {Text: "f"}, {Text: "g"},
		}},
		{"no correct", []model.Choice{{Text: "a"}, {Text: "b"}}},
		{"two correct", []model.Choice{
			{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true},
		}},
		{"empty text", []model.Choice{
			{Text: "a", IsCorrect: true}, {Text: "   "},
		}},
		{"duplicate text", []model.Choice{
			{Text: "Paris", IsCorrect: true}, {Text: "paris"},
		}},
		{"duplicate after trim", []model.Choice{
			{Text: "Paris", IsCorrect: true}, {Text: "  Paris  "},
		}},
		{"text too long", []model.Choice{
			{Text: strings.Repeat("x", model.MaxChoiceTextLen+1), IsCorrect: true},
			{Text: "b"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateChoices(tc.choices)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrQuestionInvalid) {
				t.Errorf("error %v does not wrap ErrQuestionInvalid", err)
			}
		})
	}
}

func TestValidateChoicesBoundarySizes(t *testing.T) {
	// Exactly MinChoices and MaxChoices are both legal.
	two := []model.Choice{{Text: "yes", IsCorrect: true}, {Text: "no"}}
	if err := validateChoices(two); err != nil {
		t.Errorf("two choices rejected: %v", err)
	}

	six := make([]model.Choice, model.MaxChoices)
	for i := range six {
		six[i] = model.Choice{Text: string(rune('a' + i))}
	}
	six[0].IsCorrect = true
	if err := validateChoices(six); err != nil {
		t.Errorf("six choices rejected: %v", err)
	}
}
