package placement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/model"
)

func TestBuildResult_ScoredAttempt(t *testing.T) {
	test, pages := deliverableTest(t)
	test.ID = uuid.New()
	test.ModuleAssignments = map[model.PlacementLevel][]model.ModuleRef{
		model.LevelAdvancedBeginner: {{Title: "Idioms"}, {Title: "Debate Club"}},
	}

	attempt, err := NewAttempt("tok-1", pages)
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	attempt.Next()
	for i := 0; i < 3; i++ {
		if err := attempt.SelectAnswer(0); err != nil {
			t.Fatalf("SelectAnswer: %v", err)
		}
		attempt.Next()
	}

	result := BuildResult(test, attempt)

	if result.TestID != test.ID {
		t.Errorf("TestID = %v, want %v", result.TestID, test.ID)
	}
	if result.SessionToken != "tok-1" {
		t.Errorf("SessionToken = %q, want tok-1", result.SessionToken)
	}
	if result.Skipped {
		t.Error("Skipped flag set on a scored attempt")
	}
	// 3/3 beginner, no intermediate questions: highest reachable here is
	// intermediate_beginner.
	if result.Level != model.LevelIntermediateBeginner {
		t.Errorf("Level = %q, want %q", result.Level, model.LevelIntermediateBeginner)
	}
	if got := result.DifficultyScores[model.DifficultyBeginner]; got.Correct != 3 || got.Total != 3 {
		t.Errorf("beginner tally = %+v, want {Correct:3 Total:3}", got)
	}
	if len(result.Answers) != 3 {
		t.Errorf("len(Answers) = %d, want 3", len(result.Answers))
	}
	if result.RecommendedModules != NoModulesText {
		t.Errorf("RecommendedModules = %q, want fallback (level has no assignments)", result.RecommendedModules)
	}
}

func TestBuildResult_SkippedAttempt(t *testing.T) {
	test, pages := deliverableTest(t)
	test.ID = uuid.New()
	test.ModuleAssignments = map[model.PlacementLevel][]model.ModuleRef{
		model.LevelBeginner: {{Title: "First Words"}},
	}

	attempt, err := NewAttempt("tok-2", pages)
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	if err := attempt.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	result := BuildResult(test, attempt)

	if !result.Skipped {
		t.Error("Skipped flag not set")
	}
	if result.Level != model.LevelBeginner {
		t.Errorf("Level = %q, want beginner (skip routes to the lowest tier)", result.Level)
	}
	if len(result.Answers) != 0 {
		t.Errorf("Answers = %v, want empty", result.Answers)
	}
	for d, s := range result.DifficultyScores {
		if s.Correct != 0 || s.Total != 0 {
			t.Errorf("scores[%s] = %+v, want zeroed", d, s)
		}
	}
	for d, p := range result.Percentages {
		if p != 0 {
			t.Errorf("percentages[%s] = %v, want 0", d, p)
		}
	}
	if result.RecommendedModules != "First Words" {
		t.Errorf("RecommendedModules = %q, want First Words", result.RecommendedModules)
	}
	if result.Feedback != FeedbackSkipped {
		t.Errorf("Feedback = %q, want skip feedback", result.Feedback)
	}
}

func TestParsePlacementLevel_RejectsUnknownTokens(t *testing.T) {
	for _, valid := range []string{"beginner", "intermediate_beginner", "advanced_beginner"} {
		if _, err := model.ParsePlacementLevel(valid); err != nil {
			t.Errorf("ParsePlacementLevel(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "expert", "Beginner", "advanced"} {
		if _, err := model.ParsePlacementLevel(invalid); err == nil {
			t.Errorf("ParsePlacementLevel(%q) succeeded, want error", invalid)
		}
	}
}
