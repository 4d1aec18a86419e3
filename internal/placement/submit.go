package placement

import "github.com/lingodesk/placement-backend/internal/model"

// BuildResult turns a finished attempt into its PlacementResult. It is a
// pure transformation: storage of the result and rejection of duplicate
// session tokens belong to the persistence layer.
//
// A skipped attempt bypasses scoring entirely and routes to the lowest
// tier, so skipping never blocks access to the beginner curriculum.
func BuildResult(t *model.Test, a *Attempt) *model.PlacementResult {
	result := &model.PlacementResult{
		TestID:       t.ID,
		SessionToken: a.SessionToken,
		Skipped:      a.Skipped,
	}

	if a.Skipped {
		result.Answers = map[int]int{}
		result.DifficultyScores = zeroScores()
		result.Percentages = zeroPercentages()
		result.Level = model.LevelBeginner
		result.RecommendedModules = ModuleRangeText(t.ModuleAssignments[model.LevelBeginner])
		result.Feedback = FeedbackSkipped
		return result
	}

	answers := make(map[int]int, len(a.Answers))
	for k, v := range a.Answers {
		answers[k] = v
	}

	report := Score(t.Questions, answers, t.ModuleAssignments)

	result.Answers = answers
	result.DifficultyScores = report.Scores
	result.Percentages = report.Percentages
	result.Level = report.Level
	result.RecommendedModules = report.RecommendedModules
	result.Feedback = report.Feedback
	return result
}

func zeroScores() map[model.Difficulty]model.DifficultyScore {
	scores := make(map[model.Difficulty]model.DifficultyScore, len(scoredDifficulties))
	for _, d := range scoredDifficulties {
		scores[d] = model.DifficultyScore{}
	}
	return scores
}

func zeroPercentages() map[model.Difficulty]float64 {
	percentages := make(map[model.Difficulty]float64, len(scoredDifficulties))
	for _, d := range scoredDifficulties {
		percentages[d] = 0
	}
	return percentages
}
