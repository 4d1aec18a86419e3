package placement

import "github.com/lingodesk/placement-backend/internal/model"

// ScoreReport is the output of the scoring engine for one answer set.
type ScoreReport struct {
	Scores             map[model.Difficulty]model.DifficultyScore `json:"difficulty_scores"`
	Percentages        map[model.Difficulty]float64               `json:"percentage_scores"`
	Level              model.PlacementLevel                       `json:"recommended_level"`
	RecommendedModules string                                     `json:"recommended_modules"`
	Feedback           string                                     `json:"detailed_feedback"`
}

// scoredDifficulties is the fixed bucket set. Questions tagged with anything
// else contribute to no bucket at all.
var scoredDifficulties = []model.Difficulty{
	model.DifficultyBeginner,
	model.DifficultyIntermediate,
	model.DifficultyAdvanced,
}

// Score grades a sparse answer map against the full question list and
// decides the placement level. answers maps question index to selected
// choice index; unanswered questions are absent from the map but still
// count toward their bucket's total.
//
// Score is a pure function: identical inputs always yield identical output,
// and malformed questions degrade (no correct choice grades as always
// incorrect, unrecognized difficulty is excluded) instead of failing.
func Score(questions []model.Question, answers map[int]int, assignments map[model.PlacementLevel][]model.ModuleRef) ScoreReport {
	scores := make(map[model.Difficulty]model.DifficultyScore, len(scoredDifficulties))
	for _, d := range scoredDifficulties {
		scores[d] = model.DifficultyScore{}
	}

	for i := range questions {
		q := &questions[i]
		tally, ok := scores[q.Difficulty]
		if !ok {
			continue
		}
		tally.Total++

		correct := q.CorrectChoice()
		if selected, answered := answers[i]; answered && correct >= 0 && selected == correct {
			tally.Correct++
		}
		scores[q.Difficulty] = tally
	}

	percentages := make(map[model.Difficulty]float64, len(scoredDifficulties))
	for _, d := range scoredDifficulties {
		percentages[d] = percentage(scores[d])
	}

	level := decideLevel(percentages)

	return ScoreReport{
		Scores:             scores,
		Percentages:        percentages,
		Level:              level,
		RecommendedModules: ModuleRangeText(assignments[level]),
		Feedback:           feedbackFor(level),
	}
}

// percentage converts a tally to percent. An empty bucket is defined as 0,
// never a division error.
func percentage(s model.DifficultyScore) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// decideLevel applies the ordinal three-level rule, first match wins.
// The advanced percentage is computed and stored but takes no part in the
// decision; only a future fourth tier would consume it.
func decideLevel(percentages map[model.Difficulty]float64) model.PlacementLevel {
	if percentages[model.DifficultyBeginner] >= BeginnerThreshold {
		if percentages[model.DifficultyIntermediate] >= IntermediateThreshold {
			return model.LevelAdvancedBeginner
		}
		return model.LevelIntermediateBeginner
	}
	return model.LevelBeginner
}
