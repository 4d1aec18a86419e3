package placement

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/model"
)

// buildQuestions returns a question list with the given bucket sizes, in
// beginner, intermediate, advanced order. Every question has four choices
// with choice 0 marked correct.
func buildQuestions(nBeginner, nIntermediate, nAdvanced int) []model.Question {
	var questions []model.Question
	add := func(n int, d model.Difficulty) {
		for i := 0; i < n; i++ {
			questions = append(questions, model.Question{
				ID:           uuid.New(),
				Difficulty:   d,
				Points:       1,
				QuestionText: "sample question",
				Choices: []model.Choice{
					{Text: "right", IsCorrect: true},
					{Text: "wrong a"},
					{Text: "wrong b"},
					{Text: "wrong c"},
				},
			})
		}
	}
	add(nBeginner, model.DifficultyBeginner)
	add(nIntermediate, model.DifficultyIntermediate)
	add(nAdvanced, model.DifficultyAdvanced)
	return questions
}

// answerBuckets answers the first `correct` questions of each bucket with
// the right choice and the rest with a wrong one.
func answerBuckets(questions []model.Question, correct map[model.Difficulty]int) map[int]int {
	remaining := make(map[model.Difficulty]int, len(correct))
	for d, n := range correct {
		remaining[d] = n
	}

	answers := make(map[int]int)
	for i := range questions {
		d := questions[i].Difficulty
		if remaining[d] > 0 {
			answers[i] = 0
			remaining[d]--
		} else {
			answers[i] = 1
		}
	}
	return answers
}

func TestScore_PlacementDecision(t *testing.T) {
	tests := []struct {
		name      string
		questions []model.Question
		correct   map[model.Difficulty]int
		wantLevel model.PlacementLevel
	}{
		{
			// Preview fixture: 85.71% beginner, 33.33% intermediate.
			name:      "strong beginner weak intermediate",
			questions: buildQuestions(7, 6, 7),
			correct: map[model.Difficulty]int{
				model.DifficultyBeginner:     6,
				model.DifficultyIntermediate: 2,
				model.DifficultyAdvanced:     0,
			},
			wantLevel: model.LevelIntermediateBeginner,
		},
		{
			name:      "strong beginner strong intermediate",
			questions: buildQuestions(7, 6, 0),
			correct: map[model.Difficulty]int{
				model.DifficultyBeginner:     6,
				model.DifficultyIntermediate: 5,
			},
			wantLevel: model.LevelAdvancedBeginner,
		},
		{
			name:      "weak beginner overrides everything",
			questions: buildQuestions(7, 6, 7),
			correct: map[model.Difficulty]int{
				model.DifficultyBeginner:     5,
				model.DifficultyIntermediate: 6,
				model.DifficultyAdvanced:     7,
			},
			wantLevel: model.LevelBeginner,
		},
		{
			name:      "nothing answered",
			questions: buildQuestions(5, 5, 5),
			correct:   map[model.Difficulty]int{},
			wantLevel: model.LevelBeginner,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := answerBuckets(tc.questions, tc.correct)
			report := Score(tc.questions, answers, nil)
			if report.Level != tc.wantLevel {
				t.Errorf("Level = %q, want %q", report.Level, tc.wantLevel)
			}
		})
	}
}

func TestScore_ThresholdBoundaries(t *testing.T) {
	// 100 questions per bucket make the percentage exactly the count.
	tests := []struct {
		name                   string
		beginner, intermediate int
		wantLevel              model.PlacementLevel
	}{
		{"beginner 84 stays beginner", 84, 100, model.LevelBeginner},
		{"beginner 85 crosses up", 85, 69, model.LevelIntermediateBeginner},
		{"intermediate 69 stays mid", 85, 69, model.LevelIntermediateBeginner},
		{"intermediate 70 crosses up", 85, 70, model.LevelAdvancedBeginner},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			questions := buildQuestions(100, 100, 0)
			answers := answerBuckets(questions, map[model.Difficulty]int{
				model.DifficultyBeginner:     tc.beginner,
				model.DifficultyIntermediate: tc.intermediate,
			})
			report := Score(questions, answers, nil)
			if report.Level != tc.wantLevel {
				t.Errorf("Level = %q, want %q", report.Level, tc.wantLevel)
			}
		})
	}
}

func TestScore_Percentages(t *testing.T) {
	questions := buildQuestions(7, 6, 7)
	answers := answerBuckets(questions, map[model.Difficulty]int{
		model.DifficultyBeginner:     6,
		model.DifficultyIntermediate: 2,
	})

	report := Score(questions, answers, nil)

	// Expectations go through the same float64 operations the engine uses;
	// constant folding would round the division and the scaling in one step
	// and land 1 ulp away.
	wantBeginner := float64(6) / float64(7) * 100
	if report.Percentages[model.DifficultyBeginner] != wantBeginner {
		t.Errorf("beginner %% = %v, want %v", report.Percentages[model.DifficultyBeginner], wantBeginner)
	}
	wantIntermediate := float64(2) / float64(6) * 100
	if report.Percentages[model.DifficultyIntermediate] != wantIntermediate {
		t.Errorf("intermediate %% = %v, want %v", report.Percentages[model.DifficultyIntermediate], wantIntermediate)
	}
	// Advanced is tallied and reported even though the decision ignores it.
	if report.Scores[model.DifficultyAdvanced].Total != 7 {
		t.Errorf("advanced total = %d, want 7", report.Scores[model.DifficultyAdvanced].Total)
	}
}

func TestScore_EmptyBucketIsZeroNotError(t *testing.T) {
	questions := buildQuestions(3, 0, 0)
	answers := answerBuckets(questions, map[model.Difficulty]int{model.DifficultyBeginner: 3})

	report := Score(questions, answers, nil)

	for _, d := range []model.Difficulty{model.DifficultyIntermediate, model.DifficultyAdvanced} {
		if got := report.Percentages[d]; got != 0 {
			t.Errorf("percentage[%s] = %v, want exactly 0", d, got)
		}
		if got := report.Scores[d].Total; got != 0 {
			t.Errorf("total[%s] = %d, want 0", d, got)
		}
	}
}

func TestScore_UnansweredStillCountsTowardTotal(t *testing.T) {
	questions := buildQuestions(4, 0, 0)
	// Two correct answers, two questions never answered.
	answers := map[int]int{0: 0, 1: 0}

	report := Score(questions, answers, nil)

	got := report.Scores[model.DifficultyBeginner]
	if got.Correct != 2 || got.Total != 4 {
		t.Errorf("beginner tally = %+v, want {Correct:2 Total:4}", got)
	}
	if report.Percentages[model.DifficultyBeginner] != 50 {
		t.Errorf("beginner %% = %v, want 50", report.Percentages[model.DifficultyBeginner])
	}
}

func TestScore_MalformedQuestions(t *testing.T) {
	t.Run("no marked correct choice grades as incorrect", func(t *testing.T) {
		questions := buildQuestions(1, 0, 0)
		questions[0].Choices = []model.Choice{{Text: "a"}, {Text: "b"}}

		report := Score(questions, map[int]int{0: 0}, nil)

		got := report.Scores[model.DifficultyBeginner]
		if got.Correct != 0 || got.Total != 1 {
			t.Errorf("tally = %+v, want {Correct:0 Total:1}", got)
		}
	})

	t.Run("unrecognized difficulty excluded from all buckets", func(t *testing.T) {
		questions := buildQuestions(2, 0, 0)
		questions[1].Difficulty = "expert"

		report := Score(questions, map[int]int{0: 0, 1: 0}, nil)

		total := 0
		for _, s := range report.Scores {
			total += s.Total
		}
		if total != 1 {
			t.Errorf("combined total = %d, want 1 (expert question excluded)", total)
		}
	})
}

func TestScore_Deterministic(t *testing.T) {
	questions := buildQuestions(7, 6, 7)
	answers := answerBuckets(questions, map[model.Difficulty]int{
		model.DifficultyBeginner:     6,
		model.DifficultyIntermediate: 2,
	})
	assignments := map[model.PlacementLevel][]model.ModuleRef{
		model.LevelIntermediateBeginner: {
			{ID: uuid.New(), Title: "Everyday Conversations"},
			{ID: uuid.New(), Title: "Travel Basics"},
		},
	}

	first := Score(questions, answers, assignments)
	second := Score(questions, answers, assignments)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Score is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestModuleRangeText(t *testing.T) {
	tests := []struct {
		name    string
		modules []model.ModuleRef
		want    string
	}{
		{"empty list uses fallback", nil, NoModulesText},
		{"single module stands alone", []model.ModuleRef{{Title: "Greetings"}}, "Greetings"},
		{
			"multiple modules render as range in list order",
			[]model.ModuleRef{{Title: "Greetings"}, {Title: "Numbers"}, {Title: "Shopping"}},
			"Greetings – Shopping",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ModuleRangeText(tc.modules); got != tc.want {
				t.Errorf("ModuleRangeText() = %q, want %q", got, tc.want)
			}
		})
	}
}
