package placement

import "github.com/lingodesk/placement-backend/internal/model"

// Placement thresholds, in percent. The decision is ordinal and evaluated
// beginner-first: a learner below the beginner threshold places at the
// lowest tier no matter what the other buckets look like.
const (
	BeginnerThreshold     = 85.0
	IntermediateThreshold = 70.0
)

// Fallback literals. These are the single source for strings that older
// revisions repeated inline at every call site.
const (
	// NoModulesText is rendered when the recommended level has no module
	// assignments.
	NoModulesText = "No modules assigned for this level"

	// DefaultQuestionText stands in for a question saved with empty text.
	DefaultQuestionText = "Untitled Question"

	// moduleRangeSeparator joins the first and last module titles of a
	// multi-module recommendation.
	moduleRangeSeparator = " – "
)

// Per-level feedback shown on the congratulations view.
const (
	FeedbackBeginner             = "We recommend starting from the beginning of the curriculum to build a solid foundation."
	FeedbackIntermediateBeginner = "Strong fundamentals! You can start past the introductory modules."
	FeedbackAdvancedBeginner     = "Excellent work! You are ready for the most advanced starting point we offer."
	FeedbackSkipped              = "You skipped the placement test. The beginner modules are open to you, and you can take the test any time."
)

// feedbackFor maps a placement level to its feedback text.
func feedbackFor(level model.PlacementLevel) string {
	switch level {
	case model.LevelAdvancedBeginner:
		return FeedbackAdvancedBeginner
	case model.LevelIntermediateBeginner:
		return FeedbackIntermediateBeginner
	default:
		return FeedbackBeginner
	}
}

// ModuleRangeText renders the recommended module range for a level's
// assignment list: the sole title, or "first – last" in list order.
func ModuleRangeText(modules []model.ModuleRef) string {
	switch len(modules) {
	case 0:
		return NoModulesText
	case 1:
		return modules[0].Title
	default:
		return modules[0].Title + moduleRangeSeparator + modules[len(modules)-1].Title
	}
}
