package placement

import "errors"

// Sequence errors. Each is local to one state-machine transition: the caller
// can retry with corrected input, and a failed transition never mutates the
// attempt.
var (
	// ErrAnswerRequired is returned by Next on a question page with no
	// stored answer for the current question.
	ErrAnswerRequired = errors.New("answer required before advancing")

	// ErrAtFirstPage is returned by Previous when the cursor is already at
	// the first page.
	ErrAtFirstPage = errors.New("already at the first page")

	// ErrInvalidChoiceIndex is returned by SelectAnswer when the choice
	// index is outside the current question's choice list.
	ErrInvalidChoiceIndex = errors.New("choice index out of range")

	// ErrNotQuestionPage is returned by SelectAnswer on a content page.
	ErrNotQuestionPage = errors.New("current page is not a question page")

	// ErrSkipUnavailable is returned by Skip anywhere but the opening
	// content page. Skip is an early exit, not a mid-test abandon.
	ErrSkipUnavailable = errors.New("skip is only available on the opening content page")

	// ErrEmptySequence is returned when a test yields no deliverable pages.
	ErrEmptySequence = errors.New("test has no pages to deliver")
)
