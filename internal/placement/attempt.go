package placement

// Attempt is the cursor-based state machine driving one learner through a
// linear page sequence. It is purely in-memory; callers persist and restore
// it between transitions. All failed transitions leave the attempt
// untouched.
type Attempt struct {
	// SessionToken identifies this attempt. Generated once at
	// initialization, never regenerated; it is the idempotency key for
	// result storage.
	SessionToken string

	// Pages is the canonical sequence from BuildSequence, fixed for the
	// whole attempt.
	Pages []LinearPage

	// Cursor is the current page index, always within [0, len(Pages)).
	Cursor int

	// Answers maps question index to selected choice index. Answers
	// persist across back/forward movement.
	Answers map[int]int

	// Skipped marks an attempt ended via the opening-page early exit.
	Skipped bool
}

// NewAttempt starts an attempt at the first page of the sequence.
func NewAttempt(sessionToken string, pages []LinearPage) (*Attempt, error) {
	if len(pages) == 0 {
		return nil, ErrEmptySequence
	}
	return &Attempt{
		SessionToken: sessionToken,
		Pages:        pages,
		Answers:      make(map[int]int),
	}, nil
}

// Current returns the page under the cursor.
func (a *Attempt) Current() *LinearPage {
	return &a.Pages[a.Cursor]
}

// SelectAnswer records a choice for the current question page. The cursor
// does not move.
func (a *Attempt) SelectAnswer(choiceIndex int) error {
	page := a.Current()
	if !page.IsQuestion() {
		return ErrNotQuestionPage
	}
	if choiceIndex < 0 || choiceIndex >= len(page.Choices) {
		return ErrInvalidChoiceIndex
	}
	a.Answers[page.QuestionIndex] = choiceIndex
	return nil
}

// SelectedAnswer returns the stored choice for the current page, so a
// revisited question shows its prior selection rather than a blank state.
func (a *Attempt) SelectedAnswer() (int, bool) {
	page := a.Current()
	if !page.IsQuestion() {
		return 0, false
	}
	choice, ok := a.Answers[page.QuestionIndex]
	return choice, ok
}

// Next advances the cursor. A question page must have an answer stored
// (from this visit or an earlier one) before the learner may move on.
// At the last page Next does not advance; it reports finished=true and the
// caller is expected to submit.
func (a *Attempt) Next() (finished bool, err error) {
	page := a.Current()
	if page.IsQuestion() {
		if _, ok := a.Answers[page.QuestionIndex]; !ok {
			return false, ErrAnswerRequired
		}
	}
	if a.Cursor == len(a.Pages)-1 {
		return true, nil
	}
	a.Cursor++
	return false, nil
}

// Previous moves the cursor back one page.
func (a *Attempt) Previous() error {
	if a.Cursor == 0 {
		return ErrAtFirstPage
	}
	a.Cursor--
	return nil
}

// Skip ends the attempt early from the opening content page with no
// answers recorded. Anywhere else it fails and mutates nothing.
func (a *Attempt) Skip() error {
	if a.Cursor != 0 || a.Current().IsQuestion() {
		return ErrSkipUnavailable
	}
	a.Skipped = true
	return nil
}

// Progress is the completion percentage after the latest transition. It is
// monotonic for forward-only traversal and decreases on Previous.
func (a *Attempt) Progress() float64 {
	if len(a.Pages) == 0 {
		return 0
	}
	return float64(a.Cursor+1) / float64(len(a.Pages)) * 100
}
