package placement

import (
	"errors"
	"math"
	"testing"

	"github.com/lingodesk/placement-backend/internal/model"
)

// deliverableTest builds a test with a welcome page followed by three
// beginner questions on one grouped question page.
func deliverableTest(t *testing.T) (*model.Test, []LinearPage) {
	t.Helper()
	questions := buildQuestions(3, 0, 0)
	test := &model.Test{
		Questions: questions,
		Pages: []model.Page{
			contentPage("Welcome", 1),
			questionPageFor(2, questions[0].ID, questions[1].ID, questions[2].ID),
		},
	}
	return test, BuildSequence(test)
}

func startAttempt(t *testing.T) *Attempt {
	t.Helper()
	_, pages := deliverableTest(t)
	attempt, err := NewAttempt("session-token", pages)
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	return attempt
}

func TestNewAttempt_EmptySequence(t *testing.T) {
	if _, err := NewAttempt("tok", nil); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("err = %v, want ErrEmptySequence", err)
	}
}

func TestAttempt_SelectAnswer(t *testing.T) {
	attempt := startAttempt(t)

	// Content page first: no answers accepted here.
	if err := attempt.SelectAnswer(0); !errors.Is(err, ErrNotQuestionPage) {
		t.Errorf("select on content page: err = %v, want ErrNotQuestionPage", err)
	}

	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if err := attempt.SelectAnswer(4); !errors.Is(err, ErrInvalidChoiceIndex) {
		t.Errorf("out-of-range choice: err = %v, want ErrInvalidChoiceIndex", err)
	}
	if err := attempt.SelectAnswer(-1); !errors.Is(err, ErrInvalidChoiceIndex) {
		t.Errorf("negative choice: err = %v, want ErrInvalidChoiceIndex", err)
	}

	if err := attempt.SelectAnswer(2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if choice, ok := attempt.SelectedAnswer(); !ok || choice != 2 {
		t.Errorf("SelectedAnswer = %d,%v, want 2,true", choice, ok)
	}
	if attempt.Cursor != 1 {
		t.Errorf("SelectAnswer moved the cursor to %d", attempt.Cursor)
	}
}

func TestAttempt_NextRequiresAnswer(t *testing.T) {
	attempt := startAttempt(t)
	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next past content page: %v", err)
	}

	if _, err := attempt.Next(); !errors.Is(err, ErrAnswerRequired) {
		t.Errorf("Next without answer: err = %v, want ErrAnswerRequired", err)
	}
	if attempt.Cursor != 1 {
		t.Errorf("failed Next mutated cursor to %d", attempt.Cursor)
	}

	if err := attempt.SelectAnswer(0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := attempt.Next(); err != nil {
		t.Errorf("Next with answer: %v", err)
	}
}

func TestAttempt_AnswerSurvivesBackAndForward(t *testing.T) {
	attempt := startAttempt(t)
	attempt.Next() // onto question 0

	if err := attempt.SelectAnswer(2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := attempt.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}

	if choice, ok := attempt.SelectedAnswer(); !ok || choice != 2 {
		t.Errorf("revisited selection = %d,%v, want 2,true", choice, ok)
	}
}

func TestAttempt_PreviousAtFirstPage(t *testing.T) {
	attempt := startAttempt(t)
	if err := attempt.Previous(); !errors.Is(err, ErrAtFirstPage) {
		t.Errorf("err = %v, want ErrAtFirstPage", err)
	}
	if attempt.Cursor != 0 {
		t.Errorf("failed Previous mutated cursor to %d", attempt.Cursor)
	}
}

func TestAttempt_NextAtLastPageReportsFinished(t *testing.T) {
	attempt := startAttempt(t)
	attempt.Next()
	for i := 0; i < 2; i++ {
		attempt.SelectAnswer(0)
		if finished, err := attempt.Next(); err != nil || finished {
			t.Fatalf("mid-sequence Next = %v,%v", finished, err)
		}
	}
	attempt.SelectAnswer(0)

	finished, err := attempt.Next()
	if err != nil {
		t.Fatalf("final Next: %v", err)
	}
	if !finished {
		t.Error("final Next did not report finished")
	}
	if attempt.Cursor != len(attempt.Pages)-1 {
		t.Errorf("final Next moved cursor past the end: %d", attempt.Cursor)
	}
}

func TestAttempt_SkipConstraints(t *testing.T) {
	t.Run("allowed on opening content page", func(t *testing.T) {
		attempt := startAttempt(t)
		if err := attempt.Skip(); err != nil {
			t.Fatalf("Skip: %v", err)
		}
		if !attempt.Skipped {
			t.Error("Skipped flag not set")
		}
	})

	t.Run("rejected past the first page", func(t *testing.T) {
		attempt := startAttempt(t)
		attempt.Next()
		if err := attempt.Skip(); !errors.Is(err, ErrSkipUnavailable) {
			t.Errorf("err = %v, want ErrSkipUnavailable", err)
		}
		if attempt.Skipped {
			t.Error("failed Skip mutated state")
		}
	})

	t.Run("rejected when the test opens with a question", func(t *testing.T) {
		questions := buildQuestions(1, 0, 0)
		test := &model.Test{
			Questions: questions,
			Pages:     []model.Page{questionPageFor(1, questions[0].ID)},
		}
		attempt, err := NewAttempt("tok", BuildSequence(test))
		if err != nil {
			t.Fatalf("NewAttempt: %v", err)
		}
		if err := attempt.Skip(); !errors.Is(err, ErrSkipUnavailable) {
			t.Errorf("err = %v, want ErrSkipUnavailable", err)
		}
	})
}

func TestAttempt_Progress(t *testing.T) {
	attempt := startAttempt(t) // 4 pages total

	if got := attempt.Progress(); got != 25 {
		t.Errorf("initial progress = %v, want 25", got)
	}

	attempt.Next()
	if got := attempt.Progress(); got != 50 {
		t.Errorf("progress after one step = %v, want 50", got)
	}

	attempt.Previous()
	if got := attempt.Progress(); got != 25 {
		t.Errorf("progress after going back = %v, want 25", got)
	}

	if math.IsNaN(attempt.Progress()) {
		t.Error("progress is NaN")
	}
}
