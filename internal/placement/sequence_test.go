package placement

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/model"
)

func contentPage(title string, order int) model.Page {
	return model.Page{
		ID:      uuid.New(),
		Kind:    model.PageKindContent,
		Order:   order,
		Title:   title,
		Content: "<p>" + title + "</p>",
	}
}

func questionPageFor(order int, ids ...uuid.UUID) model.Page {
	return model.Page{
		ID:          uuid.New(),
		Kind:        model.PageKindQuestion,
		Order:       order,
		QuestionIDs: ids,
	}
}

func TestBuildSequence_SortsByOrder(t *testing.T) {
	questions := buildQuestions(2, 0, 0)
	test := &model.Test{
		Questions: questions,
		Pages: []model.Page{
			questionPageFor(5, questions[0].ID, questions[1].ID),
			contentPage("Welcome", 1),
			contentPage("Instructions", 3),
		},
	}

	pages := BuildSequence(test)

	wantOrders := []int{1, 3, 5, 5}
	if len(pages) != len(wantOrders) {
		t.Fatalf("len(pages) = %d, want %d", len(pages), len(wantOrders))
	}
	for i, want := range wantOrders {
		if pages[i].Order != want {
			t.Errorf("pages[%d].Order = %d, want %d", i, pages[i].Order, want)
		}
	}
	if pages[0].Title != "Welcome" {
		t.Errorf("pages[0].Title = %q, want Welcome", pages[0].Title)
	}
	// Grouped questions keep their stored order within the page.
	if pages[2].QuestionIndex != 0 || pages[3].QuestionIndex != 1 {
		t.Errorf("question indexes = %d,%d, want 0,1", pages[2].QuestionIndex, pages[3].QuestionIndex)
	}
}

func TestBuildSequence_StableOnEqualOrder(t *testing.T) {
	test := &model.Test{
		Pages: []model.Page{
			contentPage("A", 3),
			contentPage("B", 3),
		},
	}

	// Repeated calls must keep insertion order for ties.
	for run := 0; run < 5; run++ {
		pages := BuildSequence(test)
		if len(pages) != 2 {
			t.Fatalf("len(pages) = %d, want 2", len(pages))
		}
		if pages[0].Title != "A" || pages[1].Title != "B" {
			t.Fatalf("run %d: got order [%s %s], want [A B]", run, pages[0].Title, pages[1].Title)
		}
	}
}

func TestBuildSequence_LegacyTestWithoutQuestionPages(t *testing.T) {
	questions := buildQuestions(3, 0, 0)
	test := &model.Test{
		Questions: questions,
		Pages: []model.Page{
			contentPage("Intro", 10),
		},
	}

	pages := BuildSequence(test)

	if len(pages) != 4 {
		t.Fatalf("len(pages) = %d, want 4", len(pages))
	}
	if pages[0].Kind != model.PageKindContent {
		t.Errorf("pages[0].Kind = %q, want content first", pages[0].Kind)
	}
	// Questions land after every explicitly ordered page, in array order.
	for i := 1; i < 4; i++ {
		if !pages[i].IsQuestion() {
			t.Fatalf("pages[%d] is not a question page", i)
		}
		if pages[i].QuestionIndex != i-1 {
			t.Errorf("pages[%d].QuestionIndex = %d, want %d", i, pages[i].QuestionIndex, i-1)
		}
	}
}

func TestBuildSequence_SkipsDanglingQuestionIDs(t *testing.T) {
	questions := buildQuestions(1, 0, 0)
	test := &model.Test{
		Questions: questions,
		Pages: []model.Page{
			questionPageFor(1, uuid.New(), questions[0].ID),
		},
	}

	pages := BuildSequence(test)

	if len(pages) != 1 {
		t.Fatalf("len(pages) = %d, want 1 (dangling id dropped)", len(pages))
	}
	if pages[0].QuestionID != questions[0].ID {
		t.Errorf("surviving page references wrong question")
	}
}

func TestLinearPage_FirstQuestionIndexSerializes(t *testing.T) {
	questions := buildQuestions(1, 0, 0)
	test := &model.Test{
		Questions: questions,
		Pages:     []model.Page{questionPageFor(1, questions[0].ID)},
	}

	raw, err := json.Marshal(BuildSequence(test)[0])
	if err != nil {
		t.Fatal(err)
	}

	// Index zero must stay visible on the wire; dropping it would make the
	// first question's index indistinguishable from an absent field.
	if !bytes.Contains(raw, []byte(`"question_index":0`)) {
		t.Errorf("question_index missing from %s", raw)
	}
}

func TestBuildSequence_EmptyQuestionTextFallsBack(t *testing.T) {
	questions := buildQuestions(1, 0, 0)
	questions[0].QuestionText = ""
	test := &model.Test{
		Questions: questions,
		Pages:     []model.Page{questionPageFor(1, questions[0].ID)},
	}

	pages := BuildSequence(test)

	if pages[0].QuestionText != DefaultQuestionText {
		t.Errorf("QuestionText = %q, want %q", pages[0].QuestionText, DefaultQuestionText)
	}
}
