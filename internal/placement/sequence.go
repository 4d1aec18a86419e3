package placement

import (
	"sort"

	"github.com/google/uuid"
	"github.com/lingodesk/placement-backend/internal/model"
)

// LinearPage is one navigable unit of the delivery sequence. A question
// page entity that groups several question ids expands into one LinearPage
// per question, all carrying the entity's order value.
type LinearPage struct {
	Kind  model.PageKind `json:"kind"`
	Order int            `json:"order"`

	// Content page fields.
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Image   string `json:"image,omitempty"`

	// Question page fields. QuestionIndex addresses the test's question
	// slice and is the key of the attempt's answer map. Choices carries
	// display text only; correct flags never leave the server.
	QuestionID    uuid.UUID `json:"question_id,omitempty"`
	QuestionIndex int       `json:"question_index"`
	QuestionText  string    `json:"question_text,omitempty"`
	Choices       []string  `json:"choices,omitempty"`
}

// DeliveryPayload is the learner-facing form of a published test: the
// flattened sequence plus display metadata, with all correct flags removed.
// It is what gets cached at publish time and served to attempts.
type DeliveryPayload struct {
	TestID uuid.UUID    `json:"test_id"`
	Title  string       `json:"title"`
	Pages  []LinearPage `json:"pages"`
}

// IsQuestion reports whether the page expects an answer.
func (p *LinearPage) IsQuestion() bool {
	return p.Kind == model.PageKindQuestion
}

// BuildSequence flattens a test's content and question pages into the
// canonical linear sequence a learner traverses: one list, sorted by order
// ascending with insertion order as the stable tiebreak. The result is
// fixed for the duration of one attempt.
//
// Tests authored before page grouping carry questions but no question
// pages; those questions are enumerated directly in stored order, placed
// after every explicitly ordered page.
func BuildSequence(t *model.Test) []LinearPage {
	indexByID := make(map[uuid.UUID]int, len(t.Questions))
	for i := range t.Questions {
		indexByID[t.Questions[i].ID] = i
	}

	var (
		pages           []LinearPage
		maxOrder        int
		hasQuestionPage bool
	)

	for i := range t.Pages {
		p := &t.Pages[i]
		if p.Order > maxOrder {
			maxOrder = p.Order
		}

		switch p.Kind {
		case model.PageKindContent:
			pages = append(pages, LinearPage{
				Kind:    model.PageKindContent,
				Order:   p.Order,
				Title:   p.Title,
				Content: p.Content,
				Image:   p.Image,
			})
		case model.PageKindQuestion:
			hasQuestionPage = true
			for _, qid := range p.QuestionIDs {
				idx, ok := indexByID[qid]
				if !ok {
					continue // dangling reference, question was deleted
				}
				pages = append(pages, questionPage(&t.Questions[idx], idx, p.Order))
			}
		}
	}

	if !hasQuestionPage && len(t.Questions) > 0 {
		// Legacy layout: place all questions after the ordered pages,
		// preserving array order via the stable sort.
		syntheticOrder := maxOrder + 1
		for i := range t.Questions {
			pages = append(pages, questionPage(&t.Questions[i], i, syntheticOrder))
		}
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Order < pages[j].Order
	})

	return pages
}

func questionPage(q *model.Question, index, order int) LinearPage {
	text := q.QuestionText
	if text == "" {
		text = DefaultQuestionText
	}

	choices := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = c.Text
	}

	return LinearPage{
		Kind:          model.PageKindQuestion,
		Order:         order,
		QuestionID:    q.ID,
		QuestionIndex: index,
		QuestionText:  text,
		Choices:       choices,
	}
}
