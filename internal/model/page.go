package model

import (
	"github.com/google/uuid"
)

// PageKind discriminates the page union: a content page carries rich text,
// a question page carries an ordered list of question ids.
type PageKind string

const (
	PageKindContent  PageKind = "content"
	PageKindQuestion PageKind = "question"
)

// Page is one entry of a test's page collection. Content and question
// pages share a single order space; order values need not be contiguous.
// Seq records insertion order and is the stable tiebreak for equal orders.
type Page struct {
	ID     uuid.UUID `json:"id"`
	TestID uuid.UUID `json:"test_id"`
	Kind   PageKind  `json:"kind"`
	Order  int       `json:"order"`
	Seq    int64     `json:"-"`

	// Content page fields. Content is an opaque rich-text blob and Image
	// an opaque upload reference; this service never interprets either.
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Image   string `json:"image,omitempty"`

	// Question page fields.
	QuestionIDs []uuid.UUID `json:"question_ids,omitempty"`
}

// AddContentPageRequest is the payload for adding a content page.
type AddContentPageRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content" binding:"required"`
	Image   string `json:"image" binding:"omitempty,max=512"`
	Order   int    `json:"order" binding:"min=0"`
}

// AddQuestionPageRequest is the payload for adding a question page.
type AddQuestionPageRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
	Order       int         `json:"order" binding:"min=0"`
}

// MovePageRequest reorders a page one slot up or down. The move swaps the
// page's order value with its neighbour in the sorted sequence.
type MovePageRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}
