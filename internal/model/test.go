package model

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus enumerates the lifecycle states of a placement test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "draft"
	TestStatusPublished TestStatus = "published"
	TestStatusArchived  TestStatus = "archived"
)

// ModuleRef is an ordered reference to a curriculum module assigned to a
// placement level. Order of the slice is the recommendation order.
type ModuleRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// Test is a placement test with its full authoring graph: questions,
// pages and per-level module assignments.
type Test struct {
	ID       uuid.UUID  `json:"id"`
	Title    string     `json:"title"`
	AuthorID int        `json:"author_id"`
	Status   TestStatus `json:"status"`

	Questions         []Question                     `json:"questions,omitempty"`
	Pages             []Page                         `json:"pages,omitempty"`
	ModuleAssignments map[PlacementLevel][]ModuleRef `json:"module_assignments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTestRequest is the payload for creating a new draft test.
type CreateTestRequest struct {
	Title string `json:"title" binding:"required,min=3,max=255"`
}

// UpdateTestRequest is the payload for editing a test's basic info.
type UpdateTestRequest struct {
	Title string `json:"title" binding:"required,min=3,max=255"`
}

// ReplaceAssignmentsRequest replaces the ordered module list for one
// placement level.
type ReplaceAssignmentsRequest struct {
	Level     string      `json:"level" binding:"required,oneof=beginner intermediate_beginner advanced_beginner"`
	ModuleIDs []uuid.UUID `json:"module_ids" binding:"omitempty"`
}
