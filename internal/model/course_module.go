package model

import (
	"time"

	"github.com/google/uuid"
)

// ModuleStatus enumerates catalog module availability.
type ModuleStatus string

const (
	ModuleStatusActive  ModuleStatus = "active"
	ModuleStatusRetired ModuleStatus = "retired"
)

// CourseModule is a curriculum module in the course catalog. The placement
// engine only consumes id, title, description and status.
type CourseModule struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      ModuleStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateModuleRequest is the payload for adding a catalog module.
type CreateModuleRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateModuleRequest is the payload for editing a catalog module.
type UpdateModuleRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Status      string `json:"status" binding:"required,oneof=active retired"`
}
