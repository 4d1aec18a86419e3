package model

import "time"

// Role groups the permission codes granted to teacher accounts. Roles are
// seeded by migrations and looked up by name; the service never edits them
// at runtime.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
