package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is a top-level deliberation topic. Every other entity is scoped to a
// theme via ThemeID. Themes are never hard-deleted while referenced entities
// exist; deactivation is the supported way to retire one.
type Theme struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
