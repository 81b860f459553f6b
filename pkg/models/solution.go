package models

import (
	"time"

	"github.com/google/uuid"
)

// Solution is a single extracted statement of a proposed remedy. It follows
// the same versioning rules as Problem.
type Solution struct {
	ID               uuid.UUID      `json:"id"`
	ThemeID          uuid.UUID      `json:"theme_id"`
	Statement        string         `json:"statement"`
	SourceType       string         `json:"source_type"`
	SourceRef        SourceRef      `json:"source_ref"`
	OriginalSnippets []string       `json:"original_snippets"`
	SourceMetadata   map[string]any `json:"source_metadata"`
	Version          int            `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
