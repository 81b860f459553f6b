package models

import (
	"time"

	"github.com/google/uuid"
)

// Problem is a single extracted statement of an issue raised in deliberation
// input. Version starts at 1 and is incremented whenever a later extraction
// run judges a new snippet to restate or refine the same logical statement;
// it only ever increases. Consumers rely on strict version inequality to
// distinguish "this statement changed" from "this statement appeared".
type Problem struct {
	ID               uuid.UUID         `json:"id"`
	ThemeID          uuid.UUID         `json:"theme_id"`
	Statement        string            `json:"statement"`
	SourceType       string            `json:"source_type"`
	SourceRef        SourceRef         `json:"source_ref"`
	OriginalSnippets []string          `json:"original_snippets"`
	SourceMetadata   map[string]any    `json:"source_metadata"`
	Version          int               `json:"version"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
