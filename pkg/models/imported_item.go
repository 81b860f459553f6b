package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus tracks an imported item through the extraction pipeline.
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportedItem is an externally sourced opinion (tweet, survey answer, forum
// post) queued for extraction. SourceType is a free-form tag describing where
// the content came from.
type ImportedItem struct {
	ID         uuid.UUID      `json:"id"`
	ThemeID    uuid.UUID      `json:"theme_id"`
	SourceType string         `json:"source_type"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Status     ImportStatus   `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
