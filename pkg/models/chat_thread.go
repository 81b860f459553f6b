package models

import (
	"time"

	"github.com/google/uuid"
)

// Message roles within a chat thread.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is a single turn in a chat thread. Stored as JSONB inside the
// thread row rather than as its own table.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatThread is a deliberation conversation between a user and the assistant.
// ExtractedProblemIDs / ExtractedSolutionIDs accumulate the ids of statements
// the extraction stage produced from this thread so the originating
// conversation can display its own extractions.
type ChatThread struct {
	ID                   uuid.UUID   `json:"id"`
	ThemeID              uuid.UUID   `json:"theme_id"`
	UserID               string      `json:"user_id"`
	Messages             []Message   `json:"messages"`
	ExtractedProblemIDs  []uuid.UUID `json:"extracted_problem_ids"`
	ExtractedSolutionIDs []uuid.UUID `json:"extracted_solution_ids"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}
