package models

import (
	"time"

	"github.com/google/uuid"
)

// SharpQuestion is a synthesized "how might we" framing question for a theme.
// The pair (QuestionText, ThemeID) is the natural key: synthesis upserts on it
// and an existing question is left untouched when the same text is generated
// again.
type SharpQuestion struct {
	ID               uuid.UUID   `json:"id"`
	ThemeID          uuid.UUID   `json:"theme_id"`
	QuestionText     string      `json:"question_text"`
	SourceProblemIDs []uuid.UUID `json:"source_problem_ids"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
