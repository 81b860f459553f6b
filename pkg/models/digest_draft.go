package models

import (
	"time"

	"github.com/google/uuid"
)

// DigestDraft is a shortened, citizen-facing rewrite of a PolicyDraft. It
// always references the policy draft it was derived from; generating a digest
// requires at least one policy draft to exist for the question.
type DigestDraft struct {
	ID            uuid.UUID `json:"id"`
	QuestionID    uuid.UUID `json:"question_id"`
	PolicyDraftID uuid.UUID `json:"policy_draft_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
