package models

import (
	"time"

	"github.com/google/uuid"
)

// PolicyDraft is a generated long-form document for one SharpQuestion: a
// citizen-opinion report followed by a policy proposal. Drafts are
// append-only; repeated generations for the same question produce additional
// documents and readers pick the newest by CreatedAt.
type PolicyDraft struct {
	ID                uuid.UUID   `json:"id"`
	QuestionID        uuid.UUID   `json:"question_id"`
	Title             string      `json:"title"`
	Content           string      `json:"content"`
	SourceProblemIDs  []uuid.UUID `json:"source_problem_ids"`
	SourceSolutionIDs []uuid.UUID `json:"source_solution_ids"`
	Version           int         `json:"version"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
