package models

import (
	"time"

	"github.com/google/uuid"
)

// LinkedItemType identifies which collection a question link points at.
type LinkedItemType string

const (
	LinkedItemTypeProblem  LinkedItemType = "problem"
	LinkedItemTypeSolution LinkedItemType = "solution"
)

// LinkType describes how a linked item relates to its question.
type LinkType string

const (
	LinkTypePromptsQuestion LinkType = "prompts_question"
	LinkTypeAnswersQuestion LinkType = "answers_question"
)

// LinkTypeFor derives the link type from the linked item type. This is the
// only valid mapping: problems prompt questions, solutions answer them.
func LinkTypeFor(itemType LinkedItemType) LinkType {
	if itemType == LinkedItemTypeSolution {
		return LinkTypeAnswersQuestion
	}
	return LinkTypePromptsQuestion
}

// QuestionLink is a scored association between a SharpQuestion and a Problem
// or Solution. The pair (QuestionID, LinkedItemID) is a recomputable key:
// re-running the linking stage overwrites the score rather than inserting a
// second row. All scored pairs are persisted; relevance thresholds are
// applied by readers, never at write time.
type QuestionLink struct {
	ID             uuid.UUID      `json:"id"`
	QuestionID     uuid.UUID      `json:"question_id"`
	LinkedItemID   uuid.UUID      `json:"linked_item_id"`
	LinkedItemType LinkedItemType `json:"linked_item_type"`
	LinkType       LinkType       `json:"link_type"`
	RelevanceScore float64        `json:"relevance_score"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
