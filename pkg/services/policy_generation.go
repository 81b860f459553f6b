package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/prompts"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

type policyDraftResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PolicyService generates long-form policy drafts for sharp questions.
// Drafts are append-only: every run inserts a new document and readers pick
// the newest.
type PolicyService struct {
	questions repositories.SharpQuestionRepository
	links     repositories.QuestionLinkRepository
	problems  repositories.ProblemRepository
	solutions repositories.SolutionRepository
	drafts    repositories.PolicyDraftRepository
	client    llm.ChatClient
	logger    *zap.Logger
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(
	questions repositories.SharpQuestionRepository,
	links repositories.QuestionLinkRepository,
	problems repositories.ProblemRepository,
	solutions repositories.SolutionRepository,
	drafts repositories.PolicyDraftRepository,
	client llm.ChatClient,
	logger *zap.Logger,
) *PolicyService {
	return &PolicyService{
		questions: questions,
		links:     links,
		problems:  problems,
		solutions: solutions,
		drafts:    drafts,
		client:    client,
		logger:    logger.Named("policy"),
	}
}

// GeneratePolicyDraft builds a new draft for the question from all of its
// linked problems and solutions, ordered by relevance. The LLM response must
// carry a non-empty title and content or the run fails without persisting
// anything.
func (s *PolicyService) GeneratePolicyDraft(ctx context.Context, questionID uuid.UUID) (*models.PolicyDraft, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}

	problemIDs, problemStatements, err := s.linkedStatements(ctx, questionID, models.LinkedItemTypeProblem)
	if err != nil {
		return nil, err
	}
	solutionIDs, solutionStatements, err := s.linkedStatements(ctx, questionID, models.LinkedItemTypeSolution)
	if err != nil {
		return nil, err
	}

	resp, err := llm.CompleteJSON[policyDraftResponse](ctx, s.client, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.BuildPolicyDraftSystemMessage()},
			{Role: llm.RoleUser, Content: prompts.BuildPolicyDraftUserMessage(question.QuestionText, problemStatements, solutionStatements)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("policy draft llm call failed: %w", err)
	}
	if strings.TrimSpace(resp.Title) == "" || strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("policy draft response missing title or content")
	}

	draft := &models.PolicyDraft{
		QuestionID:        questionID,
		Title:             resp.Title,
		Content:           resp.Content,
		SourceProblemIDs:  problemIDs,
		SourceSolutionIDs: solutionIDs,
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, err
	}

	s.logger.Info("policy draft created",
		zap.String("question_id", questionID.String()),
		zap.String("draft_id", draft.ID.String()),
		zap.Int("problems", len(problemIDs)),
		zap.Int("solutions", len(solutionIDs)))

	return draft, nil
}

// linkedStatements resolves a question's links of one type into ids and
// statements, preserving the links' relevance ordering.
func (s *PolicyService) linkedStatements(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType) ([]uuid.UUID, []string, error) {
	links, err := s.links.ListByQuestion(ctx, questionID, itemType)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.LinkedItemID
	}

	var statements []string
	switch itemType {
	case models.LinkedItemTypeProblem:
		items, err := s.problems.GetByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		ids = ids[:0]
		for _, item := range items {
			ids = append(ids, item.ID)
			statements = append(statements, item.Statement)
		}
	case models.LinkedItemTypeSolution:
		items, err := s.solutions.GetByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		ids = ids[:0]
		for _, item := range items {
			ids = append(ids, item.ID)
			statements = append(statements, item.Statement)
		}
	}

	return ids, statements, nil
}
