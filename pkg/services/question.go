package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

// LinkedStatement is a problem or solution statement together with its
// relevance score for a particular question.
type LinkedStatement struct {
	ID             uuid.UUID `json:"id"`
	Statement      string    `json:"statement"`
	RelevanceScore float64   `json:"relevanceScore"`
	Version        int       `json:"version"`
}

// QuestionDetails is a sharp question with its linked statements, ordered by
// descending relevance.
type QuestionDetails struct {
	Question  *models.SharpQuestion `json:"question"`
	Problems  []LinkedStatement     `json:"relatedProblems"`
	Solutions []LinkedStatement     `json:"relatedSolutions"`
}

// QuestionService serves read paths over sharp questions and their derived
// documents.
type QuestionService struct {
	questions repositories.SharpQuestionRepository
	links     repositories.QuestionLinkRepository
	problems  repositories.ProblemRepository
	solutions repositories.SolutionRepository
	policies  repositories.PolicyDraftRepository
	digests   repositories.DigestDraftRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	questions repositories.SharpQuestionRepository,
	links repositories.QuestionLinkRepository,
	problems repositories.ProblemRepository,
	solutions repositories.SolutionRepository,
	policies repositories.PolicyDraftRepository,
	digests repositories.DigestDraftRepository,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		links:     links,
		problems:  problems,
		solutions: solutions,
		policies:  policies,
		digests:   digests,
	}
}

// ListQuestions returns a theme's questions, newest first.
func (s *QuestionService) ListQuestions(ctx context.Context, themeID uuid.UUID) ([]*models.SharpQuestion, error) {
	return s.questions.ListByTheme(ctx, themeID)
}

// GetQuestionDetails returns the question with its linked problems and
// solutions, each list sorted by relevance score descending with creation
// time as the tiebreak.
func (s *QuestionService) GetQuestionDetails(ctx context.Context, questionID uuid.UUID) (*QuestionDetails, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}

	problems, err := s.linkedProblemStatements(ctx, questionID)
	if err != nil {
		return nil, err
	}
	solutions, err := s.linkedSolutionStatements(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return &QuestionDetails{
		Question:  question,
		Problems:  problems,
		Solutions: solutions,
	}, nil
}

// ListPolicyDrafts returns the question's policy drafts, newest first.
func (s *QuestionService) ListPolicyDrafts(ctx context.Context, questionID uuid.UUID) ([]*models.PolicyDraft, error) {
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.policies.ListByQuestion(ctx, questionID)
}

// ListAllPolicyDrafts returns every policy draft across questions, newest
// first.
func (s *QuestionService) ListAllPolicyDrafts(ctx context.Context) ([]*models.PolicyDraft, error) {
	return s.policies.List(ctx)
}

// ListAllDigestDrafts returns every digest draft across questions, newest
// first.
func (s *QuestionService) ListAllDigestDrafts(ctx context.Context) ([]*models.DigestDraft, error) {
	return s.digests.List(ctx)
}

// ListDigestDrafts returns the question's digest drafts, newest first.
func (s *QuestionService) ListDigestDrafts(ctx context.Context, questionID uuid.UUID) ([]*models.DigestDraft, error) {
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.digests.ListByQuestion(ctx, questionID)
}

func (s *QuestionService) linkedProblemStatements(ctx context.Context, questionID uuid.UUID) ([]LinkedStatement, error) {
	links, err := s.links.ListByQuestion(ctx, questionID, models.LinkedItemTypeProblem)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(links))
	scores := make(map[uuid.UUID]float64, len(links))
	for i, link := range links {
		ids[i] = link.LinkedItemID
		scores[link.LinkedItemID] = link.RelevanceScore
	}

	items, err := s.problems.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	statements := make([]LinkedStatement, 0, len(items))
	for _, item := range items {
		statements = append(statements, LinkedStatement{
			ID:             item.ID,
			Statement:      item.Statement,
			RelevanceScore: scores[item.ID],
			Version:        item.Version,
		})
	}
	return statements, nil
}

func (s *QuestionService) linkedSolutionStatements(ctx context.Context, questionID uuid.UUID) ([]LinkedStatement, error) {
	links, err := s.links.ListByQuestion(ctx, questionID, models.LinkedItemTypeSolution)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(links))
	scores := make(map[uuid.UUID]float64, len(links))
	for i, link := range links {
		ids[i] = link.LinkedItemID
		scores[link.LinkedItemID] = link.RelevanceScore
	}

	items, err := s.solutions.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	statements := make([]LinkedStatement, 0, len(items))
	for _, item := range items {
		statements = append(statements, LinkedStatement{
			ID:             item.ID,
			Statement:      item.Statement,
			RelevanceScore: scores[item.ID],
			Version:        item.Version,
		})
	}
	return statements, nil
}
