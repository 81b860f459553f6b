package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/prompts"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

type relevanceResponse struct {
	Scores []relevanceScore `json:"scores"`
}

type relevanceScore struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// LinkingService scores the relevance of problems and solutions against
// sharp questions and persists the results as question links. Every scored
// pair is stored regardless of how low the score is; filtering is a reader's
// concern. Scoring batches run through a bounded worker pool so a large theme
// does not flood the LLM provider.
type LinkingService struct {
	questions repositories.SharpQuestionRepository
	problems  repositories.ProblemRepository
	solutions repositories.SolutionRepository
	links     repositories.QuestionLinkRepository
	client    llm.ChatClient
	pool      *llm.WorkerPool
	logger    *zap.Logger
}

// NewLinkingService creates a new LinkingService.
func NewLinkingService(
	questions repositories.SharpQuestionRepository,
	problems repositories.ProblemRepository,
	solutions repositories.SolutionRepository,
	links repositories.QuestionLinkRepository,
	client llm.ChatClient,
	pool *llm.WorkerPool,
	logger *zap.Logger,
) *LinkingService {
	return &LinkingService{
		questions: questions,
		problems:  problems,
		solutions: solutions,
		links:     links,
		client:    client,
		pool:      pool,
		logger:    logger.Named("linking"),
	}
}

// LinkQuestionToAllItems scores every problem and solution in the question's
// theme against the question. Used when a question is first created.
func (s *LinkingService) LinkQuestionToAllItems(ctx context.Context, questionID uuid.UUID) error {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("failed to load question %s: %w", questionID, err)
	}

	problems, err := s.problems.ListByTheme(ctx, question.ThemeID)
	if err != nil {
		return err
	}
	solutions, err := s.solutions.ListByTheme(ctx, question.ThemeID)
	if err != nil {
		return err
	}

	problemItems := make([]prompts.RelevanceItem, len(problems))
	for i, p := range problems {
		problemItems[i] = prompts.RelevanceItem{ID: p.ID.String(), Statement: p.Statement}
	}
	solutionItems := make([]prompts.RelevanceItem, len(solutions))
	for i, sol := range solutions {
		solutionItems[i] = prompts.RelevanceItem{ID: sol.ID.String(), Statement: sol.Statement}
	}

	if err := s.scoreAndStore(ctx, question, problemItems, models.LinkedItemTypeProblem); err != nil {
		return err
	}
	return s.scoreAndStore(ctx, question, solutionItems, models.LinkedItemTypeSolution)
}

// LinkItemToAllQuestions scores one new item against every question in its
// theme. Used when extraction produces a new statement after questions
// already exist.
func (s *LinkingService) LinkItemToAllQuestions(ctx context.Context, itemID uuid.UUID, itemType models.LinkedItemType) error {
	var (
		themeID   uuid.UUID
		statement string
	)
	switch itemType {
	case models.LinkedItemTypeProblem:
		problem, err := s.problems.GetByID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load problem %s: %w", itemID, err)
		}
		themeID, statement = problem.ThemeID, problem.Statement
	case models.LinkedItemTypeSolution:
		solution, err := s.solutions.GetByID(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load solution %s: %w", itemID, err)
		}
		themeID, statement = solution.ThemeID, solution.Statement
	default:
		return fmt.Errorf("%w: unknown item type %q", apperrors.ErrInvalidInput, itemType)
	}

	questions, err := s.questions.ListByTheme(ctx, themeID)
	if err != nil {
		return err
	}

	item := []prompts.RelevanceItem{{ID: itemID.String(), Statement: statement}}
	for _, question := range questions {
		if err := s.scoreAndStore(ctx, question, item, itemType); err != nil {
			s.logger.Error("failed to score item against question",
				zap.String("item_id", itemID.String()),
				zap.String("question_id", question.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// scoreAndStore fans the items out into scoring batches, runs them through
// the worker pool, and upserts one link per returned score. A failed batch
// is logged and its items are skipped.
func (s *LinkingService) scoreAndStore(ctx context.Context, question *models.SharpQuestion, items []prompts.RelevanceItem, itemType models.LinkedItemType) error {
	if len(items) == 0 {
		return nil
	}

	offered := make(map[string]struct{}, len(items))
	for _, item := range items {
		offered[item.ID] = struct{}{}
	}

	var work []llm.WorkItem[relevanceResponse]
	for start := 0; start < len(items); start += prompts.RelevanceBatchSize {
		end := start + prompts.RelevanceBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		work = append(work, llm.WorkItem[relevanceResponse]{
			ID: fmt.Sprintf("%s/%s/%d", question.ID, itemType, start),
			Execute: func(ctx context.Context) (relevanceResponse, error) {
				return llm.CompleteJSON[relevanceResponse](ctx, s.client, llm.Request{
					Messages: []llm.Message{
						{Role: llm.RoleSystem, Content: prompts.BuildRelevanceSystemMessage()},
						{Role: llm.RoleUser, Content: prompts.BuildRelevanceUserMessage(question.QuestionText, batch)},
					},
				})
			},
		})
	}

	results := llm.Process(ctx, s.pool, work)

	stored := 0
	for _, res := range results {
		if res.Err != nil {
			s.logger.Error("relevance batch failed",
				zap.String("batch", res.ID),
				zap.Error(res.Err))
			continue
		}
		for _, score := range res.Result.Scores {
			// Only ids that were actually offered get persisted; a
			// hallucinated id would create a link pointing at nothing.
			if _, ok := offered[score.ID]; !ok {
				s.logger.Warn("relevance response contained unknown item id",
					zap.String("item_id", score.ID))
				continue
			}
			itemID, err := uuid.Parse(score.ID)
			if err != nil {
				s.logger.Warn("relevance response contained invalid item id",
					zap.String("item_id", score.ID))
				continue
			}
			link := &models.QuestionLink{
				QuestionID:     question.ID,
				LinkedItemID:   itemID,
				LinkedItemType: itemType,
				RelevanceScore: clampScore(score.Score),
			}
			if err := s.links.Upsert(ctx, link); err != nil {
				s.logger.Error("failed to upsert question link",
					zap.String("question_id", question.ID.String()),
					zap.String("item_id", itemID.String()),
					zap.Error(err))
				continue
			}
			stored++
		}
	}

	s.logger.Info("relevance scoring completed",
		zap.String("question_id", question.ID.String()),
		zap.String("item_type", string(itemType)),
		zap.Int("items", len(items)),
		zap.Int("links_stored", stored))

	return nil
}

// clampScore forces a model-reported score into [0, 1].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
