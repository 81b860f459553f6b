package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/prompts"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

// ChatService runs deliberation conversations. Each user message gets an
// assistant reply grounded in the theme's sharp questions and their
// high-relevance statements, and the updated thread is queued for extraction.
type ChatService struct {
	themes    repositories.ThemeRepository
	threads   repositories.ChatThreadRepository
	questions repositories.SharpQuestionRepository
	links     repositories.QuestionLinkRepository
	problems  repositories.ProblemRepository
	solutions repositories.SolutionRepository
	client    llm.ChatClient
	trigger   ExtractionTrigger
	logger    *zap.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(
	themes repositories.ThemeRepository,
	threads repositories.ChatThreadRepository,
	questions repositories.SharpQuestionRepository,
	links repositories.QuestionLinkRepository,
	problems repositories.ProblemRepository,
	solutions repositories.SolutionRepository,
	client llm.ChatClient,
	trigger ExtractionTrigger,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		themes:    themes,
		threads:   threads,
		questions: questions,
		links:     links,
		problems:  problems,
		solutions: solutions,
		client:    client,
		trigger:   trigger,
		logger:    logger.Named("chat"),
	}
}

// StartThread opens a new conversation in the theme. Anonymous visitors get
// a generated temporary user id so their extractions stay attributable
// across messages.
func (s *ChatService) StartThread(ctx context.Context, themeID uuid.UUID, userID string) (*models.ChatThread, error) {
	if _, err := s.themes.GetByID(ctx, themeID); err != nil {
		return nil, fmt.Errorf("failed to load theme %s: %w", themeID, err)
	}

	if strings.TrimSpace(userID) == "" {
		userID = "temp_" + uuid.NewString()
	}

	thread := &models.ChatThread{
		ThemeID:  themeID,
		UserID:   userID,
		Messages: []models.Message{},
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// GetThread retrieves a thread by id.
func (s *ChatService) GetThread(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
	return s.threads.GetByID(ctx, id)
}

// ListThreads lists a theme's threads, newest first.
func (s *ChatService) ListThreads(ctx context.Context, themeID uuid.UUID) ([]*models.ChatThread, error) {
	return s.threads.ListByTheme(ctx, themeID)
}

// ThreadExtractions resolves the problems and solutions that extraction has
// produced from a thread so far.
func (s *ChatService) ThreadExtractions(ctx context.Context, threadID uuid.UUID) ([]*models.Problem, []*models.Solution, error) {
	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}

	problems, err := s.problems.GetByIDs(ctx, thread.ExtractedProblemIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load extracted problems: %w", err)
	}
	solutions, err := s.solutions.GetByIDs(ctx, thread.ExtractedSolutionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load extracted solutions: %w", err)
	}
	return problems, solutions, nil
}

// PostMessage appends the user message, generates an assistant reply, and
// persists both before queueing the thread for extraction. The reply is
// returned along with the updated thread.
func (s *ChatService) PostMessage(ctx context.Context, threadID uuid.UUID, content string) (*models.ChatThread, string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, "", fmt.Errorf("%w: message content is required", apperrors.ErrInvalidInput)
	}

	thread, err := s.threads.GetByID(ctx, threadID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: prompts.BuildChatSystemMessage()}}
	if reference := s.buildReferenceOpinions(ctx, thread.ThemeID); reference != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: reference})
	}
	for _, msg := range thread.Messages {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})

	reply, err := s.client.Complete(ctx, llm.Request{Messages: messages})
	if err != nil {
		return nil, "", fmt.Errorf("chat llm call failed: %w", err)
	}

	now := time.Now()
	updated, err := s.threads.AppendMessages(ctx, threadID, []models.Message{
		{Role: models.MessageRoleUser, Content: content, Timestamp: now},
		{Role: models.MessageRoleAssistant, Content: reply, Timestamp: now},
	})
	if err != nil {
		return nil, "", err
	}

	ref := models.SourceRef{Kind: models.SourceKindChatThread, ID: threadID}
	if err := s.trigger.EnqueueExtraction(ref); err != nil {
		s.logger.Warn("extraction not scheduled for thread",
			zap.String("thread_id", threadID.String()),
			zap.Error(err))
	}

	return updated, reply, nil
}

// buildReferenceOpinions loads the theme's questions with their
// high-relevance statements and renders them as prompt material. Failures
// degrade to an empty reference block; the conversation still proceeds.
func (s *ChatService) buildReferenceOpinions(ctx context.Context, themeID uuid.UUID) string {
	questions, err := s.questions.ListByTheme(ctx, themeID)
	if err != nil {
		s.logger.Warn("failed to load questions for reference opinions", zap.Error(err))
		return ""
	}

	var reference []prompts.ReferenceQuestion
	for _, question := range questions {
		rq := prompts.ReferenceQuestion{QuestionText: question.QuestionText}

		problemLinks, err := s.links.ListTopByQuestion(ctx, question.ID, models.LinkedItemTypeProblem,
			prompts.ReferenceOpinionThreshold, prompts.ReferenceOpinionLimit)
		if err == nil {
			rq.Problems = s.problemStatements(ctx, problemLinks)
		}

		solutionLinks, err := s.links.ListTopByQuestion(ctx, question.ID, models.LinkedItemTypeSolution,
			prompts.ReferenceOpinionThreshold, prompts.ReferenceOpinionLimit)
		if err == nil {
			rq.Solutions = s.solutionStatements(ctx, solutionLinks)
		}

		reference = append(reference, rq)
	}

	return prompts.BuildReferenceOpinionsMessage(reference)
}

func (s *ChatService) problemStatements(ctx context.Context, links []*models.QuestionLink) []string {
	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.LinkedItemID
	}
	items, err := s.problems.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load linked problems", zap.Error(err))
		return nil
	}
	statements := make([]string, len(items))
	for i, item := range items {
		statements[i] = item.Statement
	}
	return statements
}

func (s *ChatService) solutionStatements(ctx context.Context, links []*models.QuestionLink) []string {
	ids := make([]uuid.UUID, len(links))
	for i, link := range links {
		ids[i] = link.LinkedItemID
	}
	items, err := s.solutions.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load linked solutions", zap.Error(err))
		return nil
	}
	statements := make([]string, len(items))
	for i, item := range items {
		statements[i] = item.Statement
	}
	return statements
}
