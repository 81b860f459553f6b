package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/prompts"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

type digestResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DigestService rewrites policy drafts into short citizen-facing documents.
// A digest always derives from the question's most recent policy draft;
// generating one before any policy draft exists is a precondition failure.
type DigestService struct {
	questions repositories.SharpQuestionRepository
	policies  repositories.PolicyDraftRepository
	digests   repositories.DigestDraftRepository
	client    llm.ChatClient
	logger    *zap.Logger
}

// NewDigestService creates a new DigestService.
func NewDigestService(
	questions repositories.SharpQuestionRepository,
	policies repositories.PolicyDraftRepository,
	digests repositories.DigestDraftRepository,
	client llm.ChatClient,
	logger *zap.Logger,
) *DigestService {
	return &DigestService{
		questions: questions,
		policies:  policies,
		digests:   digests,
		client:    client,
		logger:    logger.Named("digest"),
	}
}

// GenerateDigestDraft creates a new digest from the latest policy draft for
// the question. Returns ErrPreconditionFailed when the question has no policy
// draft yet.
func (s *DigestService) GenerateDigestDraft(ctx context.Context, questionID uuid.UUID) (*models.DigestDraft, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}

	policy, err := s.policies.GetLatestByQuestion(ctx, questionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("question %s has no policy draft: %w", questionID, apperrors.ErrPreconditionFailed)
	}
	if err != nil {
		return nil, err
	}

	resp, err := llm.CompleteJSON[digestResponse](ctx, s.client, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.BuildDigestSystemMessage()},
			{Role: llm.RoleUser, Content: prompts.BuildDigestUserMessage(question.QuestionText, policy.Title, policy.Content)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("digest llm call failed: %w", err)
	}
	if strings.TrimSpace(resp.Title) == "" || strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("digest response missing title or content")
	}

	digest := &models.DigestDraft{
		QuestionID:    questionID,
		PolicyDraftID: policy.ID,
		Title:         resp.Title,
		Content:       resp.Content,
	}
	if err := s.digests.Create(ctx, digest); err != nil {
		return nil, err
	}

	s.logger.Info("digest draft created",
		zap.String("question_id", questionID.String()),
		zap.String("digest_id", digest.ID.String()),
		zap.String("policy_draft_id", policy.ID.String()))

	return digest, nil
}
