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

// SynthesisResult reports one synthesis run. Created holds questions inserted
// by this run; Existing holds questions whose text was generated again and
// matched a prior row, which is left untouched.
type SynthesisResult struct {
	Created  []*models.SharpQuestion
	Existing []*models.SharpQuestion
}

type synthesisResponse struct {
	Questions []string `json:"questions"`
}

// SynthesisService turns a theme's accumulated problems into "how might we"
// sharp questions. One run is one LLM completion over every problem in the
// theme, and every generated question is upserted on its trimmed text, so
// re-running synthesis over the same problems is idempotent.
type SynthesisService struct {
	problems  repositories.ProblemRepository
	questions repositories.SharpQuestionRepository
	client    llm.ChatClient
	logger    *zap.Logger
}

// NewSynthesisService creates a new SynthesisService.
func NewSynthesisService(
	problems repositories.ProblemRepository,
	questions repositories.SharpQuestionRepository,
	client llm.ChatClient,
	logger *zap.Logger,
) *SynthesisService {
	return &SynthesisService{
		problems:  problems,
		questions: questions,
		client:    client,
		logger:    logger.Named("synthesis"),
	}
}

// SynthesizeQuestions generates sharp questions from every problem in the
// theme in a single LLM completion. Each upserted question records the full
// set of problem ids it was synthesized from.
func (s *SynthesisService) SynthesizeQuestions(ctx context.Context, themeID uuid.UUID) (*SynthesisResult, error) {
	problems, err := s.problems.ListByTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if len(problems) == 0 {
		s.logger.Info("no problems to synthesize from", zap.String("theme_id", themeID.String()))
		return &SynthesisResult{}, nil
	}

	statements := make([]string, len(problems))
	sourceIDs := make([]uuid.UUID, len(problems))
	for i, p := range problems {
		statements[i] = p.Statement
		sourceIDs[i] = p.ID
	}

	resp, err := llm.CompleteJSON[synthesisResponse](ctx, s.client, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.BuildQuestionSynthesisSystemMessage()},
			{Role: llm.RoleUser, Content: prompts.BuildQuestionSynthesisUserMessage(statements)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis llm call failed: %w", err)
	}

	result := &SynthesisResult{}
	for _, text := range resp.Questions {
		if strings.TrimSpace(text) == "" {
			continue
		}

		question, created, err := s.questions.Upsert(ctx, &models.SharpQuestion{
			ThemeID:          themeID,
			QuestionText:     text,
			SourceProblemIDs: sourceIDs,
		})
		if err != nil {
			s.logger.Error("failed to upsert question", zap.Error(err))
			continue
		}
		if created {
			result.Created = append(result.Created, question)
		} else {
			result.Existing = append(result.Existing, question)
		}
	}

	s.logger.Info("question synthesis completed",
		zap.String("theme_id", themeID.String()),
		zap.Int("problems", len(problems)),
		zap.Int("created", len(result.Created)),
		zap.Int("existing", len(result.Existing)))

	return result, nil
}
