// Package services implements the deliberation pipeline: extraction of
// problem and solution statements from raw input, sharp question synthesis,
// relevance linking, and policy and digest draft generation. Services hold
// repositories and an LLM client; background chaining between stages lives in
// the dispatcher.
package services

import (
	"context"
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

// ExtractionResult reports what one extraction run produced. New statements
// are ones inserted at version 1; refined statements had an existing row
// updated in place with a bumped version.
type ExtractionResult struct {
	ThemeID          uuid.UUID
	NewProblems      []*models.Problem
	NewSolutions     []*models.Solution
	RefinedProblems  []*models.Problem
	RefinedSolutions []*models.Solution
}

// extractionResponse is the JSON shape the extraction prompt asks for.
type extractionResponse struct {
	Problems  []extractedStatement `json:"problems"`
	Solutions []extractedStatement `json:"solutions"`
}

type extractedStatement struct {
	Statement  string   `json:"statement"`
	Snippets   []string `json:"snippets"`
	ExistingID string   `json:"existingId"`
}

// ExtractionService turns raw deliberation input into problem and solution
// statements. One run processes the full content of a single origin (a chat
// thread or an imported item).
type ExtractionService struct {
	problems  repositories.ProblemRepository
	solutions repositories.SolutionRepository
	threads   repositories.ChatThreadRepository
	imports   repositories.ImportedItemRepository
	client    llm.ChatClient
	logger    *zap.Logger
}

// NewExtractionService creates a new ExtractionService.
func NewExtractionService(
	problems repositories.ProblemRepository,
	solutions repositories.SolutionRepository,
	threads repositories.ChatThreadRepository,
	imports repositories.ImportedItemRepository,
	client llm.ChatClient,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		problems:  problems,
		solutions: solutions,
		threads:   threads,
		imports:   imports,
		client:    client,
		logger:    logger.Named("extraction"),
	}
}

// ExtractFromSource runs extraction for a single origin. The origin's full
// content is sent to the LLM together with the theme's existing statements so
// restatements refine rather than duplicate. Side effects depend on the
// origin kind: chat threads accumulate the new statement ids, imported items
// move through processing to completed or failed.
func (s *ExtractionService) ExtractFromSource(ctx context.Context, ref models.SourceRef) (*ExtractionResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	themeID, sourceType, content, err := s.loadOrigin(ctx, ref)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		s.logger.Info("origin has no content, skipping extraction",
			zap.String("source", ref.String()))
		return &ExtractionResult{ThemeID: themeID}, nil
	}

	if ref.Kind == models.SourceKindImportedItem {
		if err := s.imports.UpdateStatus(ctx, ref.ID, models.ImportStatusProcessing); err != nil {
			return nil, err
		}
	}

	result, err := s.extract(ctx, ref, themeID, sourceType, content)

	if ref.Kind == models.SourceKindImportedItem {
		status := models.ImportStatusCompleted
		if err != nil {
			status = models.ImportStatusFailed
		}
		if statusErr := s.imports.UpdateStatus(ctx, ref.ID, status); statusErr != nil {
			s.logger.Error("failed to update import status",
				zap.String("source", ref.String()),
				zap.Error(statusErr))
		}
	}
	if err != nil {
		return nil, err
	}

	if ref.Kind == models.SourceKindChatThread {
		problemIDs := make([]uuid.UUID, 0, len(result.NewProblems))
		for _, p := range result.NewProblems {
			problemIDs = append(problemIDs, p.ID)
		}
		solutionIDs := make([]uuid.UUID, 0, len(result.NewSolutions))
		for _, sol := range result.NewSolutions {
			solutionIDs = append(solutionIDs, sol.ID)
		}
		if len(problemIDs) > 0 || len(solutionIDs) > 0 {
			if err := s.threads.AppendExtractedIDs(ctx, ref.ID, problemIDs, solutionIDs); err != nil {
				s.logger.Error("failed to record extracted ids on thread",
					zap.String("source", ref.String()),
					zap.Error(err))
			}
		}
	}

	s.logger.Info("extraction completed",
		zap.String("source", ref.String()),
		zap.Int("new_problems", len(result.NewProblems)),
		zap.Int("new_solutions", len(result.NewSolutions)),
		zap.Int("refined_problems", len(result.RefinedProblems)),
		zap.Int("refined_solutions", len(result.RefinedSolutions)))

	return result, nil
}

func (s *ExtractionService) loadOrigin(ctx context.Context, ref models.SourceRef) (uuid.UUID, string, string, error) {
	switch ref.Kind {
	case models.SourceKindChatThread:
		thread, err := s.threads.GetByID(ctx, ref.ID)
		if err != nil {
			return uuid.Nil, "", "", fmt.Errorf("failed to load chat thread %s: %w", ref.ID, err)
		}
		var b strings.Builder
		for _, msg := range thread.Messages {
			if msg.Role != models.MessageRoleUser {
				continue
			}
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
		return thread.ThemeID, "chat", b.String(), nil

	case models.SourceKindImportedItem:
		item, err := s.imports.GetByID(ctx, ref.ID)
		if err != nil {
			return uuid.Nil, "", "", fmt.Errorf("failed to load imported item %s: %w", ref.ID, err)
		}
		return item.ThemeID, item.SourceType, item.Content, nil

	default:
		return uuid.Nil, "", "", fmt.Errorf("%w: unknown source kind %q", apperrors.ErrInvalidInput, ref.Kind)
	}
}

func (s *ExtractionService) extract(ctx context.Context, ref models.SourceRef, themeID uuid.UUID, sourceType, content string) (*ExtractionResult, error) {
	existingProblems, err := s.problems.ListByTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	existingSolutions, err := s.solutions.ListByTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}

	problemStatements := make([]prompts.ExistingStatement, len(existingProblems))
	for i, p := range existingProblems {
		problemStatements[i] = prompts.ExistingStatement{ID: p.ID.String(), Statement: p.Statement}
	}
	solutionStatements := make([]prompts.ExistingStatement, len(existingSolutions))
	for i, sol := range existingSolutions {
		solutionStatements[i] = prompts.ExistingStatement{ID: sol.ID.String(), Statement: sol.Statement}
	}

	resp, err := llm.CompleteJSON[extractionResponse](ctx, s.client, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.BuildExtractionSystemMessage()},
			{Role: llm.RoleUser, Content: prompts.BuildExtractionUserMessage(content, problemStatements, solutionStatements)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction llm call failed: %w", err)
	}

	result := &ExtractionResult{ThemeID: themeID}

	for _, stmt := range resp.Problems {
		if strings.TrimSpace(stmt.Statement) == "" {
			continue
		}
		if existingID, ok := parseExistingID(stmt.ExistingID, existingProblems); ok {
			refined, err := s.problems.Refine(ctx, existingID, stmt.Statement, firstSnippet(stmt))
			if err != nil {
				s.logger.Error("failed to refine problem",
					zap.String("problem_id", existingID.String()),
					zap.Error(err))
				continue
			}
			result.RefinedProblems = append(result.RefinedProblems, refined)
			continue
		}

		problem := &models.Problem{
			ThemeID:          themeID,
			Statement:        stmt.Statement,
			SourceType:       sourceType,
			SourceRef:        ref,
			OriginalSnippets: nonNilSnippets(stmt),
		}
		if err := s.problems.Create(ctx, problem); err != nil {
			s.logger.Error("failed to create problem", zap.Error(err))
			continue
		}
		result.NewProblems = append(result.NewProblems, problem)
	}

	for _, stmt := range resp.Solutions {
		if strings.TrimSpace(stmt.Statement) == "" {
			continue
		}
		if existingID, ok := parseExistingSolutionID(stmt.ExistingID, existingSolutions); ok {
			refined, err := s.solutions.Refine(ctx, existingID, stmt.Statement, firstSnippet(stmt))
			if err != nil {
				s.logger.Error("failed to refine solution",
					zap.String("solution_id", existingID.String()),
					zap.Error(err))
				continue
			}
			result.RefinedSolutions = append(result.RefinedSolutions, refined)
			continue
		}

		solution := &models.Solution{
			ThemeID:          themeID,
			Statement:        stmt.Statement,
			SourceType:       sourceType,
			SourceRef:        ref,
			OriginalSnippets: nonNilSnippets(stmt),
		}
		if err := s.solutions.Create(ctx, solution); err != nil {
			s.logger.Error("failed to create solution", zap.Error(err))
			continue
		}
		result.NewSolutions = append(result.NewSolutions, solution)
	}

	return result, nil
}

// parseExistingID validates an echoed existingId against the statements that
// were actually offered to the model. A malformed or unknown id falls back to
// creating a new statement rather than failing the run.
func parseExistingID(raw string, existing []*models.Problem) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, false
	}
	for _, p := range existing {
		if p.ID == id {
			return id, true
		}
	}
	return uuid.Nil, false
}

func parseExistingSolutionID(raw string, existing []*models.Solution) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, false
	}
	for _, s := range existing {
		if s.ID == id {
			return id, true
		}
	}
	return uuid.Nil, false
}

func firstSnippet(stmt extractedStatement) string {
	if len(stmt.Snippets) > 0 {
		return stmt.Snippets[0]
	}
	return stmt.Statement
}

func nonNilSnippets(stmt extractedStatement) []string {
	if len(stmt.Snippets) > 0 {
		return stmt.Snippets
	}
	return []string{stmt.Statement}
}
