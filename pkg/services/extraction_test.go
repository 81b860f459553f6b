package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/models"
)

func emptyStatementRepos() (*mockProblemRepo, *mockSolutionRepo) {
	problems := &mockProblemRepo{
		ListByThemeFunc: func(ctx context.Context, themeID uuid.UUID) ([]*models.Problem, error) {
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, problem *models.Problem) error {
			problem.ID = uuid.New()
			problem.Version = 1
			return nil
		},
	}
	solutions := &mockSolutionRepo{
		ListByThemeFunc: func(ctx context.Context, themeID uuid.UUID) ([]*models.Solution, error) {
			return nil, nil
		},
		CreateFunc: func(ctx context.Context, solution *models.Solution) error {
			solution.ID = uuid.New()
			solution.Version = 1
			return nil
		},
	}
	return problems, solutions
}

func TestExtractFromSource_ImportedItem_CreatesStatements(t *testing.T) {
	themeID := uuid.New()
	itemID := uuid.New()

	problems, solutions := emptyStatementRepos()

	var statuses []models.ImportStatus
	imports := &mockImportedItemRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
			return &models.ImportedItem{
				ID: itemID, ThemeID: themeID, SourceType: "tweet",
				Content: "通勤電車が混みすぎて毎朝つらい。時差出勤を広めるべきだ。",
				Status:  models.ImportStatusPending,
			}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, status models.ImportStatus) error {
			statuses = append(statuses, status)
			return nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return `{
			"problems": [{"statement": "通勤時間が長い", "snippets": ["通勤電車が混みすぎて毎朝つらい"], "existingId": null}],
			"solutions": [{"statement": "時差出勤を普及させる", "snippets": ["時差出勤を広めるべきだ"], "existingId": null}]
		}`, nil
	}

	svc := NewExtractionService(problems, solutions, nil, imports, client, zap.NewNop())

	result, err := svc.ExtractFromSource(context.Background(), models.SourceRef{
		Kind: models.SourceKindImportedItem, ID: itemID,
	})
	require.NoError(t, err)

	require.Len(t, result.NewProblems, 1)
	assert.Equal(t, "通勤時間が長い", result.NewProblems[0].Statement)
	assert.Equal(t, 1, result.NewProblems[0].Version)
	assert.Equal(t, models.SourceKindImportedItem, result.NewProblems[0].SourceRef.Kind)
	assert.Equal(t, itemID, result.NewProblems[0].SourceRef.ID)
	assert.Equal(t, "tweet", result.NewProblems[0].SourceType)

	require.Len(t, result.NewSolutions, 1)
	assert.Equal(t, "時差出勤を普及させる", result.NewSolutions[0].Statement)

	assert.Equal(t, []models.ImportStatus{models.ImportStatusProcessing, models.ImportStatusCompleted}, statuses)
}

func TestExtractFromSource_ImportedItem_LLMFailureMarksFailed(t *testing.T) {
	itemID := uuid.New()

	problems, solutions := emptyStatementRepos()

	var statuses []models.ImportStatus
	imports := &mockImportedItemRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
			return &models.ImportedItem{ID: itemID, ThemeID: uuid.New(), Content: "content"}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, status models.ImportStatus) error {
			statuses = append(statuses, status)
			return nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return "", errors.New("provider unavailable")
	}

	svc := NewExtractionService(problems, solutions, nil, imports, client, zap.NewNop())

	_, err := svc.ExtractFromSource(context.Background(), models.SourceRef{
		Kind: models.SourceKindImportedItem, ID: itemID,
	})
	require.Error(t, err)
	assert.Equal(t, []models.ImportStatus{models.ImportStatusProcessing, models.ImportStatusFailed}, statuses)
}

func TestExtractFromSource_ExistingIDRefinesAndBumpsVersion(t *testing.T) {
	themeID := uuid.New()
	itemID := uuid.New()
	existingID := uuid.New()

	refined := false
	problems := &mockProblemRepo{
		ListByThemeFunc: func(ctx context.Context, id uuid.UUID) ([]*models.Problem, error) {
			return []*models.Problem{{ID: existingID, ThemeID: themeID, Statement: "通勤時間が長い", Version: 1}}, nil
		},
		RefineFunc: func(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Problem, error) {
			refined = true
			assert.Equal(t, existingID, id)
			return &models.Problem{ID: id, ThemeID: themeID, Statement: statement, Version: 2}, nil
		},
	}
	_, solutions := emptyStatementRepos()

	imports := &mockImportedItemRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
			return &models.ImportedItem{ID: itemID, ThemeID: themeID, SourceType: "survey", Content: "とにかく通勤がつらい"}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, status models.ImportStatus) error {
			return nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return fmt.Sprintf(`{
			"problems": [{"statement": "通勤時間が長く負担が大きい", "snippets": ["とにかく通勤がつらい"], "existingId": "%s"}],
			"solutions": []
		}`, existingID), nil
	}

	svc := NewExtractionService(problems, solutions, nil, imports, client, zap.NewNop())

	result, err := svc.ExtractFromSource(context.Background(), models.SourceRef{
		Kind: models.SourceKindImportedItem, ID: itemID,
	})
	require.NoError(t, err)

	assert.True(t, refined)
	assert.Empty(t, result.NewProblems)
	require.Len(t, result.RefinedProblems, 1)
	assert.Equal(t, 2, result.RefinedProblems[0].Version)
}

func TestExtractFromSource_UnknownExistingIDCreatesNew(t *testing.T) {
	themeID := uuid.New()
	itemID := uuid.New()

	problems, solutions := emptyStatementRepos()
	problems.ListByThemeFunc = func(ctx context.Context, id uuid.UUID) ([]*models.Problem, error) {
		return []*models.Problem{{ID: uuid.New(), ThemeID: themeID, Statement: "保育園が足りない", Version: 1}}, nil
	}

	imports := &mockImportedItemRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
			return &models.ImportedItem{ID: itemID, ThemeID: themeID, Content: "content"}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, status models.ImportStatus) error {
			return nil
		},
	}

	// The model echoes an id that was never offered to it.
	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return fmt.Sprintf(`{
			"problems": [{"statement": "学童保育も不足している", "snippets": [], "existingId": "%s"}],
			"solutions": []
		}`, uuid.New()), nil
	}

	svc := NewExtractionService(problems, solutions, nil, imports, client, zap.NewNop())

	result, err := svc.ExtractFromSource(context.Background(), models.SourceRef{
		Kind: models.SourceKindImportedItem, ID: itemID,
	})
	require.NoError(t, err)

	require.Len(t, result.NewProblems, 1)
	assert.Equal(t, 1, result.NewProblems[0].Version)
	assert.Empty(t, result.RefinedProblems)
}

func TestExtractFromSource_ChatThread_RecordsExtractedIDs(t *testing.T) {
	themeID := uuid.New()
	threadID := uuid.New()

	problems, solutions := emptyStatementRepos()

	var recordedProblems, recordedSolutions []uuid.UUID
	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return &models.ChatThread{
				ID: threadID, ThemeID: themeID,
				Messages: []models.Message{
					{Role: models.MessageRoleUser, Content: "子育て世帯の住居費が高すぎる", Timestamp: time.Now()},
					{Role: models.MessageRoleAssistant, Content: "具体的にはどの地域ですか?", Timestamp: time.Now()},
				},
			}, nil
		},
		AppendExtractedIDsFunc: func(ctx context.Context, id uuid.UUID, problemIDs, solutionIDs []uuid.UUID) error {
			recordedProblems = problemIDs
			recordedSolutions = solutionIDs
			return nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		// Assistant turns must not reach the extraction prompt.
		for _, msg := range req.Messages {
			assert.NotContains(t, msg.Content, "どの地域ですか")
		}
		return `{
			"problems": [{"statement": "子育て世帯の住居費負担が重い", "snippets": [], "existingId": null}],
			"solutions": []
		}`, nil
	}

	svc := NewExtractionService(problems, solutions, threads, nil, client, zap.NewNop())

	result, err := svc.ExtractFromSource(context.Background(), models.SourceRef{
		Kind: models.SourceKindChatThread, ID: threadID,
	})
	require.NoError(t, err)

	require.Len(t, result.NewProblems, 1)
	assert.Equal(t, []uuid.UUID{result.NewProblems[0].ID}, recordedProblems)
	assert.Empty(t, recordedSolutions)
}

func TestExtractFromSource_EmptyContentSkipsLLM(t *testing.T) {
	threadID := uuid.New()

	problems, solutions := emptyStatementRepos()
	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return &models.ChatThread{ID: threadID, ThemeID: uuid.New()}, nil
		},
	}

	client := llm.NewMockChatClient()

	svc := NewExtractionService(problems, solutions, threads, nil, client, zap.NewNop())

	result, err := svc.ExtractFromSource(context.Background(), models.SourceRef{
		Kind: models.SourceKindChatThread, ID: threadID,
	})
	require.NoError(t, err)
	assert.Empty(t, result.NewProblems)
	assert.Zero(t, client.CallCount())
}

func TestExtractFromSource_InvalidRef(t *testing.T) {
	svc := NewExtractionService(nil, nil, nil, nil, llm.NewMockChatClient(), zap.NewNop())

	_, err := svc.ExtractFromSource(context.Background(), models.SourceRef{Kind: "webhook", ID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
