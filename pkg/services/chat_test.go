package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/llm"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/prompts"
)

func TestStartThread_CreatesEmptyThread(t *testing.T) {
	themeID := uuid.New()

	themes := &mockThemeRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
			return &models.Theme{ID: themeID, Title: "通勤", Slug: "commute"}, nil
		},
	}
	threads := &mockChatThreadRepo{
		CreateFunc: func(ctx context.Context, thread *models.ChatThread) error {
			thread.ID = uuid.New()
			return nil
		},
	}

	svc := NewChatService(themes, threads, nil, nil, nil, nil, llm.NewMockChatClient(), &mockTrigger{}, zap.NewNop())

	thread, err := svc.StartThread(context.Background(), themeID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, themeID, thread.ThemeID)
	assert.Equal(t, "user-1", thread.UserID)
	assert.NotNil(t, thread.Messages)
	assert.Empty(t, thread.Messages)
}

func TestStartThread_GeneratesTemporaryUserID(t *testing.T) {
	themes := &mockThemeRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
			return &models.Theme{ID: id}, nil
		},
	}
	threads := &mockChatThreadRepo{
		CreateFunc: func(ctx context.Context, thread *models.ChatThread) error {
			thread.ID = uuid.New()
			return nil
		},
	}

	svc := NewChatService(themes, threads, nil, nil, nil, nil, llm.NewMockChatClient(), &mockTrigger{}, zap.NewNop())

	thread, err := svc.StartThread(context.Background(), uuid.New(), "  ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(thread.UserID, "temp_"), "got user id %q", thread.UserID)

	again, err := svc.StartThread(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.NotEqual(t, thread.UserID, again.UserID)
}

func TestStartThread_UnknownTheme(t *testing.T) {
	themes := &mockThemeRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
			return nil, apperrors.ErrNotFound
		},
	}

	svc := NewChatService(themes, nil, nil, nil, nil, nil, llm.NewMockChatClient(), &mockTrigger{}, zap.NewNop())

	_, err := svc.StartThread(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostMessage_AppendsPairAndQueuesExtraction(t *testing.T) {
	themeID := uuid.New()
	threadID := uuid.New()

	var appended []models.Message
	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return &models.ChatThread{ID: threadID, ThemeID: themeID, Messages: []models.Message{}}, nil
		},
		AppendMessagesFunc: func(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error) {
			appended = messages
			return &models.ChatThread{ID: threadID, ThemeID: themeID, Messages: messages}, nil
		},
	}
	questions := &mockSharpQuestionRepo{
		ListByThemeFunc: func(ctx context.Context, id uuid.UUID) ([]*models.SharpQuestion, error) {
			return nil, nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return "なるほど。もう少し詳しく教えてください。", nil
	}

	trigger := &mockTrigger{}
	svc := NewChatService(nil, threads, questions, nil, nil, nil, client, trigger, zap.NewNop())

	thread, reply, err := svc.PostMessage(context.Background(), threadID, "通勤がつらいです")
	require.NoError(t, err)
	assert.Equal(t, "なるほど。もう少し詳しく教えてください。", reply)
	assert.Equal(t, threadID, thread.ID)

	require.Len(t, appended, 2)
	assert.Equal(t, models.MessageRoleUser, appended[0].Role)
	assert.Equal(t, "通勤がつらいです", appended[0].Content)
	assert.Equal(t, models.MessageRoleAssistant, appended[1].Role)
	assert.Equal(t, appended[0].Timestamp, appended[1].Timestamp)

	require.Len(t, trigger.refs, 1)
	assert.Equal(t, models.SourceRef{Kind: models.SourceKindChatThread, ID: threadID}, trigger.refs[0])
}

func TestPostMessage_EmptyContentRejected(t *testing.T) {
	svc := NewChatService(nil, nil, nil, nil, nil, nil, llm.NewMockChatClient(), &mockTrigger{}, zap.NewNop())

	_, _, err := svc.PostMessage(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPostMessage_FullQueueStillReturnsReply(t *testing.T) {
	threadID := uuid.New()

	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return &models.ChatThread{ID: threadID, ThemeID: uuid.New()}, nil
		},
		AppendMessagesFunc: func(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error) {
			return &models.ChatThread{ID: threadID, Messages: messages}, nil
		},
	}
	questions := &mockSharpQuestionRepo{
		ListByThemeFunc: func(ctx context.Context, id uuid.UUID) ([]*models.SharpQuestion, error) {
			return nil, nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		return "reply", nil
	}

	svc := NewChatService(nil, threads, questions, nil, nil, nil, client, queueFullTrigger{}, zap.NewNop())

	_, reply, err := svc.PostMessage(context.Background(), threadID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "reply", reply)
}

func TestThreadExtractions_ResolvesRecordedIDs(t *testing.T) {
	threadID := uuid.New()
	problem := &models.Problem{ID: uuid.New(), Statement: "通勤時間が長い"}
	solution := &models.Solution{ID: uuid.New(), Statement: "時差出勤を普及させる"}

	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return &models.ChatThread{
				ID:                   threadID,
				ExtractedProblemIDs:  []uuid.UUID{problem.ID},
				ExtractedSolutionIDs: []uuid.UUID{solution.ID},
			}, nil
		},
	}
	problems := &mockProblemRepo{
		GetByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]*models.Problem, error) {
			require.Equal(t, []uuid.UUID{problem.ID}, ids)
			return []*models.Problem{problem}, nil
		},
	}
	solutions := &mockSolutionRepo{
		GetByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]*models.Solution, error) {
			require.Equal(t, []uuid.UUID{solution.ID}, ids)
			return []*models.Solution{solution}, nil
		},
	}

	svc := NewChatService(nil, threads, nil, nil, problems, solutions, llm.NewMockChatClient(), &mockTrigger{}, zap.NewNop())

	gotProblems, gotSolutions, err := svc.ThreadExtractions(context.Background(), threadID)
	require.NoError(t, err)
	assert.Equal(t, []*models.Problem{problem}, gotProblems)
	assert.Equal(t, []*models.Solution{solution}, gotSolutions)
}

func TestThreadExtractions_MissingThread(t *testing.T) {
	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return nil, apperrors.ErrNotFound
		},
	}

	svc := NewChatService(nil, threads, nil, nil, nil, nil, llm.NewMockChatClient(), &mockTrigger{}, zap.NewNop())

	_, _, err := svc.ThreadExtractions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostMessage_ReferenceOpinionsInPrompt(t *testing.T) {
	themeID := uuid.New()
	threadID := uuid.New()
	question := &models.SharpQuestion{ID: uuid.New(), ThemeID: themeID, QuestionText: "どうすれば保育の受け皿を増やせるか?"}
	problem := &models.Problem{ID: uuid.New(), Statement: "保育園が足りない"}

	threads := &mockChatThreadRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
			return &models.ChatThread{ID: threadID, ThemeID: themeID}, nil
		},
		AppendMessagesFunc: func(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error) {
			return &models.ChatThread{ID: threadID, Messages: messages}, nil
		},
	}
	questions := &mockSharpQuestionRepo{
		ListByThemeFunc: func(ctx context.Context, id uuid.UUID) ([]*models.SharpQuestion, error) {
			return []*models.SharpQuestion{question}, nil
		},
	}
	links := &mockQuestionLinkRepo{
		ListTopByQuestionFunc: func(ctx context.Context, qID uuid.UUID, itemType models.LinkedItemType, minScore float64, limit int) ([]*models.QuestionLink, error) {
			assert.Equal(t, prompts.ReferenceOpinionThreshold, minScore)
			assert.Equal(t, prompts.ReferenceOpinionLimit, limit)
			if itemType == models.LinkedItemTypeProblem {
				return []*models.QuestionLink{{QuestionID: qID, LinkedItemID: problem.ID, LinkedItemType: itemType, RelevanceScore: 0.9}}, nil
			}
			return nil, nil
		},
	}
	problems := &mockProblemRepo{
		GetByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]*models.Problem, error) {
			return []*models.Problem{problem}, nil
		},
	}
	solutions := &mockSolutionRepo{
		GetByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]*models.Solution, error) {
			return nil, nil
		},
	}

	client := llm.NewMockChatClient()
	client.CompleteFunc = func(ctx context.Context, req llm.Request) (string, error) {
		// System prompt, then the reference opinions block, then the user turn.
		require.Len(t, req.Messages, 3)
		assert.Contains(t, req.Messages[1].Content, question.QuestionText)
		assert.Contains(t, req.Messages[1].Content, problem.Statement)
		return "reply", nil
	}

	svc := NewChatService(nil, threads, questions, links, problems, solutions, client, &mockTrigger{}, zap.NewNop())

	_, _, err := svc.PostMessage(context.Background(), threadID, "こんにちは")
	require.NoError(t, err)
	assert.Equal(t, 1, client.CallCount())
}
