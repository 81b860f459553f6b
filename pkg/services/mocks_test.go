package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

// Hand-rolled mocks with function fields. Tests set only the methods a
// scenario exercises; unset methods fail loudly via nil dereference.

type mockThemeRepo struct {
	CreateFunc    func(ctx context.Context, theme *models.Theme) error
	GetByIDFunc   func(ctx context.Context, id uuid.UUID) (*models.Theme, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*models.Theme, error)
	ListFunc      func(ctx context.Context, activeOnly bool) ([]*models.Theme, error)
	UpdateFunc    func(ctx context.Context, theme *models.Theme) error
}

func (m *mockThemeRepo) Create(ctx context.Context, theme *models.Theme) error {
	return m.CreateFunc(ctx, theme)
}
func (m *mockThemeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockThemeRepo) GetBySlug(ctx context.Context, slug string) (*models.Theme, error) {
	return m.GetBySlugFunc(ctx, slug)
}
func (m *mockThemeRepo) List(ctx context.Context, activeOnly bool) ([]*models.Theme, error) {
	return m.ListFunc(ctx, activeOnly)
}
func (m *mockThemeRepo) Update(ctx context.Context, theme *models.Theme) error {
	return m.UpdateFunc(ctx, theme)
}

var _ repositories.ThemeRepository = (*mockThemeRepo)(nil)

type mockProblemRepo struct {
	CreateFunc      func(ctx context.Context, problem *models.Problem) error
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Problem, error)
	GetByIDsFunc    func(ctx context.Context, ids []uuid.UUID) ([]*models.Problem, error)
	ListByThemeFunc func(ctx context.Context, themeID uuid.UUID) ([]*models.Problem, error)
	RefineFunc      func(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Problem, error)
}

func (m *mockProblemRepo) Create(ctx context.Context, problem *models.Problem) error {
	return m.CreateFunc(ctx, problem)
}
func (m *mockProblemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockProblemRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Problem, error) {
	return m.GetByIDsFunc(ctx, ids)
}
func (m *mockProblemRepo) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.Problem, error) {
	return m.ListByThemeFunc(ctx, themeID)
}
func (m *mockProblemRepo) Refine(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Problem, error) {
	return m.RefineFunc(ctx, id, statement, snippet)
}

var _ repositories.ProblemRepository = (*mockProblemRepo)(nil)

type mockSolutionRepo struct {
	CreateFunc      func(ctx context.Context, solution *models.Solution) error
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Solution, error)
	GetByIDsFunc    func(ctx context.Context, ids []uuid.UUID) ([]*models.Solution, error)
	ListByThemeFunc func(ctx context.Context, themeID uuid.UUID) ([]*models.Solution, error)
	RefineFunc      func(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Solution, error)
}

func (m *mockSolutionRepo) Create(ctx context.Context, solution *models.Solution) error {
	return m.CreateFunc(ctx, solution)
}
func (m *mockSolutionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Solution, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockSolutionRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Solution, error) {
	return m.GetByIDsFunc(ctx, ids)
}
func (m *mockSolutionRepo) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.Solution, error) {
	return m.ListByThemeFunc(ctx, themeID)
}
func (m *mockSolutionRepo) Refine(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Solution, error) {
	return m.RefineFunc(ctx, id, statement, snippet)
}

var _ repositories.SolutionRepository = (*mockSolutionRepo)(nil)

type mockChatThreadRepo struct {
	CreateFunc             func(ctx context.Context, thread *models.ChatThread) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.ChatThread, error)
	ListByThemeFunc        func(ctx context.Context, themeID uuid.UUID) ([]*models.ChatThread, error)
	AppendMessagesFunc     func(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error)
	AppendExtractedIDsFunc func(ctx context.Context, id uuid.UUID, problemIDs, solutionIDs []uuid.UUID) error
}

func (m *mockChatThreadRepo) Create(ctx context.Context, thread *models.ChatThread) error {
	return m.CreateFunc(ctx, thread)
}
func (m *mockChatThreadRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockChatThreadRepo) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.ChatThread, error) {
	return m.ListByThemeFunc(ctx, themeID)
}
func (m *mockChatThreadRepo) AppendMessages(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error) {
	return m.AppendMessagesFunc(ctx, id, messages)
}
func (m *mockChatThreadRepo) AppendExtractedIDs(ctx context.Context, id uuid.UUID, problemIDs, solutionIDs []uuid.UUID) error {
	return m.AppendExtractedIDsFunc(ctx, id, problemIDs, solutionIDs)
}

var _ repositories.ChatThreadRepository = (*mockChatThreadRepo)(nil)

type mockImportedItemRepo struct {
	CreateFunc       func(ctx context.Context, item *models.ImportedItem) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error)
	ListByThemeFunc  func(ctx context.Context, themeID uuid.UUID) ([]*models.ImportedItem, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status models.ImportStatus) error
}

func (m *mockImportedItemRepo) Create(ctx context.Context, item *models.ImportedItem) error {
	return m.CreateFunc(ctx, item)
}
func (m *mockImportedItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockImportedItemRepo) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.ImportedItem, error) {
	return m.ListByThemeFunc(ctx, themeID)
}
func (m *mockImportedItemRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ImportStatus) error {
	return m.UpdateStatusFunc(ctx, id, status)
}

var _ repositories.ImportedItemRepository = (*mockImportedItemRepo)(nil)

type mockSharpQuestionRepo struct {
	UpsertFunc       func(ctx context.Context, question *models.SharpQuestion) (*models.SharpQuestion, bool, error)
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.SharpQuestion, error)
	ListByThemeFunc  func(ctx context.Context, themeID uuid.UUID) ([]*models.SharpQuestion, error)
	CountByThemeFunc func(ctx context.Context, themeID uuid.UUID) (int, error)
}

func (m *mockSharpQuestionRepo) Upsert(ctx context.Context, question *models.SharpQuestion) (*models.SharpQuestion, bool, error) {
	return m.UpsertFunc(ctx, question)
}
func (m *mockSharpQuestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SharpQuestion, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockSharpQuestionRepo) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.SharpQuestion, error) {
	return m.ListByThemeFunc(ctx, themeID)
}
func (m *mockSharpQuestionRepo) CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error) {
	return m.CountByThemeFunc(ctx, themeID)
}

var _ repositories.SharpQuestionRepository = (*mockSharpQuestionRepo)(nil)

type mockQuestionLinkRepo struct {
	UpsertFunc            func(ctx context.Context, link *models.QuestionLink) error
	ListByQuestionFunc    func(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType) ([]*models.QuestionLink, error)
	ListTopByQuestionFunc func(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType, minScore float64, limit int) ([]*models.QuestionLink, error)
}

func (m *mockQuestionLinkRepo) Upsert(ctx context.Context, link *models.QuestionLink) error {
	return m.UpsertFunc(ctx, link)
}
func (m *mockQuestionLinkRepo) ListByQuestion(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType) ([]*models.QuestionLink, error) {
	return m.ListByQuestionFunc(ctx, questionID, itemType)
}
func (m *mockQuestionLinkRepo) ListTopByQuestion(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType, minScore float64, limit int) ([]*models.QuestionLink, error) {
	return m.ListTopByQuestionFunc(ctx, questionID, itemType, minScore, limit)
}

var _ repositories.QuestionLinkRepository = (*mockQuestionLinkRepo)(nil)

type mockPolicyDraftRepo struct {
	CreateFunc              func(ctx context.Context, draft *models.PolicyDraft) error
	ListByQuestionFunc      func(ctx context.Context, questionID uuid.UUID) ([]*models.PolicyDraft, error)
	ListFunc                func(ctx context.Context) ([]*models.PolicyDraft, error)
	GetLatestByQuestionFunc func(ctx context.Context, questionID uuid.UUID) (*models.PolicyDraft, error)
}

func (m *mockPolicyDraftRepo) Create(ctx context.Context, draft *models.PolicyDraft) error {
	return m.CreateFunc(ctx, draft)
}
func (m *mockPolicyDraftRepo) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.PolicyDraft, error) {
	return m.ListByQuestionFunc(ctx, questionID)
}
func (m *mockPolicyDraftRepo) List(ctx context.Context) ([]*models.PolicyDraft, error) {
	return m.ListFunc(ctx)
}
func (m *mockPolicyDraftRepo) GetLatestByQuestion(ctx context.Context, questionID uuid.UUID) (*models.PolicyDraft, error) {
	return m.GetLatestByQuestionFunc(ctx, questionID)
}

var _ repositories.PolicyDraftRepository = (*mockPolicyDraftRepo)(nil)

type mockDigestDraftRepo struct {
	CreateFunc         func(ctx context.Context, draft *models.DigestDraft) error
	ListByQuestionFunc func(ctx context.Context, questionID uuid.UUID) ([]*models.DigestDraft, error)
	ListFunc           func(ctx context.Context) ([]*models.DigestDraft, error)
}

func (m *mockDigestDraftRepo) Create(ctx context.Context, draft *models.DigestDraft) error {
	return m.CreateFunc(ctx, draft)
}
func (m *mockDigestDraftRepo) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.DigestDraft, error) {
	return m.ListByQuestionFunc(ctx, questionID)
}
func (m *mockDigestDraftRepo) List(ctx context.Context) ([]*models.DigestDraft, error) {
	return m.ListFunc(ctx)
}

var _ repositories.DigestDraftRepository = (*mockDigestDraftRepo)(nil)

// mockTrigger records extraction enqueue calls.
type mockTrigger struct {
	EnqueueFunc func(ref models.SourceRef) error
	refs        []models.SourceRef
}

func (m *mockTrigger) EnqueueExtraction(ref models.SourceRef) error {
	m.refs = append(m.refs, ref)
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ref)
	}
	return nil
}

var _ ExtractionTrigger = (*mockTrigger)(nil)

// queueFullTrigger always rejects.
type queueFullTrigger struct{}

func (queueFullTrigger) EnqueueExtraction(models.SourceRef) error {
	return apperrors.ErrQueueFull
}
