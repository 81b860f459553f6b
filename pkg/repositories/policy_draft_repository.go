package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/database"
	"github.com/civicsynth/deliberation-engine/pkg/models"
)

// PolicyDraftRepository provides data access for generated policy documents.
// Drafts are append-only; there is no update path.
type PolicyDraftRepository interface {
	// Create inserts a new policy draft.
	Create(ctx context.Context, draft *models.PolicyDraft) error

	// ListByQuestion returns the drafts for a question, newest first.
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.PolicyDraft, error)

	// List returns all drafts, newest first.
	List(ctx context.Context) ([]*models.PolicyDraft, error)

	// GetLatestByQuestion returns the most recent draft for a question, or
	// ErrNotFound when none exists.
	GetLatestByQuestion(ctx context.Context, questionID uuid.UUID) (*models.PolicyDraft, error)
}

type policyDraftRepository struct {
	db *database.DB
}

// NewPolicyDraftRepository creates a new PolicyDraftRepository.
func NewPolicyDraftRepository(db *database.DB) PolicyDraftRepository {
	return &policyDraftRepository{db: db}
}

var _ PolicyDraftRepository = (*policyDraftRepository)(nil)

const policyDraftColumns = `id, question_id, title, content, source_problem_ids, source_solution_ids,
	version, created_at, updated_at`

func (r *policyDraftRepository) Create(ctx context.Context, draft *models.PolicyDraft) error {
	now := time.Now()
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if draft.Version == 0 {
		draft.Version = 1
	}
	draft.CreatedAt = now
	draft.UpdatedAt = now

	problemIDs, err := marshalJSON(draft.SourceProblemIDs, "source problem ids")
	if err != nil {
		return err
	}
	solutionIDs, err := marshalJSON(draft.SourceSolutionIDs, "source solution ids")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO policy_drafts (id, question_id, title, content, source_problem_ids, source_solution_ids,
			version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		draft.ID, draft.QuestionID, draft.Title, draft.Content, problemIDs, solutionIDs,
		draft.Version, draft.CreatedAt, draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create policy draft: %w", err)
	}
	return nil
}

func (r *policyDraftRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.PolicyDraft, error) {
	query := `SELECT ` + policyDraftColumns + ` FROM policy_drafts WHERE question_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, questionID)
}

func (r *policyDraftRepository) List(ctx context.Context) ([]*models.PolicyDraft, error) {
	query := `SELECT ` + policyDraftColumns + ` FROM policy_drafts ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

func (r *policyDraftRepository) GetLatestByQuestion(ctx context.Context, questionID uuid.UUID) (*models.PolicyDraft, error) {
	query := `
		SELECT ` + policyDraftColumns + `
		FROM policy_drafts
		WHERE question_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return scanPolicyDraft(r.db.QueryRow(ctx, query, questionID))
}

func (r *policyDraftRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.PolicyDraft, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.PolicyDraft
	for rows.Next() {
		draft, err := scanPolicyDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

func scanPolicyDraft(row pgx.Row) (*models.PolicyDraft, error) {
	var (
		draft       models.PolicyDraft
		problemIDs  []byte
		solutionIDs []byte
	)
	err := row.Scan(
		&draft.ID, &draft.QuestionID, &draft.Title, &draft.Content, &problemIDs, &solutionIDs,
		&draft.Version, &draft.CreatedAt, &draft.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan policy draft: %w", err)
	}

	if err := unmarshalJSON(problemIDs, &draft.SourceProblemIDs, "source problem ids"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(solutionIDs, &draft.SourceSolutionIDs, "source solution ids"); err != nil {
		return nil, err
	}
	return &draft, nil
}
