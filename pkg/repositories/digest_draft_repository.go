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

// DigestDraftRepository provides data access for citizen-facing digest
// documents. Digests are append-only, like policy drafts.
type DigestDraftRepository interface {
	// Create inserts a new digest draft.
	Create(ctx context.Context, draft *models.DigestDraft) error

	// ListByQuestion returns the digests for a question, newest first.
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.DigestDraft, error)

	// List returns all digests, newest first.
	List(ctx context.Context) ([]*models.DigestDraft, error)
}

type digestDraftRepository struct {
	db *database.DB
}

// NewDigestDraftRepository creates a new DigestDraftRepository.
func NewDigestDraftRepository(db *database.DB) DigestDraftRepository {
	return &digestDraftRepository{db: db}
}

var _ DigestDraftRepository = (*digestDraftRepository)(nil)

const digestDraftColumns = `id, question_id, policy_draft_id, title, content, version, created_at, updated_at`

func (r *digestDraftRepository) Create(ctx context.Context, draft *models.DigestDraft) error {
	now := time.Now()
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if draft.Version == 0 {
		draft.Version = 1
	}
	draft.CreatedAt = now
	draft.UpdatedAt = now

	query := `
		INSERT INTO digest_drafts (id, question_id, policy_draft_id, title, content, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		draft.ID, draft.QuestionID, draft.PolicyDraftID, draft.Title, draft.Content,
		draft.Version, draft.CreatedAt, draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create digest draft: %w", err)
	}
	return nil
}

func (r *digestDraftRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]*models.DigestDraft, error) {
	query := `SELECT ` + digestDraftColumns + ` FROM digest_drafts WHERE question_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, questionID)
}

func (r *digestDraftRepository) List(ctx context.Context) ([]*models.DigestDraft, error) {
	query := `SELECT ` + digestDraftColumns + ` FROM digest_drafts ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

func (r *digestDraftRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.DigestDraft, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list digest drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.DigestDraft
	for rows.Next() {
		draft, err := scanDigestDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

func scanDigestDraft(row pgx.Row) (*models.DigestDraft, error) {
	var draft models.DigestDraft
	err := row.Scan(
		&draft.ID, &draft.QuestionID, &draft.PolicyDraftID, &draft.Title, &draft.Content,
		&draft.Version, &draft.CreatedAt, &draft.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan digest draft: %w", err)
	}
	return &draft, nil
}
