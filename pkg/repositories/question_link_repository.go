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

// QuestionLinkRepository provides data access for scored question-to-item
// associations. The pair (QuestionID, LinkedItemID) is unique; rescoring a
// pair overwrites the previous score.
type QuestionLinkRepository interface {
	// Upsert inserts the link or, when the (question, item) pair already
	// exists, overwrites its score and link type with the new values.
	Upsert(ctx context.Context, link *models.QuestionLink) error

	// ListByQuestion returns all links for a question, optionally filtered
	// by linked item type, highest score first. Ties break on CreatedAt so
	// the ordering is stable across reads.
	ListByQuestion(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType) ([]*models.QuestionLink, error)

	// ListTopByQuestion returns up to limit links of the given type with a
	// score of at least minScore, highest score first.
	ListTopByQuestion(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType, minScore float64, limit int) ([]*models.QuestionLink, error)

}

type questionLinkRepository struct {
	db *database.DB
}

// NewQuestionLinkRepository creates a new QuestionLinkRepository.
func NewQuestionLinkRepository(db *database.DB) QuestionLinkRepository {
	return &questionLinkRepository{db: db}
}

var _ QuestionLinkRepository = (*questionLinkRepository)(nil)

const questionLinkColumns = `id, question_id, linked_item_id, linked_item_type, link_type, relevance_score,
	created_at, updated_at`

func (r *questionLinkRepository) Upsert(ctx context.Context, link *models.QuestionLink) error {
	if link.RelevanceScore < 0 || link.RelevanceScore > 1 {
		return fmt.Errorf("%w: relevance score %f out of range", apperrors.ErrInvalidInput, link.RelevanceScore)
	}

	now := time.Now()
	id := link.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	link.LinkType = models.LinkTypeFor(link.LinkedItemType)

	query := `
		INSERT INTO question_links (id, question_id, linked_item_id, linked_item_type, link_type, relevance_score,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (question_id, linked_item_id) DO UPDATE
		SET relevance_score = EXCLUDED.relevance_score,
			link_type = EXCLUDED.link_type,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		id, link.QuestionID, link.LinkedItemID, link.LinkedItemType, link.LinkType, link.RelevanceScore,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert question link: %w", err)
	}
	return nil
}

func (r *questionLinkRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType) ([]*models.QuestionLink, error) {
	query := `SELECT ` + questionLinkColumns + ` FROM question_links WHERE question_id = $1`
	args := []any{questionID}
	if itemType != "" {
		query += ` AND linked_item_type = $2`
		args = append(args, itemType)
	}
	query += ` ORDER BY relevance_score DESC, created_at ASC`

	return r.queryMany(ctx, query, args...)
}

func (r *questionLinkRepository) ListTopByQuestion(ctx context.Context, questionID uuid.UUID, itemType models.LinkedItemType, minScore float64, limit int) ([]*models.QuestionLink, error) {
	query := `
		SELECT ` + questionLinkColumns + `
		FROM question_links
		WHERE question_id = $1 AND linked_item_type = $2 AND relevance_score >= $3
		ORDER BY relevance_score DESC, created_at ASC
		LIMIT $4`

	return r.queryMany(ctx, query, questionID, itemType, minScore, limit)
}

func (r *questionLinkRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.QuestionLink, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list question links: %w", err)
	}
	defer rows.Close()

	var links []*models.QuestionLink
	for rows.Next() {
		link, err := scanQuestionLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func scanQuestionLink(row pgx.Row) (*models.QuestionLink, error) {
	var link models.QuestionLink
	err := row.Scan(
		&link.ID, &link.QuestionID, &link.LinkedItemID, &link.LinkedItemType, &link.LinkType,
		&link.RelevanceScore, &link.CreatedAt, &link.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan question link: %w", err)
	}
	return &link, nil
}
