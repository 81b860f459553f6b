package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/database"
	"github.com/civicsynth/deliberation-engine/pkg/models"
)

// SharpQuestionRepository provides data access for synthesized questions.
// (QuestionText, ThemeID) is the natural key: Upsert never overwrites an
// existing question with the same trimmed text.
type SharpQuestionRepository interface {
	// Upsert inserts the question unless one with the same trimmed text
	// already exists for the theme, in which case the existing row is
	// returned unchanged. The second return value reports whether a new
	// row was inserted.
	Upsert(ctx context.Context, question *models.SharpQuestion) (*models.SharpQuestion, bool, error)

	// GetByID retrieves a question by id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.SharpQuestion, error)

	// ListByTheme returns the questions for a theme, newest first.
	ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.SharpQuestion, error)

	// CountByTheme returns the number of questions for a theme.
	CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error)
}

type sharpQuestionRepository struct {
	db *database.DB
}

// NewSharpQuestionRepository creates a new SharpQuestionRepository.
func NewSharpQuestionRepository(db *database.DB) SharpQuestionRepository {
	return &sharpQuestionRepository{db: db}
}

var _ SharpQuestionRepository = (*sharpQuestionRepository)(nil)

const sharpQuestionColumns = `id, theme_id, question_text, source_problem_ids, created_at, updated_at`

func (r *sharpQuestionRepository) Upsert(ctx context.Context, question *models.SharpQuestion) (*models.SharpQuestion, bool, error) {
	text := strings.TrimSpace(question.QuestionText)
	if text == "" {
		return nil, false, fmt.Errorf("%w: question text is empty", apperrors.ErrInvalidInput)
	}

	now := time.Now()
	id := question.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	sourceIDs, err := marshalJSON(question.SourceProblemIDs, "source problem ids")
	if err != nil {
		return nil, false, err
	}

	insert := `
		INSERT INTO sharp_questions (id, theme_id, question_text, source_problem_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (question_text, theme_id) DO NOTHING
		RETURNING ` + sharpQuestionColumns

	inserted, err := scanSharpQuestion(r.db.QueryRow(ctx, insert,
		id, question.ThemeID, text, sourceIDs, now, now,
	))
	if err == nil {
		return inserted, true, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to upsert sharp question: %w", err)
	}

	// Conflict path: the question already exists for this theme.
	query := `SELECT ` + sharpQuestionColumns + ` FROM sharp_questions WHERE question_text = $1 AND theme_id = $2`
	existing, err := scanSharpQuestion(r.db.QueryRow(ctx, query, text, question.ThemeID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing sharp question: %w", err)
	}
	return existing, false, nil
}

func (r *sharpQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SharpQuestion, error) {
	query := `SELECT ` + sharpQuestionColumns + ` FROM sharp_questions WHERE id = $1`
	return scanSharpQuestion(r.db.QueryRow(ctx, query, id))
}

func (r *sharpQuestionRepository) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.SharpQuestion, error) {
	query := `SELECT ` + sharpQuestionColumns + ` FROM sharp_questions WHERE theme_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, themeID)
}

func (r *sharpQuestionRepository) CountByTheme(ctx context.Context, themeID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sharp_questions WHERE theme_id = $1`, themeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sharp questions: %w", err)
	}
	return count, nil
}

func (r *sharpQuestionRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.SharpQuestion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sharp questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.SharpQuestion
	for rows.Next() {
		question, err := scanSharpQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func scanSharpQuestion(row pgx.Row) (*models.SharpQuestion, error) {
	var (
		question  models.SharpQuestion
		sourceIDs []byte
	)
	err := row.Scan(
		&question.ID, &question.ThemeID, &question.QuestionText, &sourceIDs,
		&question.CreatedAt, &question.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sharp question: %w", err)
	}

	if err := unmarshalJSON(sourceIDs, &question.SourceProblemIDs, "source problem ids"); err != nil {
		return nil, err
	}
	return &question, nil
}
