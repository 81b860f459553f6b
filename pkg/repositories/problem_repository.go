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

// ProblemRepository provides data access for extracted problem statements.
type ProblemRepository interface {
	// Create inserts a new problem at version 1.
	Create(ctx context.Context, problem *models.Problem) error

	// GetByID retrieves a problem by id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Problem, error)

	// GetByIDs retrieves the problems for the given ids. Missing ids are
	// silently skipped; order follows the input ids.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Problem, error)

	// ListByTheme returns all problems for a theme, newest first.
	ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.Problem, error)

	// Refine replaces the statement, appends the snippet and bumps the
	// version in one atomic statement, returning the updated row. The
	// version only ever increases.
	Refine(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Problem, error)
}

type problemRepository struct {
	db *database.DB
}

// NewProblemRepository creates a new ProblemRepository.
func NewProblemRepository(db *database.DB) ProblemRepository {
	return &problemRepository{db: db}
}

var _ ProblemRepository = (*problemRepository)(nil)

const problemColumns = `id, theme_id, statement, source_type, source_origin_kind, source_origin_id,
	original_snippets, source_metadata, version, created_at, updated_at`

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	if err := problem.SourceRef.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	now := time.Now()
	if problem.ID == uuid.Nil {
		problem.ID = uuid.New()
	}
	if problem.Version == 0 {
		problem.Version = 1
	}
	problem.CreatedAt = now
	problem.UpdatedAt = now

	snippets, err := marshalJSON(problem.OriginalSnippets, "original snippets")
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(problem.SourceMetadata, "source metadata")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO problems (id, theme_id, statement, source_type, source_origin_kind, source_origin_id,
			original_snippets, source_metadata, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		problem.ID, problem.ThemeID, problem.Statement, problem.SourceType,
		problem.SourceRef.Kind, problem.SourceRef.ID,
		snippets, metadata, problem.Version, problem.CreatedAt, problem.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create problem: %w", err)
	}
	return nil
}

func (r *problemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`
	return scanProblem(r.db.QueryRow(ctx, query, id))
}

func (r *problemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Problem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get problems by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Problem, len(ids))
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		byID[problem.ID] = problem
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	problems := make([]*models.Problem, 0, len(byID))
	for _, id := range ids {
		if problem, ok := byID[id]; ok {
			problems = append(problems, problem)
		}
	}
	return problems, nil
}

func (r *problemRepository) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE theme_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, themeID)
}

func (r *problemRepository) Refine(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Problem, error) {
	appended, err := marshalJSON([]string{snippet}, "refined snippet")
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE problems
		SET statement = $2,
			original_snippets = original_snippets || $3::jsonb,
			version = version + 1,
			updated_at = $4
		WHERE id = $1
		RETURNING ` + problemColumns

	problem, err := scanProblem(r.db.QueryRow(ctx, query, id, statement, appended, time.Now()))
	if err != nil {
		return nil, err
	}
	return problem, nil
}

func (r *problemRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Problem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	defer rows.Close()

	var problems []*models.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, problem)
	}
	return problems, rows.Err()
}

func scanProblem(row pgx.Row) (*models.Problem, error) {
	var (
		problem  models.Problem
		snippets []byte
		metadata []byte
	)
	err := row.Scan(
		&problem.ID, &problem.ThemeID, &problem.Statement, &problem.SourceType,
		&problem.SourceRef.Kind, &problem.SourceRef.ID,
		&snippets, &metadata, &problem.Version, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan problem: %w", err)
	}

	if err := unmarshalJSON(snippets, &problem.OriginalSnippets, "original snippets"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(metadata, &problem.SourceMetadata, "source metadata"); err != nil {
		return nil, err
	}
	return &problem, nil
}
