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

// SolutionRepository provides data access for extracted solution statements.
type SolutionRepository interface {
	// Create inserts a new solution at version 1.
	Create(ctx context.Context, solution *models.Solution) error

	// GetByID retrieves a solution by id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Solution, error)

	// GetByIDs retrieves the solutions for the given ids. Missing ids are
	// silently skipped; order follows the input ids.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Solution, error)

	// ListByTheme returns all solutions for a theme, newest first.
	ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.Solution, error)

	// Refine replaces the statement, appends the snippet and bumps the
	// version in one atomic statement, returning the updated row.
	Refine(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Solution, error)
}

type solutionRepository struct {
	db *database.DB
}

// NewSolutionRepository creates a new SolutionRepository.
func NewSolutionRepository(db *database.DB) SolutionRepository {
	return &solutionRepository{db: db}
}

var _ SolutionRepository = (*solutionRepository)(nil)

const solutionColumns = `id, theme_id, statement, source_type, source_origin_kind, source_origin_id,
	original_snippets, source_metadata, version, created_at, updated_at`

func (r *solutionRepository) Create(ctx context.Context, solution *models.Solution) error {
	if err := solution.SourceRef.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	now := time.Now()
	if solution.ID == uuid.Nil {
		solution.ID = uuid.New()
	}
	if solution.Version == 0 {
		solution.Version = 1
	}
	solution.CreatedAt = now
	solution.UpdatedAt = now

	snippets, err := marshalJSON(solution.OriginalSnippets, "original snippets")
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(solution.SourceMetadata, "source metadata")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO solutions (id, theme_id, statement, source_type, source_origin_kind, source_origin_id,
			original_snippets, source_metadata, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		solution.ID, solution.ThemeID, solution.Statement, solution.SourceType,
		solution.SourceRef.Kind, solution.SourceRef.ID,
		snippets, metadata, solution.Version, solution.CreatedAt, solution.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create solution: %w", err)
	}
	return nil
}

func (r *solutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE id = $1`
	return scanSolution(r.db.QueryRow(ctx, query, id))
}

func (r *solutionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Solution, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get solutions by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Solution, len(ids))
	for rows.Next() {
		solution, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		byID[solution.ID] = solution
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	solutions := make([]*models.Solution, 0, len(byID))
	for _, id := range ids {
		if solution, ok := byID[id]; ok {
			solutions = append(solutions, solution)
		}
	}
	return solutions, nil
}

func (r *solutionRepository) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE theme_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, themeID)
}

func (r *solutionRepository) Refine(ctx context.Context, id uuid.UUID, statement, snippet string) (*models.Solution, error) {
	appended, err := marshalJSON([]string{snippet}, "refined snippet")
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE solutions
		SET statement = $2,
			original_snippets = original_snippets || $3::jsonb,
			version = version + 1,
			updated_at = $4
		WHERE id = $1
		RETURNING ` + solutionColumns

	solution, err := scanSolution(r.db.QueryRow(ctx, query, id, statement, appended, time.Now()))
	if err != nil {
		return nil, err
	}
	return solution, nil
}

func (r *solutionRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Solution, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	defer rows.Close()

	var solutions []*models.Solution
	for rows.Next() {
		solution, err := scanSolution(rows)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, solution)
	}
	return solutions, rows.Err()
}

func scanSolution(row pgx.Row) (*models.Solution, error) {
	var (
		solution models.Solution
		snippets []byte
		metadata []byte
	)
	err := row.Scan(
		&solution.ID, &solution.ThemeID, &solution.Statement, &solution.SourceType,
		&solution.SourceRef.Kind, &solution.SourceRef.ID,
		&snippets, &metadata, &solution.Version, &solution.CreatedAt, &solution.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan solution: %w", err)
	}

	if err := unmarshalJSON(snippets, &solution.OriginalSnippets, "original snippets"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(metadata, &solution.SourceMetadata, "source metadata"); err != nil {
		return nil, err
	}
	return &solution, nil
}
