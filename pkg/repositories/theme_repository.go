package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/database"
	"github.com/civicsynth/deliberation-engine/pkg/models"
)

// ThemeRepository provides data access for deliberation themes.
type ThemeRepository interface {
	// Create inserts a new theme. Duplicate title or slug returns ErrConflict.
	Create(ctx context.Context, theme *models.Theme) error

	// GetByID retrieves a theme by id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Theme, error)

	// GetBySlug retrieves a theme by its slug.
	GetBySlug(ctx context.Context, slug string) (*models.Theme, error)

	// List returns all themes, newest first. When activeOnly is set,
	// deactivated themes are filtered out.
	List(ctx context.Context, activeOnly bool) ([]*models.Theme, error)

	// Update persists title, slug, description and active flag changes.
	Update(ctx context.Context, theme *models.Theme) error
}

type themeRepository struct {
	db *database.DB
}

// NewThemeRepository creates a new ThemeRepository.
func NewThemeRepository(db *database.DB) ThemeRepository {
	return &themeRepository{db: db}
}

var _ ThemeRepository = (*themeRepository)(nil)

const themeColumns = `id, title, slug, description, is_active, created_at, updated_at`

func (r *themeRepository) Create(ctx context.Context, theme *models.Theme) error {
	now := time.Now()
	if theme.ID == uuid.Nil {
		theme.ID = uuid.New()
	}
	theme.CreatedAt = now
	theme.UpdatedAt = now

	query := `
		INSERT INTO themes (id, title, slug, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		theme.ID, theme.Title, theme.Slug, theme.Description, theme.IsActive,
		theme.CreatedAt, theme.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("theme with this title or slug exists: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create theme: %w", err)
	}

	return nil
}

func (r *themeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *themeRepository) GetBySlug(ctx context.Context, slug string) (*models.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes WHERE slug = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, slug))
}

func (r *themeRepository) List(ctx context.Context, activeOnly bool) ([]*models.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var themes []*models.Theme
	for rows.Next() {
		theme, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}
	return themes, rows.Err()
}

func (r *themeRepository) Update(ctx context.Context, theme *models.Theme) error {
	theme.UpdatedAt = time.Now()

	query := `
		UPDATE themes
		SET title = $2, slug = $3, description = $4, is_active = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		theme.ID, theme.Title, theme.Slug, theme.Description, theme.IsActive, theme.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("theme with this title or slug exists: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to update theme: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *themeRepository) scanOne(row pgx.Row) (*models.Theme, error) {
	var theme models.Theme
	err := row.Scan(
		&theme.ID, &theme.Title, &theme.Slug, &theme.Description, &theme.IsActive,
		&theme.CreatedAt, &theme.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan theme: %w", err)
	}
	return &theme, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
