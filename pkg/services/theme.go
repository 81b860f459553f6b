package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

// ThemeService manages deliberation themes.
type ThemeService struct {
	themes repositories.ThemeRepository
}

// NewThemeService creates a new ThemeService.
func NewThemeService(themes repositories.ThemeRepository) *ThemeService {
	return &ThemeService{themes: themes}
}

// CreateTheme creates a theme. When slug is empty it is derived from the
// title.
func (s *ThemeService) CreateTheme(ctx context.Context, title, slug, description string) (*models.Theme, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug could not be derived from title, provide one", apperrors.ErrInvalidInput)
	}

	theme := &models.Theme{
		Title:       title,
		Slug:        slug,
		Description: description,
		IsActive:    true,
	}
	if err := s.themes.Create(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

// GetTheme retrieves a theme by id.
func (s *ThemeService) GetTheme(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
	return s.themes.GetByID(ctx, id)
}

// GetThemeBySlug retrieves a theme by slug.
func (s *ThemeService) GetThemeBySlug(ctx context.Context, slug string) (*models.Theme, error) {
	return s.themes.GetBySlug(ctx, slug)
}

// ListThemes lists themes, optionally only active ones.
func (s *ThemeService) ListThemes(ctx context.Context, activeOnly bool) ([]*models.Theme, error) {
	return s.themes.List(ctx, activeOnly)
}

// UpdateTheme applies non-zero updates to a theme. Deactivation goes through
// here; themes are never hard-deleted.
func (s *ThemeService) UpdateTheme(ctx context.Context, id uuid.UUID, title, slug, description *string, isActive *bool) (*models.Theme, error) {
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrInvalidInput)
		}
		theme.Title = trimmed
	}
	if slug != nil && *slug != "" {
		theme.Slug = *slug
	}
	if description != nil {
		theme.Description = *description
	}
	if isActive != nil {
		theme.IsActive = *isActive
	}

	if err := s.themes.Update(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

// Slugify lowercases ASCII letters and digits and collapses everything else
// into single hyphens. Titles with no ASCII content (common for Japanese
// themes) produce an empty slug and the caller must supply one.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
