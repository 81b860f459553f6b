package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/services"
)

// stubThemeRepo backs the theme service with an in-memory map for handler
// tests.
type stubThemeRepo struct {
	themes map[uuid.UUID]*models.Theme
}

func newStubThemeRepo() *stubThemeRepo {
	return &stubThemeRepo{themes: map[uuid.UUID]*models.Theme{}}
}

func (s *stubThemeRepo) Create(ctx context.Context, theme *models.Theme) error {
	theme.ID = uuid.New()
	s.themes[theme.ID] = theme
	return nil
}

func (s *stubThemeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Theme, error) {
	theme, ok := s.themes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return theme, nil
}

func (s *stubThemeRepo) GetBySlug(ctx context.Context, slug string) (*models.Theme, error) {
	for _, theme := range s.themes {
		if theme.Slug == slug {
			return theme, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *stubThemeRepo) List(ctx context.Context, activeOnly bool) ([]*models.Theme, error) {
	var out []*models.Theme
	for _, theme := range s.themes {
		if activeOnly && !theme.IsActive {
			continue
		}
		out = append(out, theme)
	}
	return out, nil
}

func (s *stubThemeRepo) Update(ctx context.Context, theme *models.Theme) error {
	if _, ok := s.themes[theme.ID]; !ok {
		return apperrors.ErrNotFound
	}
	s.themes[theme.ID] = theme
	return nil
}

func newThemeHandler() (*ThemeHandler, *stubThemeRepo) {
	repo := newStubThemeRepo()
	return NewThemeHandler(services.NewThemeService(repo), zap.NewNop()), repo
}

func TestThemeHandler_Create(t *testing.T) {
	h, _ := newThemeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/themes",
		strings.NewReader(`{"title": "Commute Stress", "description": "long commutes"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var theme models.Theme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &theme))
	assert.Equal(t, "commute-stress", theme.Slug)
	assert.True(t, theme.IsActive)
}

func TestThemeHandler_CreateRejectsUnknownFields(t *testing.T) {
	h, _ := newThemeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/themes",
		strings.NewReader(`{"title": "t", "bogus": 1}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeHandler_GetBySlug(t *testing.T) {
	h, repo := newThemeHandler()

	theme := &models.Theme{Title: "Commute Stress", Slug: "commute-stress", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), theme))

	req := httptest.NewRequest(http.MethodGet, "/api/themes/commute-stress", nil)
	req.SetPathValue("tid", "commute-stress")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Theme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, theme.ID, got.ID)
}

func TestThemeHandler_GetUnknownSlug(t *testing.T) {
	h, _ := newThemeHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/themes/no-such-theme", nil)
	req.SetPathValue("tid", "no-such-theme")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThemeHandler_GetNotFound(t *testing.T) {
	h, _ := newThemeHandler()

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/themes/"+id, nil)
	req.SetPathValue("tid", id)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThemeHandler_ListReturnsEmptyArray(t *testing.T) {
	h, _ := newThemeHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/themes", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestThemeHandler_UpdateDeactivates(t *testing.T) {
	h, repo := newThemeHandler()

	theme := &models.Theme{Title: "t", Slug: "t", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), theme))

	req := httptest.NewRequest(http.MethodPut, "/api/themes/"+theme.ID.String(),
		strings.NewReader(`{"is_active": false}`))
	req.SetPathValue("tid", theme.ID.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Theme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.IsActive)
	assert.Equal(t, "t", updated.Title)
}
