package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/services"
)

// ThemeHandler handles theme CRUD endpoints.
type ThemeHandler struct {
	themes *services.ThemeService
	logger *zap.Logger
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(themes *services.ThemeService, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{themes: themes, logger: logger}
}

// RegisterRoutes registers the theme routes on the given mux.
func (h *ThemeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/themes", h.Create)
	mux.HandleFunc("GET /api/themes", h.List)
	mux.HandleFunc("GET /api/themes/{tid}", h.Get)
	mux.HandleFunc("PUT /api/themes/{tid}", h.Update)
}

type createThemeRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Create handles POST /api/themes.
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createThemeRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	theme, err := h.themes.CreateTheme(r.Context(), req.Title, req.Slug, req.Description)
	if err != nil {
		h.logger.Error("failed to create theme", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, theme)
}

// List handles GET /api/themes. Pass ?active=true to filter out deactivated
// themes.
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	themes, err := h.themes.ListThemes(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list themes", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if themes == nil {
		themes = []*models.Theme{}
	}

	_ = WriteJSON(w, http.StatusOK, themes)
}

// Get handles GET /api/themes/{tid}. The path segment is a theme id or,
// when it does not parse as a UUID, a slug.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	var theme *models.Theme
	if themeID, err := pathUUID(r, "tid"); err == nil {
		theme, err = h.themes.GetTheme(r.Context(), themeID)
		if err != nil {
			_ = WriteServiceError(w, err)
			return
		}
	} else {
		theme, err = h.themes.GetThemeBySlug(r.Context(), r.PathValue("tid"))
		if err != nil {
			_ = WriteServiceError(w, err)
			return
		}
	}

	_ = WriteJSON(w, http.StatusOK, theme)
}

type updateThemeRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Update handles PUT /api/themes/{tid}.
func (h *ThemeHandler) Update(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	var req updateThemeRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	theme, err := h.themes.UpdateTheme(r.Context(), themeID, req.Title, req.Slug, req.Description, req.IsActive)
	if err != nil {
		h.logger.Error("failed to update theme", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, theme)
}
