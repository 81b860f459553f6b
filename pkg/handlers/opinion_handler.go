package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/services"
)

// OpinionHandler serves extracted problems and solutions.
type OpinionHandler struct {
	opinions *services.OpinionService
	logger   *zap.Logger
}

// NewOpinionHandler creates a new OpinionHandler.
func NewOpinionHandler(opinions *services.OpinionService, logger *zap.Logger) *OpinionHandler {
	return &OpinionHandler{opinions: opinions, logger: logger}
}

// RegisterRoutes registers the opinion routes on the given mux.
func (h *OpinionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/themes/{tid}/problems", h.ListProblems)
	mux.HandleFunc("GET /api/themes/{tid}/solutions", h.ListSolutions)
	mux.HandleFunc("GET /api/problems/{pid}", h.GetProblem)
	mux.HandleFunc("GET /api/solutions/{sid}", h.GetSolution)
}

// ListProblems handles GET /api/themes/{tid}/problems.
func (h *OpinionHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	problems, err := h.opinions.ListProblems(r.Context(), themeID)
	if err != nil {
		h.logger.Error("failed to list problems", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if problems == nil {
		problems = []*models.Problem{}
	}

	_ = WriteJSON(w, http.StatusOK, problems)
}

// ListSolutions handles GET /api/themes/{tid}/solutions.
func (h *OpinionHandler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	solutions, err := h.opinions.ListSolutions(r.Context(), themeID)
	if err != nil {
		h.logger.Error("failed to list solutions", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if solutions == nil {
		solutions = []*models.Solution{}
	}

	_ = WriteJSON(w, http.StatusOK, solutions)
}

// GetProblem handles GET /api/problems/{pid}.
func (h *OpinionHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	problemID, err := pathUUID(r, "pid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	problem, err := h.opinions.GetProblem(r.Context(), problemID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, problem)
}

// GetSolution handles GET /api/solutions/{sid}.
func (h *OpinionHandler) GetSolution(w http.ResponseWriter, r *http.Request) {
	solutionID, err := pathUUID(r, "sid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	solution, err := h.opinions.GetSolution(r.Context(), solutionID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, solution)
}
