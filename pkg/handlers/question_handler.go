package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/services"
)

// QuestionHandler serves sharp questions, their derived documents, and the
// trigger endpoints for the generation stages. Triggers respond 202 once the
// task is queued; the generated rows appear when the stage completes.
type QuestionHandler struct {
	questions  *services.QuestionService
	dispatcher *services.Dispatcher
	logger     *zap.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questions *services.QuestionService, dispatcher *services.Dispatcher, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, dispatcher: dispatcher, logger: logger}
}

// RegisterRoutes registers the question routes on the given mux.
func (h *QuestionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/themes/{tid}/questions", h.List)
	mux.HandleFunc("POST /api/themes/{tid}/questions/generate", h.GenerateQuestions)
	mux.HandleFunc("GET /api/questions/{qid}", h.GetDetails)
	mux.HandleFunc("POST /api/questions/{qid}/links/generate", h.GenerateLinks)
	mux.HandleFunc("GET /api/questions/{qid}/policy-drafts", h.ListPolicyDrafts)
	mux.HandleFunc("POST /api/questions/{qid}/policy-drafts/generate", h.GeneratePolicyDraft)
	mux.HandleFunc("GET /api/questions/{qid}/digest-drafts", h.ListDigestDrafts)
	mux.HandleFunc("POST /api/questions/{qid}/digest-drafts/generate", h.GenerateDigestDraft)
	mux.HandleFunc("GET /api/policy-drafts", h.ListAllPolicyDrafts)
	mux.HandleFunc("GET /api/digest-drafts", h.ListAllDigestDrafts)
}

// List handles GET /api/themes/{tid}/questions.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	questions, err := h.questions.ListQuestions(r.Context(), themeID)
	if err != nil {
		h.logger.Error("failed to list questions", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if questions == nil {
		questions = []*models.SharpQuestion{}
	}

	_ = WriteJSON(w, http.StatusOK, questions)
}

// GenerateQuestions handles POST /api/themes/{tid}/questions/generate.
func (h *QuestionHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	if err := h.dispatcher.EnqueueSynthesis(themeID); err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// GetDetails handles GET /api/questions/{qid}.
func (h *QuestionHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "qid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	details, err := h.questions.GetQuestionDetails(r.Context(), questionID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, details)
}

// GenerateLinks handles POST /api/questions/{qid}/links/generate,
// re-scoring every statement in the theme against the question.
func (h *QuestionHandler) GenerateLinks(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "qid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	if err := h.dispatcher.EnqueueLinkQuestion(questionID); err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// ListPolicyDrafts handles GET /api/questions/{qid}/policy-drafts.
func (h *QuestionHandler) ListPolicyDrafts(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "qid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	drafts, err := h.questions.ListPolicyDrafts(r.Context(), questionID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}
	if drafts == nil {
		drafts = []*models.PolicyDraft{}
	}

	_ = WriteJSON(w, http.StatusOK, drafts)
}

// ListAllPolicyDrafts handles GET /api/policy-drafts, serving drafts across
// every question.
func (h *QuestionHandler) ListAllPolicyDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.questions.ListAllPolicyDrafts(r.Context())
	if err != nil {
		h.logger.Error("failed to list policy drafts", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if drafts == nil {
		drafts = []*models.PolicyDraft{}
	}

	_ = WriteJSON(w, http.StatusOK, drafts)
}

// ListAllDigestDrafts handles GET /api/digest-drafts, serving drafts across
// every question.
func (h *QuestionHandler) ListAllDigestDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.questions.ListAllDigestDrafts(r.Context())
	if err != nil {
		h.logger.Error("failed to list digest drafts", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if drafts == nil {
		drafts = []*models.DigestDraft{}
	}

	_ = WriteJSON(w, http.StatusOK, drafts)
}

// GeneratePolicyDraft handles POST /api/questions/{qid}/policy-drafts/generate.
func (h *QuestionHandler) GeneratePolicyDraft(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "qid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	if err := h.dispatcher.EnqueuePolicyGeneration(r.Context(), questionID); err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// ListDigestDrafts handles GET /api/questions/{qid}/digest-drafts.
func (h *QuestionHandler) ListDigestDrafts(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "qid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	drafts, err := h.questions.ListDigestDrafts(r.Context(), questionID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}
	if drafts == nil {
		drafts = []*models.DigestDraft{}
	}

	_ = WriteJSON(w, http.StatusOK, drafts)
}

// GenerateDigestDraft handles POST /api/questions/{qid}/digest-drafts/generate.
func (h *QuestionHandler) GenerateDigestDraft(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "qid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	if err := h.dispatcher.EnqueueDigestGeneration(r.Context(), questionID); err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
