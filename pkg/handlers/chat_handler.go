package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/services"
)

// ChatHandler handles chat thread endpoints.
type ChatHandler struct {
	chat   *services.ChatService
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/themes/{tid}/threads", h.Start)
	mux.HandleFunc("GET /api/themes/{tid}/threads", h.List)
	mux.HandleFunc("GET /api/threads/{thid}", h.Get)
	mux.HandleFunc("POST /api/threads/{thid}/messages", h.PostMessage)
	mux.HandleFunc("GET /api/threads/{thid}/extractions", h.Extractions)
}

type startThreadRequest struct {
	UserID string `json:"user_id"`
}

// Start handles POST /api/themes/{tid}/threads.
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	var req startThreadRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	thread, err := h.chat.StartThread(r.Context(), themeID, req.UserID)
	if err != nil {
		h.logger.Error("failed to start thread", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, thread)
}

// List handles GET /api/themes/{tid}/threads.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	threads, err := h.chat.ListThreads(r.Context(), themeID)
	if err != nil {
		h.logger.Error("failed to list threads", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if threads == nil {
		threads = []*models.ChatThread{}
	}

	_ = WriteJSON(w, http.StatusOK, threads)
}

// Get handles GET /api/threads/{thid}.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathUUID(r, "thid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	thread, err := h.chat.GetThread(r.Context(), threadID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, thread)
}

type threadExtractionsResponse struct {
	Problems  []*models.Problem  `json:"problems"`
	Solutions []*models.Solution `json:"solutions"`
}

// Extractions handles GET /api/threads/{thid}/extractions.
func (h *ChatHandler) Extractions(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathUUID(r, "thid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	problems, solutions, err := h.chat.ThreadExtractions(r.Context(), threadID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}
	if problems == nil {
		problems = []*models.Problem{}
	}
	if solutions == nil {
		solutions = []*models.Solution{}
	}

	_ = WriteJSON(w, http.StatusOK, threadExtractionsResponse{Problems: problems, Solutions: solutions})
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type postMessageResponse struct {
	Thread *models.ChatThread `json:"thread"`
	Reply  string             `json:"reply"`
}

// PostMessage handles POST /api/threads/{thid}/messages. The assistant reply
// is generated synchronously; extraction of the thread runs in the
// background.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathUUID(r, "thid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	var req postMessageRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	thread, reply, err := h.chat.PostMessage(r.Context(), threadID, req.Content)
	if err != nil {
		h.logger.Error("failed to post message", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, postMessageResponse{Thread: thread, Reply: reply})
}
