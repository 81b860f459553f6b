package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/services"
)

// ImportHandler handles imported item endpoints. Submission is asynchronous:
// the item is stored immediately and extraction runs in the background, with
// progress visible through the item's status.
type ImportHandler struct {
	imports    *services.ImportService
	dispatcher *services.Dispatcher
	logger     *zap.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(imports *services.ImportService, dispatcher *services.Dispatcher, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{imports: imports, dispatcher: dispatcher, logger: logger}
}

// RegisterRoutes registers the import routes on the given mux.
func (h *ImportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/themes/{tid}/imports", h.Submit)
	mux.HandleFunc("GET /api/themes/{tid}/imports", h.List)
	mux.HandleFunc("GET /api/imports/{iid}", h.Get)
	mux.HandleFunc("POST /api/imports/{iid}/extract", h.Retrigger)
}

type submitImportRequest struct {
	SourceType string         `json:"source_type"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
}

// Submit handles POST /api/themes/{tid}/imports. Responds 202 with the
// stored item.
func (h *ImportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	var req submitImportRequest
	if err := decodeBody(r, &req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	item, err := h.imports.Submit(r.Context(), themeID, req.SourceType, req.Content, req.Metadata)
	if err != nil {
		h.logger.Error("failed to submit import", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, item)
}

// List handles GET /api/themes/{tid}/imports.
func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	themeID, err := pathUUID(r, "tid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	items, err := h.imports.ListItems(r.Context(), themeID)
	if err != nil {
		h.logger.Error("failed to list imports", zap.Error(err))
		_ = WriteServiceError(w, err)
		return
	}
	if items == nil {
		items = []*models.ImportedItem{}
	}

	_ = WriteJSON(w, http.StatusOK, items)
}

// Get handles GET /api/imports/{iid}.
func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "iid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	item, err := h.imports.GetItem(r.Context(), itemID)
	if err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, item)
}

// Retrigger handles POST /api/imports/{iid}/extract, re-queueing extraction
// for an item whose earlier run failed or was dropped. Responds 202.
func (h *ImportHandler) Retrigger(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "iid")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	if _, err := h.imports.GetItem(r.Context(), itemID); err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	ref := models.SourceRef{Kind: models.SourceKindImportedItem, ID: itemID}
	if err := h.dispatcher.EnqueueExtraction(ref); err != nil {
		_ = WriteServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
