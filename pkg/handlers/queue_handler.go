package handlers

import (
	"net/http"

	"github.com/civicsynth/deliberation-engine/pkg/services/workqueue"
)

// QueueHandler exposes work queue counters for operational visibility.
type QueueHandler struct {
	queue *workqueue.Queue
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(queue *workqueue.Queue) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// RegisterRoutes registers the queue routes on the given mux.
func (h *QueueHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/queue/stats", h.Stats)
}

// Stats handles GET /api/queue/stats.
func (h *QueueHandler) Stats(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.queue.Stats())
}
