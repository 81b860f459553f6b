package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps service-layer errors onto HTTP statuses.
func WriteServiceError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrInvalidInput):
		return ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		return ErrorResponse(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, apperrors.ErrPreconditionFailed):
		return ErrorResponse(w, http.StatusPreconditionFailed, "precondition_failed", err.Error())
	case errors.Is(err, apperrors.ErrQueueFull):
		return ErrorResponse(w, http.StatusServiceUnavailable, "queue_full", "pipeline queue is full, try again later")
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
