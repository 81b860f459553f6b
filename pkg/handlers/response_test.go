package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("theme abc: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"precondition failed", apperrors.ErrPreconditionFailed, http.StatusPreconditionFailed, "precondition_failed"},
		{"queue full", apperrors.ErrQueueFull, http.StatusServiceUnavailable, "queue_full"},
		{"unknown error", errors.New("pg down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteServiceError(rec, tt.err))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestWriteServiceError_InternalErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteServiceError(rec, errors.New("connection to 10.0.0.5 refused")))

	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusAccepted, map[string]string{"status": "queued"}))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "queued"}`, rec.Body.String())
}
