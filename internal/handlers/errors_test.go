package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"accentclash/internal/service"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, zap.NewNop(), http.StatusTeapot, "teapot", nil)

	if recorder.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "teapot" {
		t.Fatalf("expected error 'teapot', got %q", body.Error)
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "session not found",
			err:        service.ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrapped invalid state",
			err:        fmt.Errorf("%w: session is completed", service.ErrInvalidState),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "item out of range",
			err:        service.ErrItemOutOfRange,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid score",
			err:        service.ErrInvalidScore,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty session",
			err:        service.ErrEmptySession,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "no catalog items",
			err:        service.ErrNoCatalogItems,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "data integrity",
			err:        fmt.Errorf("%w: overall score 120", service.ErrDataIntegrity),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, zap.NewNop(), tt.err)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestRespondJSONSetsContentType(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusOK, map[string]string{"ok": "yes"})

	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}
