package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"accentclash/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondWithError writes a JSON error body and logs the underlying cause
func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg string, err error) {
	if err != nil {
		logger.Error(userMsg, zap.Error(err), zap.Int("status", status))
	}
	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondServiceError maps the session-service error taxonomy onto HTTP
// statuses. Unknown errors become 500s with a generic message.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrLearnerNotFound):
		respondWithError(w, logger, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidState):
		respondWithError(w, logger, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrItemOutOfRange), errors.Is(err, service.ErrInvalidScore):
		respondWithError(w, logger, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrEmptySession):
		respondWithError(w, logger, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, service.ErrNoCatalogItems):
		respondWithError(w, logger, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, service.ErrDataIntegrity):
		respondWithError(w, logger, http.StatusInternalServerError, "attempt data failed integrity checks", err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, "internal error", err)
	}
}
