package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"accentclash/internal/models"
	"accentclash/internal/service"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	NativeLang string `json:"nativeLang"`
	TargetLang string `json:"targetLang"`
	CEFRLevel  string `json:"cefrLevel"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string          `json:"token"`
	Learner learnerResponse `json:"learner"`
}

type learnerResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	NativeLang string `json:"nativeLang"`
	TargetLang string `json:"targetLang"`
	CEFRLevel  string `json:"cefrLevel"`
}

func toLearnerResponse(l *models.Learner) learnerResponse {
	return learnerResponse{
		ID:         l.ID,
		Email:      l.Email,
		Name:       l.Name,
		NativeLang: l.NativeLang,
		TargetLang: l.TargetLang,
		CEFRLevel:  l.CEFRLevel,
	}
}

// Register creates a new learner account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	learner, token, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name, req.NativeLang, req.TargetLang, req.CEFRLevel)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, h.logger, http.StatusConflict, "email already taken", nil)
			return
		}
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, Learner: toLearnerResponse(learner)})
}

type updateLevelRequest struct {
	CEFRLevel string `json:"cefrLevel"`
}

// UpdateLevel changes the authenticated learner's CEFR level
func (h *AuthHandler) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	learner := GetLearnerFromContext(r.Context())

	var req updateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	updated, err := h.authService.UpdateLevel(r.Context(), learner.ID, req.CEFRLevel)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, toLearnerResponse(updated))
}

// Login authenticates a learner
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	learner, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, h.logger, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		respondWithError(w, h.logger, http.StatusInternalServerError, "login failed", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, Learner: toLearnerResponse(learner)})
}
