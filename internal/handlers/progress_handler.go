package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"accentclash/internal/models"
	"accentclash/internal/service"
)

// ProgressHandler serves cross-session learner progress
type ProgressHandler struct {
	progressService *service.ProgressService
	logger          *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, logger: logger}
}

type progressResponse struct {
	Learner           learnerResponse      `json:"learner"`
	TotalSessions     int                  `json:"totalSessions"`
	CompletedSessions int                  `json:"completedSessions"`
	TotalAttempts     int                  `json:"totalAttempts"`
	AverageScore      float64              `json:"averageScore"`
	BestScore         float64              `json:"bestScore"`
	WeakPhonemes      []models.WeakPhoneme `json:"weakPhonemes"`
}

// GetProgress handles GET /api/progress
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	learner := GetLearnerFromContext(r.Context())

	progress, err := h.progressService.GetProgress(r.Context(), learner.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, progressResponse{
		Learner:           toLearnerResponse(&progress.Learner),
		TotalSessions:     progress.TotalSessions,
		CompletedSessions: progress.CompletedSessions,
		TotalAttempts:     progress.TotalAttempts,
		AverageScore:      progress.AverageScore,
		BestScore:         progress.BestScore,
		WeakPhonemes:      progress.WeakPhonemes,
	})
}
