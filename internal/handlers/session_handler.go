package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"accentclash/internal/assessment"
	"accentclash/internal/models"
	"accentclash/internal/service"
)

// maxAudioUploadSize caps recorded utterance uploads at 10 MB
const maxAudioUploadSize = 10 << 20

// SessionHandler handles the practice session lifecycle over HTTP
type SessionHandler struct {
	sessionService   *service.SessionService
	assessmentClient *assessment.Client
	logger           *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, assessmentClient *assessment.Client, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService:   sessionService,
		assessmentClient: assessmentClient,
		logger:           logger,
	}
}

type createSessionRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
	ItemCount  int    `json:"itemCount"`
}

type sessionResponse struct {
	ID          int64                  `json:"id"`
	Mode        models.SessionMode     `json:"mode"`
	Difficulty  string                 `json:"difficulty"`
	Status      models.SessionStatus   `json:"status"`
	Items       []models.PracticeItem  `json:"items"`
	Summary     *models.SessionSummary `json:"summary,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
}

type attemptRequest struct {
	ItemIndex    int                 `json:"itemIndex"`
	Transcript   string              `json:"transcript"`
	Scores       models.AxisScores   `json:"scores"`
	OverallScore *float64            `json:"overallScore"`
	WordResults  []models.WordResult `json:"wordResults"`
}

type attemptResponse struct {
	ID           int64               `json:"id"`
	SessionID    int64               `json:"sessionId"`
	ItemIndex    int                 `json:"itemIndex"`
	Ordinal      int                 `json:"ordinal"`
	Transcript   string              `json:"transcript,omitempty"`
	Scores       models.AxisScores   `json:"scores"`
	OverallScore float64             `json:"overallScore"`
	WordResults  []models.WordResult `json:"wordResults,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toSessionResponse(s *models.PracticeSession) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		Mode:        s.Mode,
		Difficulty:  s.Difficulty,
		Status:      s.Status,
		Items:       s.Items,
		Summary:     s.Summary,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
	}
}

func toAttemptResponse(a *models.Attempt) attemptResponse {
	return attemptResponse{
		ID:           a.ID,
		SessionID:    a.SessionID,
		ItemIndex:    a.ItemIndex,
		Ordinal:      a.Ordinal,
		Transcript:   a.Transcript,
		Scores:       a.Scores,
		OverallScore: a.Overall(),
		WordResults:  a.WordResults,
		CreatedAt:    a.CreatedAt,
	}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	learner := GetLearnerFromContext(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	session, err := h.sessionService.StartSession(r.Context(), learner.ID, models.SessionMode(req.Mode), req.Difficulty, req.ItemCount)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSessionResponse(session))
}

// ListSessions handles GET /api/sessions?limit=
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	learner := GetLearnerFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := h.sessionService.ListSessions(r.Context(), learner.ID, limit)
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "failed to list sessions", err)
		return
	}

	resp := make([]sessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = toSessionResponse(&sessions[i])
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

// GetSessionAttempts handles GET /api/sessions/{id}/attempts
func (h *SessionHandler) GetSessionAttempts(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	attempts, err := h.sessionService.GetSessionAttempts(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	resp := make([]attemptResponse, len(attempts))
	for i := range attempts {
		resp[i] = toAttemptResponse(&attempts[i])
	}
	respondJSON(w, http.StatusOK, resp)
}

// RecordAttempt handles POST /api/sessions/{id}/attempts with pre-scored
// assessment data in the request body
func (h *SessionHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	attempt, err := h.sessionService.RecordAttempt(r.Context(), session.ID, service.AttemptInput{
		ItemIndex:    req.ItemIndex,
		Transcript:   req.Transcript,
		Scores:       req.Scores,
		OverallScore: req.OverallScore,
		WordResults:  req.WordResults,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAttemptResponse(attempt))
}

// AssessAttempt handles POST /api/sessions/{id}/items/{index}/assess. The
// multipart body carries the recorded audio; the utterance is scored by
// the assessment service and the result recorded as an attempt.
func (h *SessionHandler) AssessAttempt(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	itemIndex, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid item index", nil)
		return
	}
	if itemIndex < 0 || itemIndex >= len(session.Items) {
		respondWithError(w, h.logger, http.StatusBadRequest, "item index out of range", nil)
		return
	}

	if err := r.ParseMultipartForm(maxAudioUploadSize); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid multipart body", nil)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "audio file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.assessmentClient.Assess(r.Context(), session.Items[itemIndex].Text(), file, header.Filename)
	if errors.Is(err, assessment.ErrNotConfigured) {
		respondWithError(w, h.logger, http.StatusServiceUnavailable, "assessment service not configured", nil)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadGateway, "assessment failed", err)
		return
	}

	attempt, err := h.sessionService.RecordAttempt(r.Context(), session.ID, service.AttemptInput{
		ItemIndex:    itemIndex,
		Transcript:   result.Transcript,
		Scores:       result.Scores,
		OverallScore: result.OverallScore,
		WordResults:  result.WordResults,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAttemptResponse(attempt))
}

// CompleteSession handles POST /api/sessions/{id}/complete
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	completed, err := h.sessionService.CompleteSession(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionResponse(completed))
}

// AbandonSession handles POST /api/sessions/{id}/abandon
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	if err := h.sessionService.AbandonSession(r.Context(), session.ID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSession handles DELETE /api/sessions/{id}. Deleting an
// already-deleted session succeeds, so ownership is checked against the
// row even after it has been soft-deleted.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	learner := GetLearnerFromContext(r.Context())

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid session ID", nil)
		return
	}

	owner, err := h.sessionService.SessionOwner(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if owner != learner.ID {
		respondWithError(w, h.logger, http.StatusNotFound, service.ErrSessionNotFound.Error(), nil)
		return
	}

	if err := h.sessionService.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedSession resolves the {id} path value and verifies the session
// belongs to the authenticated learner. Sessions owned by other learners
// read as not found.
func (h *SessionHandler) ownedSession(w http.ResponseWriter, r *http.Request) (*models.PracticeSession, bool) {
	learner := GetLearnerFromContext(r.Context())

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "invalid session ID", nil)
		return nil, false
	}

	session, err := h.sessionService.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return nil, false
	}
	if session.LearnerID != learner.ID {
		respondWithError(w, h.logger, http.StatusNotFound, service.ErrSessionNotFound.Error(), nil)
		return nil, false
	}
	return session, true
}
