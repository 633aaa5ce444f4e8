package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"accentclash/internal/database"
	"accentclash/internal/models"
	"accentclash/internal/repository"
	"accentclash/internal/scoring"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("operation not valid for current session status")
	ErrItemOutOfRange  = errors.New("item index outside the session's item sequence")
	ErrEmptySession    = errors.New("session has no attempts to summarize")
	ErrInvalidScore    = errors.New("attempt score outside the valid range")
	ErrDataIntegrity   = errors.New("attempt data violates score invariants")
	ErrNoCatalogItems  = errors.New("no catalog items for the requested difficulty")
)

// Default number of items selected into a new session
const defaultItemCount = 5

// How many recent attempts feed the weighted item selection
const selectionHistorySize = 200

// AttemptInput is the assessment payload recorded against one item.
// Scores come from the external speech assessment service; this service
// only validates shape and persists.
type AttemptInput struct {
	ItemIndex    int
	Transcript   string
	Scores       models.AxisScores
	OverallScore *float64
	WordResults  []models.WordResult
}

// SessionService owns the practice session lifecycle: creation with item
// selection, attempt ingestion, completion with summary aggregation,
// abandonment and soft deletion.
type SessionService struct {
	db          *database.DB
	sessionRepo *repository.SessionRepository
	attemptRepo *repository.AttemptRepository
	itemRepo    *repository.ItemRepository
	aggregator  *scoring.Aggregator

	// Per-session locks serialize RecordAttempt/CompleteSession/
	// AbandonSession for the same session. Different sessions proceed in
	// parallel.
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionService creates a new session service
func NewSessionService(db *database.DB, sessionRepo *repository.SessionRepository, attemptRepo *repository.AttemptRepository, itemRepo *repository.ItemRepository, aggregator *scoring.Aggregator) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		attemptRepo: attemptRepo,
		itemRepo:    itemRepo,
		aggregator:  aggregator,
		locks:       make(map[int64]*sessionLock),
	}
}

// lockSession acquires the per-session lock and returns its release func
func (s *SessionService) lockSession(sessionID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// StartSession creates an active session with a fixed item sequence chosen
// from the catalog. Items whose focus phonemes overlap the learner's
// recent weak phonemes are favored.
func (s *SessionService) StartSession(ctx context.Context, learnerID int64, mode models.SessionMode, difficulty string, itemCount int) (*models.PracticeSession, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown session mode: %s", mode)
	}
	if !models.ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("unknown difficulty: %s", difficulty)
	}
	if itemCount <= 0 {
		itemCount = defaultItemCount
	}

	candidates, err := s.catalogItems(ctx, mode, difficulty)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoCatalogItems
	}

	weakPhonemes, err := s.recentWeakPhonemes(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weak-phoneme history: %w", err)
	}

	items := selectWeightedItems(candidates, weakPhonemes, itemCount)

	return s.sessionRepo.CreateSession(ctx, learnerID, mode, difficulty, items)
}

// GetSession retrieves a session by ID
func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.PracticeSession, error) {
	session, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// ListSessions retrieves recent sessions for a learner
func (s *SessionService) ListSessions(ctx context.Context, learnerID int64, limit int) ([]models.PracticeSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.sessionRepo.ListLearnerSessions(ctx, learnerID, limit)
}

// GetSessionAttempts retrieves all attempts for a session, ordered by item
// index then creation time
func (s *SessionService) GetSessionAttempts(ctx context.Context, sessionID int64) ([]models.Attempt, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.attemptRepo.GetSessionAttempts(ctx, sessionID)
}

// RecordAttempt appends one immutable attempt to an active session. The
// session summary stays null; aggregation happens only at completion.
func (s *SessionService) RecordAttempt(ctx context.Context, sessionID int64, input AttemptInput) (*models.Attempt, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
	}
	if input.ItemIndex < 0 || input.ItemIndex >= len(session.Items) {
		return nil, fmt.Errorf("%w: index %d, session has %d items", ErrItemOutOfRange, input.ItemIndex, len(session.Items))
	}
	if err := validateAttemptInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	attempts := s.attemptRepo.WithTx(tx)
	ordinal, err := attempts.NextOrdinal(ctx, sessionID, input.ItemIndex)
	if err != nil {
		return nil, err
	}

	attempt, err := attempts.CreateAttempt(ctx, &models.Attempt{
		SessionID:    sessionID,
		ItemIndex:    input.ItemIndex,
		Ordinal:      ordinal,
		Transcript:   input.Transcript,
		Scores:       input.Scores,
		OverallScore: input.OverallScore,
		WordResults:  input.WordResults,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return attempt, nil
}

// CompleteSession atomically folds all attempts into a summary, stores it
// and transitions the session to completed. Completing an already-terminal
// session fails with ErrInvalidState and leaves the first summary unchanged.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID int64) (*models.PracticeSession, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sessions := s.sessionRepo.WithTx(tx)
	session, err := sessions.GetSessionForUpdate(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
	}

	attempts, err := s.attemptRepo.WithTx(tx).GetSessionAttempts(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, ErrEmptySession
	}

	summary, err := s.aggregator.Summarize(attempts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}

	completedAt := time.Now().UTC()
	if err := sessions.CompleteSession(ctx, sessionID, summary, completedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	session.Status = models.StatusCompleted
	session.Summary = summary
	session.CompletedAt = &completedAt
	return session, nil
}

// AbandonSession transitions an active session to abandoned. The summary
// stays null and no further attempts are accepted.
func (s *SessionService) AbandonSession(ctx context.Context, sessionID int64) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusActive {
		return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
	}

	return s.sessionRepo.AbandonSession(ctx, sessionID, time.Now().UTC())
}

// DeleteSession soft-deletes a session. Deleting an already-deleted
// session is a no-op, not an error.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID int64) error {
	_, err := s.sessionRepo.SoftDeleteSession(ctx, sessionID, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	return err
}

// SessionOwner reports which learner owns a session, including sessions
// that have already been soft-deleted
func (s *SessionService) SessionOwner(ctx context.Context, sessionID int64) (int64, error) {
	session, err := s.sessionRepo.GetSessionIncludingDeleted(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return session.LearnerID, nil
}

// catalogItems loads candidate practice items for the mode and difficulty
func (s *SessionService) catalogItems(ctx context.Context, mode models.SessionMode, difficulty string) ([]models.PracticeItem, error) {
	switch mode {
	case models.ModeTongueTwisters:
		twisters, err := s.itemRepo.ListTwisters(ctx, difficulty)
		if err != nil {
			return nil, err
		}
		items := make([]models.PracticeItem, len(twisters))
		for i, t := range twisters {
			items[i] = models.PracticeItem{
				Kind: models.ItemKindTongueTwister,
				TongueTwister: &models.TongueTwisterItem{
					Text:           t.Text,
					TargetSpeed:    t.TargetSpeed,
					TargetPhonemes: t.TargetPhonemes,
					Tip:            t.Tip,
				},
			}
		}
		return items, nil
	default:
		passages, err := s.itemRepo.ListPassages(ctx, difficulty)
		if err != nil {
			return nil, err
		}
		items := make([]models.PracticeItem, len(passages))
		for i, p := range passages {
			items[i] = models.PracticeItem{
				Kind: models.ItemKindReadAloud,
				ReadAloud: &models.ReadAloudItem{
					Text:         p.Text,
					Topic:        p.Topic,
					PhonemeFocus: p.PhonemeFocus,
					Tips:         p.Tips,
				},
			}
		}
		return items, nil
	}
}

// recentWeakPhonemes computes the set of phonemes the learner currently
// under-performs on, from recent attempt history
func (s *SessionService) recentWeakPhonemes(ctx context.Context, learnerID int64) (map[string]bool, error) {
	history, err := s.attemptRepo.GetRecentLearnerAttempts(ctx, learnerID, selectionHistorySize)
	if err != nil {
		return nil, err
	}
	weak := make(map[string]bool)
	for _, wp := range s.aggregator.WeakPhonemes(history) {
		weak[wp.Phoneme] = true
	}
	return weak, nil
}

// selectWeightedItems picks up to count items with weighted randomization.
// Items exercising phonemes the learner is weak on get a higher selection
// probability; with no history all items weigh the same.
func selectWeightedItems(candidates []models.PracticeItem, weakPhonemes map[string]bool, count int) []models.PracticeItem {
	if count >= len(candidates) {
		selected := make([]models.PracticeItem, len(candidates))
		copy(selected, candidates)
		rand.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
		return selected
	}

	type weightedItem struct {
		item   models.PracticeItem
		weight float64
	}

	remaining := make([]weightedItem, len(candidates))
	for i, item := range candidates {
		weight := 0.7
		if len(weakPhonemes) > 0 {
			focus := item.FocusPhonemes()
			overlap := 0
			for _, p := range focus {
				if weakPhonemes[p] {
					overlap++
				}
			}
			if len(focus) > 0 {
				// 0.3 floor so strong items still rotate in
				weight = 0.3 + 0.7*float64(overlap)/float64(len(focus))
			}
		}
		remaining[i] = weightedItem{item: item, weight: weight}
	}

	selected := make([]models.PracticeItem, 0, count)
	for i := 0; i < count && len(remaining) > 0; i++ {
		totalWeight := 0.0
		for _, wi := range remaining {
			totalWeight += wi.weight
		}

		r := rand.Float64() * totalWeight

		cumWeight := 0.0
		selectedIdx := 0
		for idx, wi := range remaining {
			cumWeight += wi.weight
			if r <= cumWeight {
				selectedIdx = idx
				break
			}
		}

		selected = append(selected, remaining[selectedIdx].item)
		remaining = append(remaining[:selectedIdx], remaining[selectedIdx+1:]...)
	}

	return selected
}

// validateAttemptInput enforces the score-range and taxonomy invariants at
// ingestion, so aggregation never has to clamp
func validateAttemptInput(input AttemptInput) error {
	axes := map[string]*float64{
		"accuracy":     input.Scores.Accuracy,
		"fluency":      input.Scores.Fluency,
		"completeness": input.Scores.Completeness,
		"prosody":      input.Scores.Prosody,
		"overall":      input.OverallScore,
	}
	for name, v := range axes {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%w: %s score %.2f", ErrInvalidScore, name, *v)
		}
	}
	for _, wr := range input.WordResults {
		if wr.Word == "" {
			return fmt.Errorf("%w: word result with empty word", ErrInvalidScore)
		}
		if wr.Accuracy < 0 || wr.Accuracy > 100 {
			return fmt.Errorf("%w: word %q accuracy %.2f", ErrInvalidScore, wr.Word, wr.Accuracy)
		}
		if wr.ErrorType != "" && !models.ValidWordErrorType(wr.ErrorType) {
			return fmt.Errorf("%w: word %q has unknown error type %q", ErrInvalidScore, wr.Word, wr.ErrorType)
		}
		for _, pr := range wr.Phonemes {
			if pr.Score < 0 || pr.Score > 100 {
				return fmt.Errorf("%w: phoneme %q score %.2f", ErrInvalidScore, pr.Phoneme, pr.Score)
			}
		}
	}
	return nil
}
