package service

import (
	"context"
	"database/sql"
	"errors"

	"accentclash/internal/models"
	"accentclash/internal/repository"
	"accentclash/internal/scoring"
)

// How many recent sessions and attempts feed the progress rollup
const (
	progressSessionWindow = 50
	progressAttemptWindow = 500
)

// ProgressService rolls recent sessions up into per-learner statistics
type ProgressService struct {
	learnerRepo *repository.LearnerRepository
	sessionRepo *repository.SessionRepository
	attemptRepo *repository.AttemptRepository
	aggregator  *scoring.Aggregator
}

// NewProgressService creates a new progress service
func NewProgressService(learnerRepo *repository.LearnerRepository, sessionRepo *repository.SessionRepository, attemptRepo *repository.AttemptRepository, aggregator *scoring.Aggregator) *ProgressService {
	return &ProgressService{
		learnerRepo: learnerRepo,
		sessionRepo: sessionRepo,
		attemptRepo: attemptRepo,
		aggregator:  aggregator,
	}
}

// GetProgress computes the learner's rollup over recent sessions: totals,
// average and best scores from completed-session summaries, and weak
// phonemes recomputed across recent attempt history.
func (s *ProgressService) GetProgress(ctx context.Context, learnerID int64) (*models.LearnerProgress, error) {
	learner, err := s.learnerRepo.GetLearnerByID(ctx, learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLearnerNotFound
	}
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListLearnerSessions(ctx, learnerID, progressSessionWindow)
	if err != nil {
		return nil, err
	}

	progress := &models.LearnerProgress{
		Learner:       *learner,
		TotalSessions: len(sessions),
	}

	scoreSum := 0.0
	for _, session := range sessions {
		if session.Status != models.StatusCompleted || session.Summary == nil {
			continue
		}
		progress.CompletedSessions++
		progress.TotalAttempts += session.Summary.TotalAttempts
		scoreSum += session.Summary.AverageScore
		if session.Summary.BestScore > progress.BestScore {
			progress.BestScore = session.Summary.BestScore
		}
	}
	if progress.CompletedSessions > 0 {
		progress.AverageScore = scoreSum / float64(progress.CompletedSessions)
	}

	history, err := s.attemptRepo.GetRecentLearnerAttempts(ctx, learnerID, progressAttemptWindow)
	if err != nil {
		return nil, err
	}
	progress.WeakPhonemes = s.aggregator.WeakPhonemes(history)

	return progress, nil
}
