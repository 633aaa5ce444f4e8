package service

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"accentclash/internal/repository"
)

// ReportScheduler sends each learner a weekly progress-report email
type ReportScheduler struct {
	scheduler   *gocron.Scheduler
	learnerRepo *repository.LearnerRepository
	progress    *ProgressService
	email       *EmailService
	logger      *zap.Logger
}

// NewReportScheduler creates a new report scheduler
func NewReportScheduler(learnerRepo *repository.LearnerRepository, progress *ProgressService, email *EmailService, logger *zap.Logger) *ReportScheduler {
	return &ReportScheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		learnerRepo: learnerRepo,
		progress:    progress,
		email:       email,
		logger:      logger,
	}
}

// Start schedules the weekly report job and begins running it in the
// background. Does nothing if email is disabled.
func (s *ReportScheduler) Start() {
	if !s.email.IsEnabled() {
		s.logger.Info("weekly reports disabled: email service not configured")
		return
	}

	// Monday morning, UTC
	if err := s.scheduleWeekly("08:00"); err != nil {
		s.logger.Error("failed to schedule weekly reports", zap.Error(err))
		return
	}
	s.scheduler.StartAsync()
	s.logger.Info("weekly report scheduler started")
}

func (s *ReportScheduler) scheduleWeekly(at string) error {
	_, err := s.scheduler.Every(1).Week().Monday().At(at).Do(s.sendReports)
	return err
}

// Stop halts the scheduler
func (s *ReportScheduler) Stop() {
	s.scheduler.Stop()
}

// sendReports emails a progress rollup to every learner. Failures are
// logged per learner and do not stop the run.
func (s *ReportScheduler) sendReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	learners, err := s.learnerRepo.ListLearners(ctx)
	if err != nil {
		s.logger.Error("failed to list learners for weekly reports", zap.Error(err))
		return
	}

	sent := 0
	for _, learner := range learners {
		progress, err := s.progress.GetProgress(ctx, learner.ID)
		if err != nil {
			s.logger.Error("failed to compute progress", zap.Int64("learner", learner.ID), zap.Error(err))
			continue
		}
		if progress.CompletedSessions == 0 {
			continue
		}
		if err := s.email.SendProgressReport(ctx, progress); err != nil {
			s.logger.Error("failed to send progress report", zap.Int64("learner", learner.ID), zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("weekly reports sent", zap.Int("count", sent), zap.Int("learners", len(learners)))
}
