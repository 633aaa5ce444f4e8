package service

import (
	"testing"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

func TestScheduleWeekly(t *testing.T) {
	newScheduler := func() *ReportScheduler {
		return &ReportScheduler{
			scheduler: gocron.NewScheduler(time.UTC),
			logger:    zap.NewNop(),
		}
	}

	s := newScheduler()
	if err := s.scheduleWeekly("08:00"); err != nil {
		t.Fatalf("scheduleWeekly(08:00) error = %v", err)
	}
	if got := s.scheduler.Len(); got != 1 {
		t.Errorf("scheduled jobs = %d, want 1", got)
	}

	// A malformed time of day must surface as an error, not a silently
	// dead schedule
	s = newScheduler()
	if err := s.scheduleWeekly("25:99"); err == nil {
		t.Error("scheduleWeekly(25:99) expected error, got nil")
	}
}
