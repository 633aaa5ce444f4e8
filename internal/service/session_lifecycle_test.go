package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"accentclash/internal/config"
	"accentclash/internal/database"
	"accentclash/internal/models"
	"accentclash/internal/repository"
	"accentclash/internal/scoring"
)

// newTestService spins up a real sqlite-backed service stack. Tests using
// it are skipped in short mode.
func newTestService(t *testing.T) (*SessionService, *repository.LearnerRepository, *repository.ItemRepository) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.Config{
		DatabaseType:   "sqlite",
		DatabasePath:   filepath.Join(t.TempDir(), "test.db"),
		MigrationsPath: "../../migrations",
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(cfg.MigrationsPath, zap.NewNop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	itemRepo := repository.NewItemRepository(db)
	learnerRepo := repository.NewLearnerRepository(db)

	svc := NewSessionService(db, sessionRepo, attemptRepo, itemRepo, scoring.NewAggregator(scoring.DefaultConfig()))
	return svc, learnerRepo, itemRepo
}

func seedLifecycleFixtures(t *testing.T, learnerRepo *repository.LearnerRepository, itemRepo *repository.ItemRepository) int64 {
	t.Helper()
	ctx := context.Background()

	learner, err := learnerRepo.CreateLearner(ctx, "test@example.com", "hash", "Test Learner", "es", "en", "B1")
	if err != nil {
		t.Fatalf("failed to create learner: %v", err)
	}

	passages := []models.CatalogPassage{
		{Text: "The thirty thieves thought thoroughly.", Difficulty: models.DifficultyBeginner, PhonemeFocus: []string{"θ"}},
		{Text: "Richard ran rapidly round the ridge.", Difficulty: models.DifficultyBeginner, PhonemeFocus: []string{"r"}},
	}
	for i := range passages {
		if _, err := itemRepo.CreatePassage(ctx, &passages[i]); err != nil {
			t.Fatalf("failed to create passage: %v", err)
		}
	}
	return learner.ID
}

func TestSessionLifecycle(t *testing.T) {
	svc, learnerRepo, itemRepo := newTestService(t)
	ctx := context.Background()
	learnerID := seedLifecycleFixtures(t, learnerRepo, itemRepo)

	session, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, models.DifficultyBeginner, 2)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if session.Status != models.StatusActive {
		t.Fatalf("new session status = %s, want active", session.Status)
	}
	if len(session.Items) != 2 {
		t.Fatalf("new session has %d items, want 2", len(session.Items))
	}
	if session.Summary != nil {
		t.Fatal("new session has a summary, want nil")
	}

	// Two attempts on item 0, one on item 1
	for _, in := range []AttemptInput{
		{ItemIndex: 0, OverallScore: fp(80)},
		{ItemIndex: 0, OverallScore: fp(90)},
		{ItemIndex: 1, OverallScore: fp(60)},
	} {
		if _, err := svc.RecordAttempt(ctx, session.ID, in); err != nil {
			t.Fatalf("RecordAttempt() error = %v", err)
		}
	}

	// Ordinals count per item
	attempts, err := svc.GetSessionAttempts(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSessionAttempts() error = %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("got %d attempts, want 3", len(attempts))
	}
	if attempts[0].Ordinal != 1 || attempts[1].Ordinal != 2 || attempts[2].Ordinal != 1 {
		t.Errorf("ordinals = %d,%d,%d, want 1,2,1", attempts[0].Ordinal, attempts[1].Ordinal, attempts[2].Ordinal)
	}

	completed, err := svc.CompleteSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if completed.Status != models.StatusCompleted {
		t.Errorf("completed status = %s, want completed", completed.Status)
	}
	if completed.Summary == nil {
		t.Fatal("completed session has no summary")
	}
	if completed.Summary.BestScore != 90 || completed.Summary.WorstScore != 60 {
		t.Errorf("summary best/worst = %v/%v, want 90/60", completed.Summary.BestScore, completed.Summary.WorstScore)
	}
	if completed.Summary.TotalAttempts != 3 {
		t.Errorf("summary total attempts = %d, want 3", completed.Summary.TotalAttempts)
	}

	// The stored summary round-trips
	reloaded, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if reloaded.Summary == nil || reloaded.Summary.BestScore != 90 {
		t.Errorf("reloaded summary = %+v, want best 90", reloaded.Summary)
	}
}

func TestRecordAttemptInvalidStates(t *testing.T) {
	svc, learnerRepo, itemRepo := newTestService(t)
	ctx := context.Background()
	learnerID := seedLifecycleFixtures(t, learnerRepo, itemRepo)

	session, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, models.DifficultyBeginner, 2)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// Out-of-range item index
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 5, OverallScore: fp(80)}); !errors.Is(err, ErrItemOutOfRange) {
		t.Errorf("RecordAttempt(index 5) error = %v, want ErrItemOutOfRange", err)
	}
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: -1, OverallScore: fp(80)}); !errors.Is(err, ErrItemOutOfRange) {
		t.Errorf("RecordAttempt(index -1) error = %v, want ErrItemOutOfRange", err)
	}

	// Out-of-range score
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 0, OverallScore: fp(101)}); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("RecordAttempt(score 101) error = %v, want ErrInvalidScore", err)
	}

	// Unknown session
	if _, err := svc.RecordAttempt(ctx, 9999, AttemptInput{ItemIndex: 0}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("RecordAttempt(unknown session) error = %v, want ErrSessionNotFound", err)
	}

	// After completion no further attempts
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 0, OverallScore: fp(80)}); err != nil {
		t.Fatalf("RecordAttempt() error = %v", err)
	}
	if _, err := svc.CompleteSession(ctx, session.ID); err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 0, OverallScore: fp(80)}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("RecordAttempt(completed session) error = %v, want ErrInvalidState", err)
	}
}

func TestCompleteSessionTerminalStates(t *testing.T) {
	svc, learnerRepo, itemRepo := newTestService(t)
	ctx := context.Background()
	learnerID := seedLifecycleFixtures(t, learnerRepo, itemRepo)

	// Completing a session without attempts fails and leaves it active
	session, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, models.DifficultyBeginner, 1)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.CompleteSession(ctx, session.ID); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("CompleteSession(empty) error = %v, want ErrEmptySession", err)
	}
	still, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if still.Status != models.StatusActive {
		t.Errorf("session status after failed completion = %s, want active", still.Status)
	}

	// Double completion conflicts and keeps the first summary
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 0, OverallScore: fp(75)}); err != nil {
		t.Fatalf("RecordAttempt() error = %v", err)
	}
	first, err := svc.CompleteSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if _, err := svc.CompleteSession(ctx, session.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second CompleteSession() error = %v, want ErrInvalidState", err)
	}
	reloaded, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if reloaded.Summary == nil || reloaded.Summary.BestScore != first.Summary.BestScore {
		t.Errorf("summary changed after rejected completion: %+v", reloaded.Summary)
	}

	// Abandoned sessions cannot be completed
	abandoned, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, models.DifficultyBeginner, 1)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := svc.AbandonSession(ctx, abandoned.ID); err != nil {
		t.Fatalf("AbandonSession() error = %v", err)
	}
	if _, err := svc.CompleteSession(ctx, abandoned.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("CompleteSession(abandoned) error = %v, want ErrInvalidState", err)
	}
	if err := svc.AbandonSession(ctx, abandoned.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second AbandonSession() error = %v, want ErrInvalidState", err)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	svc, learnerRepo, itemRepo := newTestService(t)
	ctx := context.Background()
	learnerID := seedLifecycleFixtures(t, learnerRepo, itemRepo)

	session, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, models.DifficultyBeginner, 1)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if err := svc.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}

	// Hidden from reads and listings
	if _, err := svc.GetSession(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession(deleted) error = %v, want ErrSessionNotFound", err)
	}
	sessions, err := svc.ListSessions(ctx, learnerID, 10)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("ListSessions() after delete returned %d sessions, want 0", len(sessions))
	}

	// Repeat delete is a no-op, unknown session is an error
	if err := svc.DeleteSession(ctx, session.ID); err != nil {
		t.Errorf("second DeleteSession() error = %v, want nil", err)
	}
	if err := svc.DeleteSession(ctx, 9999); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("DeleteSession(unknown) error = %v, want ErrSessionNotFound", err)
	}

	// Ownership survives deletion
	owner, err := svc.SessionOwner(ctx, session.ID)
	if err != nil {
		t.Fatalf("SessionOwner() error = %v", err)
	}
	if owner != learnerID {
		t.Errorf("SessionOwner() = %d, want %d", owner, learnerID)
	}
}

func TestConcurrentRecordAndComplete(t *testing.T) {
	svc, learnerRepo, itemRepo := newTestService(t)
	ctx := context.Background()
	learnerID := seedLifecycleFixtures(t, learnerRepo, itemRepo)

	session, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, models.DifficultyBeginner, 2)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// One attempt up front so completion never sees an empty session
	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 0, OverallScore: fp(75)}); err != nil {
		t.Fatalf("RecordAttempt() error = %v", err)
	}

	const writers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	var recorded int64

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: i % 2, OverallScore: fp(float64(50 + i))})
			switch {
			case err == nil:
				atomic.AddInt64(&recorded, 1)
			case errors.Is(err, ErrInvalidState):
				// Lost the race against completion
			default:
				t.Errorf("RecordAttempt() error = %v, want nil or ErrInvalidState", err)
			}
		}(i)
	}

	wg.Add(1)
	var completed *models.PracticeSession
	go func() {
		defer wg.Done()
		<-start
		var err error
		completed, err = svc.CompleteSession(ctx, session.ID)
		if err != nil {
			t.Errorf("CompleteSession() error = %v", err)
		}
	}()

	close(start)
	wg.Wait()

	if completed == nil || completed.Summary == nil {
		t.Fatal("completed session has no summary")
	}

	// Every attempt that was accepted before completion won its spot in
	// the summary, and nothing slipped in after
	want := int(recorded) + 1
	if completed.Summary.TotalAttempts != want {
		t.Errorf("summary total attempts = %d, want %d", completed.Summary.TotalAttempts, want)
	}
	attempts, err := svc.GetSessionAttempts(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSessionAttempts() error = %v", err)
	}
	if len(attempts) != want {
		t.Errorf("stored attempts = %d, want %d", len(attempts), want)
	}

	if _, err := svc.RecordAttempt(ctx, session.ID, AttemptInput{ItemIndex: 0, OverallScore: fp(80)}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("RecordAttempt(after complete) error = %v, want ErrInvalidState", err)
	}
}

func TestStartSessionValidation(t *testing.T) {
	svc, learnerRepo, itemRepo := newTestService(t)
	ctx := context.Background()
	learnerID := seedLifecycleFixtures(t, learnerRepo, itemRepo)

	if _, err := svc.StartSession(ctx, learnerID, "karaoke", models.DifficultyBeginner, 1); err == nil {
		t.Error("StartSession(bad mode) expected error, got nil")
	}
	if _, err := svc.StartSession(ctx, learnerID, models.ModeReadAloud, "impossible", 1); err == nil {
		t.Error("StartSession(bad difficulty) expected error, got nil")
	}

	// No tongue twisters seeded, so that mode has no catalog items
	if _, err := svc.StartSession(ctx, learnerID, models.ModeTongueTwisters, models.DifficultyBeginner, 1); !errors.Is(err, ErrNoCatalogItems) {
		t.Errorf("StartSession(no items) error = %v, want ErrNoCatalogItems", err)
	}
}
