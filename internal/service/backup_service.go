package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"accentclash/internal/database"
)

// BackupData represents the complete database backup structure. Session
// rows carry their JSON columns verbatim, including soft-deleted rows,
// so a restore is faithful to the audit trail.
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Learners     []LearnerBackup `json:"learners"`
	Sessions     []SessionBackup `json:"sessions"`
	Attempts     []AttemptBackup `json:"attempts"`
}

// LearnerBackup represents a learner record for backup
type LearnerBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	NativeLang   string    `json:"native_lang"`
	TargetLang   string    `json:"target_lang"`
	CEFRLevel    string    `json:"cefr_level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionBackup represents a practice session record for backup
type SessionBackup struct {
	ID          int64      `json:"id"`
	LearnerID   int64      `json:"learner_id"`
	Mode        string     `json:"mode"`
	Difficulty  string     `json:"difficulty"`
	Status      string     `json:"status"`
	Items       string     `json:"items"`
	Summary     *string    `json:"summary"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// AttemptBackup represents an attempt record for backup
type AttemptBackup struct {
	ID           int64     `json:"id"`
	SessionID    int64     `json:"session_id"`
	ItemIndex    int       `json:"item_index"`
	Ordinal      int       `json:"ordinal"`
	Transcript   string    `json:"transcript"`
	Accuracy     *float64  `json:"accuracy"`
	Fluency      *float64  `json:"fluency"`
	Completeness *float64  `json:"completeness"`
	Prosody      *float64  `json:"prosody"`
	OverallScore *float64  `json:"overall_score"`
	WordResults  string    `json:"word_results"`
	CreatedAt    time.Time `json:"created_at"`
}

// BackupService handles database export and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes the full database contents to a JSON file
func (s *BackupService) Export(ctx context.Context, path, databaseType string) error {
	data := BackupData{
		Version:      "1",
		ExportedAt:   time.Now().UTC(),
		DatabaseType: databaseType,
	}

	var err error
	if data.Learners, err = s.exportLearners(ctx); err != nil {
		return fmt.Errorf("failed to export learners: %w", err)
	}
	if data.Sessions, err = s.exportSessions(ctx); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}
	if data.Attempts, err = s.exportAttempts(ctx); err != nil {
		return fmt.Errorf("failed to export attempts: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&data); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Import restores database contents from a JSON backup file. When clear
// is set, existing rows are removed first.
func (s *BackupService) Import(ctx context.Context, path string, clear bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}

	var data BackupData
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("failed to parse backup file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if clear {
		// Attempts cascade from sessions, but delete explicitly so the
		// order never depends on foreign-key settings
		for _, table := range []string{"attempts", "practice_sessions", "learners"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	for _, l := range data.Learners {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO learners (id, email, password_hash, name, native_lang, target_lang, cefr_level, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, l.Email, l.PasswordHash, l.Name, l.NativeLang, l.TargetLang, l.CEFRLevel, l.CreatedAt, l.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import learner %d: %w", l.ID, err)
		}
	}

	for _, sess := range data.Sessions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO practice_sessions (id, learner_id, mode, difficulty, status, items, summary, created_at, completed_at, deleted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.ID, sess.LearnerID, sess.Mode, sess.Difficulty, sess.Status, sess.Items, sess.Summary, sess.CreatedAt, sess.CompletedAt, sess.DeletedAt)
		if err != nil {
			return fmt.Errorf("failed to import session %d: %w", sess.ID, err)
		}
	}

	for _, a := range data.Attempts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attempts (id, session_id, item_index, ordinal, transcript, accuracy, fluency, completeness, prosody, overall_score, word_results, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.SessionID, a.ItemIndex, a.Ordinal, a.Transcript, a.Accuracy, a.Fluency, a.Completeness, a.Prosody, a.OverallScore, a.WordResults, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import attempt %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *BackupService) exportLearners(ctx context.Context) ([]LearnerBackup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, name, native_lang, target_lang, cefr_level, created_at, updated_at
		FROM learners ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var learners []LearnerBackup
	for rows.Next() {
		var l LearnerBackup
		if err := rows.Scan(&l.ID, &l.Email, &l.PasswordHash, &l.Name, &l.NativeLang, &l.TargetLang, &l.CEFRLevel, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

func (s *BackupService) exportSessions(ctx context.Context) ([]SessionBackup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, learner_id, mode, difficulty, status, items, summary, created_at, completed_at, deleted_at
		FROM practice_sessions ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionBackup
	for rows.Next() {
		var sess SessionBackup
		var summary sql.NullString
		var completedAt, deletedAt sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.LearnerID, &sess.Mode, &sess.Difficulty, &sess.Status, &sess.Items, &summary, &sess.CreatedAt, &completedAt, &deletedAt); err != nil {
			return nil, err
		}
		if summary.Valid {
			sess.Summary = &summary.String
		}
		if completedAt.Valid {
			sess.CompletedAt = &completedAt.Time
		}
		if deletedAt.Valid {
			sess.DeletedAt = &deletedAt.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *BackupService) exportAttempts(ctx context.Context) ([]AttemptBackup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, item_index, ordinal, transcript, accuracy, fluency, completeness, prosody, overall_score, word_results, created_at
		FROM attempts ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []AttemptBackup
	for rows.Next() {
		var a AttemptBackup
		var accuracy, fluency, completeness, prosody, overall sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.SessionID, &a.ItemIndex, &a.Ordinal, &a.Transcript, &accuracy, &fluency, &completeness, &prosody, &overall, &a.WordResults, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Accuracy = nullFloatPtr(accuracy)
		a.Fluency = nullFloatPtr(fluency)
		a.Completeness = nullFloatPtr(completeness)
		a.Prosody = nullFloatPtr(prosody)
		a.OverallScore = nullFloatPtr(overall)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
