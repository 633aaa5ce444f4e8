package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"accentclash/internal/database"
	"accentclash/internal/models"
)

// SessionRepository handles practice session database operations.
// Item sequences and summaries are nested value shapes and persist as
// JSON text columns.
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the transaction
func (r *SessionRepository) WithTx(tx *database.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

// CreateSession creates a new active practice session with a fixed item sequence
func (r *SessionRepository) CreateSession(ctx context.Context, learnerID int64, mode models.SessionMode, difficulty string, items []models.PracticeItem) (*models.PracticeSession, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	query := `
		INSERT INTO practice_sessions (learner_id, mode, difficulty, status, items)
		VALUES (?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(ctx, query, learnerID, string(mode), difficulty, string(models.StatusActive), string(itemsJSON))
	if err != nil {
		return nil, err
	}

	return r.GetSessionByID(ctx, id)
}

const sessionColumns = `id, learner_id, mode, difficulty, status, items, summary, created_at, completed_at, deleted_at`

// GetSessionByID retrieves a session by ID. Soft-deleted sessions are not
// visible through this method.
func (r *SessionRepository) GetSessionByID(ctx context.Context, sessionID int64) (*models.PracticeSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM practice_sessions
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanSession(r.db.QueryRowContext(ctx, query, sessionID))
}

// GetSessionForUpdate retrieves a session and, on engines that support it,
// locks the row until the surrounding transaction ends. Completion reads
// "all attempts so far" and must not race with a concurrent insert.
func (r *SessionRepository) GetSessionForUpdate(ctx context.Context, sessionID int64) (*models.PracticeSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM practice_sessions
		WHERE id = ? AND deleted_at IS NULL` + r.db.GetDialect().RowLockSuffix()
	return r.scanSession(r.db.QueryRowContext(ctx, query, sessionID))
}

// GetSessionIncludingDeleted retrieves a session regardless of soft
// deletion, used to tell "unknown session" apart from "already deleted"
func (r *SessionRepository) GetSessionIncludingDeleted(ctx context.Context, sessionID int64) (*models.PracticeSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM practice_sessions
		WHERE id = ?
	`
	return r.scanSession(r.db.QueryRowContext(ctx, query, sessionID))
}

// ListLearnerSessions retrieves recent non-deleted sessions for a learner
func (r *SessionRepository) ListLearnerSessions(ctx context.Context, learnerID int64, limit int) ([]models.PracticeSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM practice_sessions
		WHERE learner_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.PracticeSession
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	return sessions, rows.Err()
}

// CompleteSession stores the computed summary and transitions the session
// to completed in a single statement
func (r *SessionRepository) CompleteSession(ctx context.Context, sessionID int64, summary *models.SessionSummary, completedAt time.Time) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	query := `
		UPDATE practice_sessions
		SET status = ?, summary = ?, completed_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	_, err = r.db.ExecContext(ctx, query, string(models.StatusCompleted), string(summaryJSON), completedAt, sessionID)
	return err
}

// AbandonSession transitions the session to abandoned. The summary stays null.
func (r *SessionRepository) AbandonSession(ctx context.Context, sessionID int64, completedAt time.Time) error {
	query := `
		UPDATE practice_sessions
		SET status = ?, completed_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, string(models.StatusAbandoned), completedAt, sessionID)
	return err
}

// SoftDeleteSession hides the session from all reads while retaining the
// row for audit. Deleting an already-deleted session leaves deleted_at
// unchanged.
func (r *SessionRepository) SoftDeleteSession(ctx context.Context, sessionID int64, deletedAt time.Time) (bool, error) {
	query := `
		UPDATE practice_sessions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, deletedAt, sessionID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	// Nothing updated: either a repeat delete or an unknown session.
	// The existence read tells them apart.
	if _, err := r.GetSessionIncludingDeleted(ctx, sessionID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *SessionRepository) scanSession(row rowScanner) (*models.PracticeSession, error) {
	session := &models.PracticeSession{}
	var itemsJSON string
	var summaryJSON sql.NullString
	var completedAt, deletedAt sql.NullTime
	var mode, status string

	err := row.Scan(
		&session.ID,
		&session.LearnerID,
		&mode,
		&session.Difficulty,
		&status,
		&itemsJSON,
		&summaryJSON,
		&session.CreatedAt,
		&completedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Mode = models.SessionMode(mode)
	session.Status = models.SessionStatus(status)

	if err := json.Unmarshal([]byte(itemsJSON), &session.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items for session %d: %w", session.ID, err)
	}
	if summaryJSON.Valid {
		session.Summary = &models.SessionSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), session.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary for session %d: %w", session.ID, err)
		}
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		session.DeletedAt = &deletedAt.Time
	}

	return session, nil
}
