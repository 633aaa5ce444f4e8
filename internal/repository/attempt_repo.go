package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"accentclash/internal/database"
	"accentclash/internal/models"
)

// AttemptRepository handles attempt database operations. Attempts are
// append-only; there are no update or delete methods.
type AttemptRepository struct {
	db database.DBTX
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the transaction
func (r *AttemptRepository) WithTx(tx *database.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

// NextOrdinal returns the ordinal for the next attempt against an item
func (r *AttemptRepository) NextOrdinal(ctx context.Context, sessionID int64, itemIndex int) (int, error) {
	query := `
		SELECT COALESCE(MAX(ordinal), 0) + 1
		FROM attempts
		WHERE session_id = ? AND item_index = ?
	`
	var ordinal int
	err := r.db.QueryRowContext(ctx, query, sessionID, itemIndex).Scan(&ordinal)
	return ordinal, err
}

// CreateAttempt appends one immutable attempt row
func (r *AttemptRepository) CreateAttempt(ctx context.Context, attempt *models.Attempt) (*models.Attempt, error) {
	wordResultsJSON, err := json.Marshal(attempt.WordResults)
	if err != nil {
		return nil, fmt.Errorf("failed to encode word results: %w", err)
	}

	query := `
		INSERT INTO attempts (session_id, item_index, ordinal, transcript,
			accuracy, fluency, completeness, prosody, overall_score, word_results)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(ctx, query,
		attempt.SessionID,
		attempt.ItemIndex,
		attempt.Ordinal,
		attempt.Transcript,
		attempt.Scores.Accuracy,
		attempt.Scores.Fluency,
		attempt.Scores.Completeness,
		attempt.Scores.Prosody,
		attempt.OverallScore,
		string(wordResultsJSON),
	)
	if err != nil {
		return nil, err
	}

	return r.GetAttemptByID(ctx, id)
}

const attemptColumns = `id, session_id, item_index, ordinal, transcript, accuracy, fluency, completeness, prosody, overall_score, word_results, created_at`

// GetAttemptByID retrieves a single attempt
func (r *AttemptRepository) GetAttemptByID(ctx context.Context, id int64) (*models.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE id = ?
	`
	return scanAttempt(r.db.QueryRowContext(ctx, query, id))
}

// GetSessionAttempts retrieves all attempts for a session, ordered by item
// index then creation time
func (r *AttemptRepository) GetSessionAttempts(ctx context.Context, sessionID int64) ([]models.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE session_id = ?
		ORDER BY item_index ASC, created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAttempts(rows)
}

// GetRecentLearnerAttempts retrieves the learner's most recent attempts
// across non-deleted sessions, newest first. Used for cross-session
// weak-phoneme stats and weighted item selection.
func (r *AttemptRepository) GetRecentLearnerAttempts(ctx context.Context, learnerID int64, limit int) ([]models.Attempt, error) {
	query := `
		SELECT a.id, a.session_id, a.item_index, a.ordinal, a.transcript,
		       a.accuracy, a.fluency, a.completeness, a.prosody, a.overall_score,
		       a.word_results, a.created_at
		FROM attempts a
		JOIN practice_sessions s ON s.id = a.session_id
		WHERE s.learner_id = ? AND s.deleted_at IS NULL
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAttempts(rows)
}

func collectAttempts(rows *sql.Rows) ([]models.Attempt, error) {
	var attempts []models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *attempt)
	}
	return attempts, rows.Err()
}

func scanAttempt(row rowScanner) (*models.Attempt, error) {
	attempt := &models.Attempt{}
	var accuracy, fluency, completeness, prosody, overall sql.NullFloat64
	var wordResultsJSON string

	err := row.Scan(
		&attempt.ID,
		&attempt.SessionID,
		&attempt.ItemIndex,
		&attempt.Ordinal,
		&attempt.Transcript,
		&accuracy,
		&fluency,
		&completeness,
		&prosody,
		&overall,
		&wordResultsJSON,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	attempt.Scores.Accuracy = nullableFloat(accuracy)
	attempt.Scores.Fluency = nullableFloat(fluency)
	attempt.Scores.Completeness = nullableFloat(completeness)
	attempt.Scores.Prosody = nullableFloat(prosody)
	attempt.OverallScore = nullableFloat(overall)

	if err := json.Unmarshal([]byte(wordResultsJSON), &attempt.WordResults); err != nil {
		return nil, fmt.Errorf("failed to decode word results for attempt %d: %w", attempt.ID, err)
	}

	return attempt, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
