package repository

import (
	"context"

	"accentclash/internal/database"
	"accentclash/internal/models"
)

// LearnerRepository handles learner account database operations
type LearnerRepository struct {
	db database.DBTX
}

// NewLearnerRepository creates a new learner repository
func NewLearnerRepository(db database.DBTX) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// CreateLearner inserts a new learner account
func (r *LearnerRepository) CreateLearner(ctx context.Context, email, passwordHash, name, nativeLang, targetLang, cefrLevel string) (*models.Learner, error) {
	query := `
		INSERT INTO learners (email, password_hash, name, native_lang, target_lang, cefr_level)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(ctx, query, email, passwordHash, name, nativeLang, targetLang, cefrLevel)
	if err != nil {
		return nil, err
	}

	return r.GetLearnerByID(ctx, id)
}

// GetLearnerByID retrieves a learner by ID
func (r *LearnerRepository) GetLearnerByID(ctx context.Context, id int64) (*models.Learner, error) {
	query := `
		SELECT id, email, password_hash, name, native_lang, target_lang, cefr_level, created_at, updated_at
		FROM learners
		WHERE id = ?
	`
	return r.scanLearner(r.db.QueryRowContext(ctx, query, id))
}

// GetLearnerByEmail retrieves a learner by email address
func (r *LearnerRepository) GetLearnerByEmail(ctx context.Context, email string) (*models.Learner, error) {
	query := `
		SELECT id, email, password_hash, name, native_lang, target_lang, cefr_level, created_at, updated_at
		FROM learners
		WHERE email = ?
	`
	return r.scanLearner(r.db.QueryRowContext(ctx, query, email))
}

// UpdateCEFRLevel updates the learner's self-reported proficiency tier
func (r *LearnerRepository) UpdateCEFRLevel(ctx context.Context, id int64, cefrLevel string) error {
	query := `
		UPDATE learners
		SET cefr_level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, cefrLevel, id)
	return err
}

// ListLearners retrieves all learner accounts, oldest first
func (r *LearnerRepository) ListLearners(ctx context.Context) ([]models.Learner, error) {
	query := `
		SELECT id, email, password_hash, name, native_lang, target_lang, cefr_level, created_at, updated_at
		FROM learners
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var l models.Learner
		err := rows.Scan(
			&l.ID,
			&l.Email,
			&l.PasswordHash,
			&l.Name,
			&l.NativeLang,
			&l.TargetLang,
			&l.CEFRLevel,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}

	return learners, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *LearnerRepository) scanLearner(row rowScanner) (*models.Learner, error) {
	learner := &models.Learner{}
	err := row.Scan(
		&learner.ID,
		&learner.Email,
		&learner.PasswordHash,
		&learner.Name,
		&learner.NativeLang,
		&learner.TargetLang,
		&learner.CEFRLevel,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return learner, nil
}
