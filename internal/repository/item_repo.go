package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"accentclash/internal/database"
	"accentclash/internal/models"
)

// ItemRepository handles content catalog database operations
type ItemRepository struct {
	db database.DBTX
}

// NewItemRepository creates a new item repository
func NewItemRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

// CreatePassage inserts a read-aloud passage into the catalog
func (r *ItemRepository) CreatePassage(ctx context.Context, p *models.CatalogPassage) (int64, error) {
	focusJSON, err := json.Marshal(p.PhonemeFocus)
	if err != nil {
		return 0, fmt.Errorf("failed to encode phoneme focus: %w", err)
	}
	tipsJSON, err := json.Marshal(p.Tips)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tips: %w", err)
	}

	query := `
		INSERT INTO read_aloud_items (text, topic, difficulty, cefr_level, phoneme_focus, tips)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	return r.db.ExecReturningID(ctx, query, p.Text, p.Topic, p.Difficulty, p.CEFRLevel, string(focusJSON), string(tipsJSON))
}

// CreateTwister inserts a tongue twister into the catalog
func (r *ItemRepository) CreateTwister(ctx context.Context, t *models.CatalogTwister) (int64, error) {
	phonemesJSON, err := json.Marshal(t.TargetPhonemes)
	if err != nil {
		return 0, fmt.Errorf("failed to encode target phonemes: %w", err)
	}

	query := `
		INSERT INTO tongue_twister_items (text, target_speed, target_phonemes, tip, difficulty, cefr_level)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	return r.db.ExecReturningID(ctx, query, t.Text, t.TargetSpeed, string(phonemesJSON), t.Tip, t.Difficulty, t.CEFRLevel)
}

// ListPassages retrieves read-aloud passages for a difficulty level
func (r *ItemRepository) ListPassages(ctx context.Context, difficulty string) ([]models.CatalogPassage, error) {
	query := `
		SELECT id, text, topic, difficulty, cefr_level, phoneme_focus, tips
		FROM read_aloud_items
		WHERE difficulty = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, difficulty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passages []models.CatalogPassage
	for rows.Next() {
		var p models.CatalogPassage
		var focusJSON, tipsJSON string
		if err := rows.Scan(&p.ID, &p.Text, &p.Topic, &p.Difficulty, &p.CEFRLevel, &focusJSON, &tipsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(focusJSON), &p.PhonemeFocus); err != nil {
			return nil, fmt.Errorf("failed to decode phoneme focus for passage %d: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(tipsJSON), &p.Tips); err != nil {
			return nil, fmt.Errorf("failed to decode tips for passage %d: %w", p.ID, err)
		}
		passages = append(passages, p)
	}

	return passages, rows.Err()
}

// ListTwisters retrieves tongue twisters for a difficulty level
func (r *ItemRepository) ListTwisters(ctx context.Context, difficulty string) ([]models.CatalogTwister, error) {
	query := `
		SELECT id, text, target_speed, target_phonemes, tip, difficulty, cefr_level
		FROM tongue_twister_items
		WHERE difficulty = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, difficulty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var twisters []models.CatalogTwister
	for rows.Next() {
		var t models.CatalogTwister
		var phonemesJSON string
		if err := rows.Scan(&t.ID, &t.Text, &t.TargetSpeed, &phonemesJSON, &t.Tip, &t.Difficulty, &t.CEFRLevel); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(phonemesJSON), &t.TargetPhonemes); err != nil {
			return nil, fmt.Errorf("failed to decode target phonemes for twister %d: %w", t.ID, err)
		}
		twisters = append(twisters, t)
	}

	return twisters, rows.Err()
}

// CountItems returns the total catalog size across both item tables
func (r *ItemRepository) CountItems(ctx context.Context) (int, error) {
	var passages, twisters int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM read_aloud_items`).Scan(&passages); err != nil {
		return 0, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tongue_twister_items`).Scan(&twisters); err != nil {
		return 0, err
	}
	return passages + twisters, nil
}
