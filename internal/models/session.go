package models

import "time"

// SessionMode determines which item variant a session carries
type SessionMode string

const (
	ModeReadAloud      SessionMode = "read-aloud"
	ModeTongueTwisters SessionMode = "tongue-twisters"
)

// ItemKind returns the practice-item variant for this mode
func (m SessionMode) ItemKind() ItemKind {
	if m == ModeTongueTwisters {
		return ItemKindTongueTwister
	}
	return ItemKindReadAloud
}

// Valid reports whether m is a known mode
func (m SessionMode) Valid() bool {
	return m == ModeReadAloud || m == ModeTongueTwisters
}

// Session difficulty levels
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// ValidDifficulty reports whether d is a known difficulty level
func ValidDifficulty(d string) bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

// SessionStatus is the session lifecycle state. Completed and abandoned
// are terminal.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether the status admits no further transitions
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// PracticeSession groups attempts under a fixed item sequence.
// Summary is nil while the session is active and populated exactly when
// the session completes with at least one attempt.
type PracticeSession struct {
	ID          int64
	LearnerID   int64
	Mode        SessionMode
	Difficulty  string
	Status      SessionStatus
	Items       []PracticeItem
	Summary     *SessionSummary
	CreatedAt   time.Time
	CompletedAt *time.Time
	DeletedAt   *time.Time
}
