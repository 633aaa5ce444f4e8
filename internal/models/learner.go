package models

import "time"

// Learner represents an account in the system
type Learner struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	NativeLang   string
	TargetLang   string
	CEFRLevel    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidCEFRLevel reports whether l is one of the six CEFR tiers
func ValidCEFRLevel(l string) bool {
	switch l {
	case "A1", "A2", "B1", "B2", "C1", "C2":
		return true
	}
	return false
}

// LearnerProgress combines a learner with rolled-up practice statistics
type LearnerProgress struct {
	Learner           Learner
	TotalSessions     int
	CompletedSessions int
	TotalAttempts     int
	AverageScore      float64
	BestScore         float64
	WeakPhonemes      []WeakPhoneme
}
