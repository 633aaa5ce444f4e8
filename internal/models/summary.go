package models

// WeakPhoneme is a phoneme the learner under-performs on, with context
// for focused review
type WeakPhoneme struct {
	Phoneme      string   `json:"phoneme"`
	Score        float64  `json:"score"`
	Occurrences  int      `json:"occurrences"`
	ExampleWords []string `json:"exampleWords,omitempty"`
}

// ItemScore is the per-item rollup within a session summary
type ItemScore struct {
	ItemIndex int     `json:"itemIndex"`
	BestScore float64 `json:"bestScore"`
	Attempts  int     `json:"attempts"`
}

// SessionSummary is the deterministic rollup of a session's attempts,
// computed once at completion and never recomputed afterwards.
type SessionSummary struct {
	AverageAccuracy     float64       `json:"averageAccuracy"`
	AverageFluency      float64       `json:"averageFluency"`
	AverageCompleteness float64       `json:"averageCompleteness"`
	AverageProsody      float64       `json:"averageProsody"`
	AverageScore        float64       `json:"averageScore"`
	BestScore           float64       `json:"bestScore"`
	WorstScore          float64       `json:"worstScore"`
	TotalAttempts       int           `json:"totalAttempts"`
	WeakWords           []string      `json:"weakWords"`
	WeakPhonemes        []WeakPhoneme `json:"weakPhonemes"`
	ItemScores          []ItemScore   `json:"itemScores"`
}
