package models

import "time"

// WordErrorType classifies how a word was mispronounced, following the
// assessment service's error taxonomy
type WordErrorType string

const (
	WordErrorNone            WordErrorType = "None"
	WordErrorOmission        WordErrorType = "Omission"
	WordErrorInsertion       WordErrorType = "Insertion"
	WordErrorMispronounced   WordErrorType = "Mispronunciation"
	WordErrorUnexpectedBreak WordErrorType = "UnexpectedBreak"
	WordErrorMissingBreak    WordErrorType = "MissingBreak"
	WordErrorMonotone        WordErrorType = "Monotone"
)

// ValidWordErrorType reports whether t is part of the assessment taxonomy
func ValidWordErrorType(t WordErrorType) bool {
	switch t {
	case WordErrorNone, WordErrorOmission, WordErrorInsertion, WordErrorMispronounced,
		WordErrorUnexpectedBreak, WordErrorMissingBreak, WordErrorMonotone:
		return true
	}
	return false
}

// PhonemeResult scores a single phoneme within a word
type PhonemeResult struct {
	Phoneme string  `json:"phoneme"`
	Score   float64 `json:"score"`
}

// WordResult carries the assessment detail for one word of an attempt
type WordResult struct {
	Word      string          `json:"word"`
	Correct   bool            `json:"correct"`
	Accuracy  float64         `json:"accuracy"`
	ErrorType WordErrorType   `json:"errorType"`
	Phonemes  []PhonemeResult `json:"phonemes,omitempty"`
}

// AxisScores holds the four assessment axes for one attempt. A nil axis
// means the assessment service did not report it.
type AxisScores struct {
	Accuracy     *float64 `json:"accuracy"`
	Fluency      *float64 `json:"fluency"`
	Completeness *float64 `json:"completeness"`
	Prosody      *float64 `json:"prosody"`
}

// Attempt records one scored utterance against one practice item.
// Attempts are append-only: created once, never mutated or deleted.
type Attempt struct {
	ID           int64
	SessionID    int64
	ItemIndex    int
	Ordinal      int
	Transcript   string
	Scores       AxisScores
	OverallScore *float64
	WordResults  []WordResult
	CreatedAt    time.Time
}

// Overall returns the attempt's single quality figure: the explicit
// overall score when the assessment supplied one, otherwise the mean of
// the axes that are present. An attempt with no scores at all is 0.
func (a Attempt) Overall() float64 {
	if a.OverallScore != nil {
		return *a.OverallScore
	}
	sum := 0.0
	n := 0
	for _, v := range []*float64{a.Scores.Accuracy, a.Scores.Fluency, a.Scores.Completeness, a.Scores.Prosody} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
