package models

import (
	"reflect"
	"testing"
)

func fp(v float64) *float64 {
	return &v
}

func TestAttemptOverall(t *testing.T) {
	tests := []struct {
		name    string
		attempt Attempt
		want    float64
	}{
		{
			name:    "explicit overall wins",
			attempt: Attempt{OverallScore: fp(88), Scores: AxisScores{Accuracy: fp(10)}},
			want:    88,
		},
		{
			name:    "mean of all four axes",
			attempt: Attempt{Scores: AxisScores{Accuracy: fp(80), Fluency: fp(70), Completeness: fp(90), Prosody: fp(60)}},
			want:    75,
		},
		{
			name:    "mean skips missing axes",
			attempt: Attempt{Scores: AxisScores{Accuracy: fp(80), Prosody: fp(60)}},
			want:    70,
		},
		{
			name:    "single axis",
			attempt: Attempt{Scores: AxisScores{Fluency: fp(55)}},
			want:    55,
		},
		{
			name:    "no scores at all",
			attempt: Attempt{},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attempt.Overall(); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	tests := []struct {
		status SessionStatus
		want   bool
	}{
		{StatusActive, false},
		{StatusCompleted, true},
		{StatusAbandoned, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSessionModeItemKind(t *testing.T) {
	if got := ModeReadAloud.ItemKind(); got != ItemKindReadAloud {
		t.Errorf("ModeReadAloud.ItemKind() = %v, want %v", got, ItemKindReadAloud)
	}
	if got := ModeTongueTwisters.ItemKind(); got != ItemKindTongueTwister {
		t.Errorf("ModeTongueTwisters.ItemKind() = %v, want %v", got, ItemKindTongueTwister)
	}
}

func TestSessionModeValid(t *testing.T) {
	tests := []struct {
		mode SessionMode
		want bool
	}{
		{ModeReadAloud, true},
		{ModeTongueTwisters, true},
		{SessionMode("karaoke"), false},
		{SessionMode(""), false},
	}

	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.want {
			t.Errorf("%q.Valid() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced} {
		if !ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%q) = false, want true", d)
		}
	}
	if ValidDifficulty("impossible") {
		t.Error("ValidDifficulty(\"impossible\") = true, want false")
	}
}

func TestValidWordErrorType(t *testing.T) {
	valid := []WordErrorType{
		WordErrorNone, WordErrorOmission, WordErrorInsertion,
		WordErrorMispronounced, WordErrorUnexpectedBreak,
		WordErrorMissingBreak, WordErrorMonotone,
	}
	for _, e := range valid {
		if !ValidWordErrorType(e) {
			t.Errorf("ValidWordErrorType(%q) = false, want true", e)
		}
	}
	if ValidWordErrorType(WordErrorType("Stutter")) {
		t.Error("ValidWordErrorType(\"Stutter\") = true, want false")
	}
}

func TestPracticeItemText(t *testing.T) {
	passage := PracticeItem{
		Kind:      ItemKindReadAloud,
		ReadAloud: &ReadAloudItem{Text: "The quick brown fox.", PhonemeFocus: []string{"f", "k"}},
	}
	if got := passage.Text(); got != "The quick brown fox." {
		t.Errorf("Text() = %q", got)
	}
	if got := passage.FocusPhonemes(); !reflect.DeepEqual(got, []string{"f", "k"}) {
		t.Errorf("FocusPhonemes() = %v", got)
	}

	twister := PracticeItem{
		Kind:          ItemKindTongueTwister,
		TongueTwister: &TongueTwisterItem{Text: "She sells seashells.", TargetPhonemes: []string{"ʃ", "s"}},
	}
	if got := twister.Text(); got != "She sells seashells." {
		t.Errorf("Text() = %q", got)
	}
	if got := twister.FocusPhonemes(); !reflect.DeepEqual(got, []string{"ʃ", "s"}) {
		t.Errorf("FocusPhonemes() = %v", got)
	}

	// A malformed union with no variant set reads as empty
	empty := PracticeItem{Kind: ItemKindReadAloud}
	if got := empty.Text(); got != "" {
		t.Errorf("Text() on empty union = %q, want \"\"", got)
	}
}
