package service

import (
	"errors"
	"testing"

	"accentclash/internal/models"
)

func fp(v float64) *float64 {
	return &v
}

func TestValidateAttemptInput(t *testing.T) {
	tests := []struct {
		name    string
		input   AttemptInput
		wantErr bool
	}{
		{
			name:    "empty input is valid",
			input:   AttemptInput{},
			wantErr: false,
		},
		{
			name: "all axes in range",
			input: AttemptInput{
				Scores: models.AxisScores{Accuracy: fp(0), Fluency: fp(100), Completeness: fp(50), Prosody: fp(99.9)},
			},
			wantErr: false,
		},
		{
			name: "axis above 100",
			input: AttemptInput{
				Scores: models.AxisScores{Fluency: fp(100.1)},
			},
			wantErr: true,
		},
		{
			name: "negative overall",
			input: AttemptInput{
				OverallScore: fp(-0.5),
			},
			wantErr: true,
		},
		{
			name: "word result with empty word",
			input: AttemptInput{
				WordResults: []models.WordResult{{Word: "", Accuracy: 80}},
			},
			wantErr: true,
		},
		{
			name: "word accuracy out of range",
			input: AttemptInput{
				WordResults: []models.WordResult{{Word: "cat", Accuracy: 101}},
			},
			wantErr: true,
		},
		{
			name: "unknown word error type",
			input: AttemptInput{
				WordResults: []models.WordResult{{Word: "cat", Accuracy: 80, ErrorType: "Stutter"}},
			},
			wantErr: true,
		},
		{
			name: "known word error type",
			input: AttemptInput{
				WordResults: []models.WordResult{{Word: "cat", Accuracy: 80, ErrorType: models.WordErrorOmission}},
			},
			wantErr: false,
		},
		{
			name: "empty error type allowed",
			input: AttemptInput{
				WordResults: []models.WordResult{{Word: "cat", Accuracy: 80}},
			},
			wantErr: false,
		},
		{
			name: "phoneme score out of range",
			input: AttemptInput{
				WordResults: []models.WordResult{{
					Word:     "cat",
					Accuracy: 80,
					Phonemes: []models.PhonemeResult{{Phoneme: "k", Score: 120}},
				}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAttemptInput(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAttemptInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidScore) {
				t.Errorf("validateAttemptInput() error = %v, want ErrInvalidScore", err)
			}
		})
	}
}

func passageItem(text string, focus ...string) models.PracticeItem {
	return models.PracticeItem{
		Kind:      models.ItemKindReadAloud,
		ReadAloud: &models.ReadAloudItem{Text: text, PhonemeFocus: focus},
	}
}

func TestSelectWeightedItemsCount(t *testing.T) {
	candidates := []models.PracticeItem{
		passageItem("one", "θ"),
		passageItem("two", "r"),
		passageItem("three", "ʃ"),
		passageItem("four", "v"),
	}

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "fewer than candidates", count: 2, want: 2},
		{name: "exactly candidates", count: 4, want: 4},
		{name: "more than candidates", count: 10, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectWeightedItems(candidates, nil, tt.count)
			if len(got) != tt.want {
				t.Errorf("selectWeightedItems() returned %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSelectWeightedItemsNoDuplicates(t *testing.T) {
	candidates := []models.PracticeItem{
		passageItem("one", "θ"),
		passageItem("two", "r"),
		passageItem("three", "ʃ"),
		passageItem("four", "v"),
		passageItem("five", "z"),
	}

	for i := 0; i < 50; i++ {
		got := selectWeightedItems(candidates, map[string]bool{"θ": true}, 3)
		seen := make(map[string]bool)
		for _, item := range got {
			text := item.Text()
			if seen[text] {
				t.Fatalf("item %q selected twice", text)
			}
			seen[text] = true
		}
	}
}

func TestSelectWeightedItemsFavorsWeakPhonemes(t *testing.T) {
	// One candidate targets the weak phoneme, the rest do not. Over many
	// draws of a single item it should win clearly more than 1 in 5 times.
	candidates := []models.PracticeItem{
		passageItem("weak", "θ"),
		passageItem("a", "r"),
		passageItem("b", "ʃ"),
		passageItem("c", "v"),
		passageItem("d", "z"),
	}
	weak := map[string]bool{"θ": true}

	hits := 0
	const draws = 2000
	for i := 0; i < draws; i++ {
		got := selectWeightedItems(candidates, weak, 1)
		if len(got) == 1 && got[0].Text() == "weak" {
			hits++
		}
	}

	// Weighted draw: 1.0 vs four at 0.3 gives the weak item ~45% of
	// draws. Anything clearly above the uniform 20% passes.
	if hits < draws/4 {
		t.Errorf("weak-phoneme item selected %d/%d times, expected well above uniform", hits, draws)
	}
}
