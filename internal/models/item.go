package models

// ItemKind identifies the variant of a practice item
type ItemKind string

const (
	ItemKindReadAloud     ItemKind = "read-aloud"
	ItemKindTongueTwister ItemKind = "tongue-twister"
)

// ReadAloudItem is a short passage the learner reads out loud
type ReadAloudItem struct {
	Text         string   `json:"text"`
	Topic        string   `json:"topic"`
	PhonemeFocus []string `json:"phonemeFocus,omitempty"`
	Tips         []string `json:"tips,omitempty"`
}

// TongueTwisterItem is a tongue twister with a pacing target
type TongueTwisterItem struct {
	Text           string   `json:"text"`
	TargetSpeed    string   `json:"targetSpeed"`
	TargetPhonemes []string `json:"targetPhonemes,omitempty"`
	Tip            string   `json:"tip,omitempty"`
}

// PracticeItem is the tagged union of item variants. Exactly one of the
// variant pointers is set, matching Kind. Items are fixed at session
// creation and never mutated.
type PracticeItem struct {
	Kind          ItemKind           `json:"kind"`
	ReadAloud     *ReadAloudItem     `json:"readAloud,omitempty"`
	TongueTwister *TongueTwisterItem `json:"tongueTwister,omitempty"`
}

// Text returns the prompt text of whichever variant is set
func (p PracticeItem) Text() string {
	switch p.Kind {
	case ItemKindReadAloud:
		if p.ReadAloud != nil {
			return p.ReadAloud.Text
		}
	case ItemKindTongueTwister:
		if p.TongueTwister != nil {
			return p.TongueTwister.Text
		}
	}
	return ""
}

// FocusPhonemes returns the phonemes the item is designed to exercise
func (p PracticeItem) FocusPhonemes() []string {
	switch p.Kind {
	case ItemKindReadAloud:
		if p.ReadAloud != nil {
			return p.ReadAloud.PhonemeFocus
		}
	case ItemKindTongueTwister:
		if p.TongueTwister != nil {
			return p.TongueTwister.TargetPhonemes
		}
	}
	return nil
}

// CatalogPassage is a read-aloud passage stored in the content catalog
type CatalogPassage struct {
	ID           int64
	Text         string
	Topic        string
	Difficulty   string
	CEFRLevel    string
	PhonemeFocus []string
	Tips         []string
}

// CatalogTwister is a tongue twister stored in the content catalog
type CatalogTwister struct {
	ID             int64
	Text           string
	TargetSpeed    string
	TargetPhonemes []string
	Tip            string
	Difficulty     string
	CEFRLevel      string
}
