package service

import (
	"context"
	"fmt"

	"accentclash/internal/models"
	"accentclash/internal/repository"
)

// CatalogService handles the practice content catalog
type CatalogService struct {
	itemRepo *repository.ItemRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(itemRepo *repository.ItemRepository) *CatalogService {
	return &CatalogService{itemRepo: itemRepo}
}

// ListPassages retrieves read-aloud passages for a difficulty level
func (s *CatalogService) ListPassages(ctx context.Context, difficulty string) ([]models.CatalogPassage, error) {
	if !models.ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("unknown difficulty: %s", difficulty)
	}
	return s.itemRepo.ListPassages(ctx, difficulty)
}

// ListTwisters retrieves tongue twisters for a difficulty level
func (s *CatalogService) ListTwisters(ctx context.Context, difficulty string) ([]models.CatalogTwister, error) {
	if !models.ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("unknown difficulty: %s", difficulty)
	}
	return s.itemRepo.ListTwisters(ctx, difficulty)
}

// SeedDefaultCatalog inserts the starter content if the catalog is empty
func (s *CatalogService) SeedDefaultCatalog(ctx context.Context) error {
	count, err := s.itemRepo.CountItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to count catalog items: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range defaultPassages {
		if _, err := s.itemRepo.CreatePassage(ctx, &defaultPassages[i]); err != nil {
			return fmt.Errorf("failed to seed passage %q: %w", defaultPassages[i].Topic, err)
		}
	}
	for i := range defaultTwisters {
		if _, err := s.itemRepo.CreateTwister(ctx, &defaultTwisters[i]); err != nil {
			return fmt.Errorf("failed to seed twister %q: %w", defaultTwisters[i].Text, err)
		}
	}
	return nil
}

var defaultPassages = []models.CatalogPassage{
	{
		Text:         "The sun rises over the hills. Birds sing in the trees. It is a new day.",
		Topic:        "morning",
		Difficulty:   models.DifficultyBeginner,
		CEFRLevel:    "A1",
		PhonemeFocus: []string{"s", "z", "ɪ"},
		Tips:         []string{"Keep the s sounds soft and steady", "Pause briefly at each full stop"},
	},
	{
		Text:         "Three thin thinkers thought about things throughout Thursday.",
		Topic:        "thinking",
		Difficulty:   models.DifficultyBeginner,
		CEFRLevel:    "A2",
		PhonemeFocus: []string{"θ", "ð"},
		Tips:         []string{"Place the tip of your tongue between your teeth for th"},
	},
	{
		Text:         "The weather forecast this week suggests rather variable conditions, with thunderstorms on Thursday and a thaw thereafter.",
		Topic:        "weather",
		Difficulty:   models.DifficultyIntermediate,
		CEFRLevel:    "B1",
		PhonemeFocus: []string{"θ", "ð", "w"},
		Tips:         []string{"Contrast voiced and unvoiced th", "Round your lips for w"},
	},
	{
		Text:         "Her rural roots were revealed through her rhotic pronunciation, really rolling every r in rarely rehearsed remarks.",
		Topic:        "speech",
		Difficulty:   models.DifficultyIntermediate,
		CEFRLevel:    "B2",
		PhonemeFocus: []string{"r", "l"},
		Tips:         []string{"Do not let r collapse into w", "Keep l light at the start of syllables"},
	},
	{
		Text:         "The phenomenon of linguistic assimilation, whereby adjacent consonants influence one another, is particularly conspicuous in rapid colloquial speech.",
		Topic:        "linguistics",
		Difficulty:   models.DifficultyAdvanced,
		CEFRLevel:    "C1",
		PhonemeFocus: []string{"ʃ", "s", "ə"},
		Tips:         []string{"Reduce unstressed vowels to schwa", "Keep the rhythm even across long words"},
	},
	{
		Text:         "Measuring the azure treasure at leisure, the visionary usually envisaged unusual seizures of pleasure.",
		Topic:        "sounds",
		Difficulty:   models.DifficultyAdvanced,
		CEFRLevel:    "C2",
		PhonemeFocus: []string{"ʒ", "ʃ", "j"},
		Tips:         []string{"The zh sound is voiced; let it buzz"},
	},
}

var defaultTwisters = []models.CatalogTwister{
	{
		Text:           "She sells sea shells by the sea shore.",
		TargetSpeed:    "slow",
		TargetPhonemes: []string{"s", "ʃ"},
		Tip:            "Alternate cleanly between s and sh",
		Difficulty:     models.DifficultyBeginner,
		CEFRLevel:      "A2",
	},
	{
		Text:           "Red lorry, yellow lorry.",
		TargetSpeed:    "medium",
		TargetPhonemes: []string{"r", "l"},
		Tip:            "Keep the tongue tip forward for l, back for r",
		Difficulty:     models.DifficultyBeginner,
		CEFRLevel:      "A2",
	},
	{
		Text:           "Peter Piper picked a peck of pickled peppers.",
		TargetSpeed:    "medium",
		TargetPhonemes: []string{"p", "k"},
		Tip:            "Aspirate each p with a small puff of air",
		Difficulty:     models.DifficultyIntermediate,
		CEFRLevel:      "B1",
	},
	{
		Text:           "The thirty-three thieves thought that they thrilled the throne throughout Thursday.",
		TargetSpeed:    "medium",
		TargetPhonemes: []string{"θ", "ð"},
		Tip:            "Do not swap th for t or d",
		Difficulty:     models.DifficultyIntermediate,
		CEFRLevel:      "B2",
	},
	{
		Text:           "The sixth sick sheikh's sixth sheep's sick.",
		TargetSpeed:    "fast",
		TargetPhonemes: []string{"s", "ʃ", "θ"},
		Tip:            "Slow down before speeding up; precision first",
		Difficulty:     models.DifficultyAdvanced,
		CEFRLevel:      "C1",
	},
	{
		Text:           "Imagine an imaginary menagerie manager managing an imaginary menagerie.",
		TargetSpeed:    "fast",
		TargetPhonemes: []string{"ʒ", "dʒ", "m"},
		Tip:            "Keep the soft g sounds voiced throughout",
		Difficulty:     models.DifficultyAdvanced,
		CEFRLevel:      "C2",
	},
}
