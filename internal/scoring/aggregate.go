package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"accentclash/internal/models"
)

// ErrScoreOutOfRange is returned when attempt data carries a score outside
// [0,100]. Ingestion validates the same invariant, so hitting this during
// aggregation means an upstream assessment bug rather than bad user input.
var ErrScoreOutOfRange = errors.New("score out of range")

// Config controls weak-word and weak-phoneme detection
type Config struct {
	WeakThreshold  float64 // mean score below this qualifies as weak
	WeakWordCap    int     // max entries in the weak-word list
	WeakPhonemeCap int     // max entries in the weak-phoneme list
	ExampleWordCap int     // max example words per weak phoneme
}

// DefaultConfig returns the thresholds and caps used in production
func DefaultConfig() Config {
	return Config{
		WeakThreshold:  70,
		WeakWordCap:    10,
		WeakPhonemeCap: 10,
		ExampleWordCap: 5,
	}
}

// Aggregator folds a session's attempts into a summary. It is pure: the
// same attempt set always produces the same summary.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an aggregator with the given config. Zero or
// negative caps fall back to the defaults.
func NewAggregator(cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.WeakThreshold <= 0 {
		cfg.WeakThreshold = def.WeakThreshold
	}
	if cfg.WeakWordCap <= 0 {
		cfg.WeakWordCap = def.WeakWordCap
	}
	if cfg.WeakPhonemeCap <= 0 {
		cfg.WeakPhonemeCap = def.WeakPhonemeCap
	}
	if cfg.ExampleWordCap <= 0 {
		cfg.ExampleWordCap = def.ExampleWordCap
	}
	return &Aggregator{cfg: cfg}
}

// Summarize folds the attempts of one session into a fully populated
// summary. The attempt slice must be non-empty; the caller is expected to
// reject empty sessions before aggregating.
func (a *Aggregator) Summarize(attempts []models.Attempt) (*models.SessionSummary, error) {
	if len(attempts) == 0 {
		return nil, errors.New("no attempts to summarize")
	}

	if err := validateAttempts(attempts); err != nil {
		return nil, err
	}

	summary := &models.SessionSummary{
		TotalAttempts: len(attempts),
	}

	// Per-item best score and attempt count
	summary.ItemScores = itemScores(attempts)

	// Axis averages over present values only; session best/worst and
	// average over per-attempt overall scores
	var accuracy, fluency, completeness, prosody axisMean
	overallSum := 0.0
	for i, att := range attempts {
		accuracy.add(att.Scores.Accuracy)
		fluency.add(att.Scores.Fluency)
		completeness.add(att.Scores.Completeness)
		prosody.add(att.Scores.Prosody)

		overall := att.Overall()
		overallSum += overall
		if i == 0 || overall > summary.BestScore {
			summary.BestScore = overall
		}
		if i == 0 || overall < summary.WorstScore {
			summary.WorstScore = overall
		}
	}
	summary.AverageAccuracy = accuracy.mean()
	summary.AverageFluency = fluency.mean()
	summary.AverageCompleteness = completeness.mean()
	summary.AverageProsody = prosody.mean()
	summary.AverageScore = overallSum / float64(len(attempts))

	summary.WeakWords = a.WeakWords(attempts)
	summary.WeakPhonemes = a.WeakPhonemes(attempts)

	return summary, nil
}

// axisMean accumulates one axis, skipping attempts that did not report it
type axisMean struct {
	sum float64
	n   int
}

func (m *axisMean) add(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

// mean returns 0 when no values were present, so an unreported axis never
// divides by zero
func (m *axisMean) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func itemScores(attempts []models.Attempt) []models.ItemScore {
	byItem := make(map[int]*models.ItemScore)
	for _, att := range attempts {
		overall := att.Overall()
		is, ok := byItem[att.ItemIndex]
		if !ok {
			byItem[att.ItemIndex] = &models.ItemScore{
				ItemIndex: att.ItemIndex,
				BestScore: overall,
				Attempts:  1,
			}
			continue
		}
		is.Attempts++
		if overall > is.BestScore {
			is.BestScore = overall
		}
	}

	scores := make([]models.ItemScore, 0, len(byItem))
	for _, is := range byItem {
		scores = append(scores, *is)
	}
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].ItemIndex < scores[j].ItemIndex
	})
	return scores
}

// wordStat tracks one word (case-insensitive) across all attempts
type wordStat struct {
	display string // casing as first seen
	sum     float64
	count   int
}

// WeakWords groups word results case-insensitively, keeps words whose mean
// accuracy is below the threshold, and returns up to the cap ranked
// ascending by mean accuracy. Ties keep first-seen order.
func (a *Aggregator) WeakWords(attempts []models.Attempt) []string {
	stats := make(map[string]*wordStat)
	var order []string

	for _, att := range attempts {
		for _, wr := range att.WordResults {
			key := strings.ToLower(wr.Word)
			st, ok := stats[key]
			if !ok {
				st = &wordStat{display: wr.Word}
				stats[key] = st
				order = append(order, key)
			}
			st.sum += wr.Accuracy
			st.count++
		}
	}

	var weak []string
	for _, key := range order {
		st := stats[key]
		if st.sum/float64(st.count) < a.cfg.WeakThreshold {
			weak = append(weak, key)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		si, sj := stats[weak[i]], stats[weak[j]]
		return si.sum/float64(si.count) < sj.sum/float64(sj.count)
	})
	if len(weak) > a.cfg.WeakWordCap {
		weak = weak[:a.cfg.WeakWordCap]
	}

	words := make([]string, len(weak))
	for i, key := range weak {
		words[i] = stats[key].display
	}
	return words
}

// phonemeStat tracks one phoneme symbol across all word results
type phonemeStat struct {
	sum      float64
	count    int
	examples []string
	seen     map[string]bool
}

// WeakPhonemes flattens all phoneme results, keeps symbols whose mean
// score is below the threshold, and returns up to the cap ranked ascending
// by mean score. Example words are distinct, first-seen, capped.
func (a *Aggregator) WeakPhonemes(attempts []models.Attempt) []models.WeakPhoneme {
	stats := make(map[string]*phonemeStat)
	var order []string

	for _, att := range attempts {
		for _, wr := range att.WordResults {
			for _, pr := range wr.Phonemes {
				st, ok := stats[pr.Phoneme]
				if !ok {
					st = &phonemeStat{seen: make(map[string]bool)}
					stats[pr.Phoneme] = st
					order = append(order, pr.Phoneme)
				}
				st.sum += pr.Score
				st.count++
				wordKey := strings.ToLower(wr.Word)
				if !st.seen[wordKey] && len(st.examples) < a.cfg.ExampleWordCap {
					st.seen[wordKey] = true
					st.examples = append(st.examples, wr.Word)
				}
			}
		}
	}

	var weak []string
	for _, symbol := range order {
		st := stats[symbol]
		if st.sum/float64(st.count) < a.cfg.WeakThreshold {
			weak = append(weak, symbol)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		si, sj := stats[weak[i]], stats[weak[j]]
		return si.sum/float64(si.count) < sj.sum/float64(sj.count)
	})
	if len(weak) > a.cfg.WeakPhonemeCap {
		weak = weak[:a.cfg.WeakPhonemeCap]
	}

	phonemes := make([]models.WeakPhoneme, len(weak))
	for i, symbol := range weak {
		st := stats[symbol]
		phonemes[i] = models.WeakPhoneme{
			Phoneme:      symbol,
			Score:        st.sum / float64(st.count),
			Occurrences:  st.count,
			ExampleWords: st.examples,
		}
	}
	return phonemes
}

// validateAttempts re-checks the score-range invariant that ingestion
// enforces. A violation here is surfaced rather than clamped so upstream
// assessment bugs are not masked.
func validateAttempts(attempts []models.Attempt) error {
	for _, att := range attempts {
		axes := map[string]*float64{
			"accuracy":     att.Scores.Accuracy,
			"fluency":      att.Scores.Fluency,
			"completeness": att.Scores.Completeness,
			"prosody":      att.Scores.Prosody,
			"overall":      att.OverallScore,
		}
		for name, v := range axes {
			if v != nil && (*v < 0 || *v > 100) {
				return fmt.Errorf("%w: attempt %d %s score %.2f", ErrScoreOutOfRange, att.ID, name, *v)
			}
		}
		for _, wr := range att.WordResults {
			if wr.Accuracy < 0 || wr.Accuracy > 100 {
				return fmt.Errorf("%w: attempt %d word %q accuracy %.2f", ErrScoreOutOfRange, att.ID, wr.Word, wr.Accuracy)
			}
			for _, pr := range wr.Phonemes {
				if pr.Score < 0 || pr.Score > 100 {
					return fmt.Errorf("%w: attempt %d phoneme %q score %.2f", ErrScoreOutOfRange, att.ID, pr.Phoneme, pr.Score)
				}
			}
		}
	}
	return nil
}
