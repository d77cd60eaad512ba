// Package diversity keeps generated drafts from converging on the same
// style, openers, and phrasing: seeded style/hook/structure rotation,
// a banned-phrase list, and trigram-based repetition checks against the
// user's recent post history.
package diversity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// HistorySource defines the post-history reads the Engine needs.
// Implemented by store.Store.
type HistorySource interface {
	RecentTextsByUser(userID string, limit int) ([]string, error)
	RecentTonesByUser(userID string, limit int) ([]string, error)
}

// Engine runs diversity selection and checks against stored history.
type Engine struct {
	history HistorySource
}

func NewEngine(history HistorySource) *Engine {
	return &Engine{history: history}
}

// Params are the per-generation diversity knobs.
type Params struct {
	Style       string  `json:"style"`
	Hook        string  `json:"hook"`
	Structure   string  `json:"structure"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Seed        int64   `json:"seed"`
}

func normalizeSeed(seed int64) int64 {
	if seed < 0 {
		return -seed
	}
	return seed
}

// SelectStyle picks a style deterministically from seed, skipping styles the
// user saw recently. When every style was used recently the rotation resets
// and indexes the full list.
func SelectStyle(seed int64, recentStyles []string) string {
	seed = normalizeSeed(seed)

	recent := make(map[string]bool, len(recentStyles))
	for _, s := range recentStyles {
		recent[s] = true
	}

	var available []string
	for _, s := range StyleVariations {
		if !recent[s] {
			available = append(available, s)
		}
	}

	if len(available) == 0 {
		return StyleVariations[seed%int64(len(StyleVariations))]
	}
	return available[seed%int64(len(available))]
}

// SelectHook picks an opening-line template deterministically from seed.
func SelectHook(seed int64) string {
	return HookTemplates[normalizeSeed(seed)%int64(len(HookTemplates))]
}

// SelectStructure picks a post skeleton deterministically from seed.
func SelectStructure(seed int64) string {
	return PostStructures[normalizeSeed(seed)%int64(len(PostStructures))]
}

// ContainsBannedPhrases returns the banned phrases found in text,
// case-insensitively, in ban-list order.
func ContainsBannedPhrases(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, phrase := range PhraseBanList {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

// extractTrigrams lowercases text, strips punctuation, and collects every
// 3-word sequence.
func extractTrigrams(text string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	words := strings.Fields(cleaned)
	trigrams := make(map[string]struct{})
	for i := 0; i+2 < len(words); i++ {
		trigrams[words[i]+" "+words[i+1]+" "+words[i+2]] = struct{}{}
	}
	return trigrams
}

// TrigramOverlap returns the percentage of shared trigrams between two
// texts, relative to the smaller trigram set. Either text having no trigrams
// yields 0.
func TrigramOverlap(a, b string) float64 {
	ta := extractTrigrams(a)
	tb := extractTrigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	overlap := 0
	for tri := range ta {
		if _, ok := tb[tri]; ok {
			overlap++
		}
	}

	minSize := len(ta)
	if len(tb) < minSize {
		minSize = len(tb)
	}
	return float64(overlap) / float64(minSize) * 100
}

// RepetitionReport summarizes how similar a candidate text is to the user's
// recent posts.
type RepetitionReport struct {
	IsRepetitive   bool    `json:"is_repetitive"`
	MaxOverlap     float64 `json:"max_overlap"`
	AverageOverlap float64 `json:"average_overlap"`
	RecentPosts    int     `json:"recent_posts"`
}

// CheckRepetition compares newText against up to maxPosts recent posts.
// Repetitive means max overlap above 30% or average above 15%.
func (e *Engine) CheckRepetition(userID, newText string, maxPosts int) (RepetitionReport, error) {
	texts, err := e.history.RecentTextsByUser(userID, maxPosts)
	if err != nil {
		return RepetitionReport{}, fmt.Errorf("loading recent posts for %s: %w", userID, err)
	}
	if len(texts) == 0 {
		return RepetitionReport{}, nil
	}

	var max, sum float64
	for _, text := range texts {
		overlap := TrigramOverlap(newText, text)
		if overlap > max {
			max = overlap
		}
		sum += overlap
	}
	avg := sum / float64(len(texts))

	return RepetitionReport{
		IsRepetitive:   max > 30 || avg > 15,
		MaxOverlap:     max,
		AverageOverlap: avg,
		RecentPosts:    len(texts),
	}, nil
}

// Params assembles the per-generation diversity knobs for a user and seed:
// style rotation away from the 5 most recent tones, seeded hook and
// structure, and seeded temperature (0.70-0.90) and top_p (0.90-0.96)
// jitter.
func (e *Engine) Params(userID string, seed int64) (Params, error) {
	recentStyles, err := e.history.RecentTonesByUser(userID, 5)
	if err != nil {
		return Params{}, fmt.Errorf("loading recent tones for %s: %w", userID, err)
	}

	seed = normalizeSeed(seed)
	return Params{
		Style:       SelectStyle(seed, recentStyles),
		Hook:        SelectHook(seed),
		Structure:   SelectStructure(seed + 1),
		Temperature: 0.7 + float64(seed%5)*0.05,
		TopP:        0.90 + float64(seed%3)*0.03,
		Seed:        seed,
	}, nil
}

// VariantSeeds derives the three seeds used by variant generation from a
// timestamp.
func VariantSeeds(now time.Time) []int64 {
	ms := now.UnixMilli()
	return []int64{ms % 1000, (ms + 333) % 1000, (ms + 666) % 1000}
}

// Variant is one scored generation candidate. Lower scores are better.
type Variant struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Params Params  `json:"params"`
}

// GenerateFunc produces one candidate text for an enhanced prompt with the
// given sampling parameters.
type GenerateFunc func(ctx context.Context, prompt string, temperature, topP float64) (string, error)

// GenerateVariants produces one candidate per seed concurrently, scores each
// by banned-phrase count and overlap with recent posts, and returns them
// best-first. Score = banned*10 + maxOverlap*2 + avgOverlap.
func (e *Engine) GenerateVariants(ctx context.Context, basePrompt, userID string, seeds []int64, generate GenerateFunc) ([]Variant, error) {
	variants := make([]Variant, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	for i, seed := range seeds {
		g.Go(func() error {
			params, err := e.Params(userID, seed)
			if err != nil {
				return err
			}

			prompt := fmt.Sprintf(
				"%s\n\nDIVERSITY INSTRUCTIONS:\n- Use a %s tone\n- Consider this structure: %s\n- Avoid these banned phrases: %s",
				basePrompt, params.Style, params.Structure, strings.Join(PhraseBanList[:10], ", "),
			)

			text, err := generate(ctx, prompt, params.Temperature, params.TopP)
			if err != nil {
				return fmt.Errorf("generating variant (seed %d): %w", seed, err)
			}

			banned := ContainsBannedPhrases(text)
			rep, err := e.CheckRepetition(userID, text, 20)
			if err != nil {
				return err
			}

			variants[i] = Variant{
				Text:   text,
				Score:  float64(len(banned))*10 + rep.MaxOverlap*2 + rep.AverageOverlap,
				Params: params,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Score < variants[j].Score
	})
	return variants, nil
}

// CheckReport is the outcome of post-generation diversity checks. Failures
// are advisory: the draft still ships, with issues surfaced to the caller.
type CheckReport struct {
	Passed      bool     `json:"passed"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// ApplyChecks runs the banned-phrase and repetition checks on a final text.
func (e *Engine) ApplyChecks(userID, text string) (CheckReport, error) {
	report := CheckReport{Passed: true}

	if found := ContainsBannedPhrases(text); len(found) > 0 {
		report.Passed = false
		report.Issues = append(report.Issues, fmt.Sprintf("Contains overused phrases: %s", strings.Join(found, ", ")))
		report.Suggestions = append(report.Suggestions, "Rephrase to avoid clichés and buzzwords")
	}

	rep, err := e.CheckRepetition(userID, text, 20)
	if err != nil {
		return CheckReport{}, err
	}
	if rep.IsRepetitive {
		report.Passed = false
		report.Issues = append(report.Issues, fmt.Sprintf("High similarity to recent posts (%.1f%% overlap)", rep.MaxOverlap))
		report.Suggestions = append(report.Suggestions, "Try a different structure or angle")
	}

	return report, nil
}
