package learning

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/brightpost/draftforge/internal/store"
)

// maxFeedbackItems caps how much history one derivation analyzes.
const maxFeedbackItems = 100

// Signals are the actionable preferences derived from a user's feedback
// history. They feed prompt enhancement and style selection.
type Signals struct {
	PreferredTerms     []string   `json:"preferred_terms"`
	AvoidedTerms       []string   `json:"avoided_terms"`
	PreferredTone      string     `json:"preferred_tone,omitempty"`
	PreferredPostTypes []string   `json:"preferred_post_types"`
	Confidence         float64    `json:"confidence"`
	TotalFeedback      int        `json:"total_feedback"`
	UpvoteRate         int        `json:"upvote_rate"`
	LastCalculated     time.Time  `json:"last_calculated"`
	FeedbackSince      *time.Time `json:"feedback_since,omitempty"`
}

// FeedbackSource defines the storage operations the Engine needs.
// Implemented by store.Store.
type FeedbackSource interface {
	RecentFeedbackByUser(userID string, limit int) ([]store.Feedback, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Engine derives learning signals from stored feedback.
type Engine struct {
	feedback FeedbackSource
	clock    Clock
}

func NewEngine(feedback FeedbackSource) *Engine {
	return &Engine{feedback: feedback, clock: realClock{}}
}

func NewEngineWithClock(feedback FeedbackSource, clock Clock) *Engine {
	return &Engine{feedback: feedback, clock: clock}
}

// DeriveSignals analyzes the user's recent feedback and produces signals.
// A user with no feedback gets zero-value signals, never an error.
func (e *Engine) DeriveSignals(userID string) (Signals, error) {
	all, err := e.feedback.RecentFeedbackByUser(userID, maxFeedbackItems)
	if err != nil {
		return Signals{}, fmt.Errorf("loading feedback for %s: %w", userID, err)
	}

	if len(all) == 0 {
		return Signals{
			PreferredTerms:     []string{},
			AvoidedTerms:       []string{},
			PreferredPostTypes: []string{},
			LastCalculated:     e.clock.Now(),
		}, nil
	}

	var upvoted, downvoted []store.Feedback
	for _, f := range all {
		if f.Rating == store.RatingUp {
			upvoted = append(upvoted, f)
		} else {
			downvoted = append(downvoted, f)
		}
	}

	// Feedback arrives newest-first; the oldest item anchors FeedbackSince.
	oldest := all[len(all)-1].CreatedAt

	s := Signals{
		PreferredTerms:     ExtractTerms(upvoted, 2),
		AvoidedTerms:       ExtractTerms(downvoted, 2),
		PreferredTone:      preferredTone(all),
		PreferredPostTypes: preferredPostTypes(all),
		Confidence:         CalculateConfidence(len(all)),
		TotalFeedback:      len(all),
		UpvoteRate:         int(math.Round(float64(len(upvoted)) / float64(len(all)) * 100)),
		LastCalculated:     e.clock.Now(),
		FeedbackSince:      &oldest,
	}

	slog.Debug("derived learning signals",
		"user_id", userID,
		"confidence", s.Confidence,
		"preferred_terms", len(s.PreferredTerms),
		"avoided_terms", len(s.AvoidedTerms),
		"preferred_tone", s.PreferredTone,
	)

	return s, nil
}

// CalculateConfidence maps a feedback count to a 0..100 confidence level.
// Growth is piecewise linear: 5 items = 30, 10 = 50, 20 = 70, 50+ = 100.
func CalculateConfidence(feedbackCount int) float64 {
	n := float64(feedbackCount)
	switch {
	case feedbackCount == 0:
		return 0
	case feedbackCount >= 50:
		return 100
	case feedbackCount >= 20:
		return 70 + (n-20)/30*30
	case feedbackCount >= 10:
		return 50 + (n-10)/10*20
	case feedbackCount >= 5:
		return 30 + (n-5)/5*20
	default:
		return math.Round(n / 5 * 30)
	}
}

// ExtractTerms counts keywords and hashtags (with the # stripped) across
// feedback items and returns the terms seen at least minFrequency times,
// most frequent first, capped at 20.
func ExtractTerms(feedback []store.Feedback, minFrequency int) []string {
	counts := make(map[string]int)

	for _, f := range feedback {
		for _, kw := range f.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if normalized != "" {
				counts[normalized]++
			}
		}
		for _, tag := range f.Hashtags {
			normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(tag, "#")))
			if normalized != "" {
				counts[normalized]++
			}
		}
	}

	type termCount struct {
		term  string
		count int
	}
	var terms []termCount
	for term, count := range counts {
		if count >= minFrequency {
			terms = append(terms, termCount{term, count})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].count != terms[j].count {
			return terms[i].count > terms[j].count
		}
		return terms[i].term < terms[j].term
	})

	result := make([]string, 0, len(terms))
	for _, tc := range terms {
		result = append(result, tc.term)
	}
	if len(result) > 20 {
		result = result[:20]
	}
	return result
}

type rateStat struct {
	key         string
	successRate float64
	total       int
}

func successRates(feedback []store.Feedback, keyOf func(store.Feedback) string) []rateStat {
	type upDown struct{ up, down int }
	stats := make(map[string]*upDown)

	for _, f := range feedback {
		key := keyOf(f)
		if stats[key] == nil {
			stats[key] = &upDown{}
		}
		if f.Rating == store.RatingUp {
			stats[key].up++
		} else {
			stats[key].down++
		}
	}

	var rates []rateStat
	for key, s := range stats {
		total := s.up + s.down
		rate := 0.0
		if total > 0 {
			rate = float64(s.up) / float64(total) * 100
		}
		rates = append(rates, rateStat{key, rate, total})
	}
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].successRate != rates[j].successRate {
			return rates[i].successRate > rates[j].successRate
		}
		return rates[i].key < rates[j].key
	})
	return rates
}

// preferredTone returns the tone with the highest success rate, provided it
// has at least 3 samples and a success rate of at least 60%.
func preferredTone(feedback []store.Feedback) string {
	rates := successRates(feedback, func(f store.Feedback) string { return f.Tone })

	var valid []rateStat
	for _, r := range rates {
		if r.total >= 3 {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 || valid[0].successRate < 60 {
		return ""
	}
	return valid[0].key
}

// preferredPostTypes returns post types with at least 3 samples and a 60%+
// success rate, best first.
func preferredPostTypes(feedback []store.Feedback) []string {
	rates := successRates(feedback, func(f store.Feedback) string { return f.PostType })

	result := []string{}
	for _, r := range rates {
		if r.total >= 3 && r.successRate >= 60 {
			result = append(result, r.key)
		}
	}
	return result
}

// BuildPromptEnhancement renders signals into instruction text appended to
// the generation prompt. Confidence below 20 yields an empty string; higher
// confidence escalates the phrasing from suggestions to requirements.
func BuildPromptEnhancement(s Signals) string {
	if s.Confidence < 20 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n")

	switch {
	case s.Confidence >= 80:
		fmt.Fprintf(&b, "CRITICAL LEARNING SIGNALS (Confidence: %s%% - High Priority):\n", formatConfidence(s.Confidence))
	case s.Confidence >= 60:
		fmt.Fprintf(&b, "IMPORTANT LEARNING SIGNALS (Confidence: %s%%):\n", formatConfidence(s.Confidence))
	case s.Confidence >= 40:
		fmt.Fprintf(&b, "LEARNING SIGNALS (Confidence: %s%%):\n", formatConfidence(s.Confidence))
	default:
		fmt.Fprintf(&b, "Subtle Learning Signals (Confidence: %s%%):\n", formatConfidence(s.Confidence))
	}

	strong := s.Confidence >= 60

	if len(s.PreferredTerms) > 0 {
		verb := "Try to include"
		if strong {
			verb = "MUST include"
		}
		fmt.Fprintf(&b, "- %s these user-preferred terms: %s\n", verb, strings.Join(capList(s.PreferredTerms, 10), ", "))
	}
	if len(s.AvoidedTerms) > 0 {
		verb := "Try to avoid"
		if strong {
			verb = "MUST AVOID"
		}
		fmt.Fprintf(&b, "- %s these terms: %s\n", verb, strings.Join(capList(s.AvoidedTerms, 10), ", "))
	}
	if s.PreferredTone != "" {
		verb := "Prefer"
		if strong {
			verb = "MUST use"
		}
		fmt.Fprintf(&b, "- %s a %q tone (user's strong preference)\n", verb, s.PreferredTone)
	}
	if len(s.PreferredPostTypes) > 0 {
		verb := "Prefer"
		if strong {
			verb = "MUST follow"
		}
		fmt.Fprintf(&b, "- %s %q post structure (user's favorite type)\n", verb, s.PreferredPostTypes[0])
	}

	if strong {
		fmt.Fprintf(&b, "\nThis user has provided %d pieces of feedback. Prioritize their learned preferences heavily.\n", s.TotalFeedback)
	}

	return b.String()
}

func formatConfidence(c float64) string {
	if c == math.Trunc(c) {
		return fmt.Sprintf("%.0f", c)
	}
	return fmt.Sprintf("%.1f", c)
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
