package genconfig

import (
	"fmt"
	"strings"
)

// Post types accepted by the generation engine. Legacy names from older
// clients are normalized to the canonical set.
const (
	PostTypeSelling    = "selling"
	PostTypeInfoAdvice = "information_advice"
	PostTypeRandom     = "random"
	PostTypeNews       = "news"
)

// NormalizePostType maps legacy post type names to canonical ones. Unknown
// values pass through unchanged so callers can reject them with context.
func NormalizePostType(postType string) string {
	switch strings.ToLower(strings.TrimSpace(postType)) {
	case "informational", "advice", "information_advice":
		return PostTypeInfoAdvice
	case "selling":
		return PostTypeSelling
	case "random":
		return PostTypeRandom
	case "news":
		return PostTypeNews
	default:
		return postType
	}
}

// GlobalConfig is the admin-tunable generation configuration. It is stored
// as a single JSON document in the app_config table and editable at runtime.
type GlobalConfig struct {
	TextModel   string  `json:"text_model"`
	Temperature float64 `json:"temperature"`

	HashtagCountDefault int      `json:"hashtag_count_default"`
	AllowedPostTypes    []string `json:"allowed_post_types"`
	PostingTimeHint     bool     `json:"posting_time_hint"`

	IncludeHeadlineOptions bool `json:"include_headline_options"`
	IncludeVisualPrompt    bool `json:"include_visual_prompt"`
	IncludeHashtags        bool `json:"include_hashtags"`

	WeightPreferredTerms float64 `json:"weight_preferred_terms"`
	WeightDownvotedTones float64 `json:"weight_downvoted_tones"`

	EnableNewsMode        bool `json:"enable_news_mode"`
	NewsFallbackToInsight bool `json:"news_fallback_to_insight"`

	MasterPromptTemplate string `json:"master_prompt_template"`

	Rotation   RotationConfig   `json:"rotation"`
	Randomness RandomnessConfig `json:"randomness"`
}

// RotationConfig controls the daily topic bucket rotation.
type RotationConfig struct {
	Enabled            bool     `json:"enabled"`
	Mode               string   `json:"mode"`
	Buckets            []string `json:"buckets"`
	Timezone           string   `json:"timezone"`
	DiversityWindowDays int     `json:"diversity_window_days"`
}

// RandomnessConfig controls temperature jitter between generations.
type RandomnessConfig struct {
	Enabled        bool    `json:"enabled"`
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureMax float64 `json:"temperature_max"`
}

const defaultMasterPrompt = `Task: Create a LinkedIn post in the style of Chris Donnelly — direct, tactical, problem-led, story-first.

Steps:
1. Provide 3 headline/title options (hooks).
2. Write the full LinkedIn post draft with double spacing between sentences, ending in a reflection or question.
3. Add hashtags at the foot of the post (6–8, mixing broad SME finance reach and niche targeting).
4. Suggest 1 strong image concept that pairs with the post.
5. Suggest the best time to post that day (UK time).

Content rotation: Alternate between:
- A serious SME finance post (cashflow, staff, late payments, interest rates, growth, resilience).
- A funny/quirky finance industry story (weird leases, unusual loans, absurd expenses, strange finance deals).

Output format:
- Headline options
- LinkedIn post draft
- Hashtags
- Visual concept
- Best time to post today`

// Defaults returns the built-in generation configuration, used when no admin
// override is stored or the stored document cannot be loaded.
func Defaults() GlobalConfig {
	return GlobalConfig{
		TextModel:   "gpt-4.1-mini",
		Temperature: 0.7,

		HashtagCountDefault: 8,
		AllowedPostTypes:    []string{PostTypeSelling, PostTypeInfoAdvice, PostTypeRandom, PostTypeNews},
		PostingTimeHint:     true,

		IncludeHeadlineOptions: true,
		IncludeVisualPrompt:    true,
		IncludeHashtags:        true,

		WeightPreferredTerms: 0.6,
		WeightDownvotedTones: 0.5,

		EnableNewsMode:        true,
		NewsFallbackToInsight: true,

		MasterPromptTemplate: defaultMasterPrompt,

		Rotation: RotationConfig{
			Enabled:            true,
			Mode:               "daily",
			Buckets:            []string{"serious_sme_finance", "funny_finance_story"},
			Timezone:           "Europe/London",
			DiversityWindowDays: 7,
		},
		Randomness: RandomnessConfig{
			Enabled:        true,
			TemperatureMin: 0.6,
			TemperatureMax: 0.9,
		},
	}
}

// Validate checks the config against the admin API constraints.
func (c GlobalConfig) Validate() error {
	if strings.TrimSpace(c.TextModel) == "" {
		return fmt.Errorf("text_model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.HashtagCountDefault < 3 || c.HashtagCountDefault > 12 {
		return fmt.Errorf("hashtag_count_default %d out of range [3, 12]", c.HashtagCountDefault)
	}
	if len(c.AllowedPostTypes) == 0 {
		return fmt.Errorf("allowed_post_types must not be empty")
	}
	for _, pt := range c.AllowedPostTypes {
		switch NormalizePostType(pt) {
		case PostTypeSelling, PostTypeInfoAdvice, PostTypeRandom, PostTypeNews:
		default:
			return fmt.Errorf("unknown post type %q in allowed_post_types", pt)
		}
	}
	if c.WeightPreferredTerms < 0 || c.WeightPreferredTerms > 1 {
		return fmt.Errorf("weight_preferred_terms %v out of range [0, 1]", c.WeightPreferredTerms)
	}
	if c.WeightDownvotedTones < 0 || c.WeightDownvotedTones > 1 {
		return fmt.Errorf("weight_downvoted_tones %v out of range [0, 1]", c.WeightDownvotedTones)
	}
	if len(c.MasterPromptTemplate) < 10 {
		return fmt.Errorf("master_prompt_template too short")
	}
	if c.Rotation.Mode != "daily" {
		return fmt.Errorf("rotation.mode must be %q", "daily")
	}
	if len(c.Rotation.Buckets) < 1 {
		return fmt.Errorf("rotation.buckets must not be empty")
	}
	if c.Rotation.DiversityWindowDays < 1 || c.Rotation.DiversityWindowDays > 30 {
		return fmt.Errorf("rotation.diversity_window_days %d out of range [1, 30]", c.Rotation.DiversityWindowDays)
	}
	if c.Randomness.TemperatureMin < 0 || c.Randomness.TemperatureMin > 2 ||
		c.Randomness.TemperatureMax < 0 || c.Randomness.TemperatureMax > 2 {
		return fmt.Errorf("randomness temperatures out of range [0, 2]")
	}
	if c.Randomness.TemperatureMin > c.Randomness.TemperatureMax {
		return fmt.Errorf("randomness.temperature_min must be <= temperature_max")
	}
	return nil
}

// PostTypeAllowed reports whether the (normalized) post type is enabled.
func (c GlobalConfig) PostTypeAllowed(postType string) bool {
	normalized := NormalizePostType(postType)
	for _, pt := range c.AllowedPostTypes {
		if NormalizePostType(pt) == normalized {
			return true
		}
	}
	return false
}
