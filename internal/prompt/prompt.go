// Package prompt builds the vendor-agnostic prompts for each post type.
// Selection of focus products, selling points, and keywords is seeded so a
// generation is reproducible from its seed.
package prompt

import (
	"math/rand"
	"regexp"
	"strings"
)

// GenInputs carries the business context a prompt is built from.
type GenInputs struct {
	BusinessName     string
	Sector           string
	Audience         string
	Country          string
	BrandTone        string
	Notes            string
	Keywords         []string
	USP              string
	ProductsServices string
	Website          string
	OriginalPost     string

	// Background is extracted text from the business's uploaded documents,
	// already capped by the caller.
	Background string
}

// RandomSource is the fact or observance a random post is anchored on.
type RandomSource struct {
	Title string
	Blurb string
	Tags  []string
}

var itemSplitter = regexp.MustCompile(`[.,\n]|\band\b`)

// parseProductsServices splits free-form product text into individual items.
// Fragments of 10 characters or fewer and "we ..." lead-ins are dropped; if
// nothing survives the whole text is kept as one item.
func parseProductsServices(text string) []string {
	if text == "" {
		return nil
	}
	var items []string
	for _, part := range itemSplitter.Split(text, -1) {
		item := strings.TrimSpace(part)
		if len(item) <= 10 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(item), "we ") {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return []string{text}
	}
	return items
}

// parseUSPs splits free-form USP text into individual selling points.
func parseUSPs(text string) []string {
	if text == "" {
		return nil
	}
	var points []string
	for _, part := range itemSplitter.Split(text, -1) {
		point := strings.TrimSpace(part)
		if len(point) <= 10 {
			continue
		}
		points = append(points, point)
	}
	if len(points) == 0 {
		return []string{text}
	}
	return points
}

// seededSelect picks count items pseudo-randomly but deterministically for a
// given seed. Asking for at least len(items) returns them in original order.
func seededSelect(items []string, count int, seed int64) []string {
	if len(items) == 0 {
		return nil
	}
	if count >= len(items) {
		return items
	}
	shuffled := make([]string, len(items))
	copy(shuffled, items)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

var countryGuidance = map[string]string{
	"United Kingdom": "Use UK English spelling (colour, favourite, organisation). Reference £ currency. Mention UK holidays/observances when relevant. Use British cultural references.",
	"United States":  "Use US English spelling (color, favorite, organization). Reference $ currency. Mention US holidays/observances when relevant. Use American cultural references.",
	"Canada":         "Use Canadian English (mix of UK/US spelling). Reference $ (CAD) currency. Mention Canadian holidays/observances when relevant.",
	"Australia":      "Use Australian English (UK-based spelling). Reference $ (AUD) currency. Mention Australian holidays/observances when relevant.",
	"Ireland":        "Use Irish English (UK-based spelling). Reference € currency. Mention Irish holidays/observances when relevant.",
	"New Zealand":    "Use New Zealand English (UK-based spelling). Reference $ (NZD) currency. Mention NZ holidays/observances when relevant.",
	"India":          "Use Indian English. Reference ₹ currency. Mention Indian holidays/observances when relevant. Consider diverse business landscape.",
	"South Africa":   "Use South African English. Reference R currency. Mention South African holidays/observances when relevant.",
}

// CountryGuidance returns localization instructions for a country. Unknown
// countries get a generic localization instruction; an empty country gets
// neutral international English.
func CountryGuidance(country string) string {
	if country == "" {
		return "Use neutral international English. Avoid region-specific references unless globally relevant."
	}
	if g, ok := countryGuidance[country]; ok {
		return g
	}
	return "Generate content suitable for " + country + ". Use appropriate local spelling, currency, and cultural references."
}

func toneOrDefault(tone string) string {
	if tone == "" {
		return "professional"
	}
	return tone
}
