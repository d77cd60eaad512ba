package sources

import (
	"fmt"
	"sort"
	"strings"
)

// NewsSnippet is a curated, evergreen news item used when live feeds return
// nothing relevant.
type NewsSnippet struct {
	Headline     string   `json:"headline"`
	Summary      string   `json:"summary"`
	WhyItMatters string   `json:"why_it_matters"`
	RegionTag    string   `json:"region_tag"`
	SectorTags   []string `json:"sector_tags"`
	Recent       bool     `json:"recent"`
}

// CuratedResult is the outcome of a curated news lookup.
type CuratedResult struct {
	Snippets       []NewsSnippet
	HasRelevant    bool
	FallbackReason string
}

const (
	curatedLimit    = 6
	curatedMinScore = 5
)

var regionByCountry = map[string]string{
	"United Kingdom": "UK",
	"United States":  "US",
	"Canada":         "CA",
	"Australia":      "AU",
}

var newsSnippets = []NewsSnippet{
	{
		Headline:     "UK SMEs Embrace AI Tools at Record Pace",
		Summary:      "Small and medium enterprises across the UK are adopting AI productivity tools faster than expected, with 40% now using some form of AI assistance.",
		WhyItMatters: "Early adopters are seeing 20-30% productivity gains, creating competitive pressure for others to follow suit.",
		RegionTag:    "UK",
		SectorTags:   []string{"technology", "SME", "AI", "productivity"},
	},
	{
		Headline:     "Remote Work Becomes Permanent for UK Tech Sector",
		Summary:      "Major UK tech firms are making remote work permanent, with hybrid models becoming the new standard.",
		WhyItMatters: "This shift is changing talent acquisition strategies and office space requirements across the sector.",
		RegionTag:    "UK",
		SectorTags:   []string{"technology", "remote work", "HR"},
	},
	{
		Headline:     "UK Cybersecurity Spending Hits All-Time High",
		Summary:      "British businesses are investing record amounts in cybersecurity following a surge in ransomware attacks.",
		WhyItMatters: "SMEs are particularly vulnerable, with 60% lacking basic security protocols.",
		RegionTag:    "UK",
		SectorTags:   []string{"cybersecurity", "technology", "SME"},
	},
	{
		Headline:     "US Small Businesses Face Talent Shortage",
		Summary:      "American SMEs report difficulty finding skilled workers, with 70% citing hiring as their top challenge.",
		WhyItMatters: "Companies are turning to automation and AI to fill gaps, accelerating digital transformation.",
		RegionTag:    "US",
		SectorTags:   []string{"HR", "SME", "technology"},
	},
	{
		Headline:     "E-commerce Sales Surge for US Small Retailers",
		Summary:      "Small retailers in the US are seeing online sales grow 45% year-over-year as consumer habits shift.",
		WhyItMatters: "Brick-and-mortar businesses must adapt or risk losing market share to digital-first competitors.",
		RegionTag:    "US",
		SectorTags:   []string{"e-commerce", "retail", "SME"},
	},
	{
		Headline:     "US Businesses Prioritize Customer Experience Over Price",
		Summary:      "A new study shows 80% of US consumers will pay more for better customer service.",
		WhyItMatters: "This shift is forcing businesses to invest in CX technology and training.",
		RegionTag:    "US",
		SectorTags:   []string{"customer service", "CX", "business"},
	},
	{
		Headline:     "Global Supply Chain Disruptions Continue",
		Summary:      "Businesses worldwide are still facing supply chain challenges, forcing them to diversify suppliers.",
		WhyItMatters: "Companies that build resilient supply chains now will have a competitive advantage.",
		RegionTag:    "world",
		SectorTags:   []string{"supply chain", "logistics", "business"},
	},
	{
		Headline:     "Sustainability Becomes Business Priority Worldwide",
		Summary:      "Companies globally are investing in sustainable practices as consumers demand environmental responsibility.",
		WhyItMatters: "Businesses that ignore sustainability risk losing customers and investors.",
		RegionTag:    "world",
		SectorTags:   []string{"sustainability", "business", "ESG"},
	},
	{
		Headline:     "Social Media Marketing ROI Questioned by Businesses",
		Summary:      "Companies are reassessing their social media strategies as organic reach declines and ad costs rise.",
		WhyItMatters: "Businesses need to focus on quality content and community building over vanity metrics.",
		RegionTag:    "world",
		SectorTags:   []string{"marketing", "social media", "business"},
	},
	{
		Headline:     "Four-Day Work Week Trials Show Promising Results",
		Summary:      "Global trials of the four-day work week report maintained productivity with improved employee wellbeing.",
		WhyItMatters: "Forward-thinking companies are exploring flexible work arrangements to attract and retain talent.",
		RegionTag:    "world",
		SectorTags:   []string{"HR", "workplace", "productivity"},
	},
	{
		Headline:     "Video Content Dominates Business Marketing",
		Summary:      "Short-form video is now the most effective content format, with 85% of businesses using it.",
		WhyItMatters: "Companies without a video strategy are missing opportunities to engage their audience.",
		RegionTag:    "world",
		SectorTags:   []string{"marketing", "content", "video"},
	},
	{
		Headline:     "Data Privacy Regulations Tighten Globally",
		Summary:      "New data protection laws are being introduced worldwide, following GDPR's lead.",
		WhyItMatters: "Businesses must ensure compliance or face significant fines and reputational damage.",
		RegionTag:    "world",
		SectorTags:   []string{"data privacy", "compliance", "business"},
	},
}

// KeywordsFor derives matching keywords from a sector description and an
// optional country.
func KeywordsFor(sector, country string) []string {
	sectorLower := strings.ToLower(sector)
	var keywords []string

	if strings.Contains(sectorLower, "tech") || strings.Contains(sectorLower, "it") || strings.Contains(sectorLower, "software") {
		keywords = append(keywords, "technology", "AI", "cybersecurity", "software")
	}
	if strings.Contains(sectorLower, "retail") || strings.Contains(sectorLower, "shop") || strings.Contains(sectorLower, "store") {
		keywords = append(keywords, "retail", "e-commerce", "customer service")
	}
	if strings.Contains(sectorLower, "market") || strings.Contains(sectorLower, "advertis") {
		keywords = append(keywords, "marketing", "social media", "content", "video")
	}
	if strings.Contains(sectorLower, "hr") || strings.Contains(sectorLower, "recruit") || strings.Contains(sectorLower, "talent") {
		keywords = append(keywords, "HR", "workplace", "remote work", "talent")
	}
	if strings.Contains(sectorLower, "finance") || strings.Contains(sectorLower, "account") {
		keywords = append(keywords, "finance", "business", "compliance")
	}

	keywords = append(keywords, "business", "SME", "productivity")

	if country != "" {
		keywords = append(keywords, country)
	}
	return keywords
}

func scoreSnippet(s NewsSnippet, keywords []string, country string) int {
	// Snippets tagged for a specific region are only eligible for users in
	// that region. Everyone else draws from the world pool.
	region := regionByCountry[country]
	if s.RegionTag != "world" && s.RegionTag != region {
		return 0
	}

	score := 0
	if s.RegionTag == region {
		score += 10
	} else {
		score += 5
	}

	lowered := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		lowered[strings.ToLower(k)] = true
	}
	for _, tag := range s.SectorTags {
		if lowered[strings.ToLower(tag)] {
			score += 3
		}
	}

	if s.Recent {
		score += 2
	}
	return score
}

// CuratedNews scores the curated pool against a sector and country and
// returns the most relevant snippets. When nothing clears the minimum score
// the result explains why so the caller can fall back to creative mode.
func CuratedNews(sector, country string) CuratedResult {
	keywords := KeywordsFor(sector, country)

	type scored struct {
		snippet NewsSnippet
		score   int
	}
	all := make([]scored, 0, len(newsSnippets))
	for _, s := range newsSnippets {
		all = append(all, scored{snippet: s, score: scoreSnippet(s, keywords, country)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	var relevant []NewsSnippet
	for _, s := range all {
		if s.score >= curatedMinScore {
			relevant = append(relevant, s.snippet)
		}
	}

	if len(relevant) == 0 {
		region := country
		if region == "" {
			region = "world"
		}
		return CuratedResult{
			FallbackReason: fmt.Sprintf("no news snippets found with relevance score >= %d for sector %q and country %q", curatedMinScore, sector, region),
		}
	}

	if len(relevant) > curatedLimit {
		relevant = relevant[:curatedLimit]
	}
	return CuratedResult{Snippets: relevant, HasRelevant: true}
}

// FormatSnippetsForPrompt renders curated snippets as headline lines.
func FormatSnippetsForPrompt(snippets []NewsSnippet) []string {
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		lines = append(lines, fmt.Sprintf("- %s\n  Summary: %s\n  Why it matters: %s\n  Region: %s",
			s.Headline, s.Summary, s.WhyItMatters, s.RegionTag))
	}
	return lines
}
