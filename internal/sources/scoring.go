package sources

import (
	"strings"
	"time"

	"github.com/brightpost/draftforge/internal/profile"
)

var financialBoostKeywords = []string{
	"fca", "financial conduct authority", "regulation", "compliance",
	"lending", "loan", "credit", "asset finance", "leasing",
	"fintech regulation", "banking rules", "consumer credit",
	"prudential", "capital requirements", "financial services act",
	"mortgage", "interest rate", "bank of england", "monetary policy",
}

var healthBoostKeywords = []string{
	"nhs", "nice", "mhra", "cqc", "clinical", "patient",
	"healthcare regulation", "medical device", "drug approval",
	"health and social care", "gp", "hospital", "prescription",
}

var legalBoostKeywords = []string{
	"court", "legislation", "statute", "case law", "solicitor",
	"barrister", "tribunal", "legal aid", "law society", "sra",
}

// Generic AI-adoption stories are noise for traditional industries, so they
// are penalized unless the profile itself is a tech business.
var aiNoiseKeywords = []string{
	"artificial intelligence", "ai adoption", "ai tools", "ai revolution",
	"machine learning", "chatgpt", "generative ai", "ai-powered",
	"automation software", "tech startup", "software development",
	"digital transformation", "ai integration", "embracing ai",
	"ai technology", "adopt ai", "ai solutions", "ai innovation",
}

func isTechIndustry(industryLower string) bool {
	for _, marker := range []string{
		"software", "technology", "it services", "saas", "tech",
		"startup", "digital", "ai ", "data analytics", "automation",
	} {
		if strings.Contains(industryLower, marker) {
			return true
		}
	}
	return false
}

// scoreHeadline rates a headline's relevance to the profile. Industry terms
// weigh most, then products, keywords, and audience; regulated industries
// get boosts for their regulator vocabulary, and non-tech profiles get
// penalized for generic AI stories.
func scoreHeadline(h Headline, p profile.Profile, now time.Time) int {
	score := 0
	titleLower := strings.ToLower(h.Title)
	industryLower := strings.ToLower(p.Industry)

	for _, term := range strings.Fields(industryLower) {
		if len(term) > 3 && strings.Contains(titleLower, term) {
			score += 10
		}
	}
	for _, term := range strings.Fields(strings.ToLower(p.ProductsServices)) {
		if len(term) > 3 && strings.Contains(titleLower, term) {
			score += 8
		}
	}
	for _, keyword := range p.Keywords {
		if len(keyword) > 2 && strings.Contains(titleLower, strings.ToLower(keyword)) {
			score += 6
		}
	}
	for _, term := range strings.Fields(strings.ToLower(p.TargetAudience)) {
		if len(term) > 3 && strings.Contains(titleLower, term) {
			score += 5
		}
	}

	if strings.Contains(industryLower, "financial") || strings.Contains(industryLower, "finance") ||
		strings.Contains(industryLower, "leasing") || strings.Contains(industryLower, "lending") {
		for _, boost := range financialBoostKeywords {
			if strings.Contains(titleLower, boost) {
				score += 15
			}
		}
	}
	if strings.Contains(industryLower, "health") || strings.Contains(industryLower, "medical") ||
		strings.Contains(industryLower, "pharmaceutical") {
		for _, boost := range healthBoostKeywords {
			if strings.Contains(titleLower, boost) {
				score += 15
			}
		}
	}
	if strings.Contains(industryLower, "legal") || strings.Contains(industryLower, "law") {
		for _, boost := range legalBoostKeywords {
			if strings.Contains(titleLower, boost) {
				score += 15
			}
		}
	}

	if !isTechIndustry(industryLower) {
		for _, neg := range aiNoiseKeywords {
			if strings.Contains(titleLower, neg) {
				score -= 25
			}
		}
		if (strings.Contains(titleLower, "sme") || strings.Contains(titleLower, "small business")) &&
			(strings.Contains(titleLower, "adopt") || strings.Contains(titleLower, "embrace") || strings.Contains(titleLower, "integrate")) {
			score -= 15
		}
	}

	if !h.PublishedAt.IsZero() {
		age := now.Sub(h.PublishedAt)
		switch {
		case age <= 7*24*time.Hour:
			score += 5
		case age <= 14*24*time.Hour:
			score += 3
		case age <= 30*24*time.Hour:
			score += 1
		}
	}

	return score
}

func industrySpecificQueries(industry string) []string {
	industryLower := strings.ToLower(industry)
	var queries []string

	if strings.Contains(industryLower, "financial") || strings.Contains(industryLower, "finance") ||
		strings.Contains(industryLower, "leasing") || strings.Contains(industryLower, "lending") ||
		strings.Contains(industryLower, "asset finance") {
		queries = append(queries,
			"FCA regulations UK",
			"UK lending rules",
			"asset finance UK news",
			"leasing industry UK",
			"consumer credit UK",
			"financial services regulation UK",
			"UK banking compliance",
			"financial conduct authority news",
		)
	}
	if strings.Contains(industryLower, "health") || strings.Contains(industryLower, "medical") ||
		strings.Contains(industryLower, "pharmaceutical") {
		queries = append(queries,
			"NHS news UK",
			"healthcare regulation UK",
			"MHRA updates",
			"CQC inspection UK",
			"medical device regulation UK",
			"pharmaceutical industry UK",
		)
	}
	if strings.Contains(industryLower, "legal") || strings.Contains(industryLower, "law") {
		queries = append(queries,
			"UK law changes",
			"legal sector UK news",
			"court ruling UK",
			"legislation UK",
			"Law Society news",
		)
	}
	if strings.Contains(industryLower, "construction") || strings.Contains(industryLower, "property") ||
		strings.Contains(industryLower, "real estate") {
		queries = append(queries,
			"UK construction industry news",
			"building regulations UK",
			"property market UK",
			"housing development UK",
		)
	}
	if strings.Contains(industryLower, "manufacturing") || strings.Contains(industryLower, "production") {
		queries = append(queries,
			"UK manufacturing news",
			"supply chain UK",
			"industrial production UK",
			"factory output UK",
		)
	}
	if strings.Contains(industryLower, "retail") || strings.Contains(industryLower, "ecommerce") ||
		strings.Contains(industryLower, "e-commerce") {
		queries = append(queries,
			"UK retail news",
			"consumer spending UK",
			"high street UK",
			"online shopping UK",
		)
	}
	if strings.Contains(industryLower, "hospitality") || strings.Contains(industryLower, "tourism") ||
		strings.Contains(industryLower, "hotel") || strings.Contains(industryLower, "restaurant") {
		queries = append(queries,
			"UK hospitality industry",
			"tourism UK news",
			"restaurant sector UK",
			"hotel industry UK",
		)
	}

	return queries
}

var genericProductWords = map[string]bool{
	"provide":  true,
	"provides": true,
	"offering": true,
	"services": true,
}

// buildSearchQueries derives Google News search queries from a profile,
// leading with regulator and sector-specific searches when the industry is
// recognized.
func buildSearchQueries(p profile.Profile) []string {
	industry := strings.TrimSpace(p.Industry)
	var queries []string

	specific := industrySpecificQueries(industry)
	queries = append(queries, specific...)

	if len(specific) == 0 {
		queries = append(queries, industry+" UK")
	}
	queries = append(queries, industry+" news UK")

	if len(p.Keywords) > 0 {
		top := p.Keywords
		if len(top) > 3 {
			top = top[:3]
		}
		queries = append(queries, strings.Join(top, " ")+" "+industry)
	}

	var productTerms []string
	for _, word := range strings.Fields(strings.ToLower(p.ProductsServices)) {
		if len(word) > 4 && !genericProductWords[word] {
			productTerms = append(productTerms, word)
			if len(productTerms) == 3 {
				break
			}
		}
	}
	if len(productTerms) > 0 {
		queries = append(queries, strings.Join(productTerms, " ")+" UK")
	}

	industryLower := strings.ToLower(industry)
	if strings.Contains(industryLower, "financial") || strings.Contains(industryLower, "health") ||
		strings.Contains(industryLower, "legal") || strings.Contains(industryLower, "pharmaceutical") {
		queries = append(queries, industry+" regulation UK", industry+" compliance UK")
	}

	return queries
}
