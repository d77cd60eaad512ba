package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightpost/draftforge/internal/profile"
)

func TestPickRandomSourceDeterministic(t *testing.T) {
	a := PickRandomSource(17, "United Kingdom")
	b := PickRandomSource(17, "United Kingdom")
	if a.Title != b.Title {
		t.Errorf("same seed gave %q then %q", a.Title, b.Title)
	}
	if got := PickRandomSource(-17, ""); got.Title == "" {
		t.Error("negative seed must still select an entry")
	}
}

func TestAllRandomSourcesCountryPools(t *testing.T) {
	world := AllRandomSources("")
	uk := AllRandomSources("United Kingdom")
	if len(uk) <= len(world) {
		t.Errorf("UK pool (%d) should exceed world pool (%d)", len(uk), len(world))
	}

	hasUKObservance := false
	for _, s := range uk {
		if s.Title == "National Tea Day (UK)" {
			hasUKObservance = true
		}
	}
	if !hasUKObservance {
		t.Error("UK pool missing UK observances")
	}
	for _, s := range world {
		if s.Title == "National Tea Day (UK)" {
			t.Error("world pool should not contain UK observances")
		}
	}
}

func TestCuratedNewsRelevance(t *testing.T) {
	res := CuratedNews("IT services and software", "United Kingdom")
	if !res.HasRelevant {
		t.Fatalf("expected relevant snippets, got fallback: %s", res.FallbackReason)
	}
	if len(res.Snippets) > curatedLimit {
		t.Errorf("got %d snippets, limit is %d", len(res.Snippets), curatedLimit)
	}
	// UK tech snippets should outrank world generics.
	if res.Snippets[0].RegionTag != "UK" {
		t.Errorf("top snippet region = %q, want UK", res.Snippets[0].RegionTag)
	}
}

func TestCuratedNewsWorldFallbackForUnknownCountry(t *testing.T) {
	// World snippets always clear the threshold, so an unmapped country
	// still gets globally relevant content rather than nothing.
	res := CuratedNews("alpaca farming", "Iceland")
	if !res.HasRelevant {
		t.Fatalf("expected world snippets, got fallback: %s", res.FallbackReason)
	}
	for _, s := range res.Snippets {
		if s.RegionTag != "world" {
			t.Errorf("unmapped country should only get world snippets, got region %q", s.RegionTag)
		}
	}
}

func TestCuratedNewsExcludesOtherRegions(t *testing.T) {
	// Generic tags ("SME", "productivity") must not pull another region's
	// snippets over the threshold.
	res := CuratedNews("IT services and software", "United States")
	if !res.HasRelevant {
		t.Fatalf("expected relevant snippets, got fallback: %s", res.FallbackReason)
	}
	for _, s := range res.Snippets {
		if s.RegionTag != "US" && s.RegionTag != "world" {
			t.Errorf("US profile got snippet tagged %q", s.RegionTag)
		}
	}
}

func TestKeywordsFor(t *testing.T) {
	kw := KeywordsFor("Technology consulting", "United Kingdom")
	joined := strings.Join(kw, ",")
	for _, want := range []string{"technology", "business", "SME", "United Kingdom"} {
		if !strings.Contains(joined, want) {
			t.Errorf("keywords missing %q: %v", want, kw)
		}
	}
}

func TestFormatSnippetsForPrompt(t *testing.T) {
	lines := FormatSnippetsForPrompt([]NewsSnippet{{
		Headline:     "Test Headline",
		Summary:      "A summary.",
		WhyItMatters: "It matters.",
		RegionTag:    "UK",
	}})
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, want := range []string{"Test Headline", "Summary: A summary.", "Why it matters: It matters.", "Region: UK"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("formatted line missing %q: %q", want, lines[0])
		}
	}
}

func TestStripTags(t *testing.T) {
	cases := map[string]string{
		"plain title":                        "plain title",
		"<b>bold</b> claim":                  "bold claim",
		"<a href=\"x\">linked</a> headline":  "linked headline",
		"nested <p><em>emphasis</em></p> ok": "nested emphasis ok",
	}
	for in, want := range cases {
		if got := StripTags(in); got != want {
			t.Errorf("StripTags(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFeedsForIndustry(t *testing.T) {
	if feeds := FeedsForIndustry("Accounting"); len(feeds) == 0 {
		t.Error("exact match (case-insensitive) should find feeds")
	}
	if feeds := FeedsForIndustry("commercial property"); len(feeds) == 0 {
		t.Error("partial match should find feeds")
	}
	if feeds := FeedsForIndustry("alpaca farming"); feeds != nil {
		t.Errorf("unknown industry should return nil, got %v", feeds)
	}
	if feeds := FeedsForIndustry(""); feeds != nil {
		t.Error("empty industry should return nil")
	}
}

func testProfile() profile.Profile {
	return profile.Profile{
		BusinessName:     "Brightside Bookkeeping",
		Industry:         "Accounting",
		ProductsServices: "bookkeeping and payroll services",
		TargetAudience:   "small business owners",
		Keywords:         []string{"cashflow", "VAT"},
	}
}

func rssBody(now time.Time, titles ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Test</title>`)
	for _, title := range titles {
		fmt.Fprintf(&b, "<item><title>%s</title><link>https://example.com</link><pubDate>%s</pubDate><source>Test Wire</source></item>",
			title, now.Format(time.RFC1123Z))
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func testFetcher(serverURL string) *NewsFetcher {
	f := NewNewsFetcher(5*time.Second, slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
	f.base = serverURL
	return f
}

func TestFetchSectorNewsScoresAndDedups(t *testing.T) {
	// Published 10 days ago so recency alone (+1) cannot clear the
	// relevance threshold for the gossip headline.
	published := time.Now().UTC().Add(-10 * 24 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Errorf("missing q parameter")
		}
		fmt.Fprint(w, rssBody(published,
			"Accounting firms face new VAT rules",
			"Accounting firms face new VAT rules",
			"Celebrity gossip roundup",
		))
	}))
	defer srv.Close()

	res, err := testFetcher(srv.URL).FetchSectorNews(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("FetchSectorNews: %v", err)
	}
	if !res.HasRelevant {
		t.Fatalf("expected relevant headlines, fallback: %s", res.FallbackReason)
	}
	for _, h := range res.Headlines {
		if h.Title == "Celebrity gossip roundup" {
			t.Error("irrelevant headline should not clear the score threshold")
		}
	}
	seen := map[string]int{}
	for _, h := range res.Headlines {
		seen[h.Title]++
	}
	if seen["Accounting firms face new VAT rules"] != 1 {
		t.Errorf("duplicate titles not collapsed: %v", seen)
	}
	if res.Headlines[0].RelevanceScore < minNewsScore {
		t.Errorf("top headline score %d below threshold", res.Headlines[0].RelevanceScore)
	}
}

func TestFetchSectorNewsFallbackWhenFeedsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res, err := testFetcher(srv.URL).FetchSectorNews(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("feed failures should not be fatal: %v", err)
	}
	if res.HasRelevant {
		t.Fatal("no headlines should mean no relevant news")
	}
	if res.FallbackReason != "no news headlines found for sector" {
		t.Errorf("fallback reason = %q", res.FallbackReason)
	}
}

func TestFetchSectorNewsSkipsStaleHeadlines(t *testing.T) {
	stale := time.Now().UTC().Add(-60 * 24 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(stale, "Accounting firms face new VAT rules"))
	}))
	defer srv.Close()

	res, err := testFetcher(srv.URL).FetchSectorNews(context.Background(), testProfile())
	if err != nil {
		t.Fatal(err)
	}
	if res.HasRelevant {
		t.Error("headlines older than 30 days should be filtered")
	}
}

func TestScoreHeadlinePenalizesAINoiseForTraditionalIndustries(t *testing.T) {
	now := time.Now().UTC()
	h := Headline{Title: "SME accountants adopt AI tools in record numbers", PublishedAt: now}

	traditional := testProfile()
	score := scoreHeadline(h, traditional, now)

	tech := traditional
	tech.Industry = "Technology"
	techScore := scoreHeadline(h, tech, now)

	if score >= techScore {
		t.Errorf("AI story scored %d for accounting vs %d for tech; penalty missing", score, techScore)
	}
}

func TestScoreHeadlineRegulatorBoost(t *testing.T) {
	now := time.Now().UTC()
	p := testProfile()
	p.Industry = "Financial Services"

	boosted := scoreHeadline(Headline{Title: "FCA announces consumer credit review", PublishedAt: now}, p, now)
	plain := scoreHeadline(Headline{Title: "Weather improves across the country", PublishedAt: now}, p, now)
	if boosted <= plain {
		t.Errorf("regulator headline %d should outscore plain %d", boosted, plain)
	}
}

func TestBuildSearchQueries(t *testing.T) {
	p := testProfile()
	p.Industry = "Legal Services"
	queries := buildSearchQueries(p)

	joined := strings.Join(queries, "|")
	if !strings.Contains(joined, "UK law changes") {
		t.Errorf("legal industry should add sector-specific queries: %v", queries)
	}
	if !strings.Contains(joined, "Legal Services news UK") {
		t.Errorf("missing generic news query: %v", queries)
	}
	if !strings.Contains(joined, "Legal Services regulation UK") {
		t.Errorf("regulated industry should add regulation query: %v", queries)
	}
}

func TestValidateFeedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(time.Now().UTC(), "A headline"))
	}))
	defer srv.Close()

	title, err := testFetcher(srv.URL).ValidateFeedURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ValidateFeedURL: %v", err)
	}
	if title != "A headline" {
		t.Errorf("title = %q", title)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`)
	}))
	defer empty.Close()
	if _, err := testFetcher(empty.URL).ValidateFeedURL(context.Background(), empty.URL); err == nil {
		t.Error("empty feed should fail validation")
	}
}
