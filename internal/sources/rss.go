package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/brightpost/draftforge/internal/profile"
)

const (
	googleNewsBase   = "https://news.google.com/rss/search"
	newsUserAgent    = "draftforge/1.0"
	defaultNewsLimit = 6
	minNewsScore     = 5
	maxHeadlineAge   = 30 * 24 * time.Hour
)

// Headline is a single live news item with its relevance to the profile.
type Headline struct {
	Title          string    `json:"title"`
	Link           string    `json:"link,omitempty"`
	PublishedAt    time.Time `json:"published_at,omitempty"`
	Source         string    `json:"source,omitempty"`
	RelevanceScore int       `json:"relevance_score"`
}

// NewsResult is the outcome of a live news fetch.
type NewsResult struct {
	Headlines      []Headline
	HasRelevant    bool
	FallbackReason string
}

type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Source      string `xml:"source"`
	Description string `xml:"description"`
}

// NewsFetcher fetches and scores sector news from Google News RSS feeds.
type NewsFetcher struct {
	client *http.Client
	base   string
	logger *slog.Logger
	now    func() time.Time
}

// NewNewsFetcher builds a fetcher with the given per-request timeout.
func NewNewsFetcher(timeout time.Duration, logger *slog.Logger) *NewsFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsFetcher{
		client: &http.Client{Timeout: timeout},
		base:   googleNewsBase,
		logger: logger,
		now:    time.Now,
	}
}

// FetchSectorNews runs the profile-derived search queries, scores every
// headline against the profile, and returns the most relevant ones. Feed
// failures are logged and skipped; an empty result carries a fallback
// reason instead of an error so the caller can switch to creative mode.
func (f *NewsFetcher) FetchSectorNews(ctx context.Context, p profile.Profile) (NewsResult, error) {
	queries := buildSearchQueries(p)

	var all []Headline
	for _, query := range queries {
		items, err := f.fetchQuery(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return NewsResult{}, ctx.Err()
			}
			f.logger.Warn("news feed fetch failed", "query", query, "error", err)
			continue
		}
		for _, item := range items {
			h := headlineFromItem(item)
			if h.Title == "" {
				continue
			}
			if !h.PublishedAt.IsZero() && f.now().Sub(h.PublishedAt) > maxHeadlineAge {
				continue
			}
			h.RelevanceScore = scoreHeadline(h, p, f.now())
			all = append(all, h)
		}
	}

	// Dedup by title, keeping the best score.
	dedup := make(map[string]Headline, len(all))
	for _, h := range all {
		if existing, ok := dedup[h.Title]; !ok || h.RelevanceScore > existing.RelevanceScore {
			dedup[h.Title] = h
		}
	}
	headlines := make([]Headline, 0, len(dedup))
	for _, h := range dedup {
		headlines = append(headlines, h)
	}
	sort.SliceStable(headlines, func(i, j int) bool {
		if headlines[i].RelevanceScore != headlines[j].RelevanceScore {
			return headlines[i].RelevanceScore > headlines[j].RelevanceScore
		}
		return headlines[i].Title < headlines[j].Title
	})

	var relevant []Headline
	for _, h := range headlines {
		if h.RelevanceScore >= minNewsScore {
			relevant = append(relevant, h)
		}
	}

	if len(relevant) == 0 {
		reason := fmt.Sprintf("no headlines met minimum relevance score (%d)", minNewsScore)
		if len(all) == 0 {
			reason = "no news headlines found for sector"
		}
		return NewsResult{FallbackReason: reason}, nil
	}

	if len(relevant) > defaultNewsLimit {
		relevant = relevant[:defaultNewsLimit]
	}
	return NewsResult{Headlines: relevant, HasRelevant: true}, nil
}

func (f *NewsFetcher) fetchQuery(ctx context.Context, query string) ([]rssItem, error) {
	feedURL := f.base + "?q=" + url.QueryEscape(query) + "&hl=en-GB&gl=GB&ceid=GB:en"
	return f.fetchFeed(ctx, feedURL)
}

func (f *NewsFetcher) fetchFeed(ctx context.Context, feedURL string) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", newsUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed.Channel.Items, nil
}

// FetchIndustryFeeds pulls headlines from the curated per-industry feed list
// in addition to search queries. Unknown industries return nothing.
func (f *NewsFetcher) FetchIndustryFeeds(ctx context.Context, industry string, perFeed int) ([]Headline, error) {
	feeds := FeedsForIndustry(industry)
	if len(feeds) == 0 {
		return nil, nil
	}
	if perFeed <= 0 {
		perFeed = 10
	}

	var headlines []Headline
	for _, feed := range feeds {
		items, err := f.fetchFeed(ctx, feed.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Warn("industry feed fetch failed", "feed", feed.Name, "error", err)
			continue
		}
		added := 0
		for _, item := range items {
			if added >= perFeed {
				break
			}
			h := headlineFromItem(item)
			if h.Title == "" {
				continue
			}
			if h.Source == "" || h.Source == "News" {
				h.Source = feed.Name
			}
			if !h.PublishedAt.IsZero() && f.now().Sub(h.PublishedAt) > maxHeadlineAge {
				continue
			}
			headlines = append(headlines, h)
			added++
		}
	}
	return headlines, nil
}

// ValidateFeedURL fetches a feed once and reports whether it parses and has
// items. Used when a profile registers a custom feed.
func (f *NewsFetcher) ValidateFeedURL(ctx context.Context, feedURL string) (string, error) {
	items, err := f.fetchFeed(ctx, feedURL)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("feed appears to be empty or invalid")
	}
	title := StripTags(items[0].Title)
	if title == "" {
		title = "RSS Feed"
	}
	return title, nil
}

func headlineFromItem(item rssItem) Headline {
	h := Headline{
		Title:  strings.TrimSpace(StripTags(item.Title)),
		Link:   strings.TrimSpace(item.Link),
		Source: strings.TrimSpace(StripTags(item.Source)),
	}
	if h.Source == "" {
		h.Source = "News"
	}
	if item.PubDate != "" {
		if t, err := parsePubDate(item.PubDate); err == nil {
			h.PublishedAt = t
		}
	}
	return h
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized pubDate %q", s)
}

// StripTags removes HTML markup from feed fields, returning the visible
// text.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(tokenizer.Token().Data)
		}
	}
	return strings.TrimSpace(b.String())
}
