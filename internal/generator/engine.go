// Package generator orchestrates draft generation: configuration gating,
// learning signals, diversity parameters, prompt assembly, the provider call
// with retry and fallback, response validation, and history persistence.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/brightpost/draftforge/internal/diversity"
	"github.com/brightpost/draftforge/internal/genconfig"
	"github.com/brightpost/draftforge/internal/learning"
	"github.com/brightpost/draftforge/internal/profile"
	"github.com/brightpost/draftforge/internal/prompt"
	"github.com/brightpost/draftforge/internal/provider"
	"github.com/brightpost/draftforge/internal/sources"
	"github.com/brightpost/draftforge/internal/store"
)

// ProfileSource loads business profiles and their uploaded documents.
// Implemented by profile.Manager.
type ProfileSource interface {
	Get(userID string) (profile.Profile, error)
	Documents(userID string) ([]store.ProfileDocument, error)
}

// ConfigSource supplies the current generation configuration. Implemented
// by genconfig.Service.
type ConfigSource interface {
	Get() genconfig.GlobalConfig
}

// SignalSource derives learning signals. Implemented by learning.Engine.
type SignalSource interface {
	DeriveSignals(userID string) (learning.Signals, error)
}

// DiversitySource supplies per-generation diversity parameters and advisory
// checks. Implemented by diversity.Engine.
type DiversitySource interface {
	Params(userID string, seed int64) (diversity.Params, error)
	ApplyChecks(userID, text string) (diversity.CheckReport, error)
	GenerateVariants(ctx context.Context, basePrompt, userID string, seeds []int64, generate diversity.GenerateFunc) ([]diversity.Variant, error)
}

// HistoryStore persists generated drafts and serves rotation history.
// Implemented by store.Store.
type HistoryStore interface {
	AddPostRecord(p store.PostRecord) error
	RecentBucketsByUser(userID string, since time.Time, limit int) ([]string, error)
}

// ModelRouter resolves a model label to a provider client. Implemented by
// provider.Registry.
type ModelRouter interface {
	ForModel(label string) (provider.Provider, provider.ModelInfo, error)
}

// NewsSource fetches live sector news. Implemented by sources.NewsFetcher.
type NewsSource interface {
	FetchSectorNews(ctx context.Context, p profile.Profile) (sources.NewsResult, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Request describes one draft generation.
type Request struct {
	UserID        string   `json:"user_id"`
	PostType      string   `json:"post_type"`
	ToneOverride  string   `json:"tone_override,omitempty"`
	ExtraKeywords []string `json:"extra_keywords,omitempty"`
	Note          string   `json:"note,omitempty"`

	// OriginalPost switches the engine into refinement mode: the prompt
	// asks the model to modify this text per Note instead of writing a
	// new post.
	OriginalPost string `json:"original_post,omitempty"`

	// DisableDiversity skips style rotation and seeded sampling jitter;
	// temperature then comes from config, with randomness jitter if that
	// is enabled.
	DisableDiversity bool `json:"disable_diversity,omitempty"`

	// Variants generates three candidates concurrently and keeps the one
	// with the best diversity score.
	Variants bool `json:"variants,omitempty"`

	// Seed pins the randomized selections for reproducibility. Zero means
	// derive from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// Draft is a validated, generated post.
type Draft struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PostType        string    `json:"post_type"`
	HeadlineOptions []string  `json:"headline_options,omitempty"`
	PostText        string    `json:"post_text"`
	Hashtags        []string  `json:"hashtags,omitempty"`
	VisualPrompt    string    `json:"visual_prompt,omitempty"`
	BestTimeLocal   string    `json:"best_time_local"`
	CreatedAt       time.Time `json:"created_at"`
}

// Meta reports how a draft was produced.
type Meta struct {
	Model        string                 `json:"model"`
	Attempts     int                    `json:"attempts"`
	FallbackUsed bool                   `json:"fallback_used"`
	Duration     time.Duration          `json:"-"`
	Bucket       string                 `json:"bucket,omitempty"`
	Diversity    *diversity.Params      `json:"diversity,omitempty"`
	Checks       *diversity.CheckReport `json:"checks,omitempty"`
	NewsFallback string                 `json:"news_fallback,omitempty"`
	VariantCount int                    `json:"variant_count,omitempty"`
}

// Options wires the engine's dependencies.
type Options struct {
	Profiles  ProfileSource
	Config    ConfigSource
	Learning  SignalSource
	Diversity DiversitySource
	History   HistoryStore
	Models    ModelRouter
	News      NewsSource

	AttemptTimeout time.Duration
	MaxRetries     int
	Logger         *slog.Logger
	Clock          Clock
}

// Engine is the generation orchestrator.
type Engine struct {
	profiles  ProfileSource
	config    ConfigSource
	learning  SignalSource
	diversity DiversitySource
	history   HistoryStore
	models    ModelRouter
	news      NewsSource

	attemptTimeout time.Duration
	maxRetries     int
	backoffBase    time.Duration
	logger         *slog.Logger
	clock          Clock
}

func NewEngine(opts Options) *Engine {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 45 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Engine{
		profiles:       opts.Profiles,
		config:         opts.Config,
		learning:       opts.Learning,
		diversity:      opts.Diversity,
		history:        opts.History,
		models:         opts.Models,
		news:           opts.News,
		attemptTimeout: opts.AttemptTimeout,
		maxRetries:     opts.MaxRetries,
		backoffBase:    time.Second,
		logger:         opts.Logger,
		clock:          opts.Clock,
	}
}

// Generate produces one validated draft for the request. Advisory findings
// (repetition, banned phrases) land in Meta, never in the error.
func (e *Engine) Generate(ctx context.Context, req Request) (Draft, Meta, error) {
	start := e.clock.Now()

	cfg := e.config.Get()
	postType := genconfig.NormalizePostType(req.PostType)
	if !cfg.PostTypeAllowed(postType) || (postType == genconfig.PostTypeNews && !cfg.EnableNewsMode) {
		return Draft{}, Meta{}, &PostTypeNotAllowedError{PostType: postType, Allowed: allowedTypes(cfg)}
	}

	prof, err := e.profiles.Get(req.UserID)
	if err != nil {
		return Draft{}, Meta{}, fmt.Errorf("loading profile for %s: %w", req.UserID, err)
	}

	signals, err := e.learning.DeriveSignals(req.UserID)
	if err != nil {
		e.logger.Warn("learning signals unavailable", "user_id", req.UserID, "error", err)
		signals = learning.Signals{}
	}

	seed := req.Seed
	if seed == 0 {
		seed = e.clock.Now().UnixMilli() % 1000
	}

	tone := prof.Tone
	if req.ToneOverride != "" {
		tone = req.ToneOverride
	}

	meta := Meta{Model: cfg.TextModel}

	var dparams *diversity.Params
	if !req.DisableDiversity {
		p, derr := e.diversity.Params(req.UserID, seed)
		if derr != nil {
			e.logger.Warn("diversity params unavailable", "user_id", req.UserID, "error", derr)
		} else {
			dparams = &p
			tone = p.Style
			meta.Diversity = dparams
		}
	}

	// Downvoted tones are advisory: log, never substitute.
	for _, avoided := range signals.AvoidedTerms {
		if strings.EqualFold(avoided, tone) {
			e.logger.Info("effective tone appears in avoided terms", "user_id", req.UserID, "tone", tone)
			break
		}
	}

	keywords := mergeKeywords(prof.Keywords, signals.PreferredTerms, req.ExtraKeywords)
	inputs := prompt.GenInputs{
		BusinessName:     prof.BusinessName,
		Sector:           prof.Industry,
		Audience:         prof.TargetAudience,
		Country:          prof.Country,
		BrandTone:        tone,
		Notes:            req.Note,
		Keywords:         keywords,
		USP:              prof.USP,
		ProductsServices: prof.ProductsServices,
		Website:          prof.Website,
		OriginalPost:     req.OriginalPost,
	}
	if req.OriginalPost == "" {
		inputs.Background = e.documentBackground(req.UserID)
	}

	userPrompt, err := e.buildUserPrompt(ctx, postType, inputs, prof, seed, &meta)
	if err != nil {
		return Draft{}, Meta{}, err
	}

	if enhancement := learning.BuildPromptEnhancement(signals); enhancement != "" {
		userPrompt += "\n\n" + enhancement
	}

	bucket := e.dailyBucket(cfg, req.UserID)
	meta.Bucket = bucket
	systemPrompt := e.buildSystemPrompt(cfg, bucket)

	temperature, topP := e.samplingParams(cfg, dparams, seed)

	var draft Draft
	var outcome retryOutcome
	if req.Variants {
		draft, outcome, err = e.generateVariants(ctx, cfg, userPrompt, systemPrompt, req.UserID, temperature, topP, &meta)
	} else {
		draft, _, outcome, err = e.completeWithRetry(ctx, func(ctx context.Context, useFallback bool) (Draft, string, error) {
			return e.attempt(ctx, cfg, systemPrompt, userPrompt, temperature, topP, useFallback, &meta)
		})
	}
	meta.Attempts = outcome.attempts
	meta.FallbackUsed = outcome.fallbackUsed
	if err != nil {
		return Draft{}, meta, err
	}

	draft.ID = uuid.New().String()
	draft.UserID = req.UserID
	draft.PostType = postType
	draft.CreatedAt = e.clock.Now().UTC()

	if checks, cerr := e.diversity.ApplyChecks(req.UserID, draft.PostText); cerr != nil {
		e.logger.Warn("diversity checks unavailable", "user_id", req.UserID, "error", cerr)
	} else {
		meta.Checks = &checks
	}

	record := store.PostRecord{
		ID:        draft.ID,
		UserID:    req.UserID,
		PostType:  postType,
		Tone:      tone,
		PostText:  draft.PostText,
		Bucket:    bucket,
		CreatedAt: draft.CreatedAt,
	}
	if herr := e.history.AddPostRecord(record); herr != nil {
		e.logger.Error("failed to record post history", "draft_id", draft.ID, "error", herr)
	}

	meta.Duration = e.clock.Now().Sub(start)
	return draft, meta, nil
}

// attempt performs one provider call and validates the response.
func (e *Engine) attempt(
	ctx context.Context,
	cfg genconfig.GlobalConfig,
	systemPrompt, userPrompt string,
	temperature, topP float64,
	useFallback bool,
	meta *Meta,
) (Draft, string, error) {
	label := cfg.TextModel
	if useFallback {
		label = provider.FallbackModel
	}
	client, info, err := e.models.ForModel(label)
	if err != nil {
		return Draft{}, "", err
	}
	if useFallback {
		meta.Model = label
	}

	raw, err := client.Complete(ctx, provider.CompletionRequest{
		Model:       info.ID,
		System:      systemPrompt,
		Prompt:      userPrompt,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxOutputTokens(info, systemPrompt, userPrompt),
	})
	if err != nil {
		return Draft{}, "", err
	}

	draft, err := parseDraft(raw, cfg)
	if err != nil {
		return Draft{}, raw, err
	}
	return draft, raw, nil
}

// generateVariants produces three candidates concurrently and keeps the one
// the diversity engine scores best.
func (e *Engine) generateVariants(
	ctx context.Context,
	cfg genconfig.GlobalConfig,
	userPrompt, systemPrompt, userID string,
	temperature, topP float64,
	meta *Meta,
) (Draft, retryOutcome, error) {
	client, info, err := e.models.ForModel(cfg.TextModel)
	if err != nil {
		return Draft{}, retryOutcome{}, err
	}

	var mu sync.Mutex
	drafts := make(map[string]Draft)

	seeds := diversity.VariantSeeds(e.clock.Now())
	variants, err := e.diversity.GenerateVariants(ctx, userPrompt, userID, seeds,
		func(ctx context.Context, variantPrompt string, temp, top float64) (string, error) {
			raw, cerr := client.Complete(ctx, provider.CompletionRequest{
				Model:       info.ID,
				System:      systemPrompt,
				Prompt:      variantPrompt,
				Temperature: temp,
				TopP:        top,
				MaxTokens:   maxOutputTokens(info, systemPrompt, variantPrompt),
			})
			if cerr != nil {
				return "", cerr
			}
			d, perr := parseDraft(raw, cfg)
			if perr != nil {
				return "", perr
			}
			mu.Lock()
			drafts[d.PostText] = d
			mu.Unlock()
			return d.PostText, nil
		})
	if err != nil {
		return Draft{}, retryOutcome{attempts: 1}, &ProviderUnavailableError{Attempts: 1, LastErr: err}
	}
	if len(variants) == 0 {
		return Draft{}, retryOutcome{attempts: 1}, &ProviderUnavailableError{Attempts: 1, LastErr: fmt.Errorf("no variants generated")}
	}

	meta.VariantCount = len(variants)
	best := variants[0]
	draft, ok := drafts[best.Text]
	if !ok {
		return Draft{}, retryOutcome{attempts: 1}, &MalformedResponseError{Raw: best.Text, Reason: "selected variant lost its parsed draft"}
	}
	return draft, retryOutcome{attempts: 1}, nil
}

// buildUserPrompt assembles the post-type-specific prompt. Refinement mode
// takes priority when an original post is supplied.
func (e *Engine) buildUserPrompt(
	ctx context.Context,
	postType string,
	inputs prompt.GenInputs,
	prof profile.Profile,
	seed int64,
	meta *Meta,
) (string, error) {
	if inputs.OriginalPost != "" {
		return prompt.BuildRefinementPrompt(inputs, postType)
	}

	switch postType {
	case genconfig.PostTypeSelling:
		p := prompt.BuildSellingPrompt(inputs, seed)
		pain := sources.PickPain(prof.Industry, seed)
		return p + "\n\nPain point you may anchor the Problem step on: " + pain, nil

	case genconfig.PostTypeRandom:
		source := sources.PickRandomSource(seed, prof.Country)
		return prompt.BuildRandomPrompt(inputs, source), nil

	case genconfig.PostTypeNews:
		headlines := e.newsHeadlines(ctx, prof, meta)
		return prompt.BuildNewsPrompt(inputs, headlines), nil

	case genconfig.PostTypeInfoAdvice:
		return prompt.BuildInfoAdvicePrompt(inputs, seed), nil

	default:
		// Unknown types were normalized but not rejected; treat them as
		// informational rather than failing the request.
		e.logger.Warn("unknown post type, using information_advice", "post_type", postType)
		return prompt.BuildInfoAdvicePrompt(inputs, seed), nil
	}
}

// maxBackgroundChars caps the uploaded-document extract fed into prompts so
// large uploads cannot crowd out the instructions.
const maxBackgroundChars = 4000

// documentBackground concatenates the user's uploaded document text, newest
// first, into one capped background block. Missing documents are not an
// error; generation proceeds without background.
func (e *Engine) documentBackground(userID string) string {
	docs, err := e.profiles.Documents(userID)
	if err != nil {
		e.logger.Warn("profile documents unavailable", "user_id", userID, "error", err)
		return ""
	}

	var b strings.Builder
	for _, d := range docs {
		text := strings.TrimSpace(d.Content)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", d.Filename, text)
		if b.Len() >= maxBackgroundChars {
			break
		}
	}

	out := b.String()
	if len(out) > maxBackgroundChars {
		cut := maxBackgroundChars
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

// newsHeadlines tries live sector news first, then the curated snippet list.
// An empty return sends the news prompt down its creative branch.
func (e *Engine) newsHeadlines(ctx context.Context, prof profile.Profile, meta *Meta) []string {
	if e.news != nil {
		result, err := e.news.FetchSectorNews(ctx, prof)
		if err != nil {
			e.logger.Warn("live news fetch failed", "error", err)
		} else if result.HasRelevant {
			lines := make([]string, 0, len(result.Headlines))
			for _, h := range result.Headlines {
				lines = append(lines, fmt.Sprintf("- %s (%s)", h.Title, h.Source))
			}
			return lines
		} else {
			meta.NewsFallback = result.FallbackReason
		}
	}

	curated := sources.CuratedNews(prof.Industry, prof.Country)
	if curated.HasRelevant {
		return sources.FormatSnippetsForPrompt(curated.Snippets)
	}
	if meta.NewsFallback == "" {
		meta.NewsFallback = curated.FallbackReason
	}
	return nil
}

// buildSystemPrompt layers the response contract, the admin master template,
// and the rotation bucket.
func (e *Engine) buildSystemPrompt(cfg genconfig.GlobalConfig, bucket string) string {
	system := prompt.SystemPrompt(cfg)
	system = prompt.WithMasterTemplate(system, cfg.MasterPromptTemplate)
	if cfg.Rotation.Enabled && bucket != "" {
		system += "\n\nCurrent content focus: " + bucket
	}
	return system
}

// samplingParams picks temperature and top_p: diversity params when present,
// otherwise config temperature with optional seeded jitter.
func (e *Engine) samplingParams(cfg genconfig.GlobalConfig, dparams *diversity.Params, seed int64) (float64, float64) {
	if dparams != nil {
		return dparams.Temperature, dparams.TopP
	}

	temperature := cfg.Temperature
	if cfg.Randomness.Enabled {
		min := clamp(cfg.Randomness.TemperatureMin, 0, 2)
		max := clamp(cfg.Randomness.TemperatureMax, 0, 2)
		if min <= max {
			span := max - min
			// Seeded fraction in [0,1) keeps jitter reproducible.
			frac := float64(normalizePositive(seed)%1000) / 1000
			temperature = clamp(min+frac*span, 0, 2)
		} else {
			e.logger.Warn("randomness temperature_min exceeds temperature_max, using base temperature")
		}
	}
	return clamp(temperature, 0, 2), 0.92
}

// dailyBucket rotates the topic bucket by local day, skipping ahead when the
// most recent post in the diversity window already used today's bucket.
func (e *Engine) dailyBucket(cfg genconfig.GlobalConfig, userID string) string {
	rot := cfg.Rotation
	if !rot.Enabled || len(rot.Buckets) == 0 {
		if len(rot.Buckets) > 0 {
			return rot.Buckets[0]
		}
		return ""
	}

	now := e.clock.Now()
	loc, err := time.LoadLocation(rot.Timezone)
	if err != nil {
		e.logger.Warn("invalid rotation timezone, using UTC", "timezone", rot.Timezone)
		loc = time.UTC
	}
	local := now.In(loc)
	_, offset := local.Zone()
	days := (local.Unix() + int64(offset)) / 86400

	idx := int(days % int64(len(rot.Buckets)))
	chosen := rot.Buckets[idx]

	if userID != "" && rot.DiversityWindowDays > 0 {
		since := now.AddDate(0, 0, -rot.DiversityWindowDays)
		recent, err := e.history.RecentBucketsByUser(userID, since, 10)
		if err != nil {
			e.logger.Warn("bucket history unavailable", "user_id", userID, "error", err)
		} else if len(recent) > 0 && recent[0] == chosen {
			idx = (idx + 1) % len(rot.Buckets)
			chosen = rot.Buckets[idx]
		}
	}
	return chosen
}

// maxOutputTokens budgets the completion size: whatever input leaves free,
// capped at 2000 and floored at 500.
func maxOutputTokens(info provider.ModelInfo, systemPrompt, userPrompt string) int {
	inputTokens := estimateTokens(systemPrompt) + estimateTokens(userPrompt)
	available := info.ContextTokens - inputTokens - 500
	if available > 2000 {
		available = 2000
	}
	if available < 500 {
		available = 500
	}
	return available
}

// estimateTokens approximates 4 characters per token.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func allowedTypes(cfg genconfig.GlobalConfig) []string {
	allowed := make([]string, 0, len(cfg.AllowedPostTypes))
	for _, t := range cfg.AllowedPostTypes {
		t = genconfig.NormalizePostType(t)
		if t == genconfig.PostTypeNews && !cfg.EnableNewsMode {
			continue
		}
		allowed = append(allowed, t)
	}
	return allowed
}

func mergeKeywords(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, k := range list {
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, k)
		}
	}
	return merged
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func normalizePositive(seed int64) int64 {
	if seed < 0 {
		return -seed
	}
	return seed
}
