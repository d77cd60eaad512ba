package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightpost/draftforge/internal/genconfig"
	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/learning"
	"github.com/brightpost/draftforge/internal/profile"
	"github.com/brightpost/draftforge/internal/store"
)

const testToken = "test-token"

type mockGenerator struct {
	draft generator.Draft
	meta  generator.Meta
	err   error

	lastReq generator.Request
}

func (m *mockGenerator) Generate(_ context.Context, req generator.Request) (generator.Draft, generator.Meta, error) {
	m.lastReq = req
	return m.draft, m.meta, m.err
}

type mockLearning struct {
	signals learning.Signals
	err     error
}

func (m *mockLearning) DeriveSignals(string) (learning.Signals, error) {
	return m.signals, m.err
}

func newTestDeps(t *testing.T) (AppDeps, *mockGenerator) {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gen := &mockGenerator{
		draft: generator.Draft{
			ID:            "draft-1",
			UserID:        DefaultUserID,
			PostType:      "selling",
			PostText:      "Cashflow beats profit.",
			BestTimeLocal: "10:00",
			CreatedAt:     time.Now().UTC(),
		},
		meta: generator.Meta{Model: "gpt-4.1-mini", Attempts: 1, Duration: 1200 * time.Millisecond},
	}

	return AppDeps{
		Store:     st,
		Profiles:  profile.NewManager(st),
		Config:    genconfig.NewService(st),
		Learning:  &mockLearning{signals: learning.Signals{PreferredTone: "witty", Confidence: 0.5}},
		Generator: gen,
		Token:     testToken,
	}, gen
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthNoAuth(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodGet, "/health", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
}

func TestBearerAuthRequired(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodGet, "/v1/profile", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token = %d, want 401", rec.Code)
	}
}

func TestCreateDraft(t *testing.T) {
	deps, gen := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/v1/drafts", map[string]any{
		"post_type": "selling",
		"note":      "mention the January rush",
	}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("create draft = %d: %s", rec.Code, rec.Body.String())
	}

	var resp DraftResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Draft.ID != "draft-1" {
		t.Errorf("draft id = %q", resp.Draft.ID)
	}
	if resp.Meta.DurationMs != 1200 {
		t.Errorf("duration_ms = %d", resp.Meta.DurationMs)
	}
	if gen.lastReq.UserID != DefaultUserID {
		t.Errorf("user defaulting failed: %q", gen.lastReq.UserID)
	}
	if gen.lastReq.Note != "mention the January rush" {
		t.Errorf("note not forwarded: %q", gen.lastReq.Note)
	}
}

func TestCreateDraftRequiresPostType(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/v1/drafts", map[string]any{}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing post_type = %d, want 400", rec.Code)
	}
}

func TestCreateDraftErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "disallowed post type",
			err:  &generator.PostTypeNotAllowedError{PostType: "news", Allowed: []string{"selling"}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "provider unavailable",
			err:  &generator.ProviderUnavailableError{Attempts: 3, LastErr: errors.New("timeout")},
			want: http.StatusBadGateway,
		},
		{
			name: "malformed response",
			err:  &generator.MalformedResponseError{Raw: "oops", Reason: "response is not valid JSON"},
			want: http.StatusBadGateway,
		},
		{
			name: "unexpected",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, gen := newTestDeps(t)
			gen.err = tt.err
			h := NewAppHandler(deps)

			rec := doRequest(t, h, http.MethodPost, "/v1/drafts", map[string]any{"post_type": "selling"}, true)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCreateFeedback(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	record := store.PostRecord{
		ID:        "post-1",
		UserID:    DefaultUserID,
		PostType:  "selling",
		Tone:      "witty",
		PostText:  "Cashflow beats profit.",
		CreatedAt: time.Now().UTC(),
	}
	if err := deps.Store.AddPostRecord(record); err != nil {
		t.Fatalf("seeding post record: %v", err)
	}

	rec := doRequest(t, h, http.MethodPost, "/v1/feedback", map[string]any{
		"post_id": "post-1",
		"rating":  "up",
		"note":    "loved the hook",
	}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback = %d: %s", rec.Code, rec.Body.String())
	}

	saved, err := deps.Store.RecentFeedbackByUser(DefaultUserID, 10)
	if err != nil {
		t.Fatalf("reading feedback: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("feedback count = %d", len(saved))
	}
	if saved[0].PostType != "selling" || saved[0].Tone != "witty" {
		t.Errorf("generation context not recovered from post record: %+v", saved[0])
	}
}

func TestCreateFeedbackUnknownPost(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/v1/feedback", map[string]any{
		"post_id": "missing",
		"rating":  "down",
	}, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown post = %d, want 404", rec.Code)
	}
}

func TestCreateFeedbackRejectsBadRating(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/v1/feedback", map[string]any{
		"post_id": "post-1",
		"rating":  "meh",
	}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad rating = %d, want 400", rec.Code)
	}
}

func TestLearningProfileEndpoint(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodGet, "/v1/learning-profile", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("learning profile = %d", rec.Code)
	}

	var signals learning.Signals
	if err := json.Unmarshal(rec.Body.Bytes(), &signals); err != nil {
		t.Fatalf("decoding signals: %v", err)
	}
	if signals.PreferredTone != "witty" {
		t.Errorf("preferred tone = %q", signals.PreferredTone)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	p := profile.Profile{
		BusinessName:     "Brightside Bookkeeping",
		Industry:         "Accounting",
		Tone:             "friendly",
		ProductsServices: "Monthly bookkeeping packages",
		TargetAudience:   "small business owners",
		Country:          "United Kingdom",
	}

	rec := doRequest(t, h, http.MethodPut, "/v1/profile", p, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("put profile = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/profile", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile = %d", rec.Code)
	}
	var got profile.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if got.BusinessName != p.BusinessName || got.Country != p.Country {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPutProfileRejectsIncomplete(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodPut, "/v1/profile", profile.Profile{Tone: "witty"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete profile = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "business_name") {
		t.Errorf("error should name the missing fields: %s", rec.Body.String())
	}
}

func TestUploadDocument(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	content := base64.StdEncoding.EncodeToString([]byte("We sell bookkeeping.\n\nFounded in 2019."))
	rec := doRequest(t, h, http.MethodPost, "/v1/profile/documents", map[string]any{
		"filename": "about.txt",
		"content":  content,
	}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", rec.Code, rec.Body.String())
	}

	docs, err := deps.Profiles.Documents(DefaultUserID)
	if err != nil {
		t.Fatalf("listing documents: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("document count = %d", len(docs))
	}
	if docs[0].FileType != "text" {
		t.Errorf("file type = %q", docs[0].FileType)
	}
	if !strings.Contains(docs[0].Content, "Founded in 2019") {
		t.Errorf("extracted content lost: %q", docs[0].Content)
	}
}

func TestUploadDocumentUnsupportedType(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	content := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})
	rec := doRequest(t, h, http.MethodPost, "/v1/profile/documents", map[string]any{
		"filename": "logo.png",
		"content":  content,
	}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unsupported type = %d, want 422", rec.Code)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	rec := doRequest(t, h, http.MethodGet, "/admin/config", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("get config = %d", rec.Code)
	}
	var cfg genconfig.GlobalConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decoding config: %v", err)
	}
	if !cfg.EnableNewsMode {
		t.Error("defaults should enable news mode")
	}

	cfg.Temperature = 0.5
	rec = doRequest(t, h, http.MethodPut, "/admin/config", cfg, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("put config = %d: %s", rec.Code, rec.Body.String())
	}

	// The cache is invalidated on save, so the next read sees the change.
	if got := deps.Config.Get(); got.Temperature != 0.5 {
		t.Errorf("temperature after save = %v", got.Temperature)
	}
}

func TestPutConfigRejectsInvalid(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewAppHandler(deps)

	cfg := genconfig.Defaults()
	cfg.Temperature = 5

	rec := doRequest(t, h, http.MethodPut, "/admin/config", cfg, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid config = %d, want 400", rec.Code)
	}
}
