package genconfig

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brightpost/draftforge/internal/store"
)

// mockStore is an in-memory ConfigStore that counts reads.
type mockStore struct {
	data  map[string][]byte
	err   error
	reads int
}

func (m *mockStore) GetConfigJSON(key string) ([]byte, error) {
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return raw, nil
}

func (m *mockStore) SetConfigJSON(key string, raw []byte) error {
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = raw
	return nil
}

// fakeClock is a manually-advanced Clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(ms *mockStore) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewServiceWithClock(ms, clock, 5*time.Minute), clock
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc, _ := newTestService(&mockStore{})

	cfg := svc.Get()
	if cfg.TextModel != "gpt-4.1-mini" {
		t.Errorf("TextModel = %q, want default", cfg.TextModel)
	}
	if cfg.HashtagCountDefault != 8 {
		t.Errorf("HashtagCountDefault = %d, want 8", cfg.HashtagCountDefault)
	}
	if len(cfg.Rotation.Buckets) != 2 {
		t.Errorf("Rotation.Buckets = %v", cfg.Rotation.Buckets)
	}
}

func TestGetFallsBackOnStoreError(t *testing.T) {
	svc, _ := newTestService(&mockStore{err: errors.New("disk gone")})

	cfg := svc.Get()
	if cfg.TextModel != Defaults().TextModel {
		t.Errorf("expected defaults on store error, got %q", cfg.TextModel)
	}
}

func TestGetFallsBackOnMalformedJSON(t *testing.T) {
	ms := &mockStore{data: map[string][]byte{configKey: []byte("{not json")}}
	svc, _ := newTestService(ms)

	cfg := svc.Get()
	if cfg.Temperature != 0.7 {
		t.Errorf("expected defaults on malformed JSON, got temperature %v", cfg.Temperature)
	}
}

func TestGetCachesWithinTTL(t *testing.T) {
	stored := Defaults()
	stored.TextModel = "gpt-4o"
	raw, _ := json.Marshal(stored)
	ms := &mockStore{data: map[string][]byte{configKey: raw}}
	svc, clock := newTestService(ms)

	if got := svc.Get(); got.TextModel != "gpt-4o" {
		t.Fatalf("TextModel = %q, want gpt-4o", got.TextModel)
	}
	svc.Get()
	svc.Get()
	if ms.reads != 1 {
		t.Errorf("store reads = %d, want 1 (cached)", ms.reads)
	}

	clock.Advance(6 * time.Minute)
	svc.Get()
	if ms.reads != 2 {
		t.Errorf("store reads after TTL expiry = %d, want 2", ms.reads)
	}
}

func TestSetInvalidatesCache(t *testing.T) {
	ms := &mockStore{}
	svc, _ := newTestService(ms)

	svc.Get() // warm the cache with defaults

	cfg := Defaults()
	cfg.TextModel = "gpt-4o-mini"
	if err := svc.Set(cfg); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if got := svc.Get(); got.TextModel != "gpt-4o-mini" {
		t.Errorf("TextModel after Set = %q, want gpt-4o-mini", got.TextModel)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(&mockStore{})

	cases := []struct {
		name   string
		mutate func(*GlobalConfig)
	}{
		{"empty model", func(c *GlobalConfig) { c.TextModel = " " }},
		{"temperature out of range", func(c *GlobalConfig) { c.Temperature = 2.5 }},
		{"hashtag count too low", func(c *GlobalConfig) { c.HashtagCountDefault = 2 }},
		{"hashtag count too high", func(c *GlobalConfig) { c.HashtagCountDefault = 13 }},
		{"unknown post type", func(c *GlobalConfig) { c.AllowedPostTypes = []string{"poetry"} }},
		{"no allowed post types", func(c *GlobalConfig) { c.AllowedPostTypes = []string{} }},
		{"empty buckets", func(c *GlobalConfig) { c.Rotation.Buckets = nil }},
		{"window too wide", func(c *GlobalConfig) { c.Rotation.DiversityWindowDays = 31 }},
		{"jitter inverted", func(c *GlobalConfig) {
			c.Randomness.TemperatureMin = 0.9
			c.Randomness.TemperatureMax = 0.6
		}},
		{"weight out of range", func(c *GlobalConfig) { c.WeightPreferredTerms = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := svc.Set(cfg); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestGetReturnsCopy(t *testing.T) {
	svc, _ := newTestService(&mockStore{})

	a := svc.Get()
	a.AllowedPostTypes[0] = "mutated"
	a.Rotation.Buckets[0] = "mutated"

	b := svc.Get()
	if b.AllowedPostTypes[0] == "mutated" || b.Rotation.Buckets[0] == "mutated" {
		t.Error("Get returned a shared slice; callers can corrupt the cache")
	}
}

func TestNormalizePostType(t *testing.T) {
	cases := map[string]string{
		"selling":            PostTypeSelling,
		"informational":      PostTypeInfoAdvice,
		"advice":             PostTypeInfoAdvice,
		"information_advice": PostTypeInfoAdvice,
		"  News ":            PostTypeNews,
		"RANDOM":             PostTypeRandom,
		"poetry":             "poetry",
	}
	for in, want := range cases {
		if got := NormalizePostType(in); got != want {
			t.Errorf("NormalizePostType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPostTypeAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.AllowedPostTypes = []string{"selling", "informational"}

	if !cfg.PostTypeAllowed("selling") {
		t.Error("selling should be allowed")
	}
	// Legacy name in config matches canonical request and vice versa.
	if !cfg.PostTypeAllowed("advice") {
		t.Error("advice should match legacy informational entry")
	}
	if cfg.PostTypeAllowed("news") {
		t.Error("news should not be allowed")
	}
}
