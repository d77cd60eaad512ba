package genconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brightpost/draftforge/internal/store"
)

const configKey = "generation_globals"

// ConfigStore defines the storage operations the Service needs.
// Implemented by store.Store.
type ConfigStore interface {
	GetConfigJSON(key string) ([]byte, error)
	SetConfigJSON(key string, raw []byte) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Service provides cached access to the admin generation config. Reads fall
// back to built-in defaults when nothing is stored or the store fails, so
// generation never blocks on config problems.
type Service struct {
	store ConfigStore
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *GlobalConfig
	cachedAt time.Time
}

// NewService creates a Service with a 5-minute cache TTL.
func NewService(store ConfigStore) *Service {
	return &Service{
		store: store,
		clock: realClock{},
		ttl:   5 * time.Minute,
	}
}

// NewServiceWithClock creates a Service with a custom clock (for testing).
func NewServiceWithClock(store ConfigStore, clock Clock, ttl time.Duration) *Service {
	return &Service{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// Get returns the current generation config. It never returns an error: a
// missing or unreadable stored document falls back to Defaults.
func (s *Service) Get() GlobalConfig {
	// Fast path: read lock for cache hit.
	s.mu.RLock()
	if s.cached != nil && s.clock.Now().Before(s.cachedAt.Add(s.ttl)) {
		cfg := deepCopyConfig(s.cached)
		s.mu.RUnlock()
		return cfg
	}
	s.mu.RUnlock()

	// Slow path: write lock for cache miss.
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if s.cached != nil && s.clock.Now().Before(s.cachedAt.Add(s.ttl)) {
		return deepCopyConfig(s.cached)
	}

	cfg := s.load()
	s.cached = &cfg
	s.cachedAt = s.clock.Now()
	return deepCopyConfig(&cfg)
}

func (s *Service) load() GlobalConfig {
	raw, err := s.store.GetConfigJSON(configKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("loading generation config, using defaults", "error", err)
		}
		return Defaults()
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		slog.Warn("malformed stored generation config, using defaults", "error", err)
		return Defaults()
	}
	return cfg
}

// Set validates and persists a new generation config, then invalidates the
// cache so the next Get sees it.
func (s *Service) Set(cfg GlobalConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating generation config: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling generation config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetConfigJSON(configKey, raw); err != nil {
		return fmt.Errorf("storing generation config: %w", err)
	}

	s.cached = nil
	return nil
}

// Invalidate drops the cached config so the next Get reloads from storage.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func deepCopyConfig(c *GlobalConfig) GlobalConfig {
	if c == nil {
		return GlobalConfig{}
	}
	cp := *c

	if c.AllowedPostTypes != nil {
		cp.AllowedPostTypes = make([]string, len(c.AllowedPostTypes))
		copy(cp.AllowedPostTypes, c.AllowedPostTypes)
	}
	if c.Rotation.Buckets != nil {
		cp.Rotation.Buckets = make([]string, len(c.Rotation.Buckets))
		copy(cp.Rotation.Buckets, c.Rotation.Buckets)
	}
	return cp
}
