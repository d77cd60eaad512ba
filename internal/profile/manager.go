package profile

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brightpost/draftforge/internal/store"
)

// ProfileStore defines the storage operations the Manager needs.
// Implemented by store.Store.
type ProfileStore interface {
	GetProfileJSON(userID string) ([]byte, error)
	SetProfileJSON(userID string, raw []byte) error
	ListProfileDocuments(userID string) ([]store.ProfileDocument, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type cacheEntry struct {
	profile  Profile
	cachedAt time.Time
}

// Manager provides cached, structured access to business profiles stored in
// SQLite.
type Manager struct {
	store ProfileStore
	clock Clock
	ttl   time.Duration

	mu     sync.RWMutex
	cached map[string]cacheEntry
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store ProfileStore) *Manager {
	return NewManagerWithClock(store, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store ProfileStore, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		clock:  clock,
		ttl:    ttl,
		cached: make(map[string]cacheEntry),
	}
}

// Get returns the user's business profile. A missing profile surfaces as
// store.ErrNotFound.
func (m *Manager) Get(userID string) (Profile, error) {
	// Fast path: read lock for cache hit.
	m.mu.RLock()
	if entry, ok := m.cached[userID]; ok && m.clock.Now().Before(entry.cachedAt.Add(m.ttl)) {
		p := deepCopyProfile(entry.profile)
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	// Slow path: write lock for cache miss.
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if entry, ok := m.cached[userID]; ok && m.clock.Now().Before(entry.cachedAt.Add(m.ttl)) {
		return deepCopyProfile(entry.profile), nil
	}

	raw, err := m.store.GetProfileJSON(userID)
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing stored profile for %s: %w", userID, err)
	}

	m.cached[userID] = cacheEntry{profile: p, cachedAt: m.clock.Now()}
	return deepCopyProfile(p), nil
}

// Set validates and persists the profile, then invalidates the user's cache
// entry.
func (m *Manager) Set(userID string, p Profile) error {
	if err := Validate(p); err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling profile for %s: %w", userID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetProfileJSON(userID, raw); err != nil {
		return fmt.Errorf("storing profile for %s: %w", userID, err)
	}

	delete(m.cached, userID)
	return nil
}

// Documents returns the user's uploaded profile documents, newest first.
func (m *Manager) Documents(userID string) ([]store.ProfileDocument, error) {
	return m.store.ListProfileDocuments(userID)
}

// Invalidate drops the user's cache entry so the next Get reloads from
// storage.
func (m *Manager) Invalidate(userID string) {
	m.mu.Lock()
	delete(m.cached, userID)
	m.mu.Unlock()
}

// Validate checks that the fields generation depends on are present.
func Validate(p Profile) error {
	var missing []string
	if strings.TrimSpace(p.BusinessName) == "" {
		missing = append(missing, "business_name")
	}
	if strings.TrimSpace(p.Industry) == "" {
		missing = append(missing, "industry")
	}
	if strings.TrimSpace(p.ProductsServices) == "" {
		missing = append(missing, "products_services")
	}
	if strings.TrimSpace(p.TargetAudience) == "" {
		missing = append(missing, "target_audience")
	}
	if len(missing) > 0 {
		return fmt.Errorf("profile missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func deepCopyProfile(p Profile) Profile {
	cp := p
	if p.Keywords != nil {
		cp.Keywords = make([]string, len(p.Keywords))
		copy(cp.Keywords, p.Keywords)
	}
	return cp
}
