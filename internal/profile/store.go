// Package profile owns all per-learner aggregate state. Every mutation of
// a learner's memory items goes through this store, which serializes
// writers per user ID.
package profile

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/learnflow/pkg/models"
)

// ErrNotFound is returned when a learner has no profile. Review recording
// requires an existing profile; plan requests create one lazily.
var ErrNotFound = fmt.Errorf("profile not found")

// ItemWriter receives mutated memory items for persistence. The store
// works without one attached; the sqlx repository satisfies this in
// production.
type ItemWriter interface {
	UpsertItem(item models.MemoryItem) error
}

// ItemLoader restores a learner's memory items from storage the first time
// the learner is seen after a restart.
type ItemLoader interface {
	GetAllForUser(userID int64) ([]models.MemoryItem, error)
}

type entry struct {
	mu      sync.Mutex
	profile *models.UserProfile
}

// Store is an in-memory arena of learner profiles keyed by user ID. Each
// profile carries its own lock, so mutations for one learner never
// interleave while different learners proceed in parallel.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*entry
	writer  ItemWriter
	loader  ItemLoader
	clock   func() time.Time
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithItemWriter attaches a persistence sink for mutated memory items.
func WithItemWriter(w ItemWriter) Option {
	return func(s *Store) { s.writer = w }
}

// WithItemLoader attaches a storage source for rehydrating learner
// profiles after a restart.
func WithItemLoader(l ItemLoader) Option {
	return func(s *Store) { s.loader = l }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// New creates an empty store.
func New(log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		entries: make(map[int64]*entry),
		clock:   time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lookup(userID int64) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	return e, ok
}

// find resolves a learner, falling back to storage rehydration when the
// learner is not yet in memory. A learner with no persisted items stays
// unknown.
func (s *Store) find(userID int64) (*entry, bool) {
	if e, ok := s.lookup(userID); ok {
		return e, true
	}
	return s.rehydrate(userID)
}

// rehydrate rebuilds a profile from the learner's persisted memory items.
// Aggregate counters restart at zero; only retention state survives a
// process restart.
func (s *Store) rehydrate(userID int64) (*entry, bool) {
	if s.loader == nil {
		return nil, false
	}
	items, err := s.loader.GetAllForUser(userID)
	if err != nil {
		s.log.Warn("memory item load failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false
	}
	if len(items) == 0 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		return e, true
	}
	p := models.NewUserProfile(userID, s.clock())
	for _, item := range items {
		p.Items[item.ContentID] = item
	}
	e := &entry{profile: p}
	s.entries[userID] = e
	s.log.Info("profile rehydrated",
		zap.Int64("user_id", userID),
		zap.Int("items", len(items)))
	return e, true
}

// Get returns a consistent snapshot of the learner's profile, or
// ErrNotFound. Snapshots are deep copies; plan construction reads once and
// is unaffected by later reviews.
func (s *Store) Get(userID int64) (*models.UserProfile, error) {
	e, ok := s.find(userID)
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Clone(), nil
}

// GetOrCreate returns a snapshot, provisioning an empty profile the first
// time a learner is seen.
func (s *Store) GetOrCreate(userID int64) *models.UserProfile {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Clone()
}

func (s *Store) getOrCreateEntry(userID int64) *entry {
	if e, ok := s.find(userID); ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		return e
	}
	e := &entry{profile: models.NewUserProfile(userID, s.clock())}
	s.entries[userID] = e
	s.log.Debug("profile created", zap.Int64("user_id", userID))
	return e
}

// Update runs fn on the learner's live profile under the learner's lock.
// fn sees before/after consistent state; concurrent updates for the same
// learner are fully serialized. Returns ErrNotFound for unknown learners.
func (s *Store) Update(userID int64, fn func(p *models.UserProfile) error) error {
	e, ok := s.find(userID)
	if !ok {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.profile); err != nil {
		return err
	}
	e.profile.UpdatedAt = s.clock()
	return nil
}

// FlushItem forwards an updated memory item to the attached persistence
// writer; without one it is a no-op. Persistence lag never fails the
// review path; the in-memory state stays authoritative for this process.
func (s *Store) FlushItem(item models.MemoryItem) {
	if s.writer == nil {
		return
	}
	if err := s.writer.UpsertItem(item); err != nil {
		s.log.Warn("memory item flush failed",
			zap.Int64("user_id", item.UserID),
			zap.Int64("content_id", item.ContentID),
			zap.Error(err))
	}
}

// UpdateItem applies fn to one memory item under the learner's lock,
// creating the item on first exposure. The updated item is flushed to the
// persistence writer after fn returns.
func (s *Store) UpdateItem(userID, contentID int64, fn func(item models.MemoryItem) (models.MemoryItem, error)) (models.MemoryItem, error) {
	var updated models.MemoryItem
	err := s.Update(userID, func(p *models.UserProfile) error {
		item, ok := p.Items[contentID]
		if !ok {
			item = models.NewMemoryItem(userID, contentID, s.clock())
		}
		next, err := fn(item)
		if err != nil {
			return err
		}
		p.Items[contentID] = next
		updated = next
		return nil
	})
	if err != nil {
		return models.MemoryItem{}, err
	}
	s.FlushItem(updated)
	return updated, nil
}

// Unlock records achievement unlocks on the profile. Unlocking is
// monotonic; already-present IDs are ignored.
func (s *Store) Unlock(userID int64, achievementIDs []string) error {
	if len(achievementIDs) == 0 {
		return nil
	}
	return s.Update(userID, func(p *models.UserProfile) error {
		for _, id := range achievementIDs {
			p.Achievements[id] = true
		}
		return nil
	})
}
