package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"quiz-portal/pkg/cache"
)

// Store persists State by opaque session id. Load of an unknown id returns a
// fresh empty State, never an error.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, state *State) error
	Delete(ctx context.Context, id string) error
}

const keyPrefix = "session:"

type RedisStore struct {
	redis *cache.RedisClient
	ttl   time.Duration
}

func NewRedisStore(redis *cache.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redis, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.redis.Get(ctx, keyPrefix+id)
	if errors.Is(err, cache.ErrCacheMiss) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state := New()
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, keyPrefix+id, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MemoryStore keeps sessions in process memory. Used when Redis is not
// reachable and in tests; entries expire after ttl. Save sweeps expired
// entries at most once per ttl.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	sessions  map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok && s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	s.mu.Unlock()

	state := New()
	if !ok {
		return state, nil
	}

	if err := json.Unmarshal(entry.data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return state, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	now := s.now()
	if s.ttl > 0 && now.Sub(s.lastSweep) >= s.ttl {
		for key, entry := range s.sessions {
			if now.After(entry.expiresAt) {
				delete(s.sessions, key)
			}
		}
		s.lastSweep = now
	}
	s.sessions[id] = memoryEntry{data: data, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len reports how many sessions are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
