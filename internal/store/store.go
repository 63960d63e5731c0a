// Package store provides the memory store: an in-memory index over a
// pluggable persistent backend.
package store

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rcliao/chat-memory/internal/model"
)

// Backend is the persistent backing store, keyed by memory id.
type Backend interface {
	// Put upserts a memory by id.
	Put(ctx context.Context, m model.Memory) error

	// Delete removes a memory by id. Absent ids are a no-op.
	Delete(ctx context.Context, id string) error

	// GetAll returns every stored memory.
	GetAll(ctx context.Context) ([]model.Memory, error)

	// Close closes the backend.
	Close() error
}

// Store keeps the session's memories in an in-memory index and mirrors
// every change to the backend. The index is the source of truth for the
// running session: a failed backend write is logged and degrades that
// memory to session-only durability, it never rolls back the index.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu       sync.RWMutex
	memories map[string]model.Memory
}

// New creates a store over the given backend.
func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend:  backend,
		logger:   logger,
		memories: make(map[string]model.Memory),
	}
}

// Load populates the index from the backend. Persisted entries overwrite
// in-memory entries sharing an id. Intended to run once at startup.
func (s *Store) Load(ctx context.Context) error {
	persisted, err := s.backend.GetAll(ctx)
	if err != nil {
		s.logger.Warn("load from backend failed, starting with session-only memories", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range persisted {
		s.memories[m.ID] = m
	}
	return nil
}

// Save upserts a memory into the index and the backend. Idempotent.
func (s *Store) Save(ctx context.Context, m model.Memory) {
	m.Confidence = model.ClampConfidence(m.Confidence)

	s.mu.Lock()
	s.memories[m.ID] = m
	s.mu.Unlock()

	if err := s.backend.Put(ctx, m); err != nil {
		s.logger.Warn("persist memory failed, kept in session only",
			zap.String("id", m.ID), zap.Error(err))
	}
}

// Delete removes a memory from the index and the backend. No-op if absent.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.memories, id)
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Warn("delete memory from backend failed", zap.String("id", id), zap.Error(err))
	}
}

// Get returns a memory by id.
func (s *Store) Get(id string) (model.Memory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memories[id]
	return m, ok
}

// List returns all memories, newest first. Ties break on id so the
// ordering is stable across calls.
func (s *Store) List() []model.Memory {
	s.mu.RLock()
	memories := make([]model.Memory, 0, len(s.memories))
	for _, m := range s.memories {
		memories = append(memories, m)
	}
	s.mu.RUnlock()

	sort.Slice(memories, func(i, j int) bool {
		if !memories[i].CreatedAt.Equal(memories[j].CreatedAt) {
			return memories[i].CreatedAt.After(memories[j].CreatedAt)
		}
		return memories[i].ID > memories[j].ID
	})
	return memories
}

// Contents returns the content strings of all memories, for seeding the
// duplicate filter.
func (s *Store) Contents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contents := make([]string, 0, len(s.memories))
	for _, m := range s.memories {
		contents = append(contents, m.Content)
	}
	return contents
}

// Len returns the number of memories in the index.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
