package store

import (
	"context"
	"sync"

	"github.com/rcliao/chat-memory/internal/model"
)

// Mem is a Backend that keeps everything in process memory. Used for
// dry runs and tests.
type Mem struct {
	mu       sync.Mutex
	memories map[string]model.Memory
}

// NewMem creates an empty in-memory backend.
func NewMem() *Mem {
	return &Mem{memories: make(map[string]model.Memory)}
}

func (b *Mem) Put(_ context.Context, m model.Memory) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.memories[m.ID] = m
	return nil
}

func (b *Mem) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.memories, id)
	return nil
}

func (b *Mem) GetAll(_ context.Context) ([]model.Memory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	memories := make([]model.Memory, 0, len(b.memories))
	for _, m := range b.memories {
		memories = append(memories, m)
	}
	return memories, nil
}

func (b *Mem) Close() error { return nil }
