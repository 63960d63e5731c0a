package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/chat-memory/internal/model"
)

// failingBackend fails every persistent operation.
type failingBackend struct{}

var errBackend = errors.New("backend down")

func (failingBackend) Put(context.Context, model.Memory) error       { return errBackend }
func (failingBackend) Delete(context.Context, string) error          { return errBackend }
func (failingBackend) GetAll(context.Context) ([]model.Memory, error) { return nil, errBackend }
func (failingBackend) Close() error                                  { return nil }

func newTestMemory(id, content string, createdAt time.Time) model.Memory {
	return model.Memory{
		ID:         id,
		Content:    content,
		Category:   model.CategoryPreference,
		Source:     model.SourceManual,
		Confidence: 0.7,
		CreatedAt:  createdAt,
	}
}

func TestSaveListDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMem(), zap.NewNop())

	m := newTestMemory("id-1", "User prefers quiet offices", time.Now().UTC())
	m.SourceTitle = "Office chat"
	m.RawMatch = "I prefer quiet offices"
	s.Save(ctx, m)

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 memory, got %d", len(list))
	}
	if list[0] != m {
		t.Errorf("round trip changed fields: got %+v, want %+v", list[0], m)
	}

	s.Delete(ctx, m.ID)
	if len(s.List()) != 0 {
		t.Error("expected empty list after delete")
	}

	// Deleting an absent id is a no-op.
	s.Delete(ctx, "missing")
}

func TestSaveClampsConfidence(t *testing.T) {
	ctx := context.Background()
	s := New(NewMem(), zap.NewNop())

	m := newTestMemory("id-1", "content here", time.Now())
	m.Confidence = 1.4
	s.Save(ctx, m)

	got, ok := s.Get("id-1")
	if !ok {
		t.Fatal("expected memory to exist")
	}
	if got.Confidence != 1.0 {
		t.Errorf("expected confidence clamped to 1.0, got %f", got.Confidence)
	}
}

func TestSaveIsIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	s := New(NewMem(), zap.NewNop())

	m := newTestMemory("id-1", "first", time.Now())
	s.Save(ctx, m)
	s.Save(ctx, m)
	if s.Len() != 1 {
		t.Errorf("expected 1 memory after duplicate save, got %d", s.Len())
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(NewMem(), zap.NewNop())

	base := time.Now().UTC()
	s.Save(ctx, newTestMemory("a", "oldest", base.Add(-2*time.Hour)))
	s.Save(ctx, newTestMemory("b", "newest", base))
	s.Save(ctx, newTestMemory("c", "middle", base.Add(-time.Hour)))

	list := s.List()
	if list[0].ID != "b" || list[1].ID != "c" || list[2].ID != "a" {
		t.Errorf("expected newest-first order b,c,a, got %s,%s,%s", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestLoadMergesBackendOverIndex(t *testing.T) {
	ctx := context.Background()
	backend := NewMem()
	s := New(backend, zap.NewNop())

	persisted := newTestMemory("id-1", "persisted content", time.Now())
	if err := backend.Put(ctx, persisted); err != nil {
		t.Fatalf("seed backend: %v", err)
	}

	// Session entry sharing the id gets overwritten by the persisted one.
	s.memories["id-1"] = newTestMemory("id-1", "session content", time.Now())
	s.memories["id-2"] = newTestMemory("id-2", "session only", time.Now())

	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, _ := s.Get("id-1")
	if got.Content != "persisted content" {
		t.Errorf("expected persisted entry to win, got %q", got.Content)
	}
	if _, ok := s.Get("id-2"); !ok {
		t.Error("expected session-only entry to survive merge")
	}
}

func TestBackendFailureDegradesToSessionOnly(t *testing.T) {
	ctx := context.Background()
	s := New(failingBackend{}, zap.NewNop())

	m := newTestMemory("id-1", "still here", time.Now())
	s.Save(ctx, m)

	// The index is the session's source of truth despite the failed write.
	if _, ok := s.Get("id-1"); !ok {
		t.Error("expected memory in index after backend failure")
	}

	s.Delete(ctx, "id-1")
	if _, ok := s.Get("id-1"); ok {
		t.Error("expected memory removed from index despite backend failure")
	}

	if err := s.Load(ctx); err == nil {
		t.Error("expected load to report backend failure")
	}
}
