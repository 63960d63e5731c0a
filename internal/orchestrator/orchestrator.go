// Package orchestrator drives one end-to-end extraction run: fetch
// conversations, mine the user's own turns for memories, and persist
// what survives deduplication.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rcliao/chat-memory/internal/dedupe"
	"github.com/rcliao/chat-memory/internal/extract"
	"github.com/rcliao/chat-memory/internal/fetch"
	"github.com/rcliao/chat-memory/internal/model"
	"github.com/rcliao/chat-memory/internal/normalize"
	"github.com/rcliao/chat-memory/internal/store"
)

// State of the orchestrator.
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateFailed     State = "failed"
)

// ErrBusy is returned when a run is requested while one is in flight.
// The request is dropped, not queued.
var ErrBusy = errors.New("extraction run already in progress")

// Config holds the run tunables.
type Config struct {
	// MaxConversations caps how many of the most recent conversations a
	// run processes.
	MaxConversations int
	// BatchSize conversations are processed between pauses.
	BatchSize int
	// BatchPause is the politeness delay between batches.
	BatchPause time.Duration
	// MaxRetries bounds per-conversation fetch attempts.
	MaxRetries int
	// InitialBackoff is the first retry delay; it doubles per retry.
	InitialBackoff time.Duration
	// DedupeThreshold is the Jaccard similarity above which a candidate
	// is dropped as a near duplicate.
	DedupeThreshold float64
	// Rules overrides the extraction rule table. Nil uses the defaults.
	Rules []extract.Rule
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MaxConversations: 15,
		BatchSize:        3,
		BatchPause:       2 * time.Second,
		MaxRetries:       3,
		InitialBackoff:   time.Second,
		DedupeThreshold:  dedupe.DefaultThreshold,
	}
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID         string `json:"run_id"`
	Conversations int    `json:"conversations"`
	Skipped       int    `json:"skipped"`
	Extracted     int    `json:"extracted"`
	Reason        string `json:"reason,omitempty"`
}

// Message returns the human-readable status for the UI surface.
func (s Summary) Message() string {
	if s.Reason != "" {
		return "Failed: " + s.Reason
	}
	return fmt.Sprintf("Complete! Extracted %d memories from %d conversations", s.Extracted, s.Conversations)
}

// Orchestrator runs extractions. At most one run is active at a time.
type Orchestrator struct {
	fetcher   fetch.Fetcher
	store     *store.Store
	extractor *extract.Extractor
	cfg       Config
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	lastSummary *Summary
}

// New creates an orchestrator over the given fetcher and store.
func New(fetcher fetch.Fetcher, st *store.Store, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.MaxConversations <= 0 {
		cfg.MaxConversations = 15
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Orchestrator{
		fetcher:   fetcher,
		store:     st,
		extractor: extract.New(cfg.Rules),
		cfg:       cfg,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastSummary returns the most recent run outcome, if any.
func (o *Orchestrator) LastSummary() *Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSummary
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes one extraction run to completion. A call while another
// run is active returns ErrBusy without side effects. Per-conversation
// failures are skipped; run-level precondition failures abort the run.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		o.logger.Warn("extraction run requested while another is active, dropping request")
		return nil, ErrBusy
	}
	o.state = StateFetching
	o.mu.Unlock()

	summary := &Summary{RunID: uuid.NewString()}
	defer func() {
		o.mu.Lock()
		o.lastSummary = summary
		o.state = StateIdle
		o.mu.Unlock()
	}()

	log := o.logger.With(zap.String("run_id", summary.RunID))
	log.Info("extraction run starting")

	refs, err := o.fetcher.ListConversations(ctx)
	if err != nil {
		o.setState(StateFailed)
		summary.Reason = err.Error()
		log.Error("listing conversations failed", zap.Error(err))
		return summary, fmt.Errorf("list conversations: %w", err)
	}

	// The list arrives most-recent first; the cap keeps runs polite.
	if len(refs) > o.cfg.MaxConversations {
		refs = refs[:o.cfg.MaxConversations]
	}

	o.setState(StateExtracting)

	idx := dedupe.NewIndex(o.cfg.DedupeThreshold, o.store.Contents())

	for start := 0; start < len(refs); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(refs) {
			end = len(refs)
		}

		for _, ref := range refs[start:end] {
			conv, err := o.fetchWithRetry(ctx, ref.ID)
			if err != nil {
				if errors.Is(err, fetch.ErrAuth) {
					o.setState(StateFailed)
					summary.Reason = err.Error()
					log.Error("session rejected mid-run, aborting", zap.Error(err))
					return summary, err
				}
				summary.Skipped++
				log.Warn("skipping conversation",
					zap.String("conversation_id", ref.ID), zap.Error(err))
				continue
			}

			accepted := o.mine(ctx, conv, idx)
			summary.Conversations++
			summary.Extracted += accepted
			log.Debug("conversation processed",
				zap.String("conversation_id", ref.ID),
				zap.String("title", conv.Title),
				zap.Int("accepted", accepted))
		}

		if end < len(refs) {
			if err := sleep(ctx, o.cfg.BatchPause); err != nil {
				summary.Reason = err.Error()
				return summary, err
			}
		}
	}

	log.Info("extraction run complete",
		zap.Int("conversations", summary.Conversations),
		zap.Int("skipped", summary.Skipped),
		zap.Int("extracted", summary.Extracted))
	return summary, nil
}

// mine extracts candidates from the human turns of one conversation and
// persists those that survive deduplication. Assistant turns are never
// mined.
func (o *Orchestrator) mine(ctx context.Context, conv *fetch.Conversation, idx *dedupe.Index) int {
	accepted := 0
	for _, turn := range conv.Turns {
		if turn.Speaker != fetch.SpeakerHuman {
			continue
		}

		text := normalize.Clean(turn.Text)
		for _, c := range o.extractor.Extract(text) {
			content := extract.FormatContent(c)
			if idx.IsDuplicate(content) {
				continue
			}

			o.store.Save(ctx, model.Memory{
				ID:          model.NewID(),
				Content:     content,
				Category:    c.Category,
				Source:      conv.ID,
				SourceTitle: conv.Title,
				Confidence:  extract.Score(c.RawMatch),
				CreatedAt:   time.Now().UTC(),
				RawMatch:    c.RawMatch,
			})
			idx.Add(content)
			accepted++
		}
	}
	return accepted
}

// fetchWithRetry fetches one conversation with exponential backoff.
// Auth and malformed-response errors are not retried.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, id string) (*fetch.Conversation, error) {
	delay := o.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= o.cfg.MaxRetries; attempt++ {
		conv, err := o.fetcher.GetConversation(ctx, id)
		if err == nil {
			return conv, nil
		}
		lastErr = err

		if errors.Is(err, fetch.ErrAuth) || errors.Is(err, fetch.ErrMalformed) {
			return nil, err
		}
		if attempt == o.cfg.MaxRetries {
			break
		}

		o.logger.Warn("fetch attempt failed, backing off",
			zap.String("conversation_id", id),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	return nil, fmt.Errorf("after %d attempts: %w", o.cfg.MaxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
