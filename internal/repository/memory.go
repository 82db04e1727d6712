package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

var errStoreClosed = errors.New("store closed")

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.TransactionRecord
	subs    map[int]chan struct{}
	nextSub int
	closed  bool
	logger  *slog.Logger
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.TransactionRecord),
		subs:    make(map[int]chan struct{}),
		logger:  logger,
	}
}

func (s *MemoryStore) Save(_ context.Context, rec domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return unavailable("Save", errStoreClosed)
	}
	s.records[rec.ID] = rec

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, unavailable("ListAll", errStoreClosed)
	}
	return s.snapshot(), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan []domain.TransactionRecord, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, unavailable("Subscribe", errStoreClosed)
	}
	id := s.nextSub
	s.nextSub++
	changed := make(chan struct{}, 1)
	s.subs[id] = changed
	initial := s.snapshot()
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return stream(ctx, s.logger, initial, changed, s.ListAll, release), nil
}

// Close ends every open subscription.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	return nil
}

// Subscribers reports how many subscriptions are currently registered.
func (s *MemoryStore) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// snapshot must be called with mu held.
func (s *MemoryStore) snapshot() []domain.TransactionRecord {
	out := make([]domain.TransactionRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	domain.SortNewestFirst(out)
	return out
}
