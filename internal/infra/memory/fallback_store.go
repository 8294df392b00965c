package memory

import (
	"context"
	"errors"
	"log"
	"sync"

	"timer-trivia-service/internal/app"
	"timer-trivia-service/internal/domain"
)

// FallbackPlayerStore wraps a primary store and degrades to a local in-memory
// copy when the primary fails, so a completed answer's points are never lost.
// Every write is mirrored locally up front; once degraded, the store stays
// local for the rest of the process.
type FallbackPlayerStore struct {
	primary app.PlayerStore
	local   *PlayerStore

	mu       sync.Mutex
	degraded bool
}

func NewFallbackPlayerStore(primary app.PlayerStore) *FallbackPlayerStore {
	return &FallbackPlayerStore{primary: primary, local: NewPlayerStore()}
}

func (s *FallbackPlayerStore) Put(ctx context.Context, record domain.PlayerRecord) error {
	_ = s.local.Put(ctx, record)
	if s.isDegraded() {
		return nil
	}
	if err := s.primary.Put(ctx, record); err != nil {
		s.degrade(err)
	}
	return nil
}

func (s *FallbackPlayerStore) Get(ctx context.Context, playerID string) (domain.PlayerRecord, error) {
	if s.isDegraded() {
		return s.local.Get(ctx, playerID)
	}
	record, err := s.primary.Get(ctx, playerID)
	if err == nil || errors.Is(err, domain.ErrPlayerNotFound) {
		return record, err
	}
	s.degrade(err)
	return s.local.Get(ctx, playerID)
}

func (s *FallbackPlayerStore) List(ctx context.Context, league string) ([]domain.LeaderboardEntry, error) {
	if s.isDegraded() {
		return s.local.List(ctx, league)
	}
	entries, err := s.primary.List(ctx, league)
	if err == nil {
		return entries, nil
	}
	s.degrade(err)
	return s.local.List(ctx, league)
}

func (s *FallbackPlayerStore) isDegraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *FallbackPlayerStore) degrade(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		s.degraded = true
		log.Printf("player store unavailable, continuing in-memory: %v", err)
	}
}
