package memory

import (
	"context"
	"sync"

	"timer-trivia-service/internal/domain"
)

// PlayerStore is an in-memory implementation of app.PlayerStore.
type PlayerStore struct {
	mu      sync.RWMutex
	records map[string]domain.PlayerRecord
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{records: make(map[string]domain.PlayerRecord)}
}

func (s *PlayerStore) Put(_ context.Context, record domain.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.PlayerID] = record
	return nil
}

func (s *PlayerStore) Get(_ context.Context, playerID string) (domain.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[playerID]
	if !ok {
		return domain.PlayerRecord{}, domain.ErrPlayerNotFound
	}
	return record, nil
}

func (s *PlayerStore) List(_ context.Context, league string) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.records))
	for _, record := range s.records {
		if league != "" && record.League != league {
			continue
		}
		entries = append(entries, record.Entry())
	}
	s.mu.RUnlock()

	domain.SortEntries(entries)
	return entries, nil
}
