package memory

import (
	"context"
	"errors"
	"testing"

	"timer-trivia-service/internal/domain"
)

type flakyStore struct {
	inner *PlayerStore
	fail  bool
}

func (s *flakyStore) Put(ctx context.Context, record domain.PlayerRecord) error {
	if s.fail {
		return errors.New("connection refused")
	}
	return s.inner.Put(ctx, record)
}

func (s *flakyStore) Get(ctx context.Context, playerID string) (domain.PlayerRecord, error) {
	if s.fail {
		return domain.PlayerRecord{}, errors.New("connection refused")
	}
	return s.inner.Get(ctx, playerID)
}

func (s *flakyStore) List(ctx context.Context, league string) ([]domain.LeaderboardEntry, error) {
	if s.fail {
		return nil, errors.New("connection refused")
	}
	return s.inner.List(ctx, league)
}

func TestFallbackKeepsPointsWhenPrimaryDies(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: NewPlayerStore()}
	store := NewFallbackPlayerStore(primary)

	if err := store.Put(ctx, domain.PlayerRecord{PlayerID: "a:", Name: "a", Score: 100}); err != nil {
		t.Fatalf("put: %v", err)
	}

	primary.fail = true
	if err := store.Put(ctx, domain.PlayerRecord{PlayerID: "a:", Name: "a", Score: 250}); err != nil {
		t.Fatalf("degraded put should not fail: %v", err)
	}

	got, err := store.Get(ctx, "a:")
	if err != nil {
		t.Fatalf("degraded get: %v", err)
	}
	if got.Score != 250 {
		t.Fatalf("expected points preserved locally, got %d", got.Score)
	}

	entries, err := store.List(ctx, "")
	if err != nil || len(entries) != 1 || entries[0].Score != 250 {
		t.Fatalf("degraded list: %+v %v", entries, err)
	}
}

func TestFallbackPassesThroughWhenHealthy(t *testing.T) {
	ctx := context.Background()
	primary := &flakyStore{inner: NewPlayerStore()}
	store := NewFallbackPlayerStore(primary)

	_ = store.Put(ctx, domain.PlayerRecord{PlayerID: "a:", Name: "a", Score: 7})
	got, err := primary.inner.Get(ctx, "a:")
	if err != nil || got.Score != 7 {
		t.Fatalf("expected write to reach primary, got %+v %v", got, err)
	}
	if _, err := store.Get(ctx, "b:"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("not-found must pass through, got %v", err)
	}
}
