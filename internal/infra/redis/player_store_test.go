package redis

import (
	"context"
	"testing"

	"timer-trivia-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestPlayerStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewPlayerStore(newClient(mr))

	if _, err := store.Get(ctx, "missing:"); err != domain.ErrPlayerNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	record := domain.PlayerRecord{
		PlayerID: "alice:MZ", Name: "alice", League: "MZ",
		Score: 360, CorrectCount: 1, TotalTime: 5.5, CurrentQ: 1,
	}
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "alice:MZ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 360 || got.TotalTime != 5.5 || got.CurrentQ != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestPlayerStoreListOrdersAndFilters(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewPlayerStore(newClient(mr))

	_ = store.Put(ctx, domain.PlayerRecord{PlayerID: "a:MZ", Name: "a", League: "MZ", Score: 500, TotalTime: 4.0})
	_ = store.Put(ctx, domain.PlayerRecord{PlayerID: "b:MZ", Name: "b", League: "MZ", Score: 500, TotalTime: 3.0})
	_ = store.Put(ctx, domain.PlayerRecord{PlayerID: "c:50+", Name: "c", League: "50+", Score: 900})

	entries, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 || entries[0].Name != "c" || entries[1].Name != "b" || entries[2].Name != "a" {
		t.Fatalf("unexpected order: %+v", entries)
	}

	mz, err := store.List(ctx, "MZ")
	if err != nil || len(mz) != 2 {
		t.Fatalf("league filter: %+v %v", mz, err)
	}
	if mz[0].Name != "b" || mz[0].Rank != 1 {
		t.Fatalf("expected b ranked first in MZ, got %+v", mz[0])
	}
}
