package redis

import (
	"context"
	"testing"
	"time"

	"timer-trivia-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestDrawLogAtMostOneWinnerPerWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	log := NewDrawLog(newClient(mr), time.Hour)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first, fresh, err := log.RecordWinner(ctx, domain.DrawRecord{Winner: "alice", League: "MZ", DrawnAt: now})
	if err != nil || !fresh || first.Winner != "alice" {
		t.Fatalf("first draw: %+v fresh=%v err=%v", first, fresh, err)
	}

	reused, fresh, err := log.RecordWinner(ctx, domain.DrawRecord{Winner: "bob", DrawnAt: now})
	if err != nil || fresh {
		t.Fatalf("second draw should reuse: fresh=%v err=%v", fresh, err)
	}
	if reused.Winner != "alice" {
		t.Fatalf("expected cached winner alice, got %s", reused.Winner)
	}

	// Window expiry releases the guard.
	mr.FastForward(2 * time.Hour)
	second, fresh, err := log.RecordWinner(ctx, domain.DrawRecord{Winner: "bob", DrawnAt: now.Add(2 * time.Hour)})
	if err != nil || !fresh || second.Winner != "bob" {
		t.Fatalf("post-expiry draw: %+v fresh=%v err=%v", second, fresh, err)
	}

	winners, err := log.RecentWinners(ctx, 0)
	if err != nil || len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d (%v)", len(winners), err)
	}
	if winners[0].Winner != "bob" || winners[1].Winner != "alice" {
		t.Fatalf("expected most recent first, got %+v", winners)
	}

	limited, _ := log.RecentWinners(ctx, 1)
	if len(limited) != 1 || limited[0].Winner != "bob" {
		t.Fatalf("limit 1: %+v", limited)
	}
}
