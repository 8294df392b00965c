package memory

import (
	"context"
	"testing"
	"time"

	"timer-trivia-service/internal/domain"
)

func TestDrawLogReplayWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	log := NewDrawLogWithClock(time.Hour, clock)

	first, fresh, err := log.RecordWinner(ctx, domain.DrawRecord{Winner: "alice", DrawnAt: now})
	if err != nil || !fresh {
		t.Fatalf("first draw: fresh=%v err=%v", fresh, err)
	}

	// Within the window the prior winner is reused.
	now = now.Add(30 * time.Minute)
	reused, fresh, err := log.RecordWinner(ctx, domain.DrawRecord{Winner: "bob", DrawnAt: now})
	if err != nil || fresh {
		t.Fatalf("replay draw: fresh=%v err=%v", fresh, err)
	}
	if reused.Winner != first.Winner {
		t.Fatalf("expected cached winner %s, got %s", first.Winner, reused.Winner)
	}

	// Past the window a new winner is appended.
	now = now.Add(31 * time.Minute)
	second, fresh, err := log.RecordWinner(ctx, domain.DrawRecord{Winner: "bob", DrawnAt: now})
	if err != nil || !fresh || second.Winner != "bob" {
		t.Fatalf("post-window draw: %+v fresh=%v err=%v", second, fresh, err)
	}

	winners, err := log.RecentWinners(ctx, 0)
	if err != nil || len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d (%v)", len(winners), err)
	}
	if winners[0].Winner != "bob" {
		t.Fatalf("expected most recent first, got %s", winners[0].Winner)
	}

	limited, _ := log.RecentWinners(ctx, 1)
	if len(limited) != 1 || limited[0].Winner != "bob" {
		t.Fatalf("expected limit 1 to return bob, got %+v", limited)
	}
}
