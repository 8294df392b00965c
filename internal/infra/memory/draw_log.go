package memory

import (
	"context"
	"sync"
	"time"

	"timer-trivia-service/internal/domain"
)

// DrawLog is an in-memory implementation of app.DrawLog. The mutex makes the
// check-then-append step atomic, so concurrent draws agree on one winner per
// replay window.
type DrawLog struct {
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	records []domain.DrawRecord
}

func NewDrawLog(replayWindow time.Duration) *DrawLog {
	return &DrawLog{window: replayWindow, clock: time.Now}
}

// NewDrawLogWithClock allows deterministic timestamps in tests.
func NewDrawLogWithClock(replayWindow time.Duration, clock func() time.Time) *DrawLog {
	return &DrawLog{window: replayWindow, clock: clock}
}

func (l *DrawLog) RecordWinner(_ context.Context, entry domain.DrawRecord) (domain.DrawRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.records); n > 0 && l.window > 0 {
		last := l.records[n-1]
		if l.clock().Sub(last.DrawnAt) < l.window {
			return last, false, nil
		}
	}
	l.records = append(l.records, entry)
	return entry, true, nil
}

func (l *DrawLog) CurrentWinner(_ context.Context) (domain.DrawRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.records); n > 0 && l.window > 0 {
		last := l.records[n-1]
		if l.clock().Sub(last.DrawnAt) < l.window {
			return last, true, nil
		}
	}
	return domain.DrawRecord{}, false, nil
}

func (l *DrawLog) RecentWinners(_ context.Context, limit int) ([]domain.DrawRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.DrawRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.records[i])
	}
	return out, nil
}
