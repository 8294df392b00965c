package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"timer-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	drawCurrentKey = "quiz:draw:current"
	drawLogKey     = "quiz:draw:winners"
)

// DrawLog records lucky-draw winners in Redis. SET NX on the current-winner
// key is the atomic guard: under concurrent callers exactly one append wins
// and everyone else reads that winner back for the rest of the replay window.
type DrawLog struct {
	client *redis.Client
	window time.Duration
}

func NewDrawLog(client *redis.Client, replayWindow time.Duration) *DrawLog {
	return &DrawLog{client: client, window: replayWindow}
}

func (l *DrawLog) RecordWinner(ctx context.Context, entry domain.DrawRecord) (domain.DrawRecord, bool, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("marshal draw record: %w", err)
	}

	set, err := l.client.SetNX(ctx, drawCurrentKey, data, l.window).Result()
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !set {
		raw, err := l.client.Get(ctx, drawCurrentKey).Bytes()
		if err == redis.Nil {
			// The window expired between SetNX and Get; treat our entry as won.
			return l.append(ctx, entry, data)
		}
		if err != nil {
			return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		var current domain.DrawRecord
		if err := json.Unmarshal(raw, &current); err != nil {
			return domain.DrawRecord{}, false, fmt.Errorf("unmarshal draw record: %w", err)
		}
		return current, false, nil
	}
	return l.append(ctx, entry, data)
}

func (l *DrawLog) append(ctx context.Context, entry domain.DrawRecord, data []byte) (domain.DrawRecord, bool, error) {
	if err := l.client.LPush(ctx, drawLogKey, data).Err(); err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return entry, true, nil
}

func (l *DrawLog) CurrentWinner(ctx context.Context) (domain.DrawRecord, bool, error) {
	raw, err := l.client.Get(ctx, drawCurrentKey).Bytes()
	if err == redis.Nil {
		return domain.DrawRecord{}, false, nil
	}
	if err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var current domain.DrawRecord
	if err := json.Unmarshal(raw, &current); err != nil {
		return domain.DrawRecord{}, false, fmt.Errorf("unmarshal draw record: %w", err)
	}
	return current, true, nil
}

func (l *DrawLog) RecentWinners(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raws, err := l.client.LRange(ctx, drawLogKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	winners := make([]domain.DrawRecord, 0, len(raws))
	for _, raw := range raws {
		var record domain.DrawRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		winners = append(winners, record)
	}
	return winners, nil
}
