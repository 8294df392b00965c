package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"timer-trivia-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	playerKeyPrefix = "quiz:player:"
	playerIndexKey  = "quiz:players"
)

// PlayerStore keeps player records in Redis: one JSON value per record plus a
// set of known ids for listing. Each record is only written by its own
// session, so plain SET is race-free per key.
type PlayerStore struct {
	client *redis.Client
}

func NewPlayerStore(client *redis.Client) *PlayerStore {
	return &PlayerStore{client: client}
}

func (s *PlayerStore) Put(ctx context.Context, record domain.PlayerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal player %s: %w", record.PlayerID, err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKeyPrefix+record.PlayerID, data, 0)
	pipe.SAdd(ctx, playerIndexKey, record.PlayerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PlayerStore) Get(ctx context.Context, playerID string) (domain.PlayerRecord, error) {
	data, err := s.client.Get(ctx, playerKeyPrefix+playerID).Bytes()
	if err == redis.Nil {
		return domain.PlayerRecord{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.PlayerRecord{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var record domain.PlayerRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.PlayerRecord{}, fmt.Errorf("unmarshal player %s: %w", playerID, err)
	}
	return record, nil
}

func (s *PlayerStore) List(ctx context.Context, league string) ([]domain.LeaderboardEntry, error) {
	ids, err := s.client.SMembers(ctx, playerIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // id indexed but value expired or missing
		}
		var record domain.PlayerRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		if league != "" && record.League != league {
			continue
		}
		entries = append(entries, record.Entry())
	}
	domain.SortEntries(entries)
	return entries, nil
}
