package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// History records live under one key per player. Each write replaces the
// whole list, so the stored value is always the complete retained history.

func historyKey(player_id string) string {
	return fmt.Sprintf("history:player:%s", player_id)
}

func (cache *Cache) GetPlayerHistory(ctx context.Context, player_id string) ([]byte, error) {
	raw, err := cache.Db.Get(ctx, historyKey(player_id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read player history: %w", err)
	}
	return raw, nil
}

func (cache *Cache) SetPlayerHistory(ctx context.Context, player_id string, records []byte) error {
	err := cache.Db.Set(ctx, historyKey(player_id), records, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to write player history: %w", err)
	}
	return nil
}

// ScanHistoryPlayers lists every player ID with stored history.
func (cache *Cache) ScanHistoryPlayers(ctx context.Context) ([]string, error) {
	var players []string
	var cursor uint64

	for {
		keys, next, err := cache.Db.Scan(ctx, cursor, "history:player:*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan player history keys: %w", err)
		}
		for _, key := range keys {
			players = append(players, key[len("history:player:"):])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return players, nil
}
