package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"arena/lib/duel"
	"arena/lib/services"
)

// MaxRecordsPerPlayer caps each player's retained history; older records are
// discarded oldest-first.
const MaxRecordsPerPlayer = 20

// Record is one completed duel. The same record is appended to every
// participant's history.
type Record struct {
	Timestamp   time.Time    `json:"timestamp"`
	MatchID     string       `json:"match_id"`
	PlayerIDs   []string     `json:"player_ids"`
	PlayerNames []string     `json:"player_names"`
	Scores      []int        `json:"scores"`
	Rounds      int          `json:"rounds"`
	Variant     duel.Variant `json:"duel_type"`
	WinnerID    string       `json:"winner"`
	LoserIDs    []string     `json:"losers"`
	IsTriple    bool         `json:"is_triple"`
}

// FromResult flattens a terminal match snapshot into a history record.
func FromResult(result *duel.Result) Record {
	return Record{
		Timestamp:   result.EndedAt,
		MatchID:     result.MatchID,
		PlayerIDs:   result.PlayerIDs,
		PlayerNames: result.PlayerNames,
		Scores:      result.Scores,
		Rounds:      result.Rounds,
		Variant:     result.Variant,
		WinnerID:    result.WinnerID,
		LoserIDs:    result.LoserIDs,
		IsTriple:    result.IsTriple,
	}
}

// Store persists per-player duel history in the cache. Every write replaces
// the player's full list, so a read always sees a consistent trimmed history.
type Store struct {
	cache *services.Cache
}

func NewStore(cache *services.Cache) *Store {
	return &Store{cache: cache}
}

// Load returns a player's retained history, oldest first. A player with no
// history yields an empty slice. Corrupt stored data counts as no history:
// the next append overwrites it with a fresh list.
func (s *Store) Load(ctx context.Context, player_id string) ([]Record, error) {
	raw, err := s.cache.GetPlayerHistory(ctx, player_id)
	if err != nil {
		return nil, err
	}
	return decodeRecords(player_id, raw), nil
}

// decodeRecords treats undecodable history as empty rather than failing, so
// one corrupt value can never wedge a player's history for good.
func decodeRecords(player_id string, raw []byte) []Record {
	if raw == nil {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		slog.Warn("History : corrupt stored history, starting empty", "player_id", player_id, "error", err)
		return nil
	}
	return records
}

// Append records a finished duel for every participant, enforcing the
// per-player retention cap.
func (s *Store) Append(ctx context.Context, result *duel.Result) error {
	record := FromResult(result)

	for _, player_id := range result.PlayerIDs {
		records, err := s.Load(ctx, player_id)
		if err != nil {
			return err
		}

		records = appendTrimmed(records, record)

		raw, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode history for player %s: %w", player_id, err)
		}
		if err := s.cache.SetPlayerHistory(ctx, player_id, raw); err != nil {
			return err
		}
	}
	return nil
}

func appendTrimmed(records []Record, record Record) []Record {
	records = append(records, record)
	if len(records) > MaxRecordsPerPlayer {
		records = records[len(records)-MaxRecordsPerPlayer:]
	}
	return records
}
