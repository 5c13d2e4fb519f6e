package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"arena/lib/duel"
	"arena/lib/services"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertMatchResultSQL = `
INSERT INTO match_results (
	match_id, channel_id, duel_type, rounds, is_triple,
	winner_id, player_ids, player_names, scores, round_history, ended_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (match_id) DO NOTHING`

func insertMatchResult(ctx context.Context, result *duel.Result, db *services.Database) error {
	query_ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.Pool.Begin(query_ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(query_ctx)

	var match_id pgtype.UUID
	if err := match_id.Scan(result.MatchID); err != nil {
		return fmt.Errorf("failed to convert match id: %w", err)
	}

	round_history, err := json.Marshal(result.History)
	if err != nil {
		return fmt.Errorf("failed to encode round history: %w", err)
	}

	scores := make([]int32, len(result.Scores))
	for i, s := range result.Scores {
		scores[i] = int32(s)
	}

	_, err = tx.Exec(query_ctx, insertMatchResultSQL,
		match_id,
		result.ChannelID,
		string(result.Variant),
		int32(result.Rounds),
		result.IsTriple,
		result.WinnerID,
		result.PlayerIDs,
		result.PlayerNames,
		scores,
		round_history,
		result.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store the result of the duel: %w", err)
	}

	if err := tx.Commit(query_ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
