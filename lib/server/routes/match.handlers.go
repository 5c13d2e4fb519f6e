package routes

import (
	"context"
	"log/slog"
	"strings"

	"arena/lib/archive"
	"arena/lib/duel"
	"arena/lib/history"
	"arena/lib/platform"
	"arena/lib/render"
	"arena/lib/server/middleware"

	"github.com/gofiber/fiber/v2"
)

type OpponentData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"is_bot"`
}

type MatchStartData struct {
	ChallengerName string         `json:"challenger_name"`
	Opponents      []OpponentData `json:"opponents"`
	Rounds         int            `json:"rounds"`
	DuelType       string         `json:"duel_type"`
}

// MatchDeps bundles the collaborators a duel needs. Built once at boot.
type MatchDeps struct {
	Registry  *duel.Registry
	Dex       duel.Provider
	Messenger platform.Messenger
	Renderer  *render.Generator
	History   *history.Store
	Archive   *archive.WorkerPool
	Settings  duel.Settings
}

// MatchStartHandler validates a challenge, provisions an isolated channel and
// registers the match. Structural violations fail fast: no channel is created
// and no match object exists.
func MatchStartHandler(data MatchStartData, ctx *fiber.Ctx, deps *MatchDeps) error {
	challenger_id, err := middleware.GetPlayerID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown user",
		})
	}

	variant, err := duel.ParseVariant(data.DuelType)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	players := []duel.Player{{ID: challenger_id, Name: data.ChallengerName}}
	for _, opponent := range data.Opponents {
		players = append(players, duel.Player{ID: opponent.ID, Name: opponent.Name, IsBot: opponent.IsBot})
	}

	// Validate before provisioning anything platform-side.
	if err := duel.ValidateChallenge(players, data.Rounds); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	onEnd := func(result *duel.Result) {
		if err := deps.Registry.Complete(result.ChannelID); err != nil {
			slog.Warn("Match : completed duel was not registered", "channel_id", result.ChannelID, "error", err)
		}
		if err := deps.History.Append(context.Background(), result); err != nil {
			slog.Error("Match : failed to record duel history", "match_id", result.MatchID, "error", err)
		}
		if err := deps.Archive.Submit(result); err != nil {
			slog.Error("Match : failed to queue duel for archival", "match_id", result.MatchID, "error", err)
		}
	}

	channel_name := duelChannelName(players)
	participant_ids := make([]string, len(players))
	for i, p := range players {
		participant_ids[i] = p.ID
	}

	channel_id, err := deps.Messenger.CreateMatchChannel(ctx.Context(), channel_name, participant_ids)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "cannot create duel channel",
		})
	}

	match, err := duel.NewMatch(channel_id, players, data.Rounds, variant, deps.Dex, deps.Messenger, deps.Settings, onEnd)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	match.SetRenderer(deps.Renderer)

	// The registry context outlives this request; events keep flowing for the
	// whole duel.
	if err := deps.Registry.Register(context.Background(), match); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	match.Begin(ctx.Context())

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"match_id":   match.ID,
		"channel_id": channel_id,
		"duel_type":  string(variant),
		"rounds":     match.Rounds,
	})
}

// MatchStatusHandler reports the live (or final) state of the duel on a
// channel.
func MatchStatusHandler(ctx *fiber.Ctx, registry *duel.Registry) error {
	channel_id := ctx.Params("channel")

	if match, ok := registry.Active(channel_id); ok {
		return ctx.JSON(matchStatus(match, "active"))
	}
	if match, ok := registry.Completed(channel_id); ok {
		return ctx.JSON(matchStatus(match, "completed"))
	}
	return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "no duel on this channel",
	})
}

func matchStatus(match *duel.Match, status string) fiber.Map {
	return fiber.Map{
		"status":    status,
		"match_id":  match.ID,
		"phase":     match.Phase().String(),
		"round":     match.Round(),
		"scores":    match.Scores(),
		"duel_type": string(match.Variant),
		"rounds":    match.Rounds,
	}
}

func duelChannelName(players []duel.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = strings.ToLower(p.Name)
	}
	return "duel-" + strings.Join(names, "-vs-")
}
