package routes

import (
	"arena/lib/history"
	"arena/lib/render"

	"github.com/gofiber/fiber/v2"
)

// PlayerHistoryHandler returns a player's most recent duel records, oldest
// first. Defaults to the last 5; ?limit=0 returns the full retained window.
func PlayerHistoryHandler(ctx *fiber.Ctx, store *history.Store) error {
	player_id := ctx.Params("player")
	if player_id == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "player is required",
		})
	}

	records, err := store.Load(ctx.Context(), player_id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "cannot load player history",
		})
	}
	if records == nil {
		records = []history.Record{}
	}

	limit := ctx.QueryInt("limit", 5)
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	return ctx.JSON(fiber.Map{
		"player_id": player_id,
		"records":   records,
	})
}

// PlayerStatsHandler aggregates a player's record. With ?image=true the
// response is a rendered stats card instead of JSON.
func PlayerStatsHandler(ctx *fiber.Ctx, store *history.Store, renderer *render.Generator) error {
	player_id := ctx.Params("player")
	if player_id == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "player is required",
		})
	}

	records, err := store.Load(ctx.Context(), player_id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "cannot load player history",
		})
	}

	stats := history.Compute(player_id, records)

	if ctx.QueryBool("image") {
		display_name := ctx.Query("name", player_id)
		card, err := renderer.StatsCard(display_name, stats)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "cannot render stats card",
			})
		}
		ctx.Set(fiber.HeaderContentType, "image/png")
		return ctx.Send(card)
	}

	return ctx.JSON(fiber.Map{
		"player_id": player_id,
		"stats":     stats,
	})
}
