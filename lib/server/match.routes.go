package server

import (
	"arena/lib/duel"
	m "arena/lib/maintenance"
	"arena/lib/server/middleware"
	"arena/lib/server/routes"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterMatchRoutes() {
	match_group := server.App.Group("/match")

	match_group.Use(middleware.ForAuthentificatedUser(func() (string, error) {
		return server.VaultManager.GetApiKey("ARENA_JWT_KEY")
	}))
	match_group.Use(middleware.OnMSS(m.MODE_OPERATIONAL, m.STATE_RUNNING, m.SUBSTATE_SAFE))

	match_group.Post("/start",
		func(c *fiber.Ctx) error {
			var data routes.MatchStartData

			if err := c.BodyParser(&data); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid request body",
				})
			}
			return routes.MatchStartHandler(data, c, server.matchDeps())
		},
	)

	match_group.Get("/status/:channel",
		func(c *fiber.Ctx) error {
			return routes.MatchStatusHandler(c, server.Registry)
		},
	)

	match_group.Get("/history/:player",
		func(c *fiber.Ctx) error {
			return routes.PlayerHistoryHandler(c, server.History)
		},
	)

	match_group.Get("/stats/:player",
		func(c *fiber.Ctx) error {
			return routes.PlayerStatsHandler(c, server.History, server.Renderer)
		},
	)
}

// matchDeps is resolved per request: the gateway and history store only exist
// once the boot sequence reaches SAFE, which the route middleware guarantees.
func (server *ArenaServer) matchDeps() *routes.MatchDeps {
	return &routes.MatchDeps{
		Registry:  server.Registry,
		Dex:       server.Dex,
		Messenger: server.Gateway,
		Renderer:  server.Renderer,
		History:   server.History,
		Archive:   server.Archive,
		Settings:  duel.DefaultSettings(),
	}
}
