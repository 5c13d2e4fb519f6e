package server

import (
	m "arena/lib/maintenance"
	"arena/lib/server/middleware"
	"arena/lib/server/routes/security"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterSecurityRoutes() {

	security_group := server.App.Group("/security")

	server.registerSecurityApiRoutes(security_group)
	server.registerSecurityServicesRoutes(security_group)
}

func (server *ArenaServer) registerSecurityApiRoutes(routes fiber.Router) {
	api_group := routes.Group("/api")

	api_group.Post("/init",
		middleware.OnMode(m.MODE_INIT),
		middleware.OnState(m.STATE_CONFIGURING),
		middleware.OnSubstate(m.SUBSTATE_CONFIGURING_INIT),
		middleware.WithKey("API_INIT_KEY", nil),
		func(c *fiber.Ctx) error {
			return security.InitApiSecurityHandler(c, &server.VaultManager, func(result bool) {
				server.SecurityManager.ChanApiTokenApplication <- result
			})
		})
}

func (server *ArenaServer) registerSecurityServicesRoutes(routes fiber.Router) {
	services_group := routes.Group("/services")

	services_group.Post("/init",
		middleware.OnMode(m.MODE_INIT),
		middleware.OnState(m.STATE_CONFIGURING),
		middleware.OnSubstate(m.SUBSTATE_CONFIGURING_INIT),
		middleware.WithKey("SERVICES_INIT_KEY", func() (string, error) {
			return server.VaultManager.GetApiKey("SERVICES_INIT_KEY")
		}),
		func(c *fiber.Ctx) error {
			return security.InitServicesSecurityHandler(c, server.VaultManager.Services, func(result bool) {
				server.SecurityManager.ChanServicesTokenApplication <- result
			})
		})
}
