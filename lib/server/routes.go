package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (server *ArenaServer) RegisterRoutes() {
	server.App.Get("/", server.HelloWorldHandler)
	server.App.Get("/health", server.healthHandler)

	server.RegisterSecurityRoutes()
	server.RegisterMatchRoutes()
}

func (server *ArenaServer) HelloWorldHandler(c *fiber.Ctx) error {
	resp := map[string]string{
		"message": "Hello World",
	}
	return c.JSON(resp)
}

func (server *ArenaServer) healthHandler(c *fiber.Ctx) error {
	resp := map[string]string{
		"db":    strconv.FormatBool(server.Db.Health()),
		"cache": strconv.FormatBool(server.Cache.Health()),
		"vault": strconv.FormatBool(server.VaultManager.Health()),
	}
	return c.JSON(resp)
}
