package server

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"arena/lib/archive"
	"arena/lib/dex"
	"arena/lib/duel"
	"arena/lib/history"
	"arena/lib/maintenance"
	"arena/lib/platform"
	"arena/lib/render"
	"arena/lib/server/middleware"
	"arena/lib/services"
	"arena/lib/vault"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type ArenaServer struct {
	*fiber.App
	Db              services.Database
	Cache           services.Cache
	VaultManager    vault.VaultManager
	SecurityManager maintenance.SecurityManager
	StateMachine    maintenance.StateMachine

	Dex        *dex.Client
	Registry   *duel.Registry
	History    *history.Store
	Archive    *archive.WorkerPool
	Gateway    *platform.RedisGateway
	Subscriber *platform.Subscriber
	Renderer   *render.Generator
}

func New() (*ArenaServer, error) {
	vault_manager, err := vault.NewVaultManager()
	if err != nil {
		return nil, err
	}
	security_manager, err := maintenance.NewSecurityManager()
	if err != nil {
		return nil, err
	}

	server := ArenaServer{
		App:             fiber.New(),
		Db:              services.DefaultDatabase(),
		Cache:           services.DefaultCache(),
		VaultManager:    vault_manager,
		SecurityManager: security_manager,
		StateMachine:    maintenance.NewStateMachine(),

		Dex:      dex.NewClient(os.Getenv("DEX_API_URL")),
		Registry: duel.NewRegistry(),
		Archive:  archive.NewWorkerPool(archiveWorkerCount()),
		Renderer: render.NewGenerator(),
	}

	return &server, nil
}

func archiveWorkerCount() int {
	count, err := strconv.Atoi(os.Getenv("ARCHIVE_WORKERS"))
	if err != nil || count <= 0 {
		return 4
	}
	return count
}

func (server *ArenaServer) Configure() {
	err := maintenance.InitLogger("arena.log")
	if err == nil {
		server.App.Use(middleware.Logger())
	}
	server.App.Use(func(c *fiber.Ctx) error {
		c.Locals("StateMachine", &server.StateMachine)
		return c.Next()
	})

	server.App.Use(helmet.New())
	server.App.Use(recover.New())
	server.App.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}

func (server *ArenaServer) Start() {
	slog.Info("Starting the server")

	server.Configure()
	server.RegisterRoutes()

	server.StateMachine.When(
		maintenance.MODE_INIT,
		maintenance.STATE_CONFIGURING,
		maintenance.SUBSTATE_CONFIGURING_SERVICES,
		func() {
			slog.Info("Connecting services ...")
			// Connect all services
			cache_pwd, err := server.VaultManager.GetCachePwd()
			if err != nil {
				slog.Error("Cache pwd retrieval failed", "error", err)
				// raise fault
				return
			}
			db_pwd, err := server.VaultManager.GetDbPwd()
			if err != nil {
				slog.Error("Db pwd retrieval failed", "error", err)
				// raise fault
				return
			}
			err = server.Cache.Connect(cache_pwd)
			if err != nil {
				// raise fault
				slog.Error("Cache connection failed", "error", err)
				return
			}
			err = server.Db.Connect(db_pwd)
			if err != nil {
				// raise fault
				slog.Error("Db connection failed", "error", err)
				return
			}

			server.History = history.NewStore(&server.Cache)
			server.Archive.Start(context.Background(), &server.Db)

			if err := server.StateMachine.To(maintenance.MODE_INIT, maintenance.STATE_CONFIGURING, maintenance.SUBSTATE_CONFIGURING_GATEWAY); err != nil {
				slog.Error("MSS : transition to gateway configuration refused", "error", err)
			}
		})

	server.StateMachine.When(
		maintenance.MODE_INIT,
		maintenance.STATE_CONFIGURING,
		maintenance.SUBSTATE_CONFIGURING_GATEWAY,
		func() {
			slog.Info("Binding the gateway bridge ...")
			gateway, err := platform.NewRedisGateway(&server.Cache)
			if err != nil {
				slog.Error("Gateway bridge creation failed", "error", err)
				return
			}
			server.Gateway = gateway

			subscriber, err := platform.NewSubscriber(server.Registry)
			if err != nil {
				slog.Error("Gateway subscriber creation failed", "error", err)
				return
			}
			server.Subscriber = subscriber

			if err := subscriber.Subscribe(context.Background(), &server.Cache); err != nil {
				slog.Error("Gateway subscription failed", "error", err)
				return
			}

			server.startIdleEviction()

			server.SecurityManager.ChanGatewayBridgeBinding <- true
		})

	server.SecurityManager.Start(&server.StateMachine)
}

// startIdleEviction abandons duels with no activity when configured through
// DUEL_IDLE_EVICTION_MINUTES. Matches have no timeout otherwise.
func (server *ArenaServer) startIdleEviction() {
	minutes, err := strconv.Atoi(os.Getenv("DUEL_IDLE_EVICTION_MINUTES"))
	if err != nil || minutes <= 0 {
		return
	}

	idle_after := time.Duration(minutes) * time.Minute
	slog.Info("Idle duel eviction enabled", "idle_after", idle_after)
	go func() {
		ticker := time.NewTicker(idle_after / 2)
		defer ticker.Stop()
		for range ticker.C {
			server.Registry.EvictIdle(idle_after)
		}
	}()
}
