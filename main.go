package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"profile-auth/cmd"
	"profile-auth/internal/data/repository"
	"profile-auth/internal/wire"
	"profile-auth/pkg/cache"
	"profile-auth/pkg/database"
	"profile-auth/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = ".env"
	}

	// Load config
	config, err := utils.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("db_driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	var (
		repos  *repository.Repository
		probes []wire.Probe
	)

	switch config.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory user store, data is lost on exit")
		repos = repository.NewMemoryRepository(logger)
	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connected successfully")

		if config.Database.Migrate {
			if err := db.Migrate(ctx, logger); err != nil {
				logger.Fatal("Failed to apply migrations", zap.Error(err))
			}
		}

		repos = repository.NewRepository(db, logger)
		probes = append(probes, wire.Probe{Name: "postgres", Check: db.Ping})
	}

	if config.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()

		logger.Info("Redis connected, caching users", zap.Duration("ttl", config.Redis.UserCacheTTL))

		repos = repos.WithCache(rdb, config.Redis.UserCacheTTL, logger)
		probes = append(probes, wire.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	// Wire all dependencies
	app, err := wire.Wiring(repos, config, logger, probes...)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}

	if len(os.Args) > 1 && os.Args[1] == "createsuperuser" {
		if err := cmd.CreateSuperuser(ctx, os.Args[2:], app.Service.User, logger); err != nil {
			logger.Fatal("createsuperuser failed", zap.Error(err))
		}
		return
	}

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.HTTP, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
