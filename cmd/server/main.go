package main

import (
	"context"
	"os"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/joho/godotenv"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/cache"
	"github.com/workmatch/workmatch/internal/config"
	"github.com/workmatch/workmatch/internal/db"
	"github.com/workmatch/workmatch/internal/logger"
	"github.com/workmatch/workmatch/internal/notify"
	"github.com/workmatch/workmatch/internal/scheduler"
	"github.com/workmatch/workmatch/internal/server"
	"github.com/workmatch/workmatch/internal/service/account"
	"github.com/workmatch/workmatch/internal/service/company"
	"github.com/workmatch/workmatch/internal/service/jobs"
	"github.com/workmatch/workmatch/internal/service/lifecycle"
	"github.com/workmatch/workmatch/internal/service/matching"
	"github.com/workmatch/workmatch/internal/service/profile"
	"github.com/workmatch/workmatch/internal/service/team"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg := config.New()
	logger.InitFromConfig(cfg)
	logger.Info("starting server", "env", cfg.App.Env)

	gdb, err := db.NewDB(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	rdb := cache.NewRedisCache(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, counters degrade to DB reads", "error", err)
	}
	cancel()

	bus := EventBus.New()

	appCtx := app.New(cfg, gdb, rdb, bus, logger.L())

	notifier := notify.New(appCtx)
	if err := notifier.Start(); err != nil {
		logger.Error("failed to start notifier", "error", err)
		os.Exit(1)
	}

	sweeper := scheduler.New(appCtx)
	if err := sweeper.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	accountSvc := account.NewService(appCtx)
	authMW := auth.Middleware(cfg.Auth.JWTSecret, accountSvc)

	public := []server.Registrar{
		account.NewRegistrar(appCtx),
	}
	protected := []server.Registrar{
		matching.NewRegistrar(appCtx),
		lifecycle.NewRegistrar(appCtx),
		company.NewRegistrar(appCtx),
		team.NewRegistrar(appCtx),
		jobs.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
	}

	router := server.NewRouter(cfg, authMW, public, protected)
	err = server.StartHTTPServer(cfg, router)
	bus.WaitAsync() // drain in-flight notification handlers
	if err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
