package app

import (
	"log/slog"

	"github.com/asaskevich/EventBus"
	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/cache"
	"github.com/workmatch/workmatch/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, event bus, Logger, etc.)
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Bus        EventBus.Bus
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, bus EventBus.Bus, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Bus:        bus,
		Logger:     logger,
	}
}
