package app

import (
	"io"

	"go-leave/internal/config"
	"go-leave/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and mounts every route on router.
// The returned closers must be closed on shutdown.
func BuildApp(router *gin.Engine, cfg *config.Config) ([]io.Closer, error) {
	logger := zap.L().Named("app")
	var closers []io.Closer

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	closers = append(closers, sqlDB)
	logger.Info("database connection established")

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
		if err != nil {
			return closers, err
		}
		closers = append(closers, rdb)
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, running without decision lock and idempotency")
	}

	// 2. Register Modules & Routes
	moduleClosers, err := registerModules(router, cfg, sqlDB, gormDB, rdb)
	return append(closers, moduleClosers...), err
}

// CloseAll releases resources in reverse order of acquisition.
func CloseAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			zap.L().Warn("close resource failed", zap.Error(err))
		}
	}
}
