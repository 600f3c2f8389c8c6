package app

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/metrics"
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/shared/connection"
	"go-leave/internal/workday"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) ([]io.Closer, error) {
	var closers []io.Closer

	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB)
	ledgerRepo := leave.NewLedgerRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return closers, err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	weekend, err := workday.ParseWeekendPolicy(cfg.Leave.WeekendDays)
	if err != nil {
		return closers, err
	}
	notifier, notifierClosers, err := buildNotifier(cfg, db)
	closers = append(closers, notifierClosers...)
	if err != nil {
		return closers, err
	}
	opts := leave.ServiceOptions{Weekend: weekend}
	if rdb != nil {
		opts.Locker = leave.NewRedisDecisionLocker(rdb, cfg.Leave.DecisionLockTTL)
	}
	leaveService := leave.NewServiceWithOptions(db, leaveRepo, ledgerRepo, notifier, opts)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	router.Use(middleware.ContextLogger(zap.L()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, leave.RouteOptions{
			JWTSecret:      cfg.JWTSecret,
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
		})
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWTSecret)
	}

	return closers, nil
}

func buildNotifier(cfg *config.Config, db *sql.DB) (leave.Notifier, []io.Closer, error) {
	switch cfg.Leave.Notifier {
	case config.NotifierOutbox:
		return leave.NewOutboxNotifier(kafka.NewOutboxRepository(db), cfg.Kafka.TransitionTopic), nil, nil
	case config.NotifierKafka:
		if cfg.Kafka.Broker == "" {
			return nil, nil, fmt.Errorf("KAFKA_BROKER is required for the kafka notifier")
		}
		writer, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
		if err != nil {
			return nil, nil, err
		}
		return leave.NewKafkaNotifier(writer, cfg.Kafka.TransitionTopic), []io.Closer{writer}, nil
	default:
		return leave.NewNoopNotifier(), nil, nil
	}
}
