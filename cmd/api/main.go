package main

import (
	"context"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	shutdownTracing, err := bootstrap.InitTracing("go-leave-api", cfg.Server.TraceStdout)
	if err != nil {
		logger.Fatal("init tracing failed", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	closers, err := app.BuildApp(r, cfg)
	defer app.CloseAll(closers)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(r, cfg.Server, bootstrap.NewStdoutAuditLogger(logger))
}
