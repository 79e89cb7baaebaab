package main

import (
	"context"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/tasksense/internal/app"
	"github.com/davicafu/tasksense/internal/config"
	"github.com/davicafu/tasksense/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// ---------------- Main ----------------
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info")
		logger.Logger().Fatal("invalid configuration", zap.Error(err))
	}

	logger.Init(cfg.Log.Level) // inicializa zap
	log := logger.Logger()     // obtiene logger estructurado
	defer log.Sync()           // flush buffers al salir

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	application, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}
	if err := application.Start(ctx); err != nil {
		log.Fatal("failed to start application", zap.Error(err))
	}

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"tasksense": func(ctx context.Context) error {
			log.Info("🛑 Graceful shutdown initiated...")
			return application.Shutdown(ctx)
		},
	})

	exitCode := <-wait
	log.Info("Application exited", zap.Int("code", exitCode))
	_ = log.Sync()
	os.Exit(exitCode)
}
