package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/app"
	"github.com/pageza/recipebox/backend/internal/logging"
)

func main() {
	logging.Default()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}
	stdlog.SetFlags(0)
	stdlog.SetOutput(logging.NewWriter(log.Fields{"source": "stdlib"}, log.InfoLevel))

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logging.NewWriter(log.Fields{"source": "gin"}, log.DebugLevel)
	gin.DefaultErrorWriter = logging.NewWriter(log.Fields{"source": "gin"}, log.ErrorLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	log.WithFields(log.Fields{
		"addr":        cfg.Addr(),
		"environment": cfg.Environment,
		"backend":     cfg.StoreBackend,
	}).Info("starting server")

	if err := a.Run(ctx); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
	log.Info("server stopped")
}
