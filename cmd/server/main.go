package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"reviewpulse/internal/config"
	"reviewpulse/internal/observability"
	"reviewpulse/internal/pipeline"
	"reviewpulse/internal/web"
)

const janitorInterval = 5 * time.Minute

func main() {
	cfg := config.Load()
	observability.Start(cfg.MetricsPort)

	p := pipeline.New(pipeline.Options{FetchTimeout: cfg.FetchTimeout})
	srv, err := web.NewServer(p, cfg.OutputDir, cfg.SessionTTL)
	if err != nil {
		slog.Error("init server", "err", err)
		os.Exit(1)
	}
	srv.StartJanitor(janitorInterval)

	r := gin.Default()
	srv.Routes(r)

	slog.Info("listening", "port", cfg.Port, "metrics_port", cfg.MetricsPort)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
