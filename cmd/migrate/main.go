package main

import (
	"log/slog"
	"os"

	"github.com/ghuser/tablepos/migrations/menu"
	"github.com/ghuser/tablepos/migrations/order"
	"github.com/ghuser/tablepos/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := menu.Run(cfg.DatabaseURL); err != nil {
		slog.Error("menu migrations failed", "error", err)
		os.Exit(1)
	}
	if err := order.Run(cfg.DatabaseURL); err != nil {
		slog.Error("order migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied")
}
