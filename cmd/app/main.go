package main

import (
	"flag"
	"log/slog"
	"os"

	"backtest_go/internal/app"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := bootstrap.RunDemo(); err != nil {
		slog.Error("❌ Backtest failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("👋 Backtest finished")
}
