package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/turtacn/smsgw/internal/app"
	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/infrastructure/monitoring"
)

func main() {
	configFile := pflag.String("config", "", "path to a YAML configuration file")
	pflag.Parse()

	// Load config
	loader := config.NewLoader(*configFile)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	if used := loader.ConfigFileUsed(); used != "" {
		appLogger.Info(context.Background(), "Loaded configuration file: "+used)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, loader, appLogger); err != nil {
		appLogger.Fatal(context.Background(), "Gateway stopped with error", err)
	}
}
