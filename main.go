package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heartpanel/internal"
	"heartpanel/internal/config"
	"heartpanel/internal/container"
)

func main() {
	cfgFile := flag.String("config", os.Getenv("HEARTPANEL_CONFIG"), "optional YAML configuration file")
	flag.Parse()

	appConfig, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Warm the panel so the first request does not pay for the load
	if err := appContainer.QueryStore().EnsureLoaded(ctx); err != nil {
		internal.DefaultLogger.Warn("panel not loaded at startup; views return no data until a run exists", "error", err)
	}

	server := appContainer.Server()
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}
}
