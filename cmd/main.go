package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/mentalgym-backend/internal/app"
)

func main() {
	app.LoadEnv()
	log, err := app.NewLogger()
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Loading environment variables...")
	cfg := app.LoadConfig()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to init app", "error", err)
		log.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("App stopped with error", "error", err)
		a.Close()
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
