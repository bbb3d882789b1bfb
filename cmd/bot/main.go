package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Singularity-Shift/sui-squad/internal/infra/app"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bot, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init bot: %v", err)
	}

	if err := bot.Run(ctx); err != nil {
		log.Printf("bot stopped: %v", err)
		os.Exit(1)
	}
}
