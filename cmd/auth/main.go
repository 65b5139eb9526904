package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	authcmd "github.com/in-labs/in-server/internal/cmd/auth"
)

func main() {
	// Local development loads secrets from a .env file; deployments set
	// real environment variables, so a missing file is fine.
	_ = godotenv.Load()

	cfg, err := authcmd.ParseConfig()
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := authcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
