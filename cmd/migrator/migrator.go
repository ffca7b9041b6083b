package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/drtz/PiThermServer/internal/repository/postgres"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, dsn); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations: up OK")
}
