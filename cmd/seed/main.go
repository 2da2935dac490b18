package main

import (
	"context"
	"log"
	"os"

	"steakz/internal/repository"
	"steakz/internal/seed"
)

func main() {
	db, err := repository.OpenMySQL(repository.MySQLFromEnv())
	if err != nil {
		log.Fatalf("failed to connect to MySQL: %v", err)
	}
	store := repository.NewGormStore(db)
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	ctx := context.Background()
	if err := seed.Run(ctx, db); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}
	if err := seed.PrintSummary(ctx, db, os.Stdout); err != nil {
		log.Fatalf("failed to print summary: %v", err)
	}
}
