package main

import (
	"context"
	"flag"
	"log"
	"os"

	"expenses_bot/internal/db"
	"expenses_bot/internal/repository"
	"expenses_bot/internal/service"
)

func main() {
	yes := flag.Bool("yes", false, "confirm deleting ALL data")
	flag.Parse()

	if !*yes {
		log.Fatal("refusing to wipe the database without -yes")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn, 1, 2)
	defer pool.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := db.WipeAll(ctx, pool); err != nil {
		log.Fatalf("wipe failed: %v", err)
	}
	service.NewAuditService(repository.NewAuditRepository(pool)).LogWipe(ctx, db.LedgerTables)
	log.Println("all records, counters, dialogues and audit entries deleted")
}
