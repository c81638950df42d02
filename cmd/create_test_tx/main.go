package main

import (
	"context"
	"flag"
	"log"
	"os"

	"expenses_bot/internal/db"
	"expenses_bot/internal/domain"
	"expenses_bot/internal/parser"
	"expenses_bot/internal/repository"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	userID := flag.Int64("user", 1234567890, "owner user id")
	text := flag.String("text", "150 تومن ممد باید بهم بده", "message to parse")
	updateID := flag.Int64("update", 0, "source update id; repeat a run with the same id to check idempotency")
	flag.Parse()

	pool := db.Connect(dsn, 1, 2)
	defer pool.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	p, err := parser.Parse(*text)
	if err != nil {
		log.Fatalf("parse failed: %v", err)
	}
	log.Printf("parsed amount=%d direction=%s person=%q description=%q\n", p.Amount, p.Direction, p.Person, p.Description)

	var keys domain.DedupKeys
	if *updateID != 0 {
		keys.UpdateID = updateID
	}

	repo := repository.NewTransactionRepository(pool)
	id, duplicate, err := repo.Insert(ctx, *userID, p, keys)
	if err != nil {
		log.Fatalf("insert failed: %v", err)
	}
	log.Printf("saved id=%d duplicate=%v\n", id, duplicate)

	tx, err := repo.Get(ctx, *userID, id)
	if err != nil {
		log.Fatalf("get failed: %v", err)
	}
	log.Printf("fetched #%d amount=%d direction=%s created_at=%v\n", tx.ID, tx.Amount, tx.Direction, tx.CreatedAt)
}
