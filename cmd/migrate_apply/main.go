package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"expenses_bot/internal/db"
	"expenses_bot/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations (default: list them)")
	only := flag.String("only", "", "apply a single migration file")
	flag.Parse()

	names, err := migrations.Names()
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn, 1, 2)
	defer pool.Close()

	ctx := context.Background()
	if *only != "" {
		if err := db.ApplyOne(ctx, pool, *only); err != nil {
			log.Fatalf("failed to apply %s: %v", *only, err)
		}
		fmt.Printf("applied %s\n", *only)
		return
	}

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	for _, name := range names {
		fmt.Printf("applied %s\n", name)
	}
}
