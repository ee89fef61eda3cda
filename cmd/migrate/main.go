package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"craftcheck/adapters/db/postgres/migrations"
	"craftcheck/adapters/postgres"
	"craftcheck/internal/container"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <up|down|status|import> [materials_file]")
	}
	command := os.Args[1]

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	migrator := migrations.NewMigrator(db.DB)

	switch command {
	case "up":
		n, err := migrator.Up(ctx)
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Printf("Applied %d migrations", n)

	case "down":
		name, err := migrator.Down(ctx)
		if err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Printf("Rolled back %s", name)

	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			log.Printf("%-40s %s", s.Name, state)
		}

	case "import":
		if len(os.Args) < 3 {
			log.Fatal("Usage: migrate import <materials_file>")
		}
		if _, err := migrator.Up(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		cat, err := container.LoadMaterialsFile(os.Args[2])
		if err != nil {
			log.Fatalf("Failed to read materials: %v", err)
		}
		n, err := postgres.NewMaterialRepository(db).ImportMaterials(ctx, cat.All())
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d materials from %s", n, os.Args[2])

	default:
		log.Fatalf("Unknown command %q", command)
	}
}
