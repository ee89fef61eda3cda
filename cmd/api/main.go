package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"craftcheck/adapters/db/postgres/migrations"
	"craftcheck/adapters/postgres"
	"craftcheck/internal/config"
	"craftcheck/internal/container"
	"craftcheck/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer c.Close()

	if cfg.Database.Enabled() {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		if n, err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		} else if n > 0 {
			log.Printf("Applied %d migrations", n)
		}
		if err := c.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize repositories: %v", err)
		}
	} else {
		log.Printf("DATABASE_URL not set, recording results in memory")
	}

	if err := c.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	app := ui.NewApp(c.Service)
	if err := app.Start(ctx, ":"+cfg.Server.Port, cfg.Server.ShutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Printf("Server stopped")
}
