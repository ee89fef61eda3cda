package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"craftcheck/internal/errors"
)

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, errors.DatabaseError("database URL is empty")
	}
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to open database: %w", err))
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to ping database: %w", err))
	}
	return db, nil
}
