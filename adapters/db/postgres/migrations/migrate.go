package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
)

//go:embed *.sql
var embedded embed.FS

// Migrator applies the schema migrations shipped with the binary
type Migrator struct {
	db    *sql.DB
	files fs.FS
}

// NewMigrator creates a migrator over the embedded migrations
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db, files: embedded}
}

// MigrationFile is one versioned SQL script
type MigrationFile struct {
	Version string
	Name    string
}

// MigrationStatus pairs a file with whether it has been applied
type MigrationStatus struct {
	MigrationFile
	Applied bool
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMPTZ DEFAULT NOW()
	)`

// Up executes all pending migrations
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := Files(m.files)
	if err != nil {
		return 0, fmt.Errorf("failed to find migration files: %w", err)
	}

	n := 0
	for _, file := range files {
		if applied[file.Version] {
			continue
		}
		if err := m.applyMigration(ctx, file); err != nil {
			return n, fmt.Errorf("failed to apply migration %s: %w", file.Version, err)
		}
		log.Printf("[Migrator] Applied migration %s", file.Name)
		n++
	}
	return n, nil
}

// Down forgets the last applied migration. Schema objects are left in place;
// there are no down scripts.
func (m *Migrator) Down(ctx context.Context) (string, error) {
	var version string
	err := m.db.QueryRowContext(ctx, `
		SELECT version FROM schema_migrations
		ORDER BY applied_at DESC, version DESC LIMIT 1`).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no migrations to rollback")
		}
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	if _, err := m.db.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return "", fmt.Errorf("failed to remove migration record: %w", err)
	}
	log.Printf("[Migrator] Unrecorded migration %s", version)
	return version, nil
}

// Status lists every migration and whether it has been applied
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to ensure migrations table: %w", err)
	}
	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	files, err := Files(m.files)
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}

	out := make([]MigrationStatus, len(files))
	for i, f := range files {
		out[i] = MigrationStatus{MigrationFile: f, Applied: applied[f.Version]}
	}
	return out, nil
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// Files lists the migrations in fsys sorted by version. Names follow
// 001_description.sql; anything else is ignored.
func Files(fsys fs.FS) ([]MigrationFile, error) {
	var files []MigrationFile
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}
		base := path.Base(p)
		parts := strings.SplitN(base, "_", 2)
		if len(parts) < 2 {
			return nil
		}
		files = append(files, MigrationFile{Version: parts[0], Name: p})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Version < files[j].Version
	})
	return files, nil
}

func (m *Migrator) applyMigration(ctx context.Context, file MigrationFile) error {
	sqlBytes, err := fs.ReadFile(m.files, file.Name)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}
	checksum := calculateChecksum(sqlBytes)

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", file.Version, checksum); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}
