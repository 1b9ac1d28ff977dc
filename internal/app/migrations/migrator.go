package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/termsched/internal/db"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the migrations compiled into the binary
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator applies ordered SQL files and records them in schema_migrations
type Migrator struct {
	db  *pgxpool.Pool
	src fs.FS
	log zerolog.Logger
}

// NewMigrator creates a migrator reading from src
func NewMigrator(pool *pgxpool.Pool, src fs.FS, log zerolog.Logger) *Migrator {
	return &Migrator{
		db:  pool,
		src: src,
		log: log.With().Str("component", "migrator").Logger(),
	}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// Version extracts the ordering prefix, "001_init.sql" => "001"
func Version(name string) string {
	return strings.SplitN(path.Base(name), "_", 2)[0]
}

// ListFiles lists migration files in order
func ListFiles(src fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyFile executes one file and records it in the same transaction
func (m *Migrator) applyFile(ctx context.Context, name string) error {
	version := Version(name)

	applied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return err
	}
	if applied {
		m.log.Debug().Str("file", name).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := fs.ReadFile(m.src, name)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", name, err)
	}

	err = db.WithTransaction(ctx, m.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, version, time.Now()); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info().Str("file", name).Msg("Migration applied")
	return nil
}

// Up applies every pending migration in order
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	files, err := ListFiles(m.src)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := m.applyFile(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// FileStatus reports whether one migration file has been applied
type FileStatus struct {
	File    string
	Version string
	Applied bool
}

// Status lists every migration file with its applied state
func (m *Migrator) Status(ctx context.Context) ([]FileStatus, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}
	files, err := ListFiles(m.src)
	if err != nil {
		return nil, err
	}

	out := make([]FileStatus, 0, len(files))
	for _, f := range files {
		applied, err := m.isMigrationApplied(ctx, Version(f))
		if err != nil {
			return nil, err
		}
		out = append(out, FileStatus{File: f, Version: Version(f), Applied: applied})
	}
	return out, nil
}
