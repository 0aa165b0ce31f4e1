package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one SQL migration file and whether it has been applied
type Migration struct {
	Name      string
	AppliedAt *time.Time
}

// Applied reports whether the migration has run
func (m Migration) Applied() bool {
	return m.AppliedAt != nil
}

// RunMigrations brings the schema up to date. sqlite uses GORM
// auto-migration; postgres applies the embedded SQL files in name order and
// records them in schema_migrations. It returns the names it applied.
func RunMigrations(ctx context.Context, db *gorm.DB) ([]string, error) {
	if db.Dialector.Name() == "sqlite" {
		log.Debug("using gorm auto-migration for sqlite")
		if err := db.WithContext(ctx).AutoMigrate(&model.RecipeRecord{}); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return applySQLMigrations(ctx, sqlDB, migrationFiles)
}

// MigrationStatus lists every embedded migration with its applied time
func MigrationStatus(ctx context.Context, db *gorm.DB) ([]Migration, error) {
	if db.Dialector.Name() == "sqlite" {
		return nil, fmt.Errorf("sqlite schemas are managed by auto-migration")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := ensureMigrationsTable(ctx, sqlDB); err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, sqlDB)
	if err != nil {
		return nil, err
	}
	names, err := migrationNames(migrationFiles)
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		m := Migration{Name: name}
		if at, ok := applied[name]; ok {
			at := at
			m.AppliedAt = &at
		}
		out = append(out, m)
	}
	return out, nil
}

func migrationNames(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]time.Time, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var at time.Time
		if err := rows.Scan(&name, &at); err != nil {
			return nil, err
		}
		applied[name] = at
	}
	return applied, rows.Err()
}

func applySQLMigrations(ctx context.Context, db *sql.DB, fsys fs.FS) ([]string, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}
	names, err := migrationNames(fsys)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, name := range names {
		if _, ok := applied[name]; ok {
			log.WithField("migration", name).Debug("skipping migration (already applied)")
			continue
		}

		content, err := fs.ReadFile(fsys, "migrations/"+name)
		if err != nil {
			return ran, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return ran, err
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return ran, fmt.Errorf("failed to commit migration %s: %w", name, err)
		}

		log.WithField("migration", name).Info("applied migration")
		ran = append(ran, name)
	}
	return ran, nil
}
