package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/model"
	"github.com/pageza/recipebox/backend/internal/testdb"
)

func TestOpenSQLite(t *testing.T) {
	db, err := database.Open(&config.Config{StoreBackend: config.BackendSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer database.Close(db)

	assert.NoError(t, database.HealthCheck(context.Background(), db))

	ran, err := database.RunMigrations(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, ran)
	assert.True(t, db.Migrator().HasTable(&model.RecipeRecord{}))
}

func TestOpenMemoryBackendHasNoDatabase(t *testing.T) {
	_, err := database.Open(&config.Config{StoreBackend: config.BackendMemory})
	assert.Error(t, err)
}

func TestMigrationStatusRejectsSQLite(t *testing.T) {
	db := testdb.SQLite(t)
	_, err := database.MigrationStatus(context.Background(), db)
	assert.Error(t, err)
}

func TestPostgresMigrations(t *testing.T) {
	db := testdb.Postgres(t)
	ctx := context.Background()

	status, err := database.MigrationStatus(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	for _, m := range status {
		assert.True(t, m.Applied(), m.Name)
	}

	ran, err := database.RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, ran, "migrations must be idempotent")

	var ext int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM pg_extension WHERE extname = 'vector'`).Scan(&ext).Error)
	assert.Equal(t, int64(1), ext)
}
