// Package app assembles the recipe service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/router"
	"github.com/pageza/recipebox/backend/internal/seed"
	"github.com/pageza/recipebox/backend/internal/server"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/snapshot"
	"github.com/pageza/recipebox/backend/internal/store"
)

// App owns every long-lived resource of a running service
type App struct {
	cfg      *config.Config
	store    store.Store
	memory   *store.MemoryStore
	db       *gorm.DB
	redis    *redis.Client
	snapshot snapshot.Snapshotter
	server   *server.Server
}

// New opens the configured store, restores or seeds it and builds the
// HTTP server. Call Close when New succeeded and Run is not used.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}
	checks := map[string]api.ReadinessCheck{}

	if err := a.openStore(ctx, checks); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SeedEnabled {
		recipes, err := seed.Load(cfg.SeedFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		n, err := seed.IfEmpty(ctx, a.store, recipes)
		if err != nil {
			a.Close()
			return nil, err
		}
		if n > 0 {
			log.WithField("recipes", n).Info("seeded empty store")
		}
	}

	limiter := a.writeLimiter(checks)

	a.server = server.New(cfg, router.Dependencies{
		RecipeService:   service.NewRecipeService(a.store),
		WriteLimiter:    limiter,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		ReadinessChecks: checks,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context, checks map[string]api.ReadinessCheck) error {
	if a.cfg.StoreBackend == config.BackendMemory {
		a.memory = store.NewMemoryStore()
		a.store = a.memory

		snap, err := snapshot.New(ctx, a.cfg)
		if err != nil {
			return err
		}
		if snap != nil {
			if err := snapshot.Restore(ctx, snap, a.memory); err != nil {
				return err
			}
			// only a store that restored cleanly may overwrite the snapshot
			a.snapshot = snap
		}
		return nil
	}

	db, err := database.Open(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db

	applied, err := database.RunMigrations(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		log.WithField("migrations", applied).Info("applied database migrations")
	}

	a.store = store.NewGormStore(db)
	checks["database"] = func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}
	return nil
}

// writeLimiter prefers Redis so limits hold across replicas, and falls back
// to an in-process limiter when Redis is absent or unreachable.
func (a *App) writeLimiter(checks map[string]api.ReadinessCheck) middleware.Limiter {
	if a.cfg.RateLimit <= 0 {
		log.Info("rate limiting disabled")
		return nil
	}

	if a.cfg.RedisEnabled() {
		client, err := database.NewRedisClient(a.cfg)
		if err == nil {
			a.redis = client
			checks["redis"] = func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}
			return middleware.NewRecipeWriteRateLimiter(client, a.cfg.RateLimit, a.cfg.RateLimitWindow)
		}
		log.WithError(err).Warn("failed to connect to redis, using in-process rate limiting")
	}
	return middleware.NewLocalLimiter(a.cfg.RateLimit, a.cfg.RateLimitWindow)
}

// Store returns the recipe store backing the service
func (a *App) Store() store.Store {
	return a.store
}

// Server returns the HTTP server
func (a *App) Server() *server.Server {
	return a.server
}

// Run serves until ctx is cancelled, then saves a snapshot if configured
// and releases every resource.
func (a *App) Run(ctx context.Context) error {
	runErr := a.server.Start(ctx)
	return errors.Join(runErr, a.Close())
}

// Close saves the final snapshot and closes connections
func (a *App) Close() error {
	var errs []error

	if a.snapshot != nil && a.memory != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		if err := snapshot.Save(ctx, a.snapshot, a.memory); err != nil {
			errs = append(errs, fmt.Errorf("failed to save snapshot: %w", err))
		}
		cancel()
		a.snapshot = nil
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
		a.db = nil
	}
	return errors.Join(errs...)
}
