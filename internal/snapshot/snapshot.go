// Package snapshot persists the contents of the in-memory recipe store
// between runs, either to a local YAML file or to an S3 object.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/model"
	"github.com/pageza/recipebox/backend/internal/store"
)

const formatVersion = 1

// Snapshotter loads and saves a full copy of the recipe collection
type Snapshotter interface {
	// Load returns the saved recipes, or nil when nothing was saved yet
	Load(ctx context.Context) ([]model.Recipe, error)
	Save(ctx context.Context, recipes []model.Recipe) error
	// Location describes where snapshots are kept, for logging
	Location() string
}

type document struct {
	Version int            `yaml:"version"`
	SavedAt time.Time      `yaml:"saved_at"`
	Recipes []model.Recipe `yaml:"recipes"`
}

func encode(recipes []model.Recipe) ([]byte, error) {
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return yaml.Marshal(document{
		Version: formatVersion,
		SavedAt: time.Now().UTC(),
		Recipes: recipes,
	})
}

func decode(data []byte) ([]model.Recipe, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	for i := range doc.Recipes {
		// yaml leaves an empty sequence nil
		if doc.Recipes[i].Ingredients == nil {
			doc.Recipes[i].Ingredients = []string{}
		}
	}
	return doc.Recipes, nil
}

// New returns the snapshotter configured in cfg, or nil when snapshots are
// disabled. An S3 bucket takes precedence over a local file.
func New(ctx context.Context, cfg *config.Config) (Snapshotter, error) {
	switch {
	case cfg.SnapshotBucket != "":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3 snapshots: %w", err)
		}
		return NewS3(s3cfg.Client, s3cfg.BucketName, s3cfg.ObjectKey), nil
	case cfg.SnapshotFile != "":
		return NewFile(cfg.SnapshotFile), nil
	default:
		return nil, nil
	}
}

// Restore loads the latest snapshot into s
func Restore(ctx context.Context, snap Snapshotter, s *store.MemoryStore) error {
	recipes, err := snap.Load(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		log.WithField("location", snap.Location()).Info("no snapshot to restore")
		return nil
	}
	if err := s.Restore(recipes); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"location": snap.Location(),
		"recipes":  len(recipes),
	}).Info("restored recipes from snapshot")
	return nil
}

// Save writes every recipe in s to snap
func Save(ctx context.Context, snap Snapshotter, s store.Store) error {
	recipes, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := snap.Save(ctx, recipes); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"location": snap.Location(),
		"recipes":  len(recipes),
	}).Info("saved recipe snapshot")
	return nil
}
