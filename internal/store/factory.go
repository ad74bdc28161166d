package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"riffbox/internal/config"
	"riffbox/internal/riffbox"
)

// NewCollectionStoreFromConfig creates a CollectionStore based on the store
// config type. Stores holding resources also implement io.Closer.
func NewCollectionStoreFromConfig(ctx context.Context, cfg config.StoreConfig, codec riffbox.Codec, clock riffbox.Clock, logger riffbox.Logger) (riffbox.CollectionStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem", "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem store requires dir to be set")
		}
		return NewFileSystemStore(cfg.Dir, codec, clock, logger)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite store requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "riffbox.db"), clock, logger)
	case "s3":
		return NewS3StoreFromConfig(ctx, cfg, codec, clock, logger)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
