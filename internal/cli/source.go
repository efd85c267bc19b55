package cli

import (
	"context"
	"fmt"

	"github.com/seuros/salesboard/internal/config"
	"github.com/seuros/salesboard/internal/database"
	"github.com/seuros/salesboard/internal/store"
)

// openSource builds the configured data source. The returned close
// function releases the database handle, if any.
func openSource(ctx context.Context, cfg *config.Config) (store.Source, func(), error) {
	if cfg.Source != config.SourcePostgres {
		return store.FileSource{Path: cfg.DataFile}, func() {}, nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return database.NewSource(db), func() { _ = db.Close() }, nil
}
