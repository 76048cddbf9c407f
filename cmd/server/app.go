package main

import (
	"alcyxob/fitgen/internal/config"
	"alcyxob/fitgen/internal/llm"
	"alcyxob/fitgen/internal/repository"
	"alcyxob/fitgen/internal/repository/memory"
	mongorepo "alcyxob/fitgen/internal/repository/mongo"
	"alcyxob/fitgen/internal/repository/sqlite"
	"alcyxob/fitgen/internal/service"
	"alcyxob/fitgen/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// stores bundles the repositories of the configured driver.
type stores struct {
	profiles repository.ProfileRepository
	programs repository.ProgramRepository
	close    func() error
}

// openStores connects the configured database driver and prepares its schema.
func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongorepo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		db := client.Database(cfg.Name)

		idxCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongorepo.EnsureIndexes(idxCtx, db); err != nil {
			_ = mongorepo.DisconnectDB(client)
			return nil, fmt.Errorf("ensuring mongodb indexes: %w", err)
		}
		logger.Info("database ready", slog.String("driver", cfg.Driver), slog.String("name", cfg.Name))
		return &stores{
			profiles: mongorepo.NewMongoProfileRepository(db),
			programs: mongorepo.NewMongoProgramRepository(db),
			close:    func() error { return mongorepo.DisconnectDB(client) },
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLiteDir)
		if err != nil {
			return nil, err
		}
		logger.Info("database ready", slog.String("driver", cfg.Driver), slog.String("dir", cfg.SQLiteDir))
		return &stores{
			profiles: sqlite.NewProfileRepository(store),
			programs: sqlite.NewProgramRepository(store),
			close:    store.Close,
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return &stores{
			profiles: memory.NewProfileRepository(),
			programs: memory.NewProgramRepository(),
			close:    func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newProfileService wires the generator and the optional exporter onto st.
func newProfileService(ctx context.Context, cfg config.Config, st *stores, logger *slog.Logger) (service.ProfileService, error) {
	if cfg.LLM.APIKey == "" {
		logger.Warn("llm.api_key is empty; program generation will fail")
	}
	generator := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
		Referer: cfg.LLM.Referer,
	})

	var exporter service.ProgramExporter
	fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, logger)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info("program export disabled; s3.bucket_name is empty")
	case err != nil:
		return nil, fmt.Errorf("initializing s3 storage: %w", err)
	default:
		exporter = fileStorage
	}

	return service.NewProfileService(st.profiles, st.programs, generator, exporter), nil
}
