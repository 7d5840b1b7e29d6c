package cmd

import (
	"fmt"

	"customer-merger/core/config"
	"customer-merger/core/database"
	"customer-merger/core/logger"
	"customer-merger/feature/store"

	"go.uber.org/zap"
)

// runtime bundles what every command needs before doing work.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// bootstrap loads configuration, builds the logger and connects the store.
func bootstrap() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st, err := store.New(db, cfg.Merge.DistanceFunction, cfg.Merge.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: l.With(zap.String("driver", cfg.Database.Driver)),
		store:  st,
	}, nil
}
