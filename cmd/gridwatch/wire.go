package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/gridwatch/internal/battery"
	"github.com/i474232898/gridwatch/internal/config"
	"github.com/i474232898/gridwatch/internal/grid"
	"github.com/i474232898/gridwatch/internal/grid/providers"
	"github.com/i474232898/gridwatch/internal/logging"
	"github.com/i474232898/gridwatch/internal/store"
)

// components holds the process-owned dependencies shared by the commands.
type components struct {
	cfg       *config.AppConfig
	logger    *zap.Logger
	store     *store.SQLiteStore
	grids     *grid.Service
	batteries *battery.Service
}

func buildComponents() (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := store.Open(cfg.DatabasePath, logger.Named("store"))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	eia := providers.NewEIAProvider(httpClient, providers.EIAConfig{
		BaseURL:    cfg.EIABaseURL,
		APIKey:     cfg.EIAAPIKey,
		Respondent: cfg.Respondent,
		PageLength: cfg.PageLength,
	}, logger)

	return &components{
		cfg:       cfg,
		logger:    logger,
		store:     db,
		grids:     grid.NewService(db, eia, logger.Named("grid")),
		batteries: battery.NewService(db, logger.Named("battery")),
	}, nil
}

func (c *components) Close() {
	if err := c.store.Close(); err != nil {
		c.logger.Warn("failed to close db", zap.Error(err))
	}
	_ = c.logger.Sync()
}
