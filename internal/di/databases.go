// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/config"
	"github.com/aristath/budgetopt/internal/database"
)

// InitializeDatabases opens config.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// config.db - solver settings
	configDB, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "config",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config database: %w", err)
	}
	container.ConfigDB = configDB

	if err := configDB.Migrate(); err != nil {
		configDB.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", configDB.Name(), err)
	}

	log.Info().Str("path", configDB.Path()).Msg("Database initialized and schema applied")

	return container, nil
}
