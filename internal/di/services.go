// Package di provides dependency injection for service implementations.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/config"
	"github.com/aristath/budgetopt/internal/events"
	"github.com/aristath/budgetopt/internal/metrics"
	"github.com/aristath/budgetopt/internal/modules/budget"
	"github.com/aristath/budgetopt/internal/modules/settings"
)

// InitializeServices creates the services on top of the repositories.
// Configured solver values become the settings defaults, so a value stored
// through the API overrides the environment.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.SettingsRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}

	container.SettingsService = settings.NewService(container.SettingsRepo, log)
	if err := cfg.ApplyDefaults(container.SettingsService); err != nil {
		return err
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)
	container.Metrics = metrics.NewRecorder()

	container.Optimizer = budget.NewOptimizer(log, budget.WithSearchLog(cfg.LogLevel == "trace"))
	container.BudgetService = budget.NewService(
		container.Optimizer,
		container.SettingsService,
		container.Metrics,
		container.EventManager,
		log,
	)

	log.Debug().Msg("Services initialized")
	return nil
}
