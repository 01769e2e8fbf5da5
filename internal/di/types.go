/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component and is passed to the HTTP
 * server, which builds its handlers from it.
 */
package di

import (
	"github.com/aristath/budgetopt/internal/database"
	"github.com/aristath/budgetopt/internal/events"
	"github.com/aristath/budgetopt/internal/metrics"
	"github.com/aristath/budgetopt/internal/modules/budget"
	"github.com/aristath/budgetopt/internal/modules/settings"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	ConfigDB *database.DB

	// Repositories
	SettingsRepo *settings.Repository

	// Services
	SettingsService *settings.Service
	EventBus        *events.Bus
	EventManager    *events.Manager
	Metrics         *metrics.Recorder
	Optimizer       *budget.Optimizer
	BudgetService   *budget.Service
}

// Close releases the databases held by the container.
func (c *Container) Close() error {
	if c == nil || c.ConfigDB == nil {
		return nil
	}
	return c.ConfigDB.Close()
}
