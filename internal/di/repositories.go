// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/budgetopt/internal/modules/settings"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.ConfigDB == nil {
		return fmt.Errorf("config database not initialized")
	}

	container.SettingsRepo = settings.NewRepository(container.ConfigDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
