package di

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeServices(t *testing.T) {
	cfg := testConfig(t)
	cfg.WeightScale = 2500
	cfg.SolverTimeLimit = 3
	cfg.SolverMaxNodes = 1000

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()
	require.NoError(t, InitializeRepositories(container, zerolog.Nop()))

	require.NoError(t, InitializeServices(container, cfg, zerolog.Nop()))

	assert.NotNil(t, container.SettingsService)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.EventManager)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.Optimizer)
	assert.NotNil(t, container.BudgetService)

	assert.Equal(t, int64(2500), container.SettingsService.WeightScale())
	assert.Equal(t, 3*time.Second, container.SettingsService.SolverTimeLimit())
	assert.Equal(t, int64(1000), container.SettingsService.SolverMaxNodes())
	assert.Equal(t, int64(2500), container.BudgetService.DefaultScale())
}

func TestInitializeServices_StoredSettingsWin(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()
	require.NoError(t, InitializeRepositories(container, zerolog.Nop()))
	require.NoError(t, container.SettingsRepo.Set("budget_weight_scale", "4000", nil))

	require.NoError(t, InitializeServices(container, cfg, zerolog.Nop()))
	assert.Equal(t, int64(4000), container.BudgetService.DefaultScale())
}
