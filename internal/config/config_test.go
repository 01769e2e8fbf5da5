package config

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/budgetopt/internal/modules/settings"
	testingpkg "github.com/aristath/budgetopt/internal/testing"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range []string{
		"BUDGET_DATA_DIR", "PORT", "LOG_LEVEL", "DEV_MODE",
		"BUDGET_WEIGHT_SCALE", "SOLVER_TIME_LIMIT_SECONDS", "SOLVER_MAX_NODES",
	} {
		t.Setenv(key, values[key])
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	setEnv(t, map[string]string{"BUDGET_DATA_DIR": dir})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "config.db"), cfg.DatabasePath())
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, int64(1000), cfg.WeightScale)
	assert.Equal(t, float64(10), cfg.SolverTimeLimit)
	assert.Zero(t, cfg.SolverMaxNodes)
}

func TestLoad_FromEnvironment(t *testing.T) {
	setEnv(t, map[string]string{
		"BUDGET_DATA_DIR":           t.TempDir(),
		"PORT":                      "9100",
		"LOG_LEVEL":                 "DEBUG",
		"DEV_MODE":                  "true",
		"BUDGET_WEIGHT_SCALE":       "5000",
		"SOLVER_TIME_LIMIT_SECONDS": "2.5",
		"SOLVER_MAX_NODES":          "100000",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, int64(5000), cfg.WeightScale)
	assert.Equal(t, 2.5, cfg.SolverTimeLimit)
	assert.Equal(t, int64(100000), cfg.SolverMaxNodes)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"unknown log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"zero scale", map[string]string{"BUDGET_WEIGHT_SCALE": "0"}},
		{"negative time limit", map[string]string{"SOLVER_TIME_LIMIT_SECONDS": "-1"}},
		{"negative node limit", map[string]string{"SOLVER_MAX_NODES": "-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["BUDGET_DATA_DIR"] = t.TempDir()
			setEnv(t, tt.env)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "config")
	defer cleanup()
	svc := settings.NewService(settings.NewRepository(db.Conn(), zerolog.Nop()), zerolog.Nop())

	cfg := &Config{WeightScale: 3000, SolverTimeLimit: 4, SolverMaxNodes: 250}
	require.NoError(t, cfg.ApplyDefaults(svc))

	assert.Equal(t, int64(3000), svc.WeightScale())
	assert.Equal(t, int64(250), svc.SolverMaxNodes())

	_, err := svc.Set(settings.KeyWeightScale, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), svc.WeightScale())

	cfg.SolverTimeLimit = 7200
	assert.Error(t, cfg.ApplyDefaults(svc))
}
