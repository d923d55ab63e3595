package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORACLE_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AutonomyEnabled)
	assert.Equal(t, 2.0, cfg.Decision.AnomalyThreshold)
	assert.Equal(t, 1.1, cfg.Decision.ForecastOverrunFactor)
	assert.Equal(t, 1, cfg.Decision.AnomalyCountToFreeze)
	assert.Equal(t, 1000, cfg.Decision.MonteCarloIterations)
	assert.Equal(t, time.Hour, cfg.Cache.ForecastTTL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.HealthTTL)
	assert.Equal(t, "0 0 3 * * *", cfg.Scheduling.PipelineCron)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ORACLE_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("AUTONOMY_ENABLED", "true")
	t.Setenv("ANOMALY_THRESHOLD", "3.5")
	t.Setenv("FORECAST_OVERRUN_FACTOR", "1.25")
	t.Setenv("CACHE_FORECAST_TTL", "10m")
	t.Setenv("MONTE_CARLO_ITERATIONS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.AutonomyEnabled)
	assert.Equal(t, 3.5, cfg.Decision.AnomalyThreshold)
	assert.Equal(t, 1.25, cfg.Decision.ForecastOverrunFactor)
	assert.Equal(t, 10*time.Minute, cfg.Cache.ForecastTTL)
	// Malformed values fall back to defaults
	assert.Equal(t, 1000, cfg.Decision.MonteCarloIterations)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port: 8080,
			Decision: DecisionConfig{
				AnomalyThreshold:      2.0,
				ForecastOverrunFactor: 1.1,
				AnomalyCountToFreeze:  1,
				MonteCarloIterations:  1000,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"non-positive threshold", func(c *Config) { c.Decision.AnomalyThreshold = 0 }, true},
		{"non-positive overrun factor", func(c *Config) { c.Decision.ForecastOverrunFactor = -1 }, true},
		{"freeze count below one", func(c *Config) { c.Decision.AnomalyCountToFreeze = 0 }, true},
		{"no iterations", func(c *Config) { c.Decision.MonteCarloIterations = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
