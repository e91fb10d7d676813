package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_ENVIRONMENT, cfg.Environment)
	assert.Equal(t, "Europe/London", cfg.Timezone)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Schedule.ErrorInterval)
	assert.Equal(t, 4, cfg.Forecast.Weeks)
	assert.Equal(t, 5, cfg.Forecast.Neighbors)
	assert.Equal(t, 10, cfg.Forecast.FrequencyMinutes)
	assert.Equal(t, "firebase", cfg.Store.Driver)
	assert.Equal(t, "rs_data", cfg.Store.Root)
	assert.True(t, cfg.HTTPEnabled())

	opening, err := cfg.DefaultOpeningOffset()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour+30*time.Minute, opening)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
venue:
  url: https://venue.example/leisure-centre
schedule:
  poll_interval: 5m
  error_interval: 10s
  default_opening: "07:15"
forecast:
  weeks: 6
store:
  driver: redis
  redis:
    addr: localhost:6379
http:
  enabled: false
`)
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.Schedule.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Schedule.ErrorInterval)
	assert.Equal(t, 6, cfg.Forecast.Weeks)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.HTTPEnabled())

	opening, err := cfg.DefaultOpeningOffset()
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+15*time.Minute, opening)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "often")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_ErrorIntervalFromEnv(t *testing.T) {
	t.Setenv("ERROR_INTERVAL", "45s")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Schedule.ErrorInterval)

	t.Setenv("ERROR_INTERVAL", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(CONFIG_PATH_ENV, "")
	assert.Equal(t, "config.yaml", ResolvePath("config.yaml", false))

	t.Setenv(CONFIG_PATH_ENV, "/etc/occupancy/config.yaml")
	assert.Equal(t, "/etc/occupancy/config.yaml", ResolvePath("config.yaml", false))
	assert.Equal(t, "local.yaml", ResolvePath("local.yaml", true))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "schedule: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"production without venue url", func(c *Config) { c.Environment = "prod" }},
		{"production firebase without credentials", func(c *Config) {
			c.Environment = "prod"
			c.Venue.URL = "https://venue.example"
		}},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"zero neighbors", func(c *Config) { c.Forecast.Neighbors = -1 }},
		{"bad default opening", func(c *Config) { c.Schedule.DefaultOpening = "6.30am" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			test.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
