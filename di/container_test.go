package di

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-forecaster/api/scraper"
	"occupancy-forecaster/config"
	"occupancy-forecaster/dao/redis"
	"occupancy-forecaster/recorder"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Environment = "development"
	cfg.Venue.URL = ""
	cfg.Store.Driver = config.STORE_DRIVER_FIREBASE
	cfg.Store.Firebase.ServiceAccountPath = ""
	cfg.State.WindowPath = filepath.Join(dir, "window.json")
	cfg.Recorder.SQLitePath = ""
	return cfg
}

func TestNewContainer_Development(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recorder.SQLitePath = filepath.Join(t.TempDir(), "history.db")

	c, err := NewContainer(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &redis.RedisStore{}, c.Store)
	assert.IsType(t, &scraper.ScraperMock{}, c.Scraper)
	assert.IsType(t, &recorder.SQLiteRecorder{}, c.Recorder)
	assert.NotNil(t, c.OccupancyTrackerService)
	assert.NotNil(t, c.OccupancyHttpServer)
}

func TestNewContainer_VenueURLUsesHTTPScraper(t *testing.T) {
	cfg := testConfig(t)
	cfg.Venue.URL = "http://venue.invalid/page"

	c, err := NewContainer(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &scraper.RateLimitedScraper{}, c.Scraper)
	assert.IsType(t, &recorder.NoopRecorder{}, c.Recorder)
}

func TestNewContainer_RedisDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = config.STORE_DRIVER_REDIS

	c, err := NewContainer(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.IsType(t, &redis.RedisStore{}, c.Store)
	assert.NoError(t, c.Close())
}

func TestNewContainer_ProductionNeedsServiceAccount(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment = "prod"
	cfg.Store.Firebase.ServiceAccountPath = filepath.Join(t.TempDir(), "absent.json")

	_, err := NewContainer(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewContainer_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "etcd"

	_, err := NewContainer(cfg, zerolog.Nop())
	assert.Error(t, err)
}
